package handler

import (
	"net/http"
	"strconv"

	"github.com/DmitriyMikhalev/warehouses/internal/model"
	"github.com/DmitriyMikhalev/warehouses/pkg/database"
	"github.com/DmitriyMikhalev/warehouses/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ShopRequest defines the structure for shop creation/update requests
type ShopRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	OwnerID uint   `json:"owner_id" validate:"required"`
}

// ShopResponse augments a shop with its pending order count
type ShopResponse struct {
	model.Shop
	UnacceptedOrderCount int64 `json:"unaccepted_order_count"`
}

// ListShops handles retrieving all shops
func ListShops(c echo.Context) error {
	log := logger.FromContext(c)

	var shops []model.Shop
	result := database.GetDB().Find(&shops)
	if result.Error != nil {
		log.Error("Failed to list shops", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve shops",
		})
	}

	return c.JSON(http.StatusOK, shops)
}

// GetShop retrieves a shop with the count of orders still waiting for
// acceptance.
func GetShop(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var shop model.Shop
	result := database.GetDB().First(&shop, id)
	if result.Error != nil {
		log.Warn("Shop not found", zap.String("shop_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Shop not found",
		})
	}

	pending, err := svc.UnacceptedOrderCount(c.Request().Context(), shop.ID)
	if err != nil {
		log.Error("Failed to count pending orders", zap.String("shop_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to count pending orders",
		})
	}

	return c.JSON(http.StatusOK, ShopResponse{
		Shop:                 shop,
		UnacceptedOrderCount: pending,
	})
}

// CreateShop handles creating a new shop
func CreateShop(c echo.Context) error {
	log := logger.FromContext(c)

	var req ShopRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	// Check if shop with name already exists
	var count int64
	database.GetDB().Model(&model.Shop{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		log.Warn("Shop with this name already exists", zap.String("name", req.Name))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Shop with this name already exists",
		})
	}

	shop := model.Shop{
		Name:    req.Name,
		Address: req.Address,
		OwnerID: req.OwnerID,
	}

	result := database.GetDB().Create(&shop)
	if result.Error != nil {
		log.Error("Failed to create shop", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create shop",
		})
	}

	log.Info("Shop created",
		zap.String("shop_id", strconv.FormatUint(uint64(shop.ID), 10)),
		zap.String("name", shop.Name))
	return c.JSON(http.StatusCreated, shop)
}

// UpdateShop handles updating an existing shop
func UpdateShop(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req ShopRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("shop_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var shop model.Shop
	result := database.GetDB().First(&shop, id)
	if result.Error != nil {
		log.Warn("Shop not found for update", zap.String("shop_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Shop not found",
		})
	}

	if req.Name != shop.Name {
		var count int64
		database.GetDB().Model(&model.Shop{}).Where("name = ? AND id != ?", req.Name, id).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Shop with this name already exists",
			})
		}
	}

	shop.Name = req.Name
	shop.Address = req.Address
	shop.OwnerID = req.OwnerID

	result = database.GetDB().Save(&shop)
	if result.Error != nil {
		log.Error("Failed to update shop", zap.String("shop_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update shop",
		})
	}

	log.Info("Shop updated", zap.String("shop_id", id))
	return c.JSON(http.StatusOK, shop)
}

// DeleteShop handles deleting a shop. Orders referencing it are removed by
// the cascade.
func DeleteShop(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Shop{}, id)
	if result.Error != nil {
		log.Error("Failed to delete shop", zap.String("shop_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete shop",
		})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Shop not found",
		})
	}

	log.Info("Shop deleted", zap.String("shop_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Shop deleted successfully",
	})
}

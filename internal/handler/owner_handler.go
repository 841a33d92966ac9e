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

// OwnerRequest defines the structure for owner creation/update requests
type OwnerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// ListOwners handles retrieving all owners
func ListOwners(c echo.Context) error {
	log := logger.FromContext(c)

	var owners []model.Owner
	result := database.GetDB().Order("id DESC").Find(&owners)
	if result.Error != nil {
		log.Error("Failed to list owners", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve owners",
		})
	}

	return c.JSON(http.StatusOK, owners)
}

// GetOwner handles retrieving a single owner with possessions
func GetOwner(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var owner model.Owner
	result := database.GetDB().
		Preload("Warehouses").
		Preload("Vehicles").
		Preload("Shops").
		First(&owner, id)
	if result.Error != nil {
		log.Warn("Owner not found", zap.String("owner_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Owner not found",
		})
	}

	return c.JSON(http.StatusOK, owner)
}

// CreateOwner handles creating a new owner
func CreateOwner(c echo.Context) error {
	log := logger.FromContext(c)

	var req OwnerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	// Check if owner with email already exists
	var count int64
	database.GetDB().Model(&model.Owner{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		log.Warn("Owner with this email already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Owner with this email already exists",
		})
	}

	owner := model.Owner{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	result := database.GetDB().Create(&owner)
	if result.Error != nil {
		log.Error("Failed to create owner", zap.String("email", req.Email), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create owner",
		})
	}

	log.Info("Owner created",
		zap.String("owner_id", strconv.FormatUint(uint64(owner.ID), 10)),
		zap.String("email", owner.Email))
	return c.JSON(http.StatusCreated, owner)
}

// UpdateOwner handles updating an existing owner
func UpdateOwner(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req OwnerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("owner_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var owner model.Owner
	result := database.GetDB().First(&owner, id)
	if result.Error != nil {
		log.Warn("Owner not found for update", zap.String("owner_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Owner not found",
		})
	}

	// Check if email is changed and if new email already exists
	if req.Email != owner.Email {
		var count int64
		database.GetDB().Model(&model.Owner{}).Where("email = ? AND id != ?", req.Email, id).Count(&count)
		if count > 0 {
			log.Warn("Owner with this email already exists", zap.String("email", req.Email))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Owner with this email already exists",
			})
		}
	}

	owner.Email = req.Email
	owner.FirstName = req.FirstName
	owner.LastName = req.LastName

	result = database.GetDB().Save(&owner)
	if result.Error != nil {
		log.Error("Failed to update owner", zap.String("owner_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update owner",
		})
	}

	log.Info("Owner updated", zap.String("owner_id", id))
	return c.JSON(http.StatusOK, owner)
}

// DeleteOwner handles deleting an owner. Warehouses, vehicles and shops of
// the owner are removed by the cascade.
func DeleteOwner(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Owner{}, id)
	if result.Error != nil {
		log.Error("Failed to delete owner", zap.String("owner_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete owner",
		})
	}

	if result.RowsAffected == 0 {
		log.Warn("Owner not found for deletion", zap.String("owner_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Owner not found",
		})
	}

	log.Info("Owner deleted", zap.String("owner_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Owner deleted successfully",
	})
}

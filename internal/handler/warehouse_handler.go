package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DmitriyMikhalev/warehouses/internal/model"
	"github.com/DmitriyMikhalev/warehouses/pkg/database"
	"github.com/DmitriyMikhalev/warehouses/pkg/logger"
	"github.com/DmitriyMikhalev/warehouses/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WarehouseRequest defines the structure for warehouse creation/update requests
type WarehouseRequest struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	MaxCapacity int64  `json:"max_capacity" validate:"required,gt=0"`
	OwnerID     uint   `json:"owner_id" validate:"required"`
}

// StockRequest is one proposed ledger row for the stock-edit endpoint
type StockRequest struct {
	ProductID uint  `json:"product_id" validate:"required"`
	Payload   int64 `json:"payload" validate:"required,gt=0"`
}

// WarehouseResponse augments a warehouse with its computed columns
type WarehouseResponse struct {
	model.Warehouse
	TotalPayload           int64 `json:"total_payload"`
	UnacceptedTransitCount int64 `json:"unaccepted_transit_count"`
}

// ListWarehouses handles retrieving all warehouses
func ListWarehouses(c echo.Context) error {
	log := logger.FromContext(c)

	var warehouses []model.Warehouse
	result := database.GetDB().Find(&warehouses)
	if result.Error != nil {
		log.Error("Failed to list warehouses", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve warehouses",
		})
	}

	return c.JSON(http.StatusOK, warehouses)
}

// GetWarehouse retrieves a warehouse with its current ledger total and
// the count of transits still waiting for acceptance.
func GetWarehouse(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var warehouse model.Warehouse
	result := database.GetDB().Preload("StockEntries.Product").First(&warehouse, id)
	if result.Error != nil {
		log.Warn("Warehouse not found", zap.String("warehouse_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Warehouse not found",
		})
	}

	total, err := svc.StockSum(c.Request().Context(), warehouse.ID)
	if err != nil {
		log.Error("Failed to sum warehouse stock", zap.String("warehouse_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to compute warehouse load",
		})
	}

	pending, err := svc.UnacceptedTransitCount(c.Request().Context(), warehouse.ID)
	if err != nil {
		log.Error("Failed to count pending transits", zap.String("warehouse_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to count pending transits",
		})
	}

	prometheus.UpdateWarehouseStock(id, warehouse.Name, float64(total))

	return c.JSON(http.StatusOK, WarehouseResponse{
		Warehouse:              warehouse,
		TotalPayload:           total,
		UnacceptedTransitCount: pending,
	})
}

// CreateWarehouse handles creating a new warehouse, optionally with initial
// stock entries which must fit inside the declared capacity.
func CreateWarehouse(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		WarehouseRequest
		Stock []StockRequest `json:"stock"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.MaxCapacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "max_capacity must be positive",
		})
	}

	// Check if warehouse with name already exists
	var count int64
	database.GetDB().Model(&model.Warehouse{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		log.Warn("Warehouse with this name already exists", zap.String("name", req.Name))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Warehouse with this name already exists",
		})
	}

	// Initial stock must fit inside the declared capacity
	var initial int64
	seen := make(map[uint]struct{}, len(req.Stock))
	for _, entry := range req.Stock {
		if entry.Payload <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "stock payload must be positive",
			})
		}
		if _, ok := seen[entry.ProductID]; ok {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "duplicate product in stock entries",
			})
		}
		seen[entry.ProductID] = struct{}{}
		initial += entry.Payload
	}
	if initial > req.MaxCapacity {
		log.Warn("Initial stock exceeds capacity",
			zap.Int64("total", initial),
			zap.Int64("limit", req.MaxCapacity))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "warehouse cannot fit " + strconv.FormatInt(initial, 10) +
				" > " + strconv.FormatInt(req.MaxCapacity, 10) + " tons",
		})
	}

	warehouse := model.Warehouse{
		Name:        req.Name,
		Address:     req.Address,
		MaxCapacity: req.MaxCapacity,
		OwnerID:     req.OwnerID,
	}
	for _, entry := range req.Stock {
		warehouse.StockEntries = append(warehouse.StockEntries, model.StockEntry{
			ProductID: entry.ProductID,
			Payload:   entry.Payload,
		})
	}

	result := database.GetDB().Create(&warehouse)
	if result.Error != nil {
		log.Error("Failed to create warehouse", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create warehouse",
		})
	}

	log.Info("Warehouse created",
		zap.String("warehouse_id", strconv.FormatUint(uint64(warehouse.ID), 10)),
		zap.String("name", warehouse.Name),
		zap.Int64("max_capacity", warehouse.MaxCapacity))
	return c.JSON(http.StatusCreated, warehouse)
}

// UpdateWarehouse handles updating warehouse attributes. Capacity is
// immutable after creation; the ledger invariant is defined against it.
func UpdateWarehouse(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req WarehouseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("warehouse_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var warehouse model.Warehouse
	result := database.GetDB().First(&warehouse, id)
	if result.Error != nil {
		log.Warn("Warehouse not found for update", zap.String("warehouse_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Warehouse not found",
		})
	}

	if req.Name != warehouse.Name {
		var count int64
		database.GetDB().Model(&model.Warehouse{}).Where("name = ? AND id != ?", req.Name, id).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Warehouse with this name already exists",
			})
		}
	}

	warehouse.Name = req.Name
	warehouse.Address = req.Address
	warehouse.OwnerID = req.OwnerID

	result = database.GetDB().Save(&warehouse)
	if result.Error != nil {
		log.Error("Failed to update warehouse", zap.String("warehouse_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update warehouse",
		})
	}

	log.Info("Warehouse updated", zap.String("warehouse_id", id))
	return c.JSON(http.StatusOK, warehouse)
}

// DeleteWarehouse handles deleting a warehouse. Stock entries, transits and
// orders referencing it are removed by the cascade.
func DeleteWarehouse(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Warehouse{}, id)
	if result.Error != nil {
		log.Error("Failed to delete warehouse", zap.String("warehouse_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete warehouse",
		})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Warehouse not found",
		})
	}

	log.Info("Warehouse deleted", zap.String("warehouse_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Warehouse deleted successfully",
	})
}

// EditStock replaces or adds ledger rows for a warehouse after validating
// the capacity invariant against the engine.
func EditStock(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	warehouseID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid warehouse id",
		})
	}

	var req struct {
		Entries []StockRequest `json:"entries"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("warehouse_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var proposed int64
	seen := make(map[uint]struct{}, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.Payload <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "stock payload must be positive",
			})
		}
		if _, ok := seen[entry.ProductID]; ok {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "duplicate product in stock entries",
			})
		}
		seen[entry.ProductID] = struct{}{}
		proposed += entry.Payload
	}

	if err := svc.CheckCapacity(c.Request().Context(), uint(warehouseID), proposed); err != nil {
		log.Warn("Stock edit rejected", zap.String("warehouse_id", id), zap.Error(err))
		prometheus.RecordValidationFailure("stock_edit", validationReason(err))
		return c.JSON(engineErrorStatus(err), echo.Map{"error": err.Error()})
	}

	db := database.GetDB()
	for _, entry := range req.Entries {
		var existing model.StockEntry
		result := db.Where("warehouse_id = ? AND product_id = ?", warehouseID, entry.ProductID).First(&existing)
		if result.Error == nil {
			existing.Payload += entry.Payload
			if err := db.Save(&existing).Error; err != nil {
				log.Error("Failed to update stock entry", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"error": "Failed to update stock entry",
				})
			}
			continue
		}

		row := model.StockEntry{
			WarehouseID: uint(warehouseID),
			ProductID:   entry.ProductID,
			Payload:     entry.Payload,
		}
		if err := db.Create(&row).Error; err != nil {
			log.Error("Failed to create stock entry", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Failed to create stock entry",
			})
		}
	}

	log.Info("Stock updated",
		zap.String("warehouse_id", id),
		zap.Int("entries", len(req.Entries)),
		zap.Int64("added", proposed))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Stock updated successfully",
	})
}

// GetProjection returns the projected available quantity of a product in a
// warehouse at a future instant.
func GetProjection(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	warehouseID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid warehouse id",
		})
	}

	productID, err := strconv.ParseUint(c.QueryParam("product_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid or missing product_id",
		})
	}

	at, err := time.Parse(time.RFC3339, c.QueryParam("at"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid or missing at timestamp, expected RFC3339",
		})
	}

	available, err := svc.ProjectAvailable(c.Request().Context(), uint(warehouseID), uint(productID), at)
	if err != nil {
		log.Error("Failed to project stock",
			zap.String("warehouse_id", id),
			zap.Uint64("product_id", productID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to project stock",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"warehouse_id": warehouseID,
		"product_id":   productID,
		"at":           at,
		"available":    available,
	})
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
	"github.com/DmitriyMikhalev/warehouses/internal/model"
	"github.com/DmitriyMikhalev/warehouses/pkg/database"
	"github.com/DmitriyMikhalev/warehouses/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// VehicleRequest defines the structure for vehicle creation/update requests
type VehicleRequest struct {
	Brand       string `json:"brand" validate:"required"`
	MaxCapacity int64  `json:"max_capacity" validate:"required,gt=0"`
	VIN         string `json:"vin" validate:"required,len=17"`
	OwnerID     uint   `json:"owner_id" validate:"required"`
}

// ListVehicles handles retrieving all vehicles
func ListVehicles(c echo.Context) error {
	log := logger.FromContext(c)

	var vehicles []model.Vehicle
	result := database.GetDB().Find(&vehicles)
	if result.Error != nil {
		log.Error("Failed to list vehicles", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve vehicles",
		})
	}

	return c.JSON(http.StatusOK, vehicles)
}

// GetVehicle handles retrieving a single vehicle by ID
func GetVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var vehicle model.Vehicle
	result := database.GetDB().First(&vehicle, id)
	if result.Error != nil {
		log.Warn("Vehicle not found", zap.String("vehicle_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Vehicle not found",
		})
	}

	return c.JSON(http.StatusOK, vehicle)
}

// CreateVehicle handles creating a new vehicle
func CreateVehicle(c echo.Context) error {
	log := logger.FromContext(c)

	var req VehicleRequest
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

	// Check if vehicle with VIN already exists
	var count int64
	database.GetDB().Model(&model.Vehicle{}).Where("vin = ?", req.VIN).Count(&count)
	if count > 0 {
		log.Warn("Vehicle with this VIN already exists", zap.String("vin", req.VIN))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Vehicle with this VIN already exists",
		})
	}

	vehicle := model.Vehicle{
		Brand:       req.Brand,
		MaxCapacity: req.MaxCapacity,
		VIN:         req.VIN,
		OwnerID:     req.OwnerID,
	}

	result := database.GetDB().Create(&vehicle)
	if result.Error != nil {
		log.Error("Failed to create vehicle", zap.String("vin", req.VIN), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create vehicle",
		})
	}

	log.Info("Vehicle created",
		zap.String("vehicle_id", strconv.FormatUint(uint64(vehicle.ID), 10)),
		zap.String("brand", vehicle.Brand),
		zap.String("vin", vehicle.VIN))
	return c.JSON(http.StatusCreated, vehicle)
}

// UpdateVehicle handles updating an existing vehicle. Capacity is immutable
// after creation in the operator surface.
func UpdateVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("vehicle_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var vehicle model.Vehicle
	result := database.GetDB().First(&vehicle, id)
	if result.Error != nil {
		log.Warn("Vehicle not found for update", zap.String("vehicle_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Vehicle not found",
		})
	}

	if req.VIN != vehicle.VIN {
		var count int64
		database.GetDB().Model(&model.Vehicle{}).Where("vin = ? AND id != ?", req.VIN, id).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Vehicle with this VIN already exists",
			})
		}
	}

	vehicle.Brand = req.Brand
	vehicle.VIN = req.VIN
	vehicle.OwnerID = req.OwnerID

	result = database.GetDB().Save(&vehicle)
	if result.Error != nil {
		log.Error("Failed to update vehicle", zap.String("vehicle_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update vehicle",
		})
	}

	log.Info("Vehicle updated", zap.String("vehicle_id", id))
	return c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle handles deleting a vehicle. Assignments referencing it are
// removed by the cascade.
func DeleteVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Vehicle{}, id)
	if result.Error != nil {
		log.Error("Failed to delete vehicle", zap.String("vehicle_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete vehicle",
		})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Vehicle not found",
		})
	}

	log.Info("Vehicle deleted", zap.String("vehicle_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Vehicle deleted successfully",
	})
}

// GetVehicleAvailability reports whether a vehicle is free of conflicting
// unaccepted commitments during the requested window.
func GetVehicleAvailability(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	vehicleID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid vehicle id",
		})
	}

	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid or missing start timestamp, expected RFC3339",
		})
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid or missing end timestamp, expected RFC3339",
		})
	}

	window := engine.Window{Start: start, End: end}
	if err := window.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	available, err := svc.VehicleAvailable(c.Request().Context(), uint(vehicleID), window)
	if err != nil {
		log.Error("Failed to check vehicle availability",
			zap.String("vehicle_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to check vehicle availability",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"vehicle_id": vehicleID,
		"start":      start,
		"end":        end,
		"available":  available,
	})
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
	"github.com/DmitriyMikhalev/warehouses/internal/model"
	"github.com/DmitriyMikhalev/warehouses/pkg/database"
	"github.com/DmitriyMikhalev/warehouses/pkg/logger"
	"github.com/DmitriyMikhalev/warehouses/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommitmentLineRequest is one product position of a proposed commitment
type CommitmentLineRequest struct {
	ProductID uint  `json:"product_id" validate:"required"`
	Payload   int64 `json:"payload" validate:"required,gt=0"`
}

// TransitRequest defines the structure for proposing an inbound delivery
type TransitRequest struct {
	WarehouseID uint                    `json:"warehouse_id" validate:"required"`
	DateStart   time.Time               `json:"date_start" validate:"required"`
	DateEnd     time.Time               `json:"date_end" validate:"required"`
	Lines       []CommitmentLineRequest `json:"lines" validate:"required,min=1"`
	VehicleIDs  []uint                  `json:"vehicle_ids"`
}

// AcceptBatchRequest carries the ids for a batch acceptance
type AcceptBatchRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

// ListTransits handles retrieving transits with optional accepted filtering
func ListTransits(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Preload("Lines").Preload("Vehicles")

	if accepted := c.QueryParam("accepted"); accepted != "" {
		value, err := strconv.ParseBool(accepted)
		if err == nil {
			query = query.Where("accepted = ?", value)
		} else {
			log.Warn("Invalid accepted parameter", zap.String("value", accepted), zap.Error(err))
		}
	}
	if warehouseID := c.QueryParam("warehouse_id"); warehouseID != "" {
		query = query.Where("warehouse_id = ?", warehouseID)
	}

	var transits []model.Transit
	result := query.Order("date_start").Find(&transits)
	if result.Error != nil {
		log.Error("Failed to list transits", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve transits",
		})
	}

	return c.JSON(http.StatusOK, transits)
}

// GetTransit handles retrieving a single transit by ID
func GetTransit(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var transit model.Transit
	result := database.GetDB().Preload("Lines.Product").Preload("Vehicles.Vehicle").First(&transit, id)
	if result.Error != nil {
		log.Warn("Transit not found", zap.String("transit_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Transit not found",
		})
	}

	return c.JSON(http.StatusOK, transit)
}

// CreateTransit validates a proposed inbound delivery against the
// consistency engine and persists it as a pending commitment. Nothing is
// written unless every check passes.
func CreateTransit(c echo.Context) error {
	log := logger.FromContext(c)

	var req TransitRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	proposal := engine.Proposal{
		Kind:        engine.Inbound,
		WarehouseID: req.WarehouseID,
		Window:      engine.Window{Start: req.DateStart, End: req.DateEnd},
		VehicleIDs:  req.VehicleIDs,
	}
	for _, line := range req.Lines {
		proposal.Lines = append(proposal.Lines, engine.Line{
			ProductID: line.ProductID,
			Payload:   line.Payload,
		})
	}

	if err := svc.ValidateProposal(c.Request().Context(), proposal); err != nil {
		log.Warn("Transit proposal rejected",
			zap.Uint("warehouse_id", req.WarehouseID),
			zap.Error(err))
		prometheus.RecordValidationFailure(string(engine.Inbound), validationReason(err))
		return c.JSON(engineErrorStatus(err), echo.Map{"error": err.Error()})
	}

	transit := model.Transit{
		WarehouseID: req.WarehouseID,
		DateStart:   req.DateStart,
		DateEnd:     req.DateEnd,
	}
	for _, line := range req.Lines {
		transit.Lines = append(transit.Lines, model.TransitLine{
			ProductID: line.ProductID,
			Payload:   line.Payload,
		})
	}
	for _, vehicleID := range req.VehicleIDs {
		transit.Vehicles = append(transit.Vehicles, model.TransitVehicle{
			VehicleID: vehicleID,
		})
	}

	result := database.GetDB().Create(&transit)
	if result.Error != nil {
		log.Error("Failed to create transit",
			zap.Uint("warehouse_id", req.WarehouseID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create transit",
		})
	}

	log.Info("Transit proposed",
		zap.String("transit_id", strconv.FormatUint(uint64(transit.ID), 10)),
		zap.Uint("warehouse_id", transit.WarehouseID),
		zap.Int("lines", len(transit.Lines)),
		zap.Int("vehicles", len(transit.Vehicles)))
	return c.JSON(http.StatusCreated, transit)
}

// AcceptTransit applies a pending transit to the stock ledger
func AcceptTransit(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	transitID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid transit id",
		})
	}

	defer prometheus.TrackDBOperation("accept_transit")(time.Now())

	if err := svc.Accept(c.Request().Context(), engine.Inbound, uint(transitID)); err != nil {
		log.Error("Transit acceptance failed", zap.String("transit_id", id), zap.Error(err))
		prometheus.RecordAcceptanceFailure(string(engine.Inbound))
		return c.JSON(engineErrorStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordAcceptance(string(engine.Inbound))
	log.Info("Transit accepted", zap.String("transit_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Transit accepted",
	})
}

// AcceptTransitBatch applies pending transits one by one, aborting the
// remainder on the first failure.
func AcceptTransitBatch(c echo.Context) error {
	log := logger.FromContext(c)

	var req AcceptBatchRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "ids must not be empty",
		})
	}

	result := svc.AcceptMany(c.Request().Context(), engine.Inbound, req.IDs)
	for range result.Accepted {
		prometheus.RecordAcceptance(string(engine.Inbound))
	}

	if result.Err != nil {
		log.Error("Transit batch aborted",
			zap.Uint("failed_id", result.FailedID),
			zap.Int("accepted", len(result.Accepted)),
			zap.Error(result.Err))
		prometheus.RecordAcceptanceFailure(string(engine.Inbound))
		return c.JSON(engineErrorStatus(result.Err), echo.Map{
			"accepted":  result.Accepted,
			"failed_id": result.FailedID,
			"error":     result.Err.Error(),
		})
	}

	log.Info("Transit batch accepted", zap.Int("count", len(result.Accepted)))
	return c.JSON(http.StatusOK, echo.Map{
		"accepted": result.Accepted,
	})
}

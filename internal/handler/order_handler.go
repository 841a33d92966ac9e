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

// OrderRequest defines the structure for proposing an outbound shipment
type OrderRequest struct {
	ShopID      uint                    `json:"shop_id" validate:"required"`
	WarehouseID uint                    `json:"warehouse_id" validate:"required"`
	DateStart   time.Time               `json:"date_start" validate:"required"`
	DateEnd     time.Time               `json:"date_end" validate:"required"`
	Lines       []CommitmentLineRequest `json:"lines" validate:"required,min=1"`
	VehicleIDs  []uint                  `json:"vehicle_ids"`
}

// ListOrders handles retrieving orders with optional accepted filtering
func ListOrders(c echo.Context) error {
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
	if shopID := c.QueryParam("shop_id"); shopID != "" {
		query = query.Where("shop_id = ?", shopID)
	}

	var orders []model.Order
	result := query.Order("date_start").Find(&orders)
	if result.Error != nil {
		log.Error("Failed to list orders", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve orders",
		})
	}

	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles retrieving a single order by ID
func GetOrder(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var order model.Order
	result := database.GetDB().Preload("Lines.Product").Preload("Vehicles.Vehicle").First(&order, id)
	if result.Error != nil {
		log.Warn("Order not found", zap.String("order_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Order not found",
		})
	}

	return c.JSON(http.StatusOK, order)
}

// CreateOrder validates a proposed outbound shipment against projected
// availability and persists it as a pending commitment.
func CreateOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var shop model.Shop
	if result := database.GetDB().First(&shop, req.ShopID); result.Error != nil {
		log.Warn("Shop not found", zap.Uint("shop_id", req.ShopID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Shop not found",
		})
	}

	proposal := engine.Proposal{
		Kind:        engine.Outbound,
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
		log.Warn("Order proposal rejected",
			zap.Uint("warehouse_id", req.WarehouseID),
			zap.Uint("shop_id", req.ShopID),
			zap.Error(err))
		prometheus.RecordValidationFailure(string(engine.Outbound), validationReason(err))
		return c.JSON(engineErrorStatus(err), echo.Map{"error": err.Error()})
	}

	order := model.Order{
		ShopID:      req.ShopID,
		WarehouseID: req.WarehouseID,
		DateStart:   req.DateStart,
		DateEnd:     req.DateEnd,
	}
	for _, line := range req.Lines {
		order.Lines = append(order.Lines, model.OrderLine{
			ProductID: line.ProductID,
			Payload:   line.Payload,
		})
	}
	for _, vehicleID := range req.VehicleIDs {
		order.Vehicles = append(order.Vehicles, model.OrderVehicle{
			VehicleID: vehicleID,
		})
	}

	result := database.GetDB().Create(&order)
	if result.Error != nil {
		log.Error("Failed to create order",
			zap.Uint("warehouse_id", req.WarehouseID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create order",
		})
	}

	log.Info("Order proposed",
		zap.String("order_id", strconv.FormatUint(uint64(order.ID), 10)),
		zap.Uint("shop_id", order.ShopID),
		zap.Uint("warehouse_id", order.WarehouseID),
		zap.Int("lines", len(order.Lines)),
		zap.Int("vehicles", len(order.Vehicles)))
	return c.JSON(http.StatusCreated, order)
}

// AcceptOrder applies a pending order to the stock ledger
func AcceptOrder(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	orderID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid order id",
		})
	}

	defer prometheus.TrackDBOperation("accept_order")(time.Now())

	if err := svc.Accept(c.Request().Context(), engine.Outbound, uint(orderID)); err != nil {
		log.Error("Order acceptance failed", zap.String("order_id", id), zap.Error(err))
		prometheus.RecordAcceptanceFailure(string(engine.Outbound))
		return c.JSON(engineErrorStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordAcceptance(string(engine.Outbound))
	log.Info("Order accepted", zap.String("order_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order accepted",
	})
}

// AcceptOrderBatch applies pending orders one by one, aborting the
// remainder on the first failure.
func AcceptOrderBatch(c echo.Context) error {
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

	result := svc.AcceptMany(c.Request().Context(), engine.Outbound, req.IDs)
	for range result.Accepted {
		prometheus.RecordAcceptance(string(engine.Outbound))
	}

	if result.Err != nil {
		log.Error("Order batch aborted",
			zap.Uint("failed_id", result.FailedID),
			zap.Int("accepted", len(result.Accepted)),
			zap.Error(result.Err))
		prometheus.RecordAcceptanceFailure(string(engine.Outbound))
		return c.JSON(engineErrorStatus(result.Err), echo.Map{
			"accepted":  result.Accepted,
			"failed_id": result.FailedID,
			"error":     result.Err.Error(),
		})
	}

	log.Info("Order batch accepted", zap.Int("count", len(result.Accepted)))
	return c.JSON(http.StatusOK, echo.Map{
		"accepted": result.Accepted,
	})
}

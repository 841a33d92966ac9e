// Package store implements the engine's Store interface on GORM/Postgres.
package store

import (
	"context"
	"time"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
	"github.com/DmitriyMikhalev/warehouses/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the production engine.Store backed by a *gorm.DB
type Store struct {
	db   *gorm.DB
	inTx bool
}

// New wraps a GORM handle into a Store
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTransaction runs fn inside one database transaction. Reads performed by
// the transactional store take FOR UPDATE row locks, so competing
// acceptances against the same ledger rows serialize instead of racing.
func (s *Store) InTransaction(ctx context.Context, fn func(tx engine.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

// session returns the request-scoped query handle, locking rows when inside
// a transaction.
func (s *Store) session(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if s.inTx {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// GetCommitment loads a transit or order with lines and vehicle assignments
func (s *Store) GetCommitment(ctx context.Context, kind engine.Kind, id uint) (*engine.Commitment, error) {
	switch kind {
	case engine.Inbound:
		var transit model.Transit
		result := s.session(ctx).Preload("Lines").Preload("Vehicles").First(&transit, id)
		if result.Error != nil {
			return nil, wrapNotFound(result.Error, "loading transit")
		}

		c := &engine.Commitment{
			ID:          transit.ID,
			Kind:        engine.Inbound,
			WarehouseID: transit.WarehouseID,
			Window:      engine.Window{Start: transit.DateStart, End: transit.DateEnd},
			Accepted:    transit.Accepted,
		}
		for _, line := range transit.Lines {
			c.Lines = append(c.Lines, engine.Line{ProductID: line.ProductID, Payload: line.Payload})
		}
		for _, v := range transit.Vehicles {
			c.VehicleIDs = append(c.VehicleIDs, v.VehicleID)
		}
		return c, nil

	case engine.Outbound:
		var order model.Order
		result := s.session(ctx).Preload("Lines").Preload("Vehicles").First(&order, id)
		if result.Error != nil {
			return nil, wrapNotFound(result.Error, "loading order")
		}

		c := &engine.Commitment{
			ID:          order.ID,
			Kind:        engine.Outbound,
			WarehouseID: order.WarehouseID,
			ShopID:      order.ShopID,
			Window:      engine.Window{Start: order.DateStart, End: order.DateEnd},
			Accepted:    order.Accepted,
		}
		for _, line := range order.Lines {
			c.Lines = append(c.Lines, engine.Line{ProductID: line.ProductID, Payload: line.Payload})
		}
		for _, v := range order.Vehicles {
			c.VehicleIDs = append(c.VehicleIDs, v.VehicleID)
		}
		return c, nil
	}

	return nil, errors.Errorf("unknown commitment kind %q", kind)
}

// MarkAccepted flips the accepted flag of a commitment
func (s *Store) MarkAccepted(ctx context.Context, kind engine.Kind, id uint) error {
	var result *gorm.DB
	if kind == engine.Inbound {
		result = s.db.WithContext(ctx).Model(&model.Transit{}).Where("id = ?", id).Update("accepted", true)
	} else {
		result = s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("accepted", true)
	}
	if result.Error != nil {
		return errors.Wrapf(result.Error, "marking %s %d accepted", kind, id)
	}
	if result.RowsAffected == 0 {
		return engine.ErrNotFound
	}
	return nil
}

// GetStockEntry returns the ledger row for a warehouse/product pair
func (s *Store) GetStockEntry(ctx context.Context, warehouseID, productID uint) (*engine.StockRow, error) {
	var entry model.StockEntry
	result := s.session(ctx).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		First(&entry)
	if result.Error != nil {
		return nil, wrapNotFound(result.Error, "loading stock entry")
	}

	return &engine.StockRow{
		ID:          entry.ID,
		WarehouseID: entry.WarehouseID,
		ProductID:   entry.ProductID,
		Payload:     entry.Payload,
	}, nil
}

// CreateStockEntry inserts a new ledger row
func (s *Store) CreateStockEntry(ctx context.Context, warehouseID, productID uint, payload int64) error {
	entry := model.StockEntry{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Payload:     payload,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return errors.Wrap(err, "creating stock entry")
	}
	return nil
}

// SaveStockEntry overwrites an existing ledger row's payload
func (s *Store) SaveStockEntry(ctx context.Context, row *engine.StockRow) error {
	result := s.db.WithContext(ctx).
		Model(&model.StockEntry{}).
		Where("id = ?", row.ID).
		Update("payload", row.Payload)
	if result.Error != nil {
		return errors.Wrap(result.Error, "saving stock entry")
	}
	if result.RowsAffected == 0 {
		return engine.ErrNotFound
	}
	return nil
}

// DeleteStockEntry removes a ledger row that reached zero
func (s *Store) DeleteStockEntry(ctx context.Context, row *engine.StockRow) error {
	if err := s.db.WithContext(ctx).Delete(&model.StockEntry{}, row.ID).Error; err != nil {
		return errors.Wrap(err, "deleting stock entry")
	}
	return nil
}

// WarehouseCapacity returns the configured max capacity of a warehouse
func (s *Store) WarehouseCapacity(ctx context.Context, warehouseID uint) (int64, error) {
	var warehouse model.Warehouse
	result := s.db.WithContext(ctx).Select("max_capacity").First(&warehouse, warehouseID)
	if result.Error != nil {
		return 0, wrapNotFound(result.Error, "loading warehouse")
	}
	return warehouse.MaxCapacity, nil
}

// StockSum returns the committed ledger total for a warehouse
func (s *Store) StockSum(ctx context.Context, warehouseID uint) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).
		Model(&model.StockEntry{}).
		Where("warehouse_id = ?", warehouseID).
		Select("COALESCE(SUM(payload), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, errors.Wrap(err, "summing warehouse stock")
	}
	return sum, nil
}

// StockPayload returns the ledger payload for one product, 0 if absent
func (s *Store) StockPayload(ctx context.Context, warehouseID, productID uint) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).
		Model(&model.StockEntry{}).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		Select("COALESCE(SUM(payload), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, errors.Wrap(err, "reading stock payload")
	}
	return sum, nil
}

// PendingInboundBefore sums unaccepted transit lines landing strictly before at
func (s *Store) PendingInboundBefore(ctx context.Context, warehouseID, productID uint, at time.Time) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).
		Model(&model.TransitLine{}).
		Joins("JOIN transits ON transits.id = product_transit.transit_id").
		Where("transits.warehouse_id = ? AND transits.accepted = ? AND transits.date_end < ?", warehouseID, false, at).
		Where("product_transit.product_id = ?", productID).
		Select("COALESCE(SUM(product_transit.payload), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, errors.Wrap(err, "summing pending inbound")
	}
	return sum, nil
}

// PendingOutboundBefore sums unaccepted order lines shipping strictly before at
func (s *Store) PendingOutboundBefore(ctx context.Context, warehouseID, productID uint, at time.Time) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).
		Model(&model.OrderLine{}).
		Joins("JOIN orders ON orders.id = product_order.order_id").
		Where("orders.warehouse_id = ? AND orders.accepted = ? AND orders.date_end < ?", warehouseID, false, at).
		Where("product_order.product_id = ?", productID).
		Select("COALESCE(SUM(product_order.payload), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, errors.Wrap(err, "summing pending outbound")
	}
	return sum, nil
}

// PendingVehicleWindows returns the windows of unaccepted commitments
// claiming the vehicle whose range could intersect w.
func (s *Store) PendingVehicleWindows(ctx context.Context, vehicleID uint, w engine.Window) ([]engine.Window, error) {
	var windows []engine.Window

	var transitWindows []engine.Window
	err := s.db.WithContext(ctx).
		Model(&model.TransitVehicle{}).
		Joins("JOIN transits ON transits.id = vehicle_transit.transit_id").
		Where("vehicle_transit.vehicle_id = ? AND transits.accepted = ?", vehicleID, false).
		Where("transits.date_start <= ? AND transits.date_end >= ?", w.End, w.Start).
		Select(`transits.date_start AS "start", transits.date_end AS "end"`).
		Scan(&transitWindows).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching pending transit windows")
	}
	windows = append(windows, transitWindows...)

	var orderWindows []engine.Window
	err = s.db.WithContext(ctx).
		Model(&model.OrderVehicle{}).
		Joins("JOIN orders ON orders.id = vehicle_order.order_id").
		Where("vehicle_order.vehicle_id = ? AND orders.accepted = ?", vehicleID, false).
		Where("orders.date_start <= ? AND orders.date_end >= ?", w.End, w.Start).
		Select(`orders.date_start AS "start", orders.date_end AS "end"`).
		Scan(&orderWindows).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching pending order windows")
	}
	windows = append(windows, orderWindows...)

	return windows, nil
}

// UnacceptedTransitCount counts pending transits into a warehouse
func (s *Store) UnacceptedTransitCount(ctx context.Context, warehouseID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Transit{}).
		Where("warehouse_id = ? AND accepted = ?", warehouseID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "counting unaccepted transits")
	}
	return count, nil
}

// UnacceptedOrderCount counts pending orders for a shop
func (s *Store) UnacceptedOrderCount(ctx context.Context, shopID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("shop_id = ? AND accepted = ?", shopID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "counting unaccepted orders")
	}
	return count, nil
}

// wrapNotFound converts gorm's record-not-found into the engine sentinel
func wrapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

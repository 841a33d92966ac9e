package engine

import (
	"context"
	"time"
)

// Kind tags the direction a commitment applies to the stock ledger
type Kind string

const (
	// Inbound commitments (transits) increment warehouse stock on acceptance
	Inbound Kind = "transit"
	// Outbound commitments (orders) decrement warehouse stock on acceptance
	Outbound Kind = "order"
)

// Line is one product position of a commitment
type Line struct {
	ProductID uint
	Payload   int64
}

// Commitment is the generic stock-affecting record behind both transits and
// orders: line items plus a sign. It progresses pending -> accepted exactly
// once; acceptance is terminal.
type Commitment struct {
	ID          uint
	Kind        Kind
	WarehouseID uint
	ShopID      uint // outbound only
	Window      Window
	Accepted    bool
	Lines       []Line
	VehicleIDs  []uint
}

// Proposal is a not-yet-persisted commitment under validation
type Proposal struct {
	Kind        Kind
	WarehouseID uint
	ShopID      uint
	Window      Window
	Lines       []Line
	VehicleIDs  []uint
}

// StockRow is a ledger row handed to the acceptance engine inside a
// transaction.
type StockRow struct {
	ID          uint
	WarehouseID uint
	ProductID   uint
	Payload     int64
}

// Store is the persistence surface the engine needs. The GORM implementation
// lives in internal/store; an in-memory implementation used by tests lives in
// internal/store/memory.
type Store interface {
	// InTransaction runs fn against a transactional view of the store.
	// Row reads inside fn take update locks so two concurrent acceptances
	// cannot both observe the same ledger state.
	InTransaction(ctx context.Context, fn func(tx Store) error) error

	// GetCommitment loads a transit or order with its lines and vehicle
	// assignments. Returns ErrNotFound if it does not exist.
	GetCommitment(ctx context.Context, kind Kind, id uint) (*Commitment, error)

	// MarkAccepted flips the accepted flag of a pending commitment
	MarkAccepted(ctx context.Context, kind Kind, id uint) error

	// GetStockEntry returns the ledger row for a warehouse/product pair, or
	// ErrNotFound if the warehouse holds none of the product.
	GetStockEntry(ctx context.Context, warehouseID, productID uint) (*StockRow, error)

	CreateStockEntry(ctx context.Context, warehouseID, productID uint, payload int64) error
	SaveStockEntry(ctx context.Context, row *StockRow) error
	DeleteStockEntry(ctx context.Context, row *StockRow) error

	// WarehouseCapacity returns the configured max capacity of a warehouse
	WarehouseCapacity(ctx context.Context, warehouseID uint) (int64, error)

	// StockSum returns the committed ledger total for a warehouse
	StockSum(ctx context.Context, warehouseID uint) (int64, error)

	// StockPayload returns the committed ledger payload for one product in a
	// warehouse, 0 if absent.
	StockPayload(ctx context.Context, warehouseID, productID uint) (int64, error)

	// PendingInboundBefore sums unaccepted transit line payloads for a
	// warehouse/product whose window ends strictly before at.
	PendingInboundBefore(ctx context.Context, warehouseID, productID uint, at time.Time) (int64, error)

	// PendingOutboundBefore sums unaccepted order line payloads for a
	// warehouse/product whose window ends strictly before at.
	PendingOutboundBefore(ctx context.Context, warehouseID, productID uint, at time.Time) (int64, error)

	// PendingVehicleWindows returns the windows of unaccepted commitments
	// referencing the vehicle that could intersect the given window
	// (prefiltered on date_start <= w.End AND date_end >= w.Start).
	PendingVehicleWindows(ctx context.Context, vehicleID uint, w Window) ([]Window, error)

	// UnacceptedTransitCount counts pending transits into a warehouse
	UnacceptedTransitCount(ctx context.Context, warehouseID uint) (int64, error)

	// UnacceptedOrderCount counts pending orders for a shop
	UnacceptedOrderCount(ctx context.Context, shopID uint) (int64, error)
}

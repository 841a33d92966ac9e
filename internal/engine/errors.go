package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a requested row does not exist
var ErrNotFound = errors.New("not found")

// CapacityError is returned when a proposed payload would exceed a
// warehouse's maximum capacity.
type CapacityError struct {
	WarehouseID uint
	Total       int64
	Limit       int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("warehouse %d cannot fit %d > %d tons", e.WarehouseID, e.Total, e.Limit)
}

// StockError is returned when an order line requests more of a product than
// the warehouse is projected to hold at the order's start time.
type StockError struct {
	WarehouseID uint
	ProductID   uint
	Required    int64
	Available   int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock of product %d in warehouse %d: required %d, available %d tons",
		e.ProductID, e.WarehouseID, e.Required, e.Available)
}

// ConflictError is returned when a vehicle assignment overlaps an existing
// unaccepted commitment for that vehicle.
type ConflictError struct {
	VehicleID uint
	Window    Window
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle %d is busy between %s and %s",
		e.VehicleID, e.Window.Start.Format("2006-01-02 15:04"), e.Window.End.Format("2006-01-02 15:04"))
}

// DuplicateLineError is returned when a proposal lists the same product or
// vehicle more than once within its own line set.
type DuplicateLineError struct {
	Kind string // "product" or "vehicle"
	ID   uint
}

func (e *DuplicateLineError) Error() string {
	return fmt.Sprintf("duplicate %s %d in proposal", e.Kind, e.ID)
}

// ProposalError is returned when a proposal is malformed: an ill-shaped or
// out-of-horizon window, an empty line set or a non-positive payload.
type ProposalError struct {
	Reason string
}

func (e *ProposalError) Error() string {
	return e.Reason
}

// IntegrityError indicates a broken ledger invariant, such as accepting an
// order against a stock row that does not exist. It is a data error, not a
// user input error, and must surface as fatal rather than be recovered
// silently.
type IntegrityError struct {
	WarehouseID uint
	ProductID   uint
	Reason      string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ledger integrity violation for product %d in warehouse %d: %s",
		e.ProductID, e.WarehouseID, e.Reason)
}

// IsValidation reports whether err is a recoverable proposal validation
// failure that should be reported to the proposer as a client error.
func IsValidation(err error) bool {
	var (
		capErr *CapacityError
		stkErr *StockError
		cnfErr *ConflictError
		dupErr *DuplicateLineError
		prpErr *ProposalError
	)
	return errors.As(err, &capErr) ||
		errors.As(err, &stkErr) ||
		errors.As(err, &cnfErr) ||
		errors.As(err, &dupErr) ||
		errors.As(err, &prpErr)
}

package engine

import (
	"context"
	"fmt"
	"time"
)

// Horizon bounds how far from "now" a commitment window may be scheduled
type Horizon struct {
	MinOffsetDays int
	MaxOffsetDays int
}

// Service is the inventory consistency core: it validates proposed transits
// and orders against capacity, stock projections and vehicle availability,
// and applies accepted commitments to the stock ledger.
type Service struct {
	store   Store
	clock   Clock
	horizon Horizon
}

// NewService creates a Service backed by the given store and clock
func NewService(store Store, clock Clock, horizon Horizon) *Service {
	return &Service{
		store:   store,
		clock:   clock,
		horizon: horizon,
	}
}

// VehicleAvailable reports whether the vehicle has no unaccepted commitment
// whose window overlaps w. Accepted commitments are historical fact and do
// not constrain future scheduling.
func (s *Service) VehicleAvailable(ctx context.Context, vehicleID uint, w Window) (bool, error) {
	windows, err := s.store.PendingVehicleWindows(ctx, vehicleID, w)
	if err != nil {
		return false, fmt.Errorf("fetching pending windows for vehicle %d: %w", vehicleID, err)
	}

	for _, busy := range windows {
		if w.Overlaps(busy) {
			return false, nil
		}
	}
	return true, nil
}

// ProjectAvailable computes the projected on-hand quantity of a product in a
// warehouse at a future instant: the committed ledger netted against pending
// commitments completing strictly before that instant. The result may be
// negative, representing an infeasible deficit. No caching: the projection is
// re-derived fresh on every call.
func (s *Service) ProjectAvailable(ctx context.Context, warehouseID, productID uint, at time.Time) (int64, error) {
	current, err := s.store.StockPayload(ctx, warehouseID, productID)
	if err != nil {
		return 0, fmt.Errorf("reading stock for product %d in warehouse %d: %w", productID, warehouseID, err)
	}

	inbound, err := s.store.PendingInboundBefore(ctx, warehouseID, productID, at)
	if err != nil {
		return 0, fmt.Errorf("summing pending inbound: %w", err)
	}

	outbound, err := s.store.PendingOutboundBefore(ctx, warehouseID, productID, at)
	if err != nil {
		return 0, fmt.Errorf("summing pending outbound: %w", err)
	}

	return current + inbound - outbound, nil
}

// CheckCapacity validates that the committed stock of a warehouse plus a
// proposed additional payload stays within its maximum capacity.
func (s *Service) CheckCapacity(ctx context.Context, warehouseID uint, proposed int64) error {
	limit, err := s.store.WarehouseCapacity(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("reading capacity of warehouse %d: %w", warehouseID, err)
	}

	current, err := s.store.StockSum(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("summing stock of warehouse %d: %w", warehouseID, err)
	}

	if total := current + proposed; total > limit {
		return &CapacityError{WarehouseID: warehouseID, Total: total, Limit: limit}
	}
	return nil
}

// StockSum returns the committed ledger total for a warehouse
func (s *Service) StockSum(ctx context.Context, warehouseID uint) (int64, error) {
	return s.store.StockSum(ctx, warehouseID)
}

// UnacceptedTransitCount counts pending transits into a warehouse
func (s *Service) UnacceptedTransitCount(ctx context.Context, warehouseID uint) (int64, error) {
	return s.store.UnacceptedTransitCount(ctx, warehouseID)
}

// UnacceptedOrderCount counts pending orders for a shop
func (s *Service) UnacceptedOrderCount(ctx context.Context, shopID uint) (int64, error) {
	return s.store.UnacceptedOrderCount(ctx, shopID)
}

// ValidateProposal checks a proposed commitment without side effects. All
// validation happens before anything is written: window shape and horizon,
// duplicate lines, capacity for inbound, projected stock for outbound, and
// availability of every assigned vehicle independently.
func (s *Service) ValidateProposal(ctx context.Context, p Proposal) error {
	if err := s.checkWindow(p.Window); err != nil {
		return err
	}
	if err := checkLines(p); err != nil {
		return err
	}

	switch p.Kind {
	case Inbound:
		var total int64
		for _, line := range p.Lines {
			total += line.Payload
		}
		if err := s.CheckCapacity(ctx, p.WarehouseID, total); err != nil {
			return err
		}
	case Outbound:
		for _, line := range p.Lines {
			available, err := s.ProjectAvailable(ctx, p.WarehouseID, line.ProductID, p.Window.Start)
			if err != nil {
				return err
			}
			if line.Payload > available {
				return &StockError{
					WarehouseID: p.WarehouseID,
					ProductID:   line.ProductID,
					Required:    line.Payload,
					Available:   available,
				}
			}
		}
	default:
		return fmt.Errorf("unknown commitment kind %q", p.Kind)
	}

	for _, vehicleID := range p.VehicleIDs {
		ok, err := s.VehicleAvailable(ctx, vehicleID, p.Window)
		if err != nil {
			return err
		}
		if !ok {
			return &ConflictError{VehicleID: vehicleID, Window: p.Window}
		}
	}

	return nil
}

// checkWindow validates window shape and the configured scheduling horizon
func (s *Service) checkWindow(w Window) error {
	if err := w.Validate(); err != nil {
		return &ProposalError{Reason: err.Error()}
	}

	now := s.clock.Now()
	earliest := now.AddDate(0, 0, s.horizon.MinOffsetDays)
	latest := now.AddDate(0, 0, s.horizon.MaxOffsetDays)

	if w.Start.Before(earliest) {
		return &ProposalError{Reason: fmt.Sprintf(
			"window must start at least %d day(s) from now", s.horizon.MinOffsetDays)}
	}
	if w.End.After(latest) {
		return &ProposalError{Reason: fmt.Sprintf(
			"window must end within %d day(s) from now", s.horizon.MaxOffsetDays)}
	}
	return nil
}

// checkLines rejects empty proposals, non-positive payloads and duplicate
// product or vehicle references within one proposal.
func checkLines(p Proposal) error {
	if len(p.Lines) == 0 {
		return &ProposalError{Reason: "proposal has no line items"}
	}

	products := make(map[uint]struct{}, len(p.Lines))
	for _, line := range p.Lines {
		if line.Payload <= 0 {
			return &ProposalError{Reason: fmt.Sprintf("payload for product %d must be positive", line.ProductID)}
		}
		if _, ok := products[line.ProductID]; ok {
			return &DuplicateLineError{Kind: "product", ID: line.ProductID}
		}
		products[line.ProductID] = struct{}{}
	}

	vehicles := make(map[uint]struct{}, len(p.VehicleIDs))
	for _, id := range p.VehicleIDs {
		if _, ok := vehicles[id]; ok {
			return &DuplicateLineError{Kind: "vehicle", ID: id}
		}
		vehicles[id] = struct{}{}
	}

	return nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
)

// BatchResult reports the outcome of a batch acceptance: which commitments
// were applied and, if the batch aborted, which one failed and why.
type BatchResult struct {
	Accepted []uint `json:"accepted"`
	FailedID uint   `json:"failed_id,omitempty"`
	Err      error  `json:"-"`
}

// Accept transitions a commitment from pending to accepted, applying its
// line items to the stock ledger: increments for inbound, decrements for
// outbound, deleting ledger rows that reach zero. The whole transition runs
// in one store transaction with update locks, so a failure of any step
// leaves no partial ledger mutation. Accepting an already-accepted
// commitment is a no-op, never an error.
func (s *Service) Accept(ctx context.Context, kind Kind, id uint) error {
	return s.store.InTransaction(ctx, func(tx Store) error {
		c, err := tx.GetCommitment(ctx, kind, id)
		if err != nil {
			return fmt.Errorf("loading %s %d: %w", kind, id, err)
		}
		if c.Accepted {
			return nil
		}

		for _, line := range c.Lines {
			if err := applyLine(ctx, tx, c, line); err != nil {
				return err
			}
		}

		// Acceptance-time revalidation: the gap between proposal validation
		// and acceptance can admit competing transits, so the capacity
		// invariant is re-checked against the mutated ledger inside the
		// same transaction.
		if kind == Inbound {
			limit, err := tx.WarehouseCapacity(ctx, c.WarehouseID)
			if err != nil {
				return fmt.Errorf("reading capacity of warehouse %d: %w", c.WarehouseID, err)
			}
			total, err := tx.StockSum(ctx, c.WarehouseID)
			if err != nil {
				return fmt.Errorf("summing stock of warehouse %d: %w", c.WarehouseID, err)
			}
			if total > limit {
				return &CapacityError{WarehouseID: c.WarehouseID, Total: total, Limit: limit}
			}
		}

		if err := tx.MarkAccepted(ctx, kind, id); err != nil {
			return fmt.Errorf("marking %s %d accepted: %w", kind, id, err)
		}
		return nil
	})
}

// applyLine applies one commitment line to the warehouse ledger
func applyLine(ctx context.Context, tx Store, c *Commitment, line Line) error {
	row, err := tx.GetStockEntry(ctx, c.WarehouseID, line.ProductID)

	switch c.Kind {
	case Inbound:
		if errors.Is(err, ErrNotFound) {
			return tx.CreateStockEntry(ctx, c.WarehouseID, line.ProductID, line.Payload)
		}
		if err != nil {
			return fmt.Errorf("reading stock entry: %w", err)
		}
		row.Payload += line.Payload
		return tx.SaveStockEntry(ctx, row)

	case Outbound:
		if errors.Is(err, ErrNotFound) {
			// The warehouse never held this product. A validated order
			// cannot reference it, so the ledger is corrupt.
			return &IntegrityError{
				WarehouseID: c.WarehouseID,
				ProductID:   line.ProductID,
				Reason:      "no stock entry for accepted order line",
			}
		}
		if err != nil {
			return fmt.Errorf("reading stock entry: %w", err)
		}
		if row.Payload == line.Payload {
			return tx.DeleteStockEntry(ctx, row)
		}
		if row.Payload < line.Payload {
			return &IntegrityError{
				WarehouseID: c.WarehouseID,
				ProductID:   line.ProductID,
				Reason: fmt.Sprintf("order line payload %d exceeds ledger payload %d",
					line.Payload, row.Payload),
			}
		}
		row.Payload -= line.Payload
		return tx.SaveStockEntry(ctx, row)

	default:
		return fmt.Errorf("unknown commitment kind %q", c.Kind)
	}
}

// AcceptMany accepts commitments one operator action at a time: each
// commitment is applied fully in its own transaction before the next is
// considered. On the first failure the remaining batch is aborted and the
// result reports what succeeded versus what failed.
func (s *Service) AcceptMany(ctx context.Context, kind Kind, ids []uint) *BatchResult {
	result := &BatchResult{Accepted: make([]uint, 0, len(ids))}

	for _, id := range ids {
		if err := s.Accept(ctx, kind, id); err != nil {
			result.FailedID = id
			result.Err = err
			return result
		}
		result.Accepted = append(result.Accepted, id)
	}
	return result
}

// Package memory provides an in-memory implementation of the engine's Store
// interface. It backs the engine tests and is handy for local experiments;
// the production implementation lives in internal/store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
)

type stockKey struct {
	warehouseID uint
	productID   uint
}

type data struct {
	capacities  map[uint]int64
	stock       map[stockKey]*engine.StockRow
	commitments map[engine.Kind]map[uint]*engine.Commitment
	nextStockID uint
}

// Store is a mutex-guarded in-memory engine.Store
type Store struct {
	mu   *sync.Mutex
	data *data
	inTx bool
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		data: &data{
			capacities: make(map[uint]int64),
			stock:      make(map[stockKey]*engine.StockRow),
			commitments: map[engine.Kind]map[uint]*engine.Commitment{
				engine.Inbound:  {},
				engine.Outbound: {},
			},
			nextStockID: 1,
		},
	}
}

// AddWarehouse registers a warehouse with its capacity limit
func (s *Store) AddWarehouse(id uint, maxCapacity int64) {
	s.lock()
	defer s.unlock()
	s.data.capacities[id] = maxCapacity
}

// PutStock sets the ledger payload for a warehouse/product pair
func (s *Store) PutStock(warehouseID, productID uint, payload int64) {
	s.lock()
	defer s.unlock()
	key := stockKey{warehouseID: warehouseID, productID: productID}
	s.data.stock[key] = &engine.StockRow{
		ID:          s.data.nextStockID,
		WarehouseID: warehouseID,
		ProductID:   productID,
		Payload:     payload,
	}
	s.data.nextStockID++
}

// AddCommitment registers a transit or order
func (s *Store) AddCommitment(c *engine.Commitment) {
	s.lock()
	defer s.unlock()
	clone := *c
	s.data.commitments[c.Kind][c.ID] = &clone
}

func (s *Store) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

// InTransaction runs fn against a snapshot-restorable view of the store.
// The store lock is held for the whole transaction, which also serializes
// concurrent acceptances the way row locks do in the SQL implementation.
func (s *Store) InTransaction(ctx context.Context, fn func(tx engine.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}

	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (d *data) clone() *data {
	c := &data{
		capacities:  make(map[uint]int64, len(d.capacities)),
		stock:       make(map[stockKey]*engine.StockRow, len(d.stock)),
		commitments: make(map[engine.Kind]map[uint]*engine.Commitment, len(d.commitments)),
		nextStockID: d.nextStockID,
	}
	for k, v := range d.capacities {
		c.capacities[k] = v
	}
	for k, v := range d.stock {
		row := *v
		c.stock[k] = &row
	}
	for kind, byID := range d.commitments {
		c.commitments[kind] = make(map[uint]*engine.Commitment, len(byID))
		for id, cm := range byID {
			clone := *cm
			c.commitments[kind][id] = &clone
		}
	}
	return c
}

// GetCommitment loads a commitment by kind and id
func (s *Store) GetCommitment(ctx context.Context, kind engine.Kind, id uint) (*engine.Commitment, error) {
	s.lock()
	defer s.unlock()

	c, ok := s.data.commitments[kind][id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

// MarkAccepted flips the accepted flag of a commitment
func (s *Store) MarkAccepted(ctx context.Context, kind engine.Kind, id uint) error {
	s.lock()
	defer s.unlock()

	c, ok := s.data.commitments[kind][id]
	if !ok {
		return engine.ErrNotFound
	}
	c.Accepted = true
	return nil
}

// GetStockEntry returns the ledger row for a warehouse/product pair
func (s *Store) GetStockEntry(ctx context.Context, warehouseID, productID uint) (*engine.StockRow, error) {
	s.lock()
	defer s.unlock()

	row, ok := s.data.stock[stockKey{warehouseID: warehouseID, productID: productID}]
	if !ok {
		return nil, engine.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

// CreateStockEntry inserts a new ledger row
func (s *Store) CreateStockEntry(ctx context.Context, warehouseID, productID uint, payload int64) error {
	s.lock()
	defer s.unlock()

	key := stockKey{warehouseID: warehouseID, productID: productID}
	s.data.stock[key] = &engine.StockRow{
		ID:          s.data.nextStockID,
		WarehouseID: warehouseID,
		ProductID:   productID,
		Payload:     payload,
	}
	s.data.nextStockID++
	return nil
}

// SaveStockEntry overwrites an existing ledger row
func (s *Store) SaveStockEntry(ctx context.Context, row *engine.StockRow) error {
	s.lock()
	defer s.unlock()

	key := stockKey{warehouseID: row.WarehouseID, productID: row.ProductID}
	if _, ok := s.data.stock[key]; !ok {
		return engine.ErrNotFound
	}
	clone := *row
	s.data.stock[key] = &clone
	return nil
}

// DeleteStockEntry removes a ledger row
func (s *Store) DeleteStockEntry(ctx context.Context, row *engine.StockRow) error {
	s.lock()
	defer s.unlock()

	delete(s.data.stock, stockKey{warehouseID: row.WarehouseID, productID: row.ProductID})
	return nil
}

// WarehouseCapacity returns the configured max capacity of a warehouse
func (s *Store) WarehouseCapacity(ctx context.Context, warehouseID uint) (int64, error) {
	s.lock()
	defer s.unlock()

	limit, ok := s.data.capacities[warehouseID]
	if !ok {
		return 0, engine.ErrNotFound
	}
	return limit, nil
}

// StockSum returns the committed ledger total for a warehouse
func (s *Store) StockSum(ctx context.Context, warehouseID uint) (int64, error) {
	s.lock()
	defer s.unlock()

	var sum int64
	for key, row := range s.data.stock {
		if key.warehouseID == warehouseID {
			sum += row.Payload
		}
	}
	return sum, nil
}

// StockPayload returns the ledger payload for one product, 0 if absent
func (s *Store) StockPayload(ctx context.Context, warehouseID, productID uint) (int64, error) {
	s.lock()
	defer s.unlock()

	row, ok := s.data.stock[stockKey{warehouseID: warehouseID, productID: productID}]
	if !ok {
		return 0, nil
	}
	return row.Payload, nil
}

// PendingInboundBefore sums unaccepted transit lines landing strictly before at
func (s *Store) PendingInboundBefore(ctx context.Context, warehouseID, productID uint, at time.Time) (int64, error) {
	return s.pendingBefore(engine.Inbound, warehouseID, productID, at), nil
}

// PendingOutboundBefore sums unaccepted order lines shipping strictly before at
func (s *Store) PendingOutboundBefore(ctx context.Context, warehouseID, productID uint, at time.Time) (int64, error) {
	return s.pendingBefore(engine.Outbound, warehouseID, productID, at), nil
}

func (s *Store) pendingBefore(kind engine.Kind, warehouseID, productID uint, at time.Time) int64 {
	s.lock()
	defer s.unlock()

	var sum int64
	for _, c := range s.data.commitments[kind] {
		if c.Accepted || c.WarehouseID != warehouseID || !c.Window.End.Before(at) {
			continue
		}
		for _, line := range c.Lines {
			if line.ProductID == productID {
				sum += line.Payload
			}
		}
	}
	return sum
}

// PendingVehicleWindows returns windows of unaccepted commitments claiming
// the vehicle that could intersect w.
func (s *Store) PendingVehicleWindows(ctx context.Context, vehicleID uint, w engine.Window) ([]engine.Window, error) {
	s.lock()
	defer s.unlock()

	var windows []engine.Window
	for _, byID := range s.data.commitments {
		for _, c := range byID {
			if c.Accepted {
				continue
			}
			// SQL prefilter equivalent: date_start <= w.End AND date_end >= w.Start
			if c.Window.Start.After(w.End) || c.Window.End.Before(w.Start) {
				continue
			}
			for _, id := range c.VehicleIDs {
				if id == vehicleID {
					windows = append(windows, c.Window)
					break
				}
			}
		}
	}
	return windows, nil
}

// UnacceptedTransitCount counts pending transits into a warehouse
func (s *Store) UnacceptedTransitCount(ctx context.Context, warehouseID uint) (int64, error) {
	s.lock()
	defer s.unlock()

	var count int64
	for _, c := range s.data.commitments[engine.Inbound] {
		if !c.Accepted && c.WarehouseID == warehouseID {
			count++
		}
	}
	return count, nil
}

// UnacceptedOrderCount counts pending orders for a shop
func (s *Store) UnacceptedOrderCount(ctx context.Context, shopID uint) (int64, error) {
	s.lock()
	defer s.unlock()

	var count int64
	for _, c := range s.data.commitments[engine.Outbound] {
		if !c.Accepted && c.ShopID == shopID {
			count++
		}
	}
	return count, nil
}

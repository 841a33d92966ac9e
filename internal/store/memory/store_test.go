package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
)

func date(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestInTransactionCommit(t *testing.T) {
	st := New()
	st.AddWarehouse(1, 100)
	st.PutStock(1, 7, 10)

	err := st.InTransaction(context.Background(), func(tx engine.Store) error {
		row, err := tx.GetStockEntry(context.Background(), 1, 7)
		if err != nil {
			return err
		}
		row.Payload = 25
		return tx.SaveStockEntry(context.Background(), row)
	})
	if err != nil {
		t.Fatalf("InTransaction() error = %v", err)
	}

	row, err := st.GetStockEntry(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetStockEntry() error = %v", err)
	}
	if row.Payload != 25 {
		t.Errorf("payload = %d, want 25", row.Payload)
	}
}

func TestInTransactionRollback(t *testing.T) {
	st := New()
	st.AddWarehouse(1, 100)
	st.PutStock(1, 7, 10)

	boom := errors.New("boom")
	err := st.InTransaction(context.Background(), func(tx engine.Store) error {
		row, _ := tx.GetStockEntry(context.Background(), 1, 7)
		row.Payload = 999
		if err := tx.SaveStockEntry(context.Background(), row); err != nil {
			return err
		}
		if err := tx.CreateStockEntry(context.Background(), 1, 8, 5); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTransaction() error = %v, want boom", err)
	}

	row, err := st.GetStockEntry(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetStockEntry() error = %v", err)
	}
	if row.Payload != 10 {
		t.Errorf("payload = %d after rollback, want 10", row.Payload)
	}
	if _, err := st.GetStockEntry(context.Background(), 1, 8); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("created row survived rollback, err = %v", err)
	}
}

func TestGetStockEntryReturnsCopy(t *testing.T) {
	st := New()
	st.PutStock(1, 7, 10)

	row, err := st.GetStockEntry(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetStockEntry() error = %v", err)
	}
	row.Payload = 999

	again, _ := st.GetStockEntry(context.Background(), 1, 7)
	if again.Payload != 10 {
		t.Errorf("payload = %d, want 10: callers must not mutate store state through returned rows", again.Payload)
	}
}

func TestPendingSumsSkipAcceptedAndOtherWarehouses(t *testing.T) {
	st := New()
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window: engine.Window{Start: date(4), End: date(5)},
		Lines:  []engine.Line{{ProductID: 7, Payload: 10}},
	})
	st.AddCommitment(&engine.Commitment{
		ID: 2, Kind: engine.Inbound, WarehouseID: 1, Accepted: true,
		Window: engine.Window{Start: date(4), End: date(5)},
		Lines:  []engine.Line{{ProductID: 7, Payload: 100}},
	})
	st.AddCommitment(&engine.Commitment{
		ID: 3, Kind: engine.Inbound, WarehouseID: 2,
		Window: engine.Window{Start: date(4), End: date(5)},
		Lines:  []engine.Line{{ProductID: 7, Payload: 1000}},
	})

	sum, err := st.PendingInboundBefore(context.Background(), 1, 7, date(9))
	if err != nil {
		t.Fatalf("PendingInboundBefore() error = %v", err)
	}
	if sum != 10 {
		t.Errorf("sum = %d, want 10", sum)
	}

	// window ending exactly at the instant is not strictly before it
	sum, _ = st.PendingInboundBefore(context.Background(), 1, 7, date(5))
	if sum != 0 {
		t.Errorf("sum = %d at window end, want 0", sum)
	}
}

func TestUnacceptedCounts(t *testing.T) {
	st := New()
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window: engine.Window{Start: date(4), End: date(5)},
	})
	st.AddCommitment(&engine.Commitment{
		ID: 2, Kind: engine.Inbound, WarehouseID: 1, Accepted: true,
		Window: engine.Window{Start: date(4), End: date(5)},
	})
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Outbound, WarehouseID: 1, ShopID: 3,
		Window: engine.Window{Start: date(4), End: date(5)},
	})

	transits, err := st.UnacceptedTransitCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("UnacceptedTransitCount() error = %v", err)
	}
	if transits != 1 {
		t.Errorf("transit count = %d, want 1", transits)
	}

	orders, err := st.UnacceptedOrderCount(context.Background(), 3)
	if err != nil {
		t.Fatalf("UnacceptedOrderCount() error = %v", err)
	}
	if orders != 1 {
		t.Errorf("order count = %d, want 1", orders)
	}
}

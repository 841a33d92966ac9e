package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
)

func TestAcceptInbound(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 100)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window: window(4, 5),
		Lines: []engine.Line{
			{ProductID: 7, Payload: 40}, // existing row, added to
			{ProductID: 8, Payload: 15}, // no row yet, created
		},
	})

	if err := svc.Accept(context.Background(), engine.Inbound, 1); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	row, err := st.GetStockEntry(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetStockEntry(7) error = %v", err)
	}
	if row.Payload != 140 {
		t.Errorf("product 7 payload = %d, want 140", row.Payload)
	}

	row, err = st.GetStockEntry(context.Background(), 1, 8)
	if err != nil {
		t.Fatalf("GetStockEntry(8) error = %v", err)
	}
	if row.Payload != 15 {
		t.Errorf("product 8 payload = %d, want 15", row.Payload)
	}

	c, err := st.GetCommitment(context.Background(), engine.Inbound, 1)
	if err != nil {
		t.Fatalf("GetCommitment() error = %v", err)
	}
	if !c.Accepted {
		t.Error("commitment not marked accepted")
	}
}

func TestAcceptOutbound(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 10)
	st.PutStock(1, 8, 10)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Outbound, WarehouseID: 1, ShopID: 3,
		Window: window(4, 5),
		Lines: []engine.Line{
			{ProductID: 7, Payload: 10}, // exact match, row deleted
			{ProductID: 8, Payload: 4},  // partial, row reduced
		},
	})

	if err := svc.Accept(context.Background(), engine.Outbound, 1); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	if _, err := st.GetStockEntry(context.Background(), 1, 7); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("product 7 row should be deleted, got err = %v", err)
	}

	row, err := st.GetStockEntry(context.Background(), 1, 8)
	if err != nil {
		t.Fatalf("GetStockEntry(8) error = %v", err)
	}
	if row.Payload != 6 {
		t.Errorf("product 8 payload = %d, want 6", row.Payload)
	}
}

func TestAcceptIsTerminal(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 100)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window: window(4, 5),
		Lines:  []engine.Line{{ProductID: 7, Payload: 40}},
	})

	if err := svc.Accept(context.Background(), engine.Inbound, 1); err != nil {
		t.Fatalf("first Accept() error = %v", err)
	}
	if err := svc.Accept(context.Background(), engine.Inbound, 1); err != nil {
		t.Fatalf("second Accept() error = %v, want no-op", err)
	}

	row, err := st.GetStockEntry(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetStockEntry() error = %v", err)
	}
	if row.Payload != 140 {
		t.Errorf("payload = %d after double accept, want 140: acceptance must apply exactly once", row.Payload)
	}
}

func TestAcceptNotFound(t *testing.T) {
	svc, _ := newService()

	err := svc.Accept(context.Background(), engine.Inbound, 404)
	if !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("Accept(missing) error = %v, want ErrNotFound", err)
	}
}

func TestAcceptOutboundIntegrity(t *testing.T) {
	tests := []struct {
		name    string
		ledger  int64 // 0 means no row
		payload int64
	}{
		{"missing stock row", 0, 10},
		{"insufficient stock row", 6, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := newService()
			st.AddWarehouse(1, 1000)
			if tt.ledger > 0 {
				st.PutStock(1, 7, tt.ledger)
			}
			st.AddCommitment(&engine.Commitment{
				ID: 1, Kind: engine.Outbound, WarehouseID: 1, ShopID: 3,
				Window: window(4, 5),
				Lines:  []engine.Line{{ProductID: 7, Payload: tt.payload}},
			})

			err := svc.Accept(context.Background(), engine.Outbound, 1)
			var intErr *engine.IntegrityError
			if !errors.As(err, &intErr) {
				t.Fatalf("Accept() error = %v, want IntegrityError", err)
			}

			// the failed transaction must leave everything untouched
			c, _ := st.GetCommitment(context.Background(), engine.Outbound, 1)
			if c.Accepted {
				t.Error("failed acceptance marked the commitment accepted")
			}
			if tt.ledger > 0 {
				row, err := st.GetStockEntry(context.Background(), 1, 7)
				if err != nil {
					t.Fatalf("GetStockEntry() error = %v", err)
				}
				if row.Payload != tt.ledger {
					t.Errorf("payload = %d after rollback, want %d", row.Payload, tt.ledger)
				}
			}
		})
	}
}

func TestAcceptInboundCapacityRecheck(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 100)
	st.PutStock(1, 7, 80)
	// validated earlier against a different ledger, no longer fits
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window: window(4, 5),
		Lines:  []engine.Line{{ProductID: 7, Payload: 30}},
	})

	err := svc.Accept(context.Background(), engine.Inbound, 1)
	var capErr *engine.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("Accept() error = %v, want CapacityError", err)
	}

	row, err := st.GetStockEntry(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetStockEntry() error = %v", err)
	}
	if row.Payload != 80 {
		t.Errorf("payload = %d after rollback, want 80", row.Payload)
	}
}

func TestAcceptRollsBackPartialMutation(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 50)
	// first line applies cleanly, second line has no ledger row
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Outbound, WarehouseID: 1, ShopID: 3,
		Window: window(4, 5),
		Lines: []engine.Line{
			{ProductID: 7, Payload: 20},
			{ProductID: 8, Payload: 10},
		},
	})

	err := svc.Accept(context.Background(), engine.Outbound, 1)
	var intErr *engine.IntegrityError
	if !errors.As(err, &intErr) {
		t.Fatalf("Accept() error = %v, want IntegrityError", err)
	}

	row, err := st.GetStockEntry(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetStockEntry() error = %v", err)
	}
	if row.Payload != 50 {
		t.Errorf("payload = %d, want 50: first line mutation must be rolled back", row.Payload)
	}
}

func TestAcceptMany(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 100)
	for id := uint(1); id <= 3; id++ {
		st.AddCommitment(&engine.Commitment{
			ID: id, Kind: engine.Inbound, WarehouseID: 1,
			Window: window(4, 5),
			Lines:  []engine.Line{{ProductID: 7, Payload: 10}},
		})
	}

	result := svc.AcceptMany(context.Background(), engine.Inbound, []uint{1, 2, 3})
	if result.Err != nil {
		t.Fatalf("AcceptMany() error = %v", result.Err)
	}
	if len(result.Accepted) != 3 {
		t.Errorf("accepted %d commitments, want 3", len(result.Accepted))
	}

	row, _ := st.GetStockEntry(context.Background(), 1, 7)
	if row.Payload != 130 {
		t.Errorf("payload = %d, want 130", row.Payload)
	}
}

func TestAcceptManyAbortsOnFailure(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 100)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window: window(4, 5),
		Lines:  []engine.Line{{ProductID: 7, Payload: 10}},
	})
	st.AddCommitment(&engine.Commitment{
		ID: 3, Kind: engine.Inbound, WarehouseID: 1,
		Window: window(4, 5),
		Lines:  []engine.Line{{ProductID: 7, Payload: 10}},
	})

	// id 2 does not exist: 1 applies, 2 fails, 3 is never attempted
	result := svc.AcceptMany(context.Background(), engine.Inbound, []uint{1, 2, 3})
	if !errors.Is(result.Err, engine.ErrNotFound) {
		t.Fatalf("AcceptMany() error = %v, want ErrNotFound", result.Err)
	}
	if result.FailedID != 2 {
		t.Errorf("FailedID = %d, want 2", result.FailedID)
	}
	if len(result.Accepted) != 1 || result.Accepted[0] != 1 {
		t.Errorf("Accepted = %v, want [1]", result.Accepted)
	}

	// commitments accepted before the failure stay accepted
	row, _ := st.GetStockEntry(context.Background(), 1, 7)
	if row.Payload != 110 {
		t.Errorf("payload = %d, want 110: prior acceptances are not rolled back", row.Payload)
	}
	c, _ := st.GetCommitment(context.Background(), engine.Inbound, 3)
	if c.Accepted {
		t.Error("commitment 3 accepted, want untouched after abort")
	}
}

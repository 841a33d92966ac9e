package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DmitriyMikhalev/warehouses/internal/engine"
	"github.com/DmitriyMikhalev/warehouses/internal/store/memory"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

func day(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func window(start, end int) engine.Window {
	return engine.Window{Start: day(start), End: day(end)}
}

// newService wires a Service over an empty in-memory store with "now" fixed
// at April 1st and the default 1..90 day scheduling horizon.
func newService() (*engine.Service, *memory.Store) {
	st := memory.New()
	svc := engine.NewService(st, fixedClock{t: day(1)}, engine.Horizon{
		MinOffsetDays: 1,
		MaxOffsetDays: 90,
	})
	return svc, st
}

func TestProjectAvailable(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 100)

	// inbound of 40 landing April 4th, outbound of 25 shipping April 7th
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window: window(4, 5),
		Lines:  []engine.Line{{ProductID: 7, Payload: 40}},
	})
	st.AddCommitment(&engine.Commitment{
		ID: 2, Kind: engine.Outbound, WarehouseID: 1, ShopID: 3,
		Window: window(7, 8),
		Lines:  []engine.Line{{ProductID: 7, Payload: 25}},
	})

	tests := []struct {
		name string
		at   time.Time
		want int64
	}{
		{"before anything completes", day(3), 100},
		{"inbound window not yet ended", day(5), 100},
		{"after inbound completes", day(6), 140},
		{"after both complete", day(9), 115},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ProjectAvailable(context.Background(), 1, 7, tt.at)
			if err != nil {
				t.Fatalf("ProjectAvailable() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ProjectAvailable(at=%s) = %d, want %d", tt.at.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestProjectAvailableNegativeDeficit(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 10)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Outbound, WarehouseID: 1, ShopID: 3,
		Window: window(4, 5),
		Lines:  []engine.Line{{ProductID: 7, Payload: 30}},
	})

	got, err := svc.ProjectAvailable(context.Background(), 1, 7, day(9))
	if err != nil {
		t.Fatalf("ProjectAvailable() error = %v", err)
	}
	if got != -20 {
		t.Errorf("ProjectAvailable() = %d, want -20", got)
	}
}

func TestProjectAvailableIgnoresAccepted(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 100)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window: window(4, 5), Accepted: true,
		Lines: []engine.Line{{ProductID: 7, Payload: 40}},
	})

	got, err := svc.ProjectAvailable(context.Background(), 1, 7, day(9))
	if err != nil {
		t.Fatalf("ProjectAvailable() error = %v", err)
	}
	if got != 100 {
		t.Errorf("ProjectAvailable() = %d, want 100: accepted commitments are already in the ledger", got)
	}
}

func TestVehicleAvailable(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window:     window(10, 12),
		Lines:      []engine.Line{{ProductID: 7, Payload: 5}},
		VehicleIDs: []uint{42},
	})

	tests := []struct {
		name      string
		vehicleID uint
		window    engine.Window
		want      bool
	}{
		{"clear of busy window", 42, window(5, 9), true},
		{"touching start", 42, window(8, 10), false},
		{"inside busy window", 42, window(11, 11), false},
		{"touching end", 42, window(12, 14), false},
		{"after busy window", 42, window(13, 15), true},
		{"other vehicle", 99, window(10, 12), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.VehicleAvailable(context.Background(), tt.vehicleID, tt.window)
			if err != nil {
				t.Fatalf("VehicleAvailable() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("VehicleAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVehicleAvailableIgnoresAccepted(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Outbound, WarehouseID: 1, ShopID: 3,
		Window: window(10, 12), Accepted: true,
		Lines:      []engine.Line{{ProductID: 7, Payload: 5}},
		VehicleIDs: []uint{42},
	})

	got, err := svc.VehicleAvailable(context.Background(), 42, window(10, 12))
	if err != nil {
		t.Fatalf("VehicleAvailable() error = %v", err)
	}
	if !got {
		t.Error("VehicleAvailable() = false, want true: accepted commitments do not block scheduling")
	}
}

func TestCheckCapacity(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 100)
	st.PutStock(1, 7, 60)

	if err := svc.CheckCapacity(context.Background(), 1, 40); err != nil {
		t.Errorf("CheckCapacity(40) error = %v, want nil at exactly the limit", err)
	}

	err := svc.CheckCapacity(context.Background(), 1, 41)
	var capErr *engine.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("CheckCapacity(41) error = %v, want CapacityError", err)
	}
	if capErr.Total != 101 || capErr.Limit != 100 {
		t.Errorf("CapacityError = %+v, want total 101 limit 100", capErr)
	}
	if want := "warehouse 1 cannot fit 101 > 100 tons"; capErr.Error() != want {
		t.Errorf("CapacityError message = %q, want %q", capErr.Error(), want)
	}
}

func TestValidateProposalInbound(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 100)
	st.PutStock(1, 7, 60)

	base := engine.Proposal{
		Kind:        engine.Inbound,
		WarehouseID: 1,
		Window:      window(4, 5),
		Lines:       []engine.Line{{ProductID: 7, Payload: 30}},
	}

	if err := svc.ValidateProposal(context.Background(), base); err != nil {
		t.Errorf("ValidateProposal() error = %v, want nil", err)
	}

	over := base
	over.Lines = []engine.Line{{ProductID: 7, Payload: 30}, {ProductID: 8, Payload: 20}}
	err := svc.ValidateProposal(context.Background(), over)
	var capErr *engine.CapacityError
	if !errors.As(err, &capErr) {
		t.Errorf("ValidateProposal(over capacity) error = %v, want CapacityError", err)
	}
}

func TestValidateProposalOutboundStock(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 50)

	// pending outbound of 30 shipping before the proposal starts
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Outbound, WarehouseID: 1, ShopID: 3,
		Window: window(4, 5),
		Lines:  []engine.Line{{ProductID: 7, Payload: 30}},
	})

	proposal := engine.Proposal{
		Kind:        engine.Outbound,
		WarehouseID: 1,
		ShopID:      3,
		Window:      window(10, 11),
		Lines:       []engine.Line{{ProductID: 7, Payload: 20}},
	}
	if err := svc.ValidateProposal(context.Background(), proposal); err != nil {
		t.Errorf("ValidateProposal() error = %v, want nil at exactly the projection", err)
	}

	proposal.Lines = []engine.Line{{ProductID: 7, Payload: 21}}
	err := svc.ValidateProposal(context.Background(), proposal)
	var stockErr *engine.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("ValidateProposal() error = %v, want StockError", err)
	}
	if stockErr.Required != 21 || stockErr.Available != 20 {
		t.Errorf("StockError = %+v, want required 21 available 20", stockErr)
	}
}

func TestValidateProposalVehicleConflict(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 100)
	st.AddCommitment(&engine.Commitment{
		ID: 1, Kind: engine.Inbound, WarehouseID: 1,
		Window:     window(10, 12),
		Lines:      []engine.Line{{ProductID: 7, Payload: 5}},
		VehicleIDs: []uint{42},
	})

	proposal := engine.Proposal{
		Kind:        engine.Outbound,
		WarehouseID: 1,
		ShopID:      3,
		Window:      window(12, 14),
		Lines:       []engine.Line{{ProductID: 7, Payload: 10}},
		VehicleIDs:  []uint{42},
	}

	err := svc.ValidateProposal(context.Background(), proposal)
	var confErr *engine.ConflictError
	if !errors.As(err, &confErr) {
		t.Fatalf("ValidateProposal() error = %v, want ConflictError", err)
	}
	if confErr.VehicleID != 42 {
		t.Errorf("ConflictError vehicle = %d, want 42", confErr.VehicleID)
	}

	proposal.VehicleIDs = []uint{99}
	if err := svc.ValidateProposal(context.Background(), proposal); err != nil {
		t.Errorf("ValidateProposal(free vehicle) error = %v, want nil", err)
	}
}

func TestValidateProposalShape(t *testing.T) {
	svc, st := newService()
	st.AddWarehouse(1, 1000)
	st.PutStock(1, 7, 100)

	tests := []struct {
		name     string
		mutate   func(p *engine.Proposal)
		wantKind interface{}
	}{
		{
			name:     "inverted window",
			mutate:   func(p *engine.Proposal) { p.Window = window(5, 4) },
			wantKind: &engine.ProposalError{},
		},
		{
			name:     "starts too soon",
			mutate:   func(p *engine.Proposal) { p.Window = engine.Window{Start: day(1), End: day(3)} },
			wantKind: &engine.ProposalError{},
		},
		{
			name: "ends beyond horizon",
			mutate: func(p *engine.Proposal) {
				p.Window = engine.Window{Start: day(4), End: day(1).AddDate(0, 0, 91)}
			},
			wantKind: &engine.ProposalError{},
		},
		{
			name:     "no lines",
			mutate:   func(p *engine.Proposal) { p.Lines = nil },
			wantKind: &engine.ProposalError{},
		},
		{
			name:     "non-positive payload",
			mutate:   func(p *engine.Proposal) { p.Lines = []engine.Line{{ProductID: 7, Payload: 0}} },
			wantKind: &engine.ProposalError{},
		},
		{
			name: "duplicate product",
			mutate: func(p *engine.Proposal) {
				p.Lines = []engine.Line{{ProductID: 7, Payload: 5}, {ProductID: 7, Payload: 3}}
			},
			wantKind: &engine.DuplicateLineError{},
		},
		{
			name:     "duplicate vehicle",
			mutate:   func(p *engine.Proposal) { p.VehicleIDs = []uint{42, 42} },
			wantKind: &engine.DuplicateLineError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := engine.Proposal{
				Kind:        engine.Inbound,
				WarehouseID: 1,
				Window:      window(4, 5),
				Lines:       []engine.Line{{ProductID: 7, Payload: 10}},
			}
			tt.mutate(&p)

			err := svc.ValidateProposal(context.Background(), p)
			if err == nil {
				t.Fatal("ValidateProposal() error = nil, want validation error")
			}
			if !engine.IsValidation(err) {
				t.Errorf("IsValidation(%v) = false, want true", err)
			}
			switch tt.wantKind.(type) {
			case *engine.ProposalError:
				var e *engine.ProposalError
				if !errors.As(err, &e) {
					t.Errorf("error = %v, want ProposalError", err)
				}
			case *engine.DuplicateLineError:
				var e *engine.DuplicateLineError
				if !errors.As(err, &e) {
					t.Errorf("error = %v, want DuplicateLineError", err)
				}
			}
		})
	}
}

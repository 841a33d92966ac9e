package engine

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowValidate(t *testing.T) {
	tests := []struct {
		name    string
		window  Window
		wantErr bool
	}{
		{"end after start", Window{Start: day(4), End: day(5)}, false},
		{"end equals start", Window{Start: day(4), End: day(4)}, true},
		{"end before start", Window{Start: day(5), End: day(4)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.window.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWindowOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{
			name: "disjoint before",
			a:    Window{Start: day(1), End: day(3)},
			b:    Window{Start: day(5), End: day(7)},
			want: false,
		},
		{
			name: "disjoint after",
			a:    Window{Start: day(10), End: day(12)},
			b:    Window{Start: day(5), End: day(7)},
			want: false,
		},
		{
			name: "touching endpoints overlap",
			a:    Window{Start: day(1), End: day(5)},
			b:    Window{Start: day(5), End: day(9)},
			want: true,
		},
		{
			name: "partial overlap",
			a:    Window{Start: day(1), End: day(6)},
			b:    Window{Start: day(5), End: day(9)},
			want: true,
		},
		{
			name: "containment",
			a:    Window{Start: day(1), End: day(10)},
			b:    Window{Start: day(4), End: day(5)},
			want: true,
		},
		{
			name: "identical",
			a:    Window{Start: day(4), End: day(5)},
			b:    Window{Start: day(4), End: day(5)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// overlap is symmetric
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: day(4), End: day(8)}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before start", day(3), false},
		{"at start", day(4), true},
		{"inside", day(6), true},
		{"at end", day(8), true},
		{"after end", day(9), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.at.Format(time.RFC3339), got, tt.want)
			}
		})
	}
}

package engine

import (
	"fmt"
	"time"
)

// Window is a closed time interval claimed by a commitment
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that the window is well-formed
func (w Window) Validate() error {
	if !w.End.After(w.Start) {
		return fmt.Errorf("window end %s must be after start %s",
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether two closed intervals intersect. Ranges are
// disjoint only when one ends strictly before the other starts; touching
// endpoints count as overlapping.
func (w Window) Overlaps(other Window) bool {
	return !(w.End.Before(other.Start) || w.Start.After(other.End))
}

// Contains reports whether the instant t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

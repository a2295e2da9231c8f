package metadata

import "github.com/jmurray2011/sumoknife/internal/sumo"

// Provenance records where a collection was loaded from.
type Provenance int

const (
	NotLoaded Provenance = iota
	FromCache
	FromNetwork
)

// String returns the provenance name.
func (p Provenance) String() string {
	switch p {
	case FromCache:
		return "cache"
	case FromNetwork:
		return "network"
	default:
		return "not loaded"
	}
}

// Collection is an ordered set of rows of one kind.
// It is not modified after the sync pass that stored it.
type Collection struct {
	Kind       Kind
	Rows       []sumo.Row
	Provenance Provenance

	// Err is set when loading ended on a terminal error; Rows is then empty.
	Err error
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Rows)
}

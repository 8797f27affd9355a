package store

import "time"

// Clock supplies row timestamps. The graph store stamps every appended
// row from a Clock so tests can substitute a deterministic one.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall-clock Clock used by default.
func SystemClock() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

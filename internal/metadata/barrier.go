package metadata

// Barrier opens once every expected kind has reported exactly once.
// It is driven from a single goroutine and holds no lock.
type Barrier struct {
	expected int
	seen     map[Kind]struct{}
	done     chan struct{}
}

// NewBarrier creates a barrier waiting for expected distinct signals.
func NewBarrier(expected int) *Barrier {
	b := &Barrier{
		expected: expected,
		seen:     make(map[Kind]struct{}, expected),
		done:     make(chan struct{}),
	}
	if expected <= 0 {
		close(b.done)
	}
	return b
}

// Signal records that kind k completed. It returns true only for the
// signal that closes the barrier. Repeated signals for a kind are ignored.
func (b *Barrier) Signal(k Kind) bool {
	if b.Closed() {
		return false
	}
	if _, dup := b.seen[k]; dup {
		return false
	}
	b.seen[k] = struct{}{}
	if len(b.seen) == b.expected {
		close(b.done)
		return true
	}
	return false
}

// Count returns the number of distinct kinds seen.
func (b *Barrier) Count() int { return len(b.seen) }

// Closed reports whether the barrier opened.
func (b *Barrier) Closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Done is closed when the barrier opens.
func (b *Barrier) Done() <-chan struct{} { return b.done }

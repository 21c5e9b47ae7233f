package state

import "scroll_feed/internal/domain"

// Slice is the lifecycle state of one independently fetched collection.
// Items and Err describe the last completed request; Loading reports whether
// a newer one is outstanding.
type Slice[T any] struct {
	Items   []T
	Loading bool
	Err     error
}

// Status is the render state of a slice.
type Status int

const (
	StatusLoading Status = iota
	StatusFailed
	StatusEmpty
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusFailed:
		return "failed"
	case StatusEmpty:
		return "empty"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Status maps the slice to exactly one render state. Loading wins over
// stale items kept visible during a reload.
func (s Slice[T]) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Err != nil:
		return StatusFailed
	case len(s.Items) == 0:
		return StatusEmpty
	default:
		return StatusReady
	}
}

// State is the whole client state tree.
type State struct {
	Tags     Slice[domain.Tag]
	Articles Slice[domain.Article]

	// Seq counts reduced actions, starting at zero for the initial state.
	Seq uint64
}

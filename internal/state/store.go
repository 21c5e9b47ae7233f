package state

import (
	"context"
	"log/slog"
	"sync"
)

// Listener observes every reduced action together with the resulting state.
type Listener func(State, Action)

// Effect reacts to requests after they have been reduced. Handle runs while
// the store is locked: it must not block and must not dispatch synchronously.
// Results are delivered later through out.
type Effect interface {
	Handle(req Request, out Emitter)
}

// Emitter feeds terminal actions back into the store.
type Emitter interface {
	// Emit reduces a when current reports true. current is evaluated under
	// the store lock, atomically with the reduction. It reports whether a
	// was applied.
	Emit(a Terminal, current func() bool) bool
}

type notification struct {
	state  State
	action Action
}

// Store holds the client state tree. State changes only through Dispatch
// and through the Emitter passed to effects.
type Store struct {
	mu        sync.Mutex
	state     State
	effects   []Effect
	listeners map[int]Listener
	nextID    int

	pending  []notification
	draining bool

	logger *slog.Logger
}

// New creates a store with the zero initial state.
func New(logger *slog.Logger, effects ...Effect) *Store {
	return &Store{
		effects:   effects,
		listeners: make(map[int]Listener),
		logger:    logger.With("component", "store"),
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces req, then hands it to every effect.
func (s *Store) Dispatch(req Request) {
	s.mu.Lock()
	s.reduceLocked(req)
	for _, e := range s.effects {
		e.Handle(req, emitter{s})
	}
	s.drainLocked()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// WaitFor blocks until pred holds for the current state or ctx is done.
func (s *Store) WaitFor(ctx context.Context, pred func(State) bool) (State, error) {
	ch := make(chan State, 1)
	unsubscribe := s.Subscribe(func(st State, _ Action) {
		if pred(st) {
			select {
			case ch <- st:
			default:
			}
		}
	})
	defer unsubscribe()

	if st := s.State(); pred(st) {
		return st, nil
	}

	select {
	case st := <-ch:
		return st, nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

func (s *Store) emit(a Terminal, current func() bool) bool {
	s.mu.Lock()
	if current != nil && !current() {
		s.mu.Unlock()
		return false
	}
	s.reduceLocked(a)
	s.drainLocked()
	return true
}

func (s *Store) reduceLocked(a Action) {
	s.state = Reduce(s.state, a)
	s.pending = append(s.pending, notification{state: s.state, action: a})
	s.logger.Debug("reduced action", "kind", a.Kind(), "seq", s.state.Seq)
}

// drainLocked delivers queued notifications in reduction order and unlocks
// the store. Only one goroutine drains at a time; the others just enqueue,
// so a listener may call Dispatch without deadlocking.
func (s *Store) drainLocked() {
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for len(s.pending) > 0 {
		n := s.pending[0]
		s.pending = s.pending[1:]

		listeners := make([]Listener, 0, len(s.listeners))
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}

		s.mu.Unlock()
		for _, l := range listeners {
			l(n.state, n.action)
		}
		s.mu.Lock()
	}

	s.draining = false
	s.mu.Unlock()
}

type emitter struct {
	s *Store
}

func (e emitter) Emit(a Terminal, current func() bool) bool {
	return e.s.emit(a, current)
}

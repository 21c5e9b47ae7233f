// Package preference holds the transient topic and reading-time selection
// made before a feed is requested.
package preference

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"scroll_feed/internal/domain"
	"scroll_feed/internal/state"
)

const (
	MaxTopics          = 3
	MinReadingTime     = 2
	MaxReadingTime     = 8
	DefaultReadingTime = 5
)

// DefaultTopics is the topic palette offered when the tag collection has not
// been loaded.
var DefaultTopics = []string{
	"Technology", "Science", "Health", "Business", "Culture",
	"Politics", "Sports", "Travel", "Food", "Art",
}

// ToggleResult reports what ToggleTopic did.
type ToggleResult int

const (
	Ignored ToggleResult = iota
	Added
	Removed
	LimitReached
)

func (r ToggleResult) String() string {
	switch r {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case LimitReached:
		return "limit reached"
	default:
		return "ignored"
	}
}

// Dispatcher accepts request actions.
type Dispatcher interface {
	Dispatch(req state.Request)
}

// Selection is a snapshot of the controller state.
type Selection struct {
	Topics      []string
	ReadingTime int
}

// Controller is the state machine behind the preference view.
type Controller struct {
	dispatcher         Dispatcher
	defaultReadingTime int

	mu          sync.Mutex
	topics      []string
	readingTime int
}

// NewController creates a controller with no topics and the given default
// reading time, clamped into range. Zero means DefaultReadingTime.
func NewController(dispatcher Dispatcher, defaultReadingTime int) *Controller {
	if defaultReadingTime == 0 {
		defaultReadingTime = DefaultReadingTime
	}
	defaultReadingTime = clamp(defaultReadingTime)

	return &Controller{
		dispatcher:         dispatcher,
		defaultReadingTime: defaultReadingTime,
		readingTime:        defaultReadingTime,
	}
}

// ToggleTopic removes topic if selected, otherwise adds it. Adding a fourth
// topic is rejected with domain.ErrSelectionLimitExceeded and leaves the
// selection unchanged.
func (c *Controller) ToggleTopic(topic string) (ToggleResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Ignored, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := slices.Index(c.topics, topic); i >= 0 {
		c.topics = slices.Delete(c.topics, i, i+1)
		return Removed, nil
	}

	if len(c.topics) >= MaxTopics {
		return LimitReached, fmt.Errorf("add %q: %w", topic, domain.ErrSelectionLimitExceeded)
	}

	c.topics = append(c.topics, topic)
	return Added, nil
}

// SetReadingTime stores minutes clamped to [MinReadingTime, MaxReadingTime]
// and returns the stored value.
func (c *Controller) SetReadingTime(minutes int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.readingTime = clamp(minutes)
	return c.readingTime
}

// Submit dispatches one FetchArticles carrying a snapshot of the selection.
// With no topics selected nothing is dispatched.
func (c *Controller) Submit() (state.FetchArticles, error) {
	c.mu.Lock()
	if len(c.topics) == 0 {
		c.mu.Unlock()
		return state.FetchArticles{}, &domain.ValidationError{
			Field:   "topics",
			Message: "select at least one topic",
		}
	}
	req := state.FetchArticles{
		SelectedTags: slices.Clone(c.topics),
		ReadingTime:  c.readingTime,
	}
	c.mu.Unlock()

	c.dispatcher.Dispatch(req)
	return req, nil
}

// Selection returns a copy of the current selection.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Selection{
		Topics:      slices.Clone(c.topics),
		ReadingTime: c.readingTime,
	}
}

func (c *Controller) IsSelected(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.topics, topic)
}

// Reset clears the topics and restores the reading time the controller was
// created with.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.topics = nil
	c.readingTime = c.defaultReadingTime
}

func clamp(minutes int) int {
	return min(max(minutes, MinReadingTime), MaxReadingTime)
}

package epic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"scroll_feed/internal/state"
)

const (
	sliceTags     = "tags"
	sliceArticles = "articles"
)

// lane tracks the latest request of one slice.
type lane struct {
	name   string
	gen    uint64
	cancel context.CancelFunc
}

// Processor performs the fetch behind every request and emits exactly one
// terminal action for it. Requests for the same slice follow switch-latest:
// a newer request cancels the in-flight one and its result is dropped.
type Processor struct {
	gateway Gateway
	metrics *Metrics
	logger  *slog.Logger

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	tags     lane
	articles lane
}

var _ state.Effect = (*Processor)(nil)

func NewProcessor(gateway Gateway, metrics *Metrics, logger *slog.Logger) *Processor {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	ctx, stop := context.WithCancel(context.Background())

	return &Processor{
		gateway:  gateway,
		metrics:  metrics,
		logger:   logger.With("component", "epic"),
		ctx:      ctx,
		stop:     stop,
		tags:     lane{name: sliceTags},
		articles: lane{name: sliceArticles},
	}
}

// Handle starts the fetch for req. It never blocks.
func (p *Processor) Handle(req state.Request, out state.Emitter) {
	switch r := req.(type) {
	case state.FetchTags:
		p.start(&p.tags, out, func(ctx context.Context) state.Terminal {
			tags, err := p.gateway.GetTags(ctx)
			if err != nil {
				return state.FetchTagsFailure{Err: err}
			}
			return state.FetchTagsSuccess{Tags: tags}
		}, func(err error) state.Terminal {
			return state.FetchTagsFailure{Err: err}
		})

	case state.FetchArticles:
		selected := append([]string(nil), r.SelectedTags...)
		readingTime := r.ReadingTime

		p.start(&p.articles, out, func(ctx context.Context) state.Terminal {
			articles, err := p.gateway.GetArticles(ctx, readingTime)
			if err != nil {
				return state.FetchArticlesFailure{Err: err}
			}
			return state.FetchArticlesSuccess{Articles: FilterByTags(articles, selected)}
		}, func(err error) state.Terminal {
			return state.FetchArticlesFailure{Err: err}
		})

	default:
		p.logger.Warn("no effect for request", "kind", req.Kind())
	}
}

// Close cancels all in-flight fetches, discards their results and waits for
// their goroutines to exit.
func (p *Processor) Close() {
	p.mu.Lock()
	p.tags.gen++
	p.articles.gen++
	p.mu.Unlock()

	p.stop()
	p.wg.Wait()
}

func (p *Processor) start(
	l *lane,
	out state.Emitter,
	fetch func(ctx context.Context) state.Terminal,
	fail func(err error) state.Terminal,
) {
	p.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		p.metrics.Superseded.WithLabelValues(l.name).Inc()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(p.ctx)
	l.cancel = cancel
	p.mu.Unlock()

	logger := p.logger.With("slice", l.name, "request_id", uuid.NewString(), "generation", gen)
	logger.Debug("fetch started")

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		started := time.Now()
		result := p.run(ctx, fetch, fail)
		p.metrics.FetchDuration.WithLabelValues(l.name).Observe(time.Since(started).Seconds())

		// A current result retires its lane in the same step, so a later
		// request does not count it as superseded.
		applied := out.Emit(result, func() bool {
			p.mu.Lock()
			defer p.mu.Unlock()
			if l.gen != gen {
				return false
			}
			l.cancel = nil
			return true
		})

		if !applied {
			p.metrics.Requests.WithLabelValues(l.name, outcomeDiscarded).Inc()
			logger.Debug("discarded superseded result", "kind", result.Kind())
			return
		}

		switch r := result.(type) {
		case state.FetchTagsFailure:
			p.metrics.Requests.WithLabelValues(l.name, outcomeFailure).Inc()
			logger.Warn("fetch failed", "error", r.Err)
		case state.FetchArticlesFailure:
			p.metrics.Requests.WithLabelValues(l.name, outcomeFailure).Inc()
			logger.Warn("fetch failed", "error", r.Err)
		default:
			p.metrics.Requests.WithLabelValues(l.name, outcomeSuccess).Inc()
			logger.Debug("fetch completed", "kind", result.Kind())
		}
	}()
}

// run converts a panic in fetch into a failure so the processor keeps
// serving later requests.
func (p *Processor) run(
	ctx context.Context,
	fetch func(ctx context.Context) state.Terminal,
	fail func(err error) state.Terminal,
) (result state.Terminal) {
	defer func() {
		if r := recover(); r != nil {
			result = fail(fmt.Errorf("fetch panicked: %v", r))
		}
	}()
	return fetch(ctx)
}

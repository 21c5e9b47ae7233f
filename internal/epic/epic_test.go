package epic

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"scroll_feed/internal/domain"
	"scroll_feed/internal/epic/mocks"
	"scroll_feed/internal/gateway"
	"scroll_feed/internal/state"
)

type ProcessorTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	gateway   *mocks.MockGateway
	metrics   *Metrics
	processor *Processor
	store     *state.Store
	logger    *slog.Logger
}

func (s *ProcessorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.gateway = mocks.NewMockGateway(s.ctrl)
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.processor = NewProcessor(s.gateway, s.metrics, s.logger)
	s.store = state.New(s.logger, s.processor)
}

func (s *ProcessorTestSuite) TearDownTest() {
	s.processor.Close()
	s.ctrl.Finish()
}

func TestProcessorTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

func (s *ProcessorTestSuite) waitArticles() state.State {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := s.store.WaitFor(ctx, func(st state.State) bool { return !st.Articles.Loading })
	s.Require().NoError(err)
	return st
}

func (s *ProcessorTestSuite) waitTags() state.State {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := s.store.WaitFor(ctx, func(st state.State) bool { return !st.Tags.Loading })
	s.Require().NoError(err)
	return st
}

func (s *ProcessorTestSuite) TestArticles_FiltersByAllSelectedTags() {
	s.gateway.EXPECT().GetArticles(gomock.Any(), 5).Return([]domain.Article{
		{ID: "1", ReadingTime: 3, Tags: []string{"Science", "Health"}},
		{ID: "2", ReadingTime: 4, Tags: []string{"Business"}},
	}, nil)

	s.store.Dispatch(state.FetchArticles{SelectedTags: []string{"Science"}, ReadingTime: 5})
	st := s.waitArticles()

	s.NoError(st.Articles.Err)
	s.Require().Len(st.Articles.Items, 1)
	s.Equal("1", st.Articles.Items[0].ID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues(sliceArticles, outcomeSuccess)))
}

func (s *ProcessorTestSuite) TestArticles_EmptySelectionSkipsFilter() {
	all := []domain.Article{
		{ID: "1", ReadingTime: 3, Tags: []string{"Science"}},
		{ID: "2", ReadingTime: 4},
	}
	s.gateway.EXPECT().GetArticles(gomock.Any(), 4).Return(all, nil)

	s.store.Dispatch(state.FetchArticles{ReadingTime: 4})
	st := s.waitArticles()

	s.Equal(all, st.Articles.Items)
}

func (s *ProcessorTestSuite) TestArticles_NoMatchesIsSuccess() {
	s.gateway.EXPECT().GetArticles(gomock.Any(), 2).Return([]domain.Article{
		{ID: "2", ReadingTime: 2, Tags: []string{"Business"}},
	}, nil)

	s.store.Dispatch(state.FetchArticles{SelectedTags: []string{"Art"}, ReadingTime: 2})
	st := s.waitArticles()

	s.NoError(st.Articles.Err)
	s.Equal(state.StatusEmpty, st.Articles.Status())
}

func (s *ProcessorTestSuite) TestArticles_SupersededResultIsDiscarded() {
	releaseA := make(chan struct{})
	startedA := make(chan struct{})

	s.gateway.EXPECT().GetArticles(gomock.Any(), 5).DoAndReturn(
		func(ctx context.Context, _ int) ([]domain.Article, error) {
			close(startedA)
			<-releaseA
			return []domain.Article{{ID: "a", ReadingTime: 5, Tags: []string{"Science"}}}, nil
		},
	)
	s.gateway.EXPECT().GetArticles(gomock.Any(), 3).Return([]domain.Article{
		{ID: "b", ReadingTime: 3, Tags: []string{"Art"}},
		{ID: "c", ReadingTime: 2, Tags: []string{"Food"}},
	}, nil)

	s.store.Dispatch(state.FetchArticles{SelectedTags: []string{"Science"}, ReadingTime: 5})
	<-startedA
	s.store.Dispatch(state.FetchArticles{SelectedTags: []string{"Art"}, ReadingTime: 3})

	st := s.waitArticles()
	s.Require().Len(st.Articles.Items, 1)
	s.Equal("b", st.Articles.Items[0].ID)

	close(releaseA)
	s.processor.Close()

	final := s.store.State()
	s.Equal(st.Seq, final.Seq, "stale result never reached the reducer")
	s.Equal("b", final.Articles.Items[0].ID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Superseded.WithLabelValues(sliceArticles)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues(sliceArticles, outcomeDiscarded)))
}

func (s *ProcessorTestSuite) TestArticles_SupersededFetchIsCancelled() {
	cancelled := make(chan struct{})

	s.gateway.EXPECT().GetArticles(gomock.Any(), 8).DoAndReturn(
		func(ctx context.Context, _ int) ([]domain.Article, error) {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		},
	)
	s.gateway.EXPECT().GetArticles(gomock.Any(), 6).Return(nil, nil)

	s.store.Dispatch(state.FetchArticles{ReadingTime: 8})
	s.store.Dispatch(state.FetchArticles{ReadingTime: 6})

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		s.Fail("first fetch was not cancelled")
	}

	st := s.waitArticles()
	s.NoError(st.Articles.Err, "cancellation of the old fetch is not a failure")
}

func (s *ProcessorTestSuite) TestTags_ServerErrorEndsInFailure() {
	netErr := &domain.NetworkError{Op: "get tags", URL: "/tags", StatusCode: 500}
	s.gateway.EXPECT().GetTags(gomock.Any()).Return(nil, netErr)

	s.store.Dispatch(state.FetchTags{})
	st := s.waitTags()

	s.False(st.Tags.Loading)
	s.Empty(st.Tags.Items)
	s.ErrorAs(st.Tags.Err, &netErr)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues(sliceTags, outcomeFailure)))
}

func (s *ProcessorTestSuite) TestFailureDoesNotHaltLaterRequests() {
	gomock.InOrder(
		s.gateway.EXPECT().GetTags(gomock.Any()).Return(nil, errors.New("down")),
		s.gateway.EXPECT().GetTags(gomock.Any()).Return([]string{"Art", "Food"}, nil),
	)

	s.store.Dispatch(state.FetchTags{})
	st := s.waitTags()
	s.Error(st.Tags.Err)

	s.store.Dispatch(state.FetchTags{})
	st = s.waitTags()
	s.NoError(st.Tags.Err)
	s.Equal([]string{"Art", "Food"}, st.Tags.Items)
}

func (s *ProcessorTestSuite) TestPanicBecomesFailure() {
	s.gateway.EXPECT().GetArticles(gomock.Any(), 5).DoAndReturn(
		func(context.Context, int) ([]domain.Article, error) {
			panic("decoder exploded")
		},
	)

	s.store.Dispatch(state.FetchArticles{ReadingTime: 5})
	st := s.waitArticles()

	s.ErrorContains(st.Articles.Err, "decoder exploded")
}

func (s *ProcessorTestSuite) TestIdenticalRequestsAreIdempotent() {
	articles := []domain.Article{
		{ID: "1", ReadingTime: 3, Tags: []string{"Science", "Health"}},
		{ID: "2", ReadingTime: 4, Tags: []string{"Science"}},
	}
	s.gateway.EXPECT().GetArticles(gomock.Any(), 5).Return(articles, nil).Times(2)

	req := state.FetchArticles{SelectedTags: []string{"Science"}, ReadingTime: 5}

	s.store.Dispatch(req)
	first := s.waitArticles()
	s.store.Dispatch(req)
	second := s.waitArticles()

	s.Equal(first.Articles.Items, second.Articles.Items)
}

func (s *ProcessorTestSuite) TestSlicesDoNotSupersedeEachOther() {
	release := make(chan struct{})
	s.gateway.EXPECT().GetTags(gomock.Any()).DoAndReturn(
		func(context.Context) ([]string, error) {
			<-release
			return []string{"Art"}, nil
		},
	)
	s.gateway.EXPECT().GetArticles(gomock.Any(), 5).Return(nil, nil)

	s.store.Dispatch(state.FetchTags{})
	s.store.Dispatch(state.FetchArticles{ReadingTime: 5})
	s.waitArticles()
	close(release)

	st := s.waitTags()
	s.Equal([]string{"Art"}, st.Tags.Items)
	s.Equal(0.0, testutil.ToFloat64(s.metrics.Superseded.WithLabelValues(sliceTags)))
}

// The last dispatched request decides the final state whatever order the
// responses arrive in.
func (s *ProcessorTestSuite) TestSwitchLatest_RandomCompletionOrder() {
	const n = 8
	release := make([]chan struct{}, n)
	for i := range release {
		release[i] = make(chan struct{})
	}

	for i := 0; i < n; i++ {
		readingTime := i + 1
		ch := release[i]
		s.gateway.EXPECT().GetArticles(gomock.Any(), readingTime).DoAndReturn(
			func(context.Context, int) ([]domain.Article, error) {
				<-ch
				return []domain.Article{{ID: "req", ReadingTime: readingTime}}, nil
			},
		)
	}

	for i := 0; i < n; i++ {
		s.store.Dispatch(state.FetchArticles{ReadingTime: i + 1})
	}

	for _, i := range rand.New(rand.NewSource(7)).Perm(n) {
		close(release[i])
	}

	s.waitArticles()
	s.processor.Close()
	st := s.store.State()

	s.False(st.Articles.Loading)
	s.Require().Len(st.Articles.Items, 1)
	s.Equal(n, st.Articles.Items[0].ReadingTime)
}

func TestProcessor_FilteringLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	topics := []string{"Technology", "Science", "Health", "Business", "Art"}

	var catalog []domain.Article
	for i := 0; i < 60; i++ {
		var tags []string
		for _, topic := range topics {
			if rng.Intn(2) == 0 {
				tags = append(tags, topic)
			}
		}
		catalog = append(catalog, domain.Article{
			ID:          string(rune('a' + i%26)),
			ReadingTime: 1 + rng.Intn(10),
			Tags:        tags,
		})
	}

	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().GetArticles(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, maxReadingTime int) ([]domain.Article, error) {
			var out []domain.Article
			for _, a := range catalog {
				if a.ReadingTime <= maxReadingTime {
					out = append(out, a)
				}
			}
			return out, nil
		},
	).AnyTimes()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	processor := NewProcessor(gw, nil, logger)
	defer processor.Close()
	store := state.New(logger, processor)

	for round := 0; round < 30; round++ {
		readingTime := 2 + rng.Intn(7)
		var selected []string
		for _, i := range rng.Perm(len(topics))[:rng.Intn(4)] {
			selected = append(selected, topics[i])
		}

		store.Dispatch(state.FetchArticles{SelectedTags: selected, ReadingTime: readingTime})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		st, err := store.WaitFor(ctx, func(st state.State) bool { return !st.Articles.Loading })
		cancel()
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}

		for _, a := range st.Articles.Items {
			if a.ReadingTime > readingTime {
				t.Fatalf("round %d: article reading time %d exceeds %d", round, a.ReadingTime, readingTime)
			}
			if !a.HasAllTags(selected) {
				t.Fatalf("round %d: article tags %v miss selection %v", round, a.Tags, selected)
			}
		}
	}
}

func TestProcessor_TagsServerErrorEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	gw := gateway.New(gateway.Config{BaseURL: srv.URL, Timeout: time.Second, MaxAttempts: 1}, logger)
	processor := NewProcessor(gw, nil, logger)
	defer processor.Close()
	store := state.New(logger, processor)

	store.Dispatch(state.FetchTags{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := store.WaitFor(ctx, func(st state.State) bool { return !st.Tags.Loading })
	if err != nil {
		t.Fatal(err)
	}

	var netErr *domain.NetworkError
	if !errors.As(st.Tags.Err, &netErr) || netErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected NetworkError with status 500, got %v", st.Tags.Err)
	}
	if len(st.Tags.Items) != 0 {
		t.Fatalf("expected no tags, got %v", st.Tags.Items)
	}
}

func (s *ProcessorTestSuite) TestCompletedFetchIsNotCountedAsSuperseded() {
	s.gateway.EXPECT().GetArticles(gomock.Any(), 5).Return([]domain.Article{{ID: "1", ReadingTime: 3}}, nil).Times(2)

	// Listeners run before the emitting goroutine regains control, so this
	// dispatch lands right after the first result is applied.
	var redispatched bool
	unsubscribe := s.store.Subscribe(func(st state.State, a state.Action) {
		if a.Kind() == state.KindFetchArticlesSuccess && !redispatched {
			redispatched = true
			s.store.Dispatch(state.FetchArticles{ReadingTime: 5})
		}
	})
	defer unsubscribe()

	s.store.Dispatch(state.FetchArticles{ReadingTime: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.store.WaitFor(ctx, func(st state.State) bool { return st.Seq == 4 })
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return testutil.ToFloat64(s.metrics.Requests.WithLabelValues(sliceArticles, outcomeSuccess)) == 2
	}, time.Second, 5*time.Millisecond)
	s.Equal(0.0, testutil.ToFloat64(s.metrics.Superseded.WithLabelValues(sliceArticles)))
}

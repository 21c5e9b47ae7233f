package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scroll_feed/internal/domain"
)

// Config holds gateway configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Gateway reads tags and articles from the article resource over HTTP.
type Gateway struct {
	httpClient     *http.Client
	baseURL        string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a new Gateway.
func New(cfg Config, logger *slog.Logger) *Gateway {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Gateway{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "gateway"),
	}
}

// GetTags fetches the tag collection.
func (g *Gateway) GetTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := g.get(ctx, "get tags", g.baseURL+"/tags", &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetArticles fetches every article whose reading time is at most maxReadingTime.
func (g *Gateway) GetArticles(ctx context.Context, maxReadingTime int) ([]domain.Article, error) {
	u := fmt.Sprintf("%s/articles?readingTime_lte=%d", g.baseURL, maxReadingTime)

	var raw []domain.Article
	if err := g.get(ctx, "get articles", u, &raw); err != nil {
		return nil, err
	}

	return g.keepValid(raw), nil
}

// GetArticle fetches a single article. A missing article yields domain.ErrNotFound.
func (g *Gateway) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	u := g.baseURL + "/articles/" + url.PathEscape(id)

	var article domain.Article
	err := g.get(ctx, "get article", u, &article)

	var netErr *domain.NetworkError
	if errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := article.Validate(); err != nil {
		return nil, &domain.NetworkError{Op: "get article", URL: u, Err: err}
	}

	return &article, nil
}

func (g *Gateway) get(ctx context.Context, op, u string, out any) error {
	var err error

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		err = g.doRequest(ctx, u, out)
		if err == nil {
			return nil
		}

		if attempt == g.maxAttempts || !retryable(ctx, err) {
			break
		}

		backoff := g.calculateBackoff(attempt)
		g.logger.Warn("request failed, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return &domain.NetworkError{Op: op, URL: u, Err: ctx.Err()}
		case <-time.After(backoff):
		}
	}

	var status statusError
	if errors.As(err, &status) {
		return &domain.NetworkError{Op: op, URL: u, StatusCode: int(status), Err: err}
	}
	return &domain.NetworkError{Op: op, URL: u, Err: err}
}

type statusError int

func (s statusError) Error() string {
	return "unexpected status: " + strconv.Itoa(int(s))
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var status statusError
	if errors.As(err, &status) {
		return status >= 500
	}
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return !errors.As(err, &syntax) && !errors.As(err, &typ)
}

func (g *Gateway) doRequest(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ScrollFeed/1.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (g *Gateway) calculateBackoff(attempt int) time.Duration {
	backoff := g.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if g.maxBackoff > 0 && backoff > g.maxBackoff {
		backoff = g.maxBackoff
	}
	return backoff
}

func (g *Gateway) keepValid(raw []domain.Article) []domain.Article {
	articles := make([]domain.Article, 0, len(raw))

	for _, a := range raw {
		if err := a.Validate(); err != nil {
			g.logger.Warn("skipping invalid article",
				"id", a.ID,
				"error", err,
			)
			continue
		}
		articles = append(articles, a)
	}

	return articles
}

// Package seats looks up live enrollment counts for a course.
package seats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Errors returned by Lookup.
var (
	ErrMissingParams = errors.New("missing required query parameters")
	ErrUnavailable   = errors.New("seat counts unavailable")
	ErrNotFound      = errors.New("course not found at the registrar")
)

// DefaultTTL is how long a looked-up status is served from cache.
const DefaultTTL = 10 * time.Minute

// Query identifies one course offering.
type Query struct {
	Year       string
	Term       string
	Department string
	Code       string
	Name       string // informational only, not part of the cache key
}

// Key returns the cache key for q.
func (q Query) Key() string {
	return fmt.Sprintf("course:%s:%s:%s:%s", q.Year, q.Term, q.Department, q.Code)
}

// Validate reports ErrMissingParams when an identifying field is empty.
func (q Query) Validate() error {
	if q.Year == "" || q.Term == "" || q.Department == "" || q.Code == "" {
		return ErrMissingParams
	}
	return nil
}

// Status is the live enrollment state. Values are passed through as the
// registrar reports them.
type Status struct {
	Confirmed   string `json:"confirmed"`
	OnlineCount string `json:"online_count"`
	Remaining   string `json:"remaining"`
}

// Source fetches a status without caching.
type Source interface {
	Fetch(ctx context.Context, q Query) (Status, error)
}

// Client serves statuses from a TTL cache in front of a Source. Concurrent
// lookups of the same course share one fetch.
type Client struct {
	source Source
	cache  *cache.Cache
	group  singleflight.Group
	logger *zap.Logger
}

// NewClient wraps source with a cache of the given TTL (DefaultTTL when zero).
func NewClient(source Source, ttl time.Duration, logger *zap.Logger) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Lookup returns the status for q.
func (c *Client) Lookup(ctx context.Context, q Query) (Status, error) {
	if err := q.Validate(); err != nil {
		return Status{}, err
	}
	key := q.Key()

	if v, ok := c.cache.Get(key); ok {
		c.logger.Debug("seat cache hit", zap.String("key", key))
		return v.(Status), nil
	}

	// The fetch outlives any single caller; each caller waits on its own ctx.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.cache.Get(key); ok {
			return v.(Status), nil
		}
		c.logger.Info("fetching seat counts", zap.String("key", key))
		st, err := c.source.Fetch(fetchCtx, q)
		if err != nil {
			return Status{}, err
		}
		c.cache.SetDefault(key, st)
		return st, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return Status{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
	if err := res.Err; err != nil {
		c.logger.Warn("seat lookup failed", zap.String("key", key), zap.Bool("shared", res.Shared), zap.Error(err))
		if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
			return Status{}, err
		}
		return Status{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return res.Val.(Status), nil
}

// Forget drops any cached status for q.
func (c *Client) Forget(q Query) {
	c.cache.Delete(q.Key())
}

// HTTPSource fetches statuses from the course-update endpoint of a backend.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns a Source for the backend at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements Source. A 404 yields ErrNotFound; any other non-200
// response or an error field in the body yields ErrUnavailable.
func (h *HTTPSource) Fetch(ctx context.Context, q Query) (Status, error) {
	params := url.Values{}
	params.Set("year", q.Year)
	params.Set("helf", q.Term)
	params.Set("sclass", q.Department)
	params.Set("cono", q.Code)
	if q.Name != "" {
		params.Set("coname", q.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/course-update?"+params.Encode(), nil)
	if err != nil {
		return Status{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Status{}, fmt.Errorf("%w: reading response: %w", ErrUnavailable, err)
	}

	var payload struct {
		Status
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return Status{}, fmt.Errorf("%w: %s", ErrNotFound, resp.Status)
		}
		return Status{}, fmt.Errorf("%w: decoding response: %w", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK || payload.Error != "" {
		msg := payload.Error
		if msg == "" {
			msg = resp.Status
		}
		if resp.StatusCode == http.StatusNotFound {
			return Status{}, fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return Status{}, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}
	return payload.Status, nil
}

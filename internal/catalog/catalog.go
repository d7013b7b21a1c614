// Package catalog loads the course list from a file or an HTTP endpoint.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/course"
)

// ErrCatalogLoad wraps every failure to obtain or decode the catalog.
var ErrCatalogLoad = errors.New("loading course catalog")

// maxBody caps remote catalog size.
const maxBody = 64 << 20

// document is the catalog wire format.
type document struct {
	QueryParams course.QueryParams `json:"query_params"`
	Courses     []*course.Course   `json:"courses"`
}

// Loader fetches and decodes catalogs.
type Loader struct {
	client *http.Client
	logger *zap.Logger
}

// NewLoader returns a Loader. A nil client gets a 30s-timeout default; a nil
// logger discards output.
func NewLoader(client *http.Client, logger *zap.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, logger: logger}
}

// Load reads the catalog from source, an http(s) URL or a file path.
func (l *Loader) Load(ctx context.Context, source string) (*course.Catalog, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
	}

	cat, err := l.Decode(data)
	if err != nil {
		return nil, err
	}
	l.logger.Info("catalog loaded",
		zap.String("source", source),
		zap.Int("courses", cat.Len()),
		zap.String("year", cat.Params.OpenYear),
		zap.String("term", cat.Params.Helf),
	)
	return cat, nil
}

// Decode parses catalog JSON. Repeated ids keep the first course.
func (l *Loader) Decode(data []byte) (*course.Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding: %w", ErrCatalogLoad, err)
	}
	if doc.Courses == nil {
		return nil, fmt.Errorf("%w: missing courses array", ErrCatalogLoad)
	}

	cat, dups := course.NewCatalog(doc.QueryParams, doc.Courses)
	if len(dups) > 0 {
		l.logger.Warn("duplicate course ids ignored", zap.Strings("ids", dups))
	}
	return cat, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// Load is a convenience wrapper around a default Loader.
func Load(ctx context.Context, source string, logger *zap.Logger) (*course.Catalog, error) {
	return NewLoader(nil, logger).Load(ctx, source)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

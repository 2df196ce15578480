package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrLoadFailed marks every catalog load failure. The session keeps running
// with an empty catalog; the load is not retried.
var ErrLoadFailed = errors.New("catalog load failed")

// Source is static storage the catalog is read from.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Catalog, error)
}

// Result is the outcome of the single startup load: either a catalog or the
// error that prevented reading it.
type Result struct {
	Catalog *Catalog
	Err     error
}

func (r Result) OK() bool {
	return r.Err == nil && r.Catalog != nil
}

// Load reads the catalog once. Consistency problems are logged as warnings
// and do not turn a successful read into a failure.
func Load(ctx context.Context, src Source, logger *zap.Logger) Result {
	const operation = "catalog.Load"

	c, err := src.Load(ctx)
	if err != nil {
		logger.Error("Failed to load paper catalog",
			zap.String("operation", operation),
			zap.String("source", src.Name()),
			zap.Error(err))
		return Result{Err: fmt.Errorf("%w: %s: %w", ErrLoadFailed, src.Name(), err)}
	}
	if c == nil {
		c = New(nil)
	}

	if err := c.Check(); err != nil {
		for _, problem := range multierr.Errors(err) {
			logger.Warn("Paper catalog inconsistency",
				zap.String("source", src.Name()),
				zap.Error(problem))
		}
	}

	logger.Info("Paper catalog loaded",
		zap.String("source", src.Name()),
		zap.Int("papers", c.Len()))

	return Result{Catalog: c}
}

// FileSource reads a JSON or YAML document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return "file:" + s.Path
}

func (s FileSource) Load(_ context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Decode(data, FormatFromPath(s.Path))
}

// Fetcher returns the raw catalog document from a remote location.
type Fetcher interface {
	GetCatalog(ctx context.Context) ([]byte, error)
}

// HTTPSource loads a JSON catalog through a Fetcher, normally pkg/api.Client.
type HTTPSource struct {
	URL     string
	Fetcher Fetcher
}

func (s HTTPSource) Name() string {
	return "http:" + s.URL
}

func (s HTTPSource) Load(ctx context.Context) (*Catalog, error) {
	data, err := s.Fetcher.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return Decode(data, FormatJSON)
}

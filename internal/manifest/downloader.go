package manifest

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/lawcorpus/plawfetch/internal/fetcher"
	"github.com/lawcorpus/plawfetch/internal/store/local"
)

// Fetcher issues rate-limited GETs.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetcher.Response, error)
}

// Config controls the manifest download stage.
type Config struct {
	// Endpoint is a format string taking the congress number.
	Endpoint string
	// Start and End bound the congress range, inclusive.
	Start int
	End   int
}

// Downloader ensures the bulk manifest for each configured congress is
// cached. A manifest already on disk is never re-fetched.
type Downloader struct {
	cfg     Config
	fetcher Fetcher
	store   *local.Store
	logger  *zap.Logger
}

// NewDownloader builds a Downloader writing into the given cache.
func NewDownloader(cfg Config, f Fetcher, store *local.Store, logger *zap.Logger) *Downloader {
	return &Downloader{
		cfg:     cfg,
		fetcher: f,
		store:   store,
		logger:  logger,
	}
}

// EnsureManifest fetches and caches the bulk manifest for one congress,
// skipping the fetch when the manifest is already cached. Any non-200
// response is fatal: a missing manifest signals an upstream problem
// that would affect every later stage.
func (d *Downloader) EnsureManifest(ctx context.Context, congress int) error {
	name := FileName(congress)
	if d.store.Exists(name) {
		d.logger.Info("skipping congress, manifest already cached",
			zap.Int("congress", congress))
		return nil
	}

	url := fmt.Sprintf(d.cfg.Endpoint, congress)
	d.logger.Info("fetching bulk manifest",
		zap.Int("congress", congress),
		zap.String("url", url))

	res, err := d.fetcher.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch manifest for congress %d: %w", congress, err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("response code %d for %s", res.StatusCode, url)
	}

	if err := d.store.Write(name, res.Body); err != nil {
		return fmt.Errorf("cache manifest for congress %d: %w", congress, err)
	}
	return nil
}

// EnsureAll walks the configured congress range in order, aborting on
// the first fatal error.
func (d *Downloader) EnsureAll(ctx context.Context) error {
	for congress := d.cfg.Start; congress <= d.cfg.End; congress++ {
		if err := d.EnsureManifest(ctx, congress); err != nil {
			return err
		}
	}
	return nil
}

// Package lawdoc downloads the individual Public Law XML documents
// referenced by cached bulk manifests.
package lawdoc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lawcorpus/plawfetch/internal/fetcher"
	"github.com/lawcorpus/plawfetch/internal/manifest"
	"github.com/lawcorpus/plawfetch/internal/metrics"
	"github.com/lawcorpus/plawfetch/internal/store/local"
)

const xmlExt = ".xml"

// Fetcher issues rate-limited GETs.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetcher.Response, error)
}

// Downloader resolves manifest entries into cached raw XML documents.
// Entries already cached and entries whose link is not an XML rendition
// are skipped; any other non-200 fetch is fatal for the whole run.
type Downloader struct {
	fetcher   Fetcher
	manifests *local.Store
	docs      *local.Store
	logger    *zap.Logger
}

// NewDownloader builds a Downloader reading manifests from one cache
// and writing raw documents into another.
func NewDownloader(f Fetcher, manifests, docs *local.Store, logger *zap.Logger) *Downloader {
	return &Downloader{
		fetcher:   f,
		manifests: manifests,
		docs:      docs,
		logger:    logger,
	}
}

// ProcessManifest downloads every XML document listed in one cached
// manifest file.
func (d *Downloader) ProcessManifest(ctx context.Context, fileName string) error {
	log := d.logger.With(zap.String("manifest", fileName))
	if congress, err := manifest.CongressFromFileName(fileName); err == nil {
		log = log.With(zap.Int("congress", congress))
	} else {
		log.Warn("manifest file name does not embed a congress number", zap.Error(err))
	}
	log.Info("processing bulk manifest")

	raw, err := d.manifests.Read(fileName)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", fileName, err)
	}
	m, err := manifest.Decode(raw)
	if err != nil {
		return fmt.Errorf("parse manifest %s: %w", fileName, err)
	}

	for _, entry := range m.Files {
		if err := d.processEntry(ctx, log, entry); err != nil {
			return err
		}
	}
	return nil
}

func (d *Downloader) processEntry(ctx context.Context, log *zap.Logger, entry manifest.Entry) error {
	if d.docs.Exists(entry.Name) {
		log.Info("skipping document, already cached", zap.String("name", entry.Name))
		metrics.IncEntrySkipped("cached")
		return nil
	}
	if !strings.HasSuffix(entry.Link, xmlExt) {
		log.Info("skipping document, not an xml file",
			zap.String("name", entry.Name),
			zap.String("link", entry.Link))
		metrics.IncEntrySkipped("not_xml")
		return nil
	}

	log.Info("downloading document",
		zap.String("name", entry.Name),
		zap.String("link", entry.Link))

	res, err := d.fetcher.Get(ctx, entry.Link)
	if err != nil {
		return fmt.Errorf("fetch document %s: %w", entry.Name, err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("response code %d for %s", res.StatusCode, entry.Link)
	}

	if err := d.docs.Write(entry.Name, res.Body); err != nil {
		return fmt.Errorf("cache document %s: %w", entry.Name, err)
	}
	return nil
}

// ProcessAll applies ProcessManifest to every cached manifest file,
// aborting on the first fatal error.
func (d *Downloader) ProcessAll(ctx context.Context) error {
	names, err := d.manifests.List()
	if err != nil {
		return fmt.Errorf("list manifests: %w", err)
	}
	for _, name := range names {
		if err := d.ProcessManifest(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

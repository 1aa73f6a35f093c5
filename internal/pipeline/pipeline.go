// Package pipeline orchestrates the three-stage fetch/extract batch:
// bulk manifests, individual law documents, then text extraction.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ManifestStage ensures every configured bulk manifest is cached.
type ManifestStage interface {
	EnsureAll(ctx context.Context) error
}

// DocumentStage resolves cached manifests into cached raw documents.
type DocumentStage interface {
	ProcessAll(ctx context.Context) error
}

// ExtractStage derives text artifacts from cached raw documents.
type ExtractStage interface {
	ExtractAll() error
}

// Pipeline runs the stages strictly in sequence. A fatal error in the
// manifest or document stage aborts the run; extraction failures are
// per-file and handled inside the stage.
type Pipeline struct {
	manifests ManifestStage
	documents DocumentStage
	extractor ExtractStage
	logger    *zap.Logger
}

// New builds a Pipeline.
func New(manifests ManifestStage, documents DocumentStage, extractor ExtractStage, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		manifests: manifests,
		documents: documents,
		extractor: extractor,
		logger:    logger,
	}
}

// Run executes the full pipeline. Re-running after a partial run is
// safe: each stage skips artifacts that already exist.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.logger.With(zap.String("run_id", uuid.NewString()))

	log.Info("starting bulk manifest stage")
	if err := p.manifests.EnsureAll(ctx); err != nil {
		return fmt.Errorf("manifest stage: %w", err)
	}

	log.Info("starting document download stage")
	if err := p.documents.ProcessAll(ctx); err != nil {
		return fmt.Errorf("document stage: %w", err)
	}

	log.Info("starting text extraction stage")
	if err := p.extractor.ExtractAll(); err != nil {
		return fmt.Errorf("extraction stage: %w", err)
	}

	log.Info("pipeline complete")
	return nil
}

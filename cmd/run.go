package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lawcorpus/plawfetch/internal/clock/system"
	"github.com/lawcorpus/plawfetch/internal/config"
	"github.com/lawcorpus/plawfetch/internal/extract"
	"github.com/lawcorpus/plawfetch/internal/fetcher"
	"github.com/lawcorpus/plawfetch/internal/lawdoc"
	"github.com/lawcorpus/plawfetch/internal/manifest"
	"github.com/lawcorpus/plawfetch/internal/metrics"
	"github.com/lawcorpus/plawfetch/internal/pipeline"
	"github.com/lawcorpus/plawfetch/internal/policy/ratelimit"
	"github.com/lawcorpus/plawfetch/internal/store/local"
)

// stages holds the fully wired pipeline components.
type stages struct {
	manifests *manifest.Downloader
	documents *lawdoc.Downloader
	extractor *extract.Extractor
}

// buildStages wires stores, rate limiter, fetcher and the three stage
// components from configuration.
func buildStages(cfg config.Config, logger *zap.Logger) (*stages, error) {
	bulk, err := local.New(local.Config{BaseDir: cfg.Cache.BulkDir})
	if err != nil {
		return nil, fmt.Errorf("init bulk cache: %w", err)
	}
	individual, err := local.New(local.Config{BaseDir: cfg.Cache.IndividualDir})
	if err != nil {
		return nil, fmt.Errorf("init individual cache: %w", err)
	}
	processed, err := local.New(local.Config{BaseDir: cfg.Cache.ProcessedDir})
	if err != nil {
		return nil, fmt.Errorf("init processed cache: %w", err)
	}

	limiter := ratelimit.New(ratelimit.Config{
		Calls:  cfg.RateLimit.Calls,
		Window: cfg.RateWindow(),
	}, system.New())

	client := fetcher.New(fetcher.Config{
		APIKey:         cfg.API.Key,
		UserAgent:      cfg.API.UserAgent,
		Timeout:        cfg.HTTPTimeout(),
		MaxRetries:     cfg.HTTP.MaxRetries,
		BackoffInitial: cfg.BackoffInitial(),
		BackoffMax:     cfg.BackoffMax(),
	}, limiter, logger)

	return &stages{
		manifests: manifest.NewDownloader(manifest.Config{
			Endpoint: cfg.API.BulkEndpoint,
			Start:    cfg.Congress.Start,
			End:      cfg.Congress.End,
		}, client, bulk, logger),
		documents: lawdoc.NewDownloader(client, bulk, individual, logger),
		extractor: extract.NewExtractor(individual, processed, logger),
	}, nil
}

// serveMetrics starts the optional Prometheus endpoint in the
// background. Long runs sleep for most of an hour inside the rate
// limiter, so the endpoint is the only live progress signal.
func serveMetrics(listen string, logger *zap.Logger) {
	if listen == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

// newRunCmd creates the 'run' subcommand executing the full pipeline.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full fetch and extract pipeline",
		Long: `Ensures bulk manifests for the configured congress range, downloads
every individual law XML document they reference, and extracts plain
text from each cached document. Each stage skips artifacts that already
exist, so re-running resumes where the previous run stopped.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			s, err := buildStages(appInstance.Config, appInstance.Logger)
			if err != nil {
				return err
			}
			serveMetrics(appInstance.Config.Metrics.Listen, appInstance.Logger)

			p := pipeline.New(s.manifests, s.documents, s.extractor, appInstance.Logger)
			if err := p.Run(cmd.Context()); err != nil {
				return fmt.Errorf("run pipeline: %w", err)
			}
			return nil
		},
	}
}

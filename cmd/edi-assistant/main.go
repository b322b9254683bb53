// Package main implements the edi-assistant server binary.
//
// The server answers natural-language questions over uploaded EDI CSV data.
//
// Usage:
//
//	# Start server with defaults
//	edi-assistant serve
//
//	# Configure via file and environment
//	edi-assistant serve --config config.yaml
//	SERVER_HTTP_PORT=9000 edi-assistant serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/config"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/embeddings"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/explain"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/httpapi"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/intent"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/lifecycle"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/logging"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/query"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/retrieval"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "edi-assistant",
	Short: "RAG-based assistant for EDI transaction data",
	Long: `edi-assistant serves natural-language question answering over uploaded
EDI transaction records (850/855/856/810/997), including purchase order
lifecycle assembly and semantic row search.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edi-assistant\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// components holds the wired service dependencies.
type components struct {
	store      *edi.Store
	builder    *lifecycle.Builder
	classifier *intent.Classifier
	engine     *query.Engine
	searcher   *retrieval.Searcher
	explainer  *explain.Explainer
	provider   embeddings.Provider
}

// Close releases the shared embedding provider.
func (c *components) Close() {
	if c.provider != nil {
		_ = c.provider.Close()
	}
}

// buildComponents wires the service around one shared embedding provider;
// the classifier and the searcher use the same instance. A provider that
// fails to load degrades classification to UNKNOWN and disables semantic
// search instead of failing startup.
func buildComponents(cfg *config.Config, logger *zap.Logger) *components {
	store := edi.NewStore()
	builder := lifecycle.NewBuilder()

	provider, provErr := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider: cfg.Embeddings.Provider,
		Model:    cfg.Embeddings.Model,
		BaseURL:  cfg.Embeddings.BaseURL,
		CacheDir: cfg.Embeddings.CacheDir,
	})
	if provErr != nil {
		logger.Warn("embedding capability unavailable, semantic features degraded", zap.Error(provErr))
		provider = nil
	}
	factory := func() (embeddings.Provider, error) {
		return provider, provErr
	}

	comps := &components{
		store:   store,
		builder: builder,
		classifier: intent.NewClassifier(store, factory, logger, intent.Config{
			Threshold: cfg.Intent.Threshold,
			CacheSize: cfg.Intent.CacheSize,
		}),
		engine:   query.NewEngine(builder, logger),
		provider: provider,
	}
	if provider != nil {
		comps.searcher = retrieval.NewSearcher(store, provider, logger)
	}
	if cfg.Explain.Enabled {
		comps.explainer = explain.New(explain.Config{
			Enabled:   true,
			ServerURL: cfg.Explain.ServerURL,
			Model:     cfg.Explain.Model,
			Timeout:   cfg.Explain.Timeout,
		}, logger)
	}
	return comps
}

// runServe initializes all dependencies and blocks until shutdown:
//  1. Loads and validates configuration
//  2. Initializes the logger
//  3. Wires the store, classifier, query engine, searcher and explainer
//  4. Starts the HTTP server
//  5. Performs graceful shutdown on SIGINT/SIGTERM
func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting edi-assistant",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("embeddings_provider", cfg.Embeddings.Provider),
		zap.Bool("explain_enabled", cfg.Explain.Enabled),
	)

	comps := buildComponents(cfg, logger)
	defer comps.Close()

	server, err := httpapi.NewServer(comps.store, comps.classifier, comps.engine, comps.builder, comps.searcher, comps.explainer, logger, &httpapi.Config{
		Port:            cfg.Server.Port,
		MaxUploadSizeMB: cfg.Ingest.MaxUploadSizeMB,
		SearchTopK:      cfg.Retrieval.TopK,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

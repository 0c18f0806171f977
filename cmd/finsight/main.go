package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/finsight-labs/analysis-core/pkg/cache"
	"github.com/finsight-labs/analysis-core/pkg/config"
	"github.com/finsight-labs/analysis-core/pkg/document"
	"github.com/finsight-labs/analysis-core/pkg/orchestrator"
	"github.com/finsight-labs/analysis-core/pkg/server"
	"github.com/finsight-labs/analysis-core/pkg/store"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint, split out for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel, stderr)
	slog.SetDefault(logger)

	if len(args) < 2 {
		return runServe(cfg, logger, stderr)
	}

	switch args[1] {
	case "analyze":
		return runAnalyze(args[2:], cfg, logger, stdout, stderr)
	case "serve", "server":
		return runServe(cfg, logger, stderr)
	case "version":
		_, _ = fmt.Fprintln(stdout, "finsight analysis-core")
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Usage: finsight <analyze|serve|version>\n")
		return 2
	}
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// newAnalyzer builds the orchestrator, applying the threshold profile
// when one is configured.
func newAnalyzer(cfg *config.Config, logger *slog.Logger) (*orchestrator.Analyzer, error) {
	opts := []orchestrator.Option{orchestrator.WithLogger(logger)}
	if cfg.ProfilePath != "" {
		profile, err := config.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("load threshold profile: %w", err)
		}
		opts = append(opts,
			orchestrator.WithThresholds(profile.FraudThresholds()),
			orchestrator.WithWeights(profile.FraudWeights()),
		)
	}
	return orchestrator.New(opts...)
}

// analyzeInput mirrors the HTTP analyze contract so the same JSON file
// works against both the CLI and the API.
type analyzeInput struct {
	DocumentID       string                 `json:"document_id,omitempty"`
	Text             string                 `json:"text"`
	DeclaredType     string                 `json:"declared_type,omitempty"`
	Figures          map[string]float64     `json:"figures,omitempty"`
	Expenses         map[string]float64     `json:"expenses,omitempty"`
	QuarterlyRevenue []float64              `json:"quarterly_revenue,omitempty"`
	LineItems        []float64              `json:"line_items,omitempty"`
	Transactions     []document.Transaction `json:"transactions,omitempty"`
}

func runAnalyze(args []string, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		_, _ = fmt.Fprintln(stderr, "Usage: finsight analyze <file.json|file.txt>")
		return 2
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "read input: %v\n", err)
		return 1
	}

	var in analyzeInput
	if strings.HasSuffix(args[0], ".json") {
		if err := json.Unmarshal(raw, &in); err != nil {
			_, _ = fmt.Fprintf(stderr, "parse input: %v\n", err)
			return 1
		}
	} else {
		// Plain text: analyze with textual signals only.
		in.Text = string(raw)
	}

	doc := document.Document{
		ID:           in.DocumentID,
		Text:         in.Text,
		DeclaredType: in.DeclaredType,
		Size:         int64(len(in.Text)),
	}
	figures := document.FromMap(in.Figures)
	figures.Expenses = in.Expenses
	figures.QuarterlyRevenue = in.QuarterlyRevenue
	figures.LineItems = in.LineItems
	figures.Transactions = in.Transactions

	analyzer, err := newAnalyzer(cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "configure analyzer: %v\n", err)
		return 1
	}

	assessment, err := analyzer.Analyze(context.Background(), doc, figures)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "analyze: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(assessment); err != nil {
		_, _ = fmt.Fprintf(stderr, "encode result: %v\n", err)
		return 1
	}
	return 0
}

func runServe(cfg *config.Config, logger *slog.Logger, stderr io.Writer) int {
	analyzer, err := newAnalyzer(cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "configure analyzer: %v\n", err)
		return 1
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "open database: %v\n", err)
		return 1
	}
	defer db.Close()

	analyses, err := store.NewAnalysisStore(db)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "init analysis store: %v\n", err)
		return 1
	}
	alerts, err := store.NewAlertStore(db)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "init alert store: %v\n", err)
		return 1
	}
	checks, err := store.NewComplianceStore(db)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "init compliance store: %v\n", err)
		return 1
	}

	results := cache.New(cfg.RedisAddr, time.Hour)
	srv := server.New(analyzer, analyses, alerts, checks, results, logger)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_, _ = fmt.Fprintf(stderr, "server: %v\n", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}
	logger.Info("stopped")
	return 0
}

/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the LLM judge over a file of inputs and writes a
// comparison document plus a markdown summary.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"chainguard.dev/llmcomparator/agents/agenttrace"
	"chainguard.dev/llmcomparator/comparator/comparison"
	"chainguard.dev/llmcomparator/comparator/inputs"
	"chainguard.dev/llmcomparator/comparator/judge"
	"chainguard.dev/llmcomparator/comparator/report"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	// Backend is one of gemini, claude, vertex (dispatch on the model
	// prefix) or openai (any OpenAI-compatible endpoint, Together by default).
	Backend   string `env:"BACKEND,default=gemini"`
	Model     string `env:"MODEL"`
	ProjectID string `env:"PROJECT_ID"`
	Region    string `env:"REGION,default=us-central1"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	Temperature float64       `env:"TEMPERATURE,default=0"`
	MaxTokens   int64         `env:"MAX_TOKENS,default=2048"`
	CallTimeout time.Duration `env:"CALL_TIMEOUT,default=2m"`

	InputPath  string   `env:"INPUT_PATH"`
	OutputPath string   `env:"OUTPUT_PATH,default=comparison.json"`
	ModelNames []string `env:"MODEL_NAMES"`

	Repeats       int    `env:"REPEATS,default=6"`
	Concurrency   int    `env:"CONCURRENCY,default=1"`
	MaxAttempts   int    `env:"MAX_ATTEMPTS,default=5"`
	Flip          bool   `env:"FLIP,default=false"`
	MultiLabel    bool   `env:"MULTI_LABEL,default=true"`
	UnknownLabels string `env:"UNKNOWN_LABELS,default=drop"`
	RatingMap     string `env:"RATING_MAP"`

	GroupBy  string `env:"GROUP_BY,default=Doc Type"`
	MinScore string `env:"MIN_SCORE"`

	// TracePath receives one JSON line per judged sample with every prompt
	// and raw model output.
	TracePath string `env:"TRACE_PATH"`

	MetricsPort int  `env:"METRICS_PORT,default=0"`
	SchemaOnly  bool `env:"SCHEMA_ONLY,default=false"`
}

var errBelowThreshold = errors.New("mean score below MIN_SCORE")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	if cfg.SchemaOnly {
		b, err := comparison.Schema()
		if err != nil {
			clog.FatalContextf(ctx, "generating schema: %v", err)
		}
		fmt.Println(string(b))
		return
	}

	shutdown := httpmetrics.SetupTracer(ctx)
	if cfg.MetricsPort > 0 {
		go httpmetrics.ScrapeDiskUsage(ctx)
		go serveMetrics(ctx, cfg.MetricsPort)
	}

	runID := uuid.NewString()
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("run_id", runID))
	ctx = agenttrace.WithRunContext(ctx, agenttrace.RunContext{
		RunID:   runID,
		Backend: cfg.Backend,
		Model:   cfg.Model,
	})

	err := run(ctx, cfg)
	shutdown()
	switch {
	case errors.Is(err, errBelowThreshold):
		clog.ErrorContextf(ctx, "%v", err)
		os.Exit(1)
	case err != nil:
		clog.FatalContextf(ctx, "comparator failed: %v", err)
	}
}

func run(ctx context.Context, cfg config) (err error) {
	if cfg.InputPath == "" {
		return errors.New("INPUT_PATH is required")
	}

	judgeCfg, err := judgeConfig(cfg)
	if err != nil {
		return err
	}

	in, err := inputs.Load(ctx, cfg.InputPath)
	if err != nil {
		return err
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating %s backend: %w", cfg.Backend, err)
	}

	runner, err := judge.NewRunner(gen, judgeCfg)
	if err != nil {
		return err
	}

	if cfg.TracePath != "" {
		f, ferr := os.Create(cfg.TracePath)
		if ferr != nil {
			return fmt.Errorf("creating trace file: %w", ferr)
		}
		tracer := agenttrace.NewJSONL[judge.Output](f)
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing trace file: %w", cerr)
			}
			if terr := tracer.Err(); terr != nil && err == nil {
				err = fmt.Errorf("writing trace file: %w", terr)
			}
			clog.InfoContextf(ctx, "Wrote %d traces to %s", tracer.Count(), cfg.TracePath)
		}()
		ctx = agenttrace.WithTracer[judge.Output](ctx, tracer)
	}

	var opts []comparison.Option
	if len(cfg.ModelNames) > 0 {
		if len(cfg.ModelNames) != 2 {
			return fmt.Errorf("MODEL_NAMES needs exactly 2 names, got %d", len(cfg.ModelNames))
		}
		opts = append(opts, comparison.WithModelNames(cfg.ModelNames[0], cfg.ModelNames[1]))
	}

	clog.InfoContextf(ctx, "Judging %d inputs from %s with %s", len(in), cfg.InputPath, cfg.Backend)
	start := time.Now()
	doc, _, err := comparison.Run(ctx, runner, in, opts...)
	if err != nil {
		return err
	}
	clog.InfoContextf(ctx, "Judged %d inputs in %v", len(in), time.Since(start).Round(time.Second))

	path, err := comparison.Write(ctx, doc, cfg.OutputPath)
	if err != nil {
		return err
	}
	clog.InfoContextf(ctx, "Wrote comparison document to %s", path)

	threshold, err := minScore(cfg.MinScore)
	if err != nil {
		return err
	}
	summary, below := report.Generate(doc, cfg.GroupBy, threshold)
	fmt.Print(summary)
	if below {
		return fmt.Errorf("%w (%s)", errBelowThreshold, cfg.MinScore)
	}
	return nil
}

// minScore parses MIN_SCORE. Unset, it is negative infinity, which no
// score is below.
func minScore(s string) (float64, error) {
	if s == "" {
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing MIN_SCORE: %w", err)
	}
	return v, nil
}

func serveMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	clog.InfoContextf(ctx, "Serving metrics on port %d", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.ErrorContextf(ctx, "metrics server failed: %v", err)
	}
}

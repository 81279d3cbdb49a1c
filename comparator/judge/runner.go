/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/llmcomparator/agents/agenttrace"
	"chainguard.dev/llmcomparator/agents/executor"
	"chainguard.dev/llmcomparator/agents/executor/retry"
	"chainguard.dev/llmcomparator/agents/promptbuilder"
	"chainguard.dev/llmcomparator/agents/result"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrNoInputs is returned when a run is started without inputs.
var ErrNoInputs = errors.New("no inputs to judge")

const tracerName = "chainguard.dev/llmcomparator/comparator/judge"

// Explanations of synthesized outputs.
const (
	explainTrueNegative    = "Both the response and the reference are N/A."
	explainMissingAnswer   = "The response is N/A while the reference provides an answer."
	explainSkippedQuestion = "The response is the skipped marker: the model skipped the question."
	explainCoherenceFailed = "Too many invalid attempts, coherence is assumed."
	explainJudgeFailure    = "The LLM judge did not evaluate this case."
)

// Runner judges inputs with a Generator.
type Runner struct {
	gen       executor.Generator
	cfg       Config
	coherence *promptbuilder.Prompt
	recursive *promptbuilder.Prompt
	tracer    trace.Tracer
}

// NewRunner validates cfg and returns a Runner that calls gen.
func NewRunner(gen executor.Generator, cfg Config) (*Runner, error) {
	if gen == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid judge config: %w", err)
	}
	coherence, err := cfg.template(CoherenceTemplate)
	if err != nil {
		return nil, err
	}
	recursive, err := cfg.template(RecursiveTemplate)
	if err != nil {
		return nil, err
	}
	return &Runner{
		gen:       gen,
		cfg:       cfg,
		coherence: coherence,
		recursive: recursive,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Config returns the runner configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Run replicates inputs, judges every copy and aggregates one result per input.
func (r *Runner) Run(ctx context.Context, inputs []Input) ([]ExampleResult, error) {
	items, err := Replicate(inputs, r.cfg.Repeats, r.cfg.Flip)
	if err != nil {
		return nil, err
	}
	clog.FromContext(ctx).With("inputs", len(inputs)).
		With("items", len(items)).
		Info("Created inputs for LLM judge")

	outputs, err := r.Query(ctx, items)
	if err != nil {
		return nil, err
	}
	results, err := Aggregate(ctx, r.cfg, items, outputs, len(inputs))
	if err != nil {
		return nil, err
	}
	clog.FromContext(ctx).With("examples", len(results)).Info("Generated ratings")
	return results, nil
}

// Query judges every item and returns one Output per item, in order.
// Invalid model output never fails the call; a generation error does.
func (r *Runner) Query(ctx context.Context, items []ReplicatedInput) ([]Output, error) {
	if len(items) == 0 {
		return nil, ErrNoInputs
	}
	outputs := make([]Output, len(items))

	if r.cfg.Concurrency <= 1 {
		for i, item := range items {
			out, err := r.judge(ctx, item)
			if err != nil {
				return nil, err
			}
			outputs[i] = out
		}
		return outputs, nil
	}

	// Each goroutine writes only its own slot.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, item := range items {
		g.Go(func() error {
			out, err := r.judge(gctx, item)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// judge runs the per-item state machine: deterministic shortcut, coherence
// gate, detailed judge.
func (r *Runner) judge(ctx context.Context, item ReplicatedInput) (out Output, err error) {
	ctx, span := r.tracer.Start(ctx, "judge.item", trace.WithAttributes(
		attribute.Int("example_index", item.ExampleIndex),
		attribute.Int("repeat", item.Repeat),
		attribute.Bool("is_flipped", item.IsFlipped),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("stage", string(out.Stage)), attribute.String("label", out.Label))
		}
		span.End()
	}()

	transcript := agenttrace.StartTrace[Output](ctx, fmt.Sprintf("example %d repeat %d", item.ExampleIndex, item.Repeat))
	transcript.SetMetadata("is_flipped", item.IsFlipped)
	defer func() { transcript.Complete(out, err) }()

	log := clog.FromContext(ctx).With("example_index", item.ExampleIndex).With("repeat", item.Repeat)
	ctx = clog.WithLogger(ctx, log)

	if det, ok := r.deterministic(item); ok {
		return r.finish(ctx, det), nil
	}

	f := fields(item)

	prompt, err := render(r.coherence, f)
	if err != nil {
		return Output{}, fmt.Errorf("rendering coherence prompt for example %d: %w", item.ExampleIndex, err)
	}
	text, attempts, err := retry.Attempt(ctx, "coherence_judge", r.cfg.MaxAttempts, r.generate(transcript, StageCoherence, prompt), result.Valid)
	out.Attempts = attempts
	switch {
	case errors.Is(err, retry.ErrExhausted):
		log.With("attempts", attempts).Warn("Exceeded maximum attempts for coherence judge, assuming coherence")
		fallbackCounter.WithLabelValues(string(StageCoherenceFallback)).Inc()
		text = result.Format(explainCoherenceFailed, r.cfg.CoherentLabel)
		out.CoherenceFailedOpen = true
	case err != nil:
		return Output{}, fmt.Errorf("coherence judge for example %d repeat %d: %w", item.ExampleIndex, item.Repeat, err)
	}

	if !result.HasVerdict(text, r.cfg.CoherentLabel) {
		out.Text, out.Stage = text, StageCoherence
		return r.finish(ctx, out), nil
	}

	prompt, err = render(r.recursive, f)
	if err != nil {
		return Output{}, fmt.Errorf("rendering detailed prompt for example %d: %w", item.ExampleIndex, err)
	}
	text, attempts, err = retry.Attempt(ctx, "detailed_judge", r.cfg.MaxAttempts, r.generate(transcript, StageDetailed, prompt), result.Valid)
	out.Attempts += attempts
	switch {
	case errors.Is(err, retry.ErrExhausted):
		log.With("attempts", attempts).Warn("Exceeded maximum attempts for detailed judge, using judge failure")
		fallbackCounter.WithLabelValues(string(StageDetailedFallback)).Inc()
		out.Text, out.Stage = result.Format(explainJudgeFailure, LabelJudgeFailure), StageDetailedFallback
	case err != nil:
		return Output{}, fmt.Errorf("detailed judge for example %d repeat %d: %w", item.ExampleIndex, item.Repeat, err)
	default:
		out.Text, out.Stage = text, StageDetailed
	}
	return r.finish(ctx, out), nil
}

// deterministic synthesizes the output for sentinel candidates. Sentinels
// are matched in input order, so flipped copies get the same verdict.
func (r *Runner) deterministic(item ReplicatedInput) (Output, bool) {
	candidate, reference := item.Original()
	var explanation, verdict string
	switch {
	case candidate == r.cfg.SkippedSentinel:
		explanation, verdict = explainSkippedQuestion, LabelSkippedQuestion
	case candidate == r.cfg.NASentinel && reference == r.cfg.NASentinel:
		explanation, verdict = explainTrueNegative, LabelTrueNegative
	case candidate == r.cfg.NASentinel:
		explanation, verdict = explainMissingAnswer, LabelMissingAnswer
	default:
		return Output{}, false
	}
	return Output{
		Text:  result.Format(explanation, verdict),
		Stage: StageDeterministic,
	}, true
}

// generate returns one traced generation call for stage. Every call is
// added to transcript.
func (r *Runner) generate(transcript *agenttrace.Trace[Output], stage Stage, prompt string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		ctx, span := r.tracer.Start(ctx, "judge.generate", trace.WithAttributes(
			attribute.String("stage", string(stage)),
		))
		defer span.End()

		attemptCounter.WithLabelValues(string(stage)).Inc()
		call := transcript.StartCall(string(stage), prompt)
		text, err := r.gen.Generate(ctx, prompt)
		if err != nil {
			call.Complete("", false, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}
		valid := result.Valid(text)
		call.Complete(text, valid, nil)
		span.SetAttributes(attribute.Bool("valid", valid))
		return text, nil
	}
}

// finish records the verdict label of the kept output.
func (r *Runner) finish(ctx context.Context, out Output) Output {
	if parsed, err := result.Parse(out.Text); err == nil {
		out.Label = parsed.Verdict
	}
	verdictCounter.WithLabelValues(string(out.Stage), out.Label).Inc()
	clog.FromContext(ctx).With("stage", string(out.Stage)).
		With("label", out.Label).
		With("attempts", out.Attempts).
		Info("Judged item")
	return out
}

// Package practice composes the prompt builder, a model provider and the
// extraction pipeline into the question and grading operations a session
// needs.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cognitio-libera/cognitio/internal/extract"
	"github.com/cognitio-libera/cognitio/internal/llm"
	"github.com/cognitio-libera/cognitio/internal/prompt"
	"github.com/cognitio-libera/cognitio/internal/record"
	"github.com/cognitio-libera/cognitio/internal/store"
)

// Purpose labels attached to model calls.
const (
	PurposeCoding     = "coding-question"
	PurposeQuiz       = "quiz-question"
	PurposeEvaluation = "evaluation"
	PurposeReport     = "report"
)

// Config controls the behavior of the Coach.
type Config struct {
	// MaxTokens is the token budget for each model response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// MaxAttempts is how many completions are requested in total when
	// extraction fails. Values below 1 mean 1.
	MaxAttempts int

	// StructuredOutput passes the record's JSON Schema to the provider so
	// models with a native JSON mode can use it.
	StructuredOutput bool
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.7,
		MaxAttempts: 2,
	}
}

// Option customizes a Coach.
type Option func(*Coach)

// WithLogger sets the logger used for extraction retries.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coach) { c.logger = l }
}

// WithEventRepo records every rejected completion in the diagnostics store.
func WithEventRepo(repo store.EventRepo) Option {
	return func(c *Coach) { c.events = repo }
}

// WithPipeline replaces the default extraction pipeline.
func WithPipeline(p *extract.Pipeline) Option {
	return func(c *Coach) { c.pipeline = p }
}

// Coach generates questions and grades submissions through a model.
type Coach struct {
	provider llm.Provider
	config   Config
	pipeline *extract.Pipeline
	logger   zerolog.Logger
	events   store.EventRepo
}

// NewCoach creates a Coach for provider.
func NewCoach(provider llm.Provider, cfg Config, opts ...Option) *Coach {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	c := &Coach{
		provider: provider,
		config:   cfg,
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.pipeline == nil {
		c.pipeline = extract.New(c.logger)
	}
	return c
}

// Provider returns the underlying model provider.
func (c *Coach) Provider() llm.Provider { return c.provider }

// CodingQuestion asks the model for a coding problem that avoids the given
// recent topics.
func (c *Coach) CodingQuestion(ctx context.Context, language, difficulty string, recentTopics []string) (record.CodingQuestion, error) {
	text, err := prompt.Build(record.KindCoding, language, difficulty, recentTopics)
	if err != nil {
		return record.CodingQuestion{}, err
	}
	return generate[record.CodingQuestion](ctx, c, PurposeCoding, record.KindCoding, text)
}

// QuizQuestion asks the model for a multiple-choice question.
func (c *Coach) QuizQuestion(ctx context.Context, language, difficulty string, recentTopics []string) (record.MCQQuestion, error) {
	text, err := prompt.Build(record.KindQuiz, language, difficulty, recentTopics)
	if err != nil {
		return record.MCQQuestion{}, err
	}
	return generate[record.MCQQuestion](ctx, c, PurposeQuiz, record.KindQuiz, text)
}

// Evaluate asks the model to grade a coding submission.
func (c *Coach) Evaluate(ctx context.Context, in prompt.EvaluationInput) (record.Evaluation, error) {
	return generate[record.Evaluation](ctx, c, PurposeEvaluation, record.KindEvaluation, prompt.BuildEvaluation(in))
}

// Complete sends a free-form prompt and returns the completion text as is.
func (c *Coach) Complete(ctx context.Context, purpose, text string) (string, error) {
	ctx = llm.WithPurpose(ctx, purpose)
	resp, err := c.provider.Generate(ctx, llm.Request{
		Messages:    llm.UserPrompt(text),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM generation failed: %w", err)
	}
	return resp.Text, nil
}

func generate[T record.Record](ctx context.Context, c *Coach, purpose string, kind record.Kind, text string) (T, error) {
	var zero T
	ctx = llm.WithPurpose(ctx, purpose)

	req := llm.Request{
		Messages:    llm.UserPrompt(text),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	if c.config.StructuredOutput {
		req.Schema = record.MustShape(kind).Schema()
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		raw, model, err := c.completion(ctx, req)
		if err != nil {
			return zero, fmt.Errorf("LLM generation failed: %w", err)
		}

		rec, err := c.pipeline.Extract(raw, kind)
		if err == nil {
			out, ok := rec.(T)
			if !ok {
				return zero, fmt.Errorf("unexpected record type %T for %s", rec, kind)
			}
			return out, nil
		}

		var xerr *extract.ExtractionError
		if !errors.As(err, &xerr) {
			return zero, err
		}
		lastErr = err
		c.recordFailure(ctx, xerr, model)

		c.logger.Warn().
			Str("kind", string(kind)).
			Str("stage", string(xerr.Stage)).
			Int("attempt", attempt).
			Int("max_attempts", c.config.MaxAttempts).
			Str("raw", xerr.Raw).
			Err(xerr.Err).
			Msg("extraction failed")
	}
	return zero, lastErr
}

// completion returns the raw text of one model call. A reply the provider
// rejected against the structured output schema still carries its text, and
// that text goes through the extraction pipeline like any other reply.
func (c *Coach) completion(ctx context.Context, req llm.Request) (text, model string, err error) {
	resp, err := c.provider.Generate(ctx, req)
	if err == nil {
		return resp.Text, resp.Model, nil
	}
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) && strings.TrimSpace(invalid.Text) != "" {
		c.logger.Debug().Err(err).Msg("structured reply rejected by provider, extracting from text")
		return invalid.Text, c.provider.ModelID(), nil
	}
	return "", "", err
}

func (c *Coach) recordFailure(ctx context.Context, xerr *extract.ExtractionError, model string) {
	if c.events == nil {
		return
	}
	errMsg := ""
	if xerr.Err != nil {
		errMsg = xerr.Err.Error()
	}
	err := c.events.AppendExtractionFailure(ctx, store.ExtractionEventData{
		Kind:     string(xerr.Kind),
		Stage:    string(xerr.Stage),
		Strategy: xerr.Strategy,
		Model:    model,
		RawText:  xerr.Raw,
		Error:    errMsg,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to record extraction failure")
	}
}

// Package extract recovers validated records from free-form model output.
//
// The pipeline isolates the outermost object candidate, parses it with an
// ordered list of strategies (strict JSON first, then permissive passes),
// coerces the mapping against the record's field descriptors, and finally
// validates the normalized object against the record's JSON Schema. It holds
// no state between calls and is safe for concurrent use.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"

	"github.com/cognitio-libera/cognitio/internal/llm"
	"github.com/cognitio-libera/cognitio/internal/record"
)

// Pipeline is an ordered strategy chain plus a logger.
type Pipeline struct {
	strategies []Strategy
	logger     zerolog.Logger
}

// Default is the package-level pipeline used by Extract and the typed
// helpers. It does not log.
var Default = New(zerolog.Nop())

// New builds a pipeline. With no strategies, DefaultStrategies is used.
func New(logger zerolog.Logger, strategies ...Strategy) *Pipeline {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Pipeline{strategies: strategies, logger: logger}
}

// Parsed is a mapping recovered from raw text, before shape validation.
type Parsed struct {
	Candidate string
	Strategy  string
	Object    map[string]any
}

// Candidate returns the inclusive substring from the first '{' to the last
// '}' of the trimmed text. ok is false when there is no such pair, in which
// case the whole trimmed text is returned.
func Candidate(raw string) (candidate string, ok bool) {
	text := strings.TrimSpace(raw)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return text, false
	}
	return text[start : end+1], true
}

// Parse runs steps 1-4: trim, isolate, then try each strategy in order.
// The returned error is an *ExtractionError with stage no-json-found or
// parse-error.
func (p *Pipeline) Parse(raw string, kind record.Kind) (*Parsed, error) {
	candidate, hasObject := Candidate(raw)
	if candidate == "" {
		return nil, &ExtractionError{Kind: kind, Stage: StageNoJSON, Raw: raw, Err: errors.New("empty response")}
	}

	var failures StrategyErrors
	for _, s := range p.strategies {
		obj, err := s.Parse(candidate)
		if err != nil {
			failures = append(failures, StrategyError{Strategy: s.Name(), Err: err})
			continue
		}
		if len(failures) > 0 {
			p.logger.Debug().
				Str("kind", string(kind)).
				Str("strategy", s.Name()).
				Int("failed_strategies", len(failures)).
				Msg("recovered object with permissive strategy")
		}
		return &Parsed{Candidate: candidate, Strategy: s.Name(), Object: obj}, nil
	}

	stage := StageParse
	if !hasObject {
		stage = StageNoJSON
	}
	return nil, &ExtractionError{Kind: kind, Stage: stage, Raw: raw, Err: failures}
}

// Extract turns raw model text into the record for kind. The result is one
// of record.CodingQuestion, record.MCQQuestion or record.Evaluation.
func (p *Pipeline) Extract(raw string, kind record.Kind) (record.Record, error) {
	shape, err := record.ShapeOf(kind)
	if err != nil {
		return nil, err
	}

	parsed, err := p.Parse(raw, kind)
	if err != nil {
		return nil, err
	}

	rec, err := validate(shape, parsed.Object)
	if err != nil {
		return nil, &ExtractionError{Kind: kind, Stage: StageSchema, Strategy: parsed.Strategy, Raw: raw, Err: err}
	}
	return rec, nil
}

// Coding extracts a coding question.
func (p *Pipeline) Coding(raw string) (record.CodingQuestion, error) {
	return extractAs[record.CodingQuestion](p, raw, record.KindCoding)
}

// Quiz extracts a multiple-choice question.
func (p *Pipeline) Quiz(raw string) (record.MCQQuestion, error) {
	return extractAs[record.MCQQuestion](p, raw, record.KindQuiz)
}

// Evaluation extracts a grading verdict.
func (p *Pipeline) Evaluation(raw string) (record.Evaluation, error) {
	return extractAs[record.Evaluation](p, raw, record.KindEvaluation)
}

// Extract runs the Default pipeline.
func Extract(raw string, kind record.Kind) (record.Record, error) {
	return Default.Extract(raw, kind)
}

// Coding runs the Default pipeline for a coding question.
func Coding(raw string) (record.CodingQuestion, error) { return Default.Coding(raw) }

// Quiz runs the Default pipeline for a multiple-choice question.
func Quiz(raw string) (record.MCQQuestion, error) { return Default.Quiz(raw) }

// Evaluation runs the Default pipeline for a grading verdict.
func Evaluation(raw string) (record.Evaluation, error) { return Default.Evaluation(raw) }

func extractAs[T record.Record](p *Pipeline, raw string, kind record.Kind) (T, error) {
	var zero T
	rec, err := p.Extract(raw, kind)
	if err != nil {
		return zero, err
	}
	out, ok := rec.(T)
	if !ok {
		return zero, fmt.Errorf("extract %s: unexpected record type %T", kind, rec)
	}
	return out, nil
}

// crossChecks holds invariants spanning more than one field.
var crossChecks = map[record.Kind]func(map[string]any) error{
	record.KindQuiz: func(m map[string]any) error {
		idx := m["correct_option_index"].(int)
		opts := m["options"].([]string)
		if idx < 0 || idx >= len(opts) {
			return &FieldError{
				Field:  "correct_option_index",
				Reason: fmt.Sprintf("index %d out of range for %d options", idx, len(opts)),
			}
		}
		return nil
	},
}

// validate runs step 5: descriptor coercion, JSON Schema validation of the
// normalized object, cross-field checks, then decoding into the record.
func validate(shape *record.Shape, obj map[string]any) (record.Record, error) {
	norm, err := normalize(shape, obj)
	if err != nil {
		return nil, err
	}

	if err := validateSchema(shape, norm); err != nil {
		return nil, err
	}

	if check, ok := crossChecks[shape.Kind]; ok {
		if err := check(norm); err != nil {
			return nil, err
		}
	}

	return decode(shape.Kind, norm)
}

func validateSchema(shape *record.Shape, norm map[string]any) error {
	// The schema validator expects values as encoding/json produces them.
	b, err := json.Marshal(norm)
	if err != nil {
		return fmt.Errorf("marshal normalized object: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal normalized object: %w", err)
	}
	return llm.ValidateValue(shape.Schema(), v)
}

func decode(kind record.Kind, norm map[string]any) (record.Record, error) {
	switch kind {
	case record.KindCoding:
		var q record.CodingQuestion
		if err := decodeInto(norm, &q); err != nil {
			return nil, err
		}
		return q, nil
	case record.KindQuiz:
		var q record.MCQQuestion
		if err := decodeInto(norm, &q); err != nil {
			return nil, err
		}
		return q, nil
	case record.KindEvaluation:
		var e record.Evaluation
		if err := decodeInto(norm, &e); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, fmt.Errorf("%w: unknown record kind %q", record.ErrInvalidArgument, kind)
}

func decodeInto(norm map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(norm)
}

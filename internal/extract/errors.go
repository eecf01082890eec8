package extract

import (
	"fmt"
	"strings"

	"github.com/cognitio-libera/cognitio/internal/record"
)

// Stage names where extraction gave up.
type Stage string

const (
	// StageNoJSON means the text held no object candidate at all.
	StageNoJSON Stage = "no-json-found"
	// StageParse means a candidate existed but no strategy could parse it.
	StageParse Stage = "parse-error"
	// StageSchema means a mapping was parsed but did not fit the shape.
	StageSchema Stage = "schema-validation-error"
)

// ExtractionError reports a failed extraction. Raw is always the original,
// untrimmed model text. Strategy names the parser that produced the
// rejected mapping and is empty unless Stage is StageSchema.
type ExtractionError struct {
	Kind     record.Kind
	Stage    Stage
	Strategy string
	Raw      string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// FieldError describes why one field of a parsed mapping was rejected.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// StrategyErrors collects the failure of every strategy tried on a candidate.
type StrategyErrors []StrategyError

// StrategyError is one strategy's failure.
type StrategyError struct {
	Strategy string
	Err      error
}

func (s StrategyErrors) Error() string {
	if len(s) == 0 {
		return "no parse strategies configured"
	}
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = fmt.Sprintf("%s: %v", e.Strategy, e.Err)
	}
	return strings.Join(parts, "; ")
}

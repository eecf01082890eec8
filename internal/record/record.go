// Package record declares the three structured shapes a model completion is
// turned into: a coding question, a multiple-choice quiz question, and an
// evaluation of a submitted solution.
package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned for an unrecognized record kind.
var ErrInvalidArgument = errors.New("invalid argument")

// Kind names one of the record shapes.
type Kind string

const (
	KindCoding     Kind = "coding"
	KindQuiz       Kind = "quiz"
	KindEvaluation Kind = "evaluation"
)

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindCoding, KindQuiz, KindEvaluation}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCoding, KindQuiz, KindEvaluation:
		return true
	}
	return false
}

// ParseKind converts user input to a Kind. "mcq" is accepted for quiz.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "mcq" {
		return KindQuiz, nil
	}
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown record kind %q", ErrInvalidArgument, s)
	}
	return k, nil
}

// Record is implemented by every extracted shape.
type Record interface {
	Kind() Kind
}

// CodingQuestion is a LeetCode-style programming challenge.
type CodingQuestion struct {
	Title       string   `json:"title" mapstructure:"title"`
	Description string   `json:"description" mapstructure:"description"`
	Examples    []string `json:"examples" mapstructure:"examples"`
	Constraints []string `json:"constraints" mapstructure:"constraints"`

	// StarterCode holds a function signature with a placeholder body.
	// The prompt forbids a working solution; nothing checks it.
	StarterCode string `json:"starter_code" mapstructure:"starter_code"`
}

func (CodingQuestion) Kind() Kind { return KindCoding }

// MCQQuestion is a multiple-choice question with exactly four options.
type MCQQuestion struct {
	Title              string   `json:"title" mapstructure:"title"`
	Options            []string `json:"options" mapstructure:"options"`
	CorrectOptionIndex int      `json:"correct_option_index" mapstructure:"correct_option_index"`
	Explanation        string   `json:"explanation" mapstructure:"explanation"`
}

func (MCQQuestion) Kind() Kind { return KindQuiz }

// Evaluation is the model's verdict on a submitted solution.
type Evaluation struct {
	IsCorrect   bool     `json:"is_correct" mapstructure:"is_correct"`
	Explanation string   `json:"explanation" mapstructure:"explanation"`
	Tips        []string `json:"tips" mapstructure:"tips"`

	// Rating is expected in 1-10 but not enforced.
	Rating int `json:"rating" mapstructure:"rating"`
}

func (Evaluation) Kind() Kind { return KindEvaluation }

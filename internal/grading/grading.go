// Package grading checks multiple-choice answers locally, without a model
// call.
package grading

import (
	"errors"
	"fmt"

	"github.com/cognitio-libera/cognitio/internal/record"
)

// ErrNotFound is returned when the selected text is not one of the options.
var ErrNotFound = errors.New("option not found")

// CheckAnswer reports whether selected is the correct option of q. The
// selection is matched against the options by exact text.
func CheckAnswer(q record.MCQQuestion, selected string) (bool, error) {
	for i, opt := range q.Options {
		if opt == selected {
			return i == q.CorrectOptionIndex, nil
		}
	}
	return false, fmt.Errorf("%w: %q", ErrNotFound, selected)
}

// CorrectOption returns the text of the correct option, or "" when the
// index does not address an option.
func CorrectOption(q record.MCQQuestion) string {
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectOptionIndex]
}

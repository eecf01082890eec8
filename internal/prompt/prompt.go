// Package prompt renders the instructions sent to the model for each record
// kind. Every structured prompt ends with the strict-JSON directive and a
// literal example object whose field names match the record shape.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/cognitio-libera/cognitio/internal/record"
)

// ErrInvalidArgument is returned for an unrecognized record kind.
var ErrInvalidArgument = record.ErrInvalidArgument

// MaxRecentTopics is how many trailing history titles the "do not repeat"
// clause includes.
const MaxRecentTopics = 5

// JSONDirective closes every structured prompt.
const JSONDirective = "IMPORTANT: Output strictly valid JSON. No markdown formatting. " +
	"Ensure all keys and string values are enclosed in double quotes."

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

type questionData struct {
	Language   string
	Difficulty string
	Avoid      string
	Hard       bool
}

// EvaluationInput is what the grader needs to judge a coding submission.
type EvaluationInput struct {
	Title       string
	Description string
	Language    string
	Submission  string
}

type evaluationData struct {
	EvaluationInput
	Template bool
}

// Build renders the prompt for kind. recentTopics are previously asked
// question titles, oldest first. For KindEvaluation the result is the
// grading instructions without a concrete submission; use BuildEvaluation to
// grade real code.
func Build(kind record.Kind, language, difficulty string, recentTopics []string) (string, error) {
	switch kind {
	case record.KindCoding:
		return renderStructured("coding.tmpl", kind, questionData{
			Language:   language,
			Difficulty: difficulty,
			Avoid:      avoidClause(recentTopics, language, "a different aspect"),
			Hard:       isHard(difficulty),
		})
	case record.KindQuiz:
		return renderStructured("quiz.tmpl", kind, questionData{
			Language:   language,
			Difficulty: difficulty,
			Avoid:      avoidClause(recentTopics, language, "a different, unvisited aspect"),
		})
	case record.KindEvaluation:
		return renderStructured("evaluation.tmpl", kind, evaluationData{
			EvaluationInput: EvaluationInput{Language: language},
			Template:        true,
		})
	}
	return "", fmt.Errorf("%w: unknown record kind %q", ErrInvalidArgument, kind)
}

// BuildEvaluation renders the grading request for a concrete submission.
func BuildEvaluation(in EvaluationInput) string {
	if in.Description == "" {
		in.Description = "MCQ"
	}
	out, err := renderStructured("evaluation.tmpl", record.KindEvaluation, evaluationData{EvaluationInput: in})
	if err != nil {
		// Templates are parsed at init; execution only fails on a programming error.
		panic(err)
	}
	return out
}

// BuildReport renders the coaching report request. The model answers in
// markdown, so no JSON directive is appended.
func BuildReport(entries []record.HistoryEntry) (string, error) {
	history, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	return render("report.tmpl", struct{ History string }{string(history)})
}

func renderStructured(name string, kind record.Kind, data any) (string, error) {
	body, err := render(name, data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n\nResponse format example:\n")
	b.WriteString(record.MustShape(kind).ExampleJSON())
	b.WriteString("\n\n")
	b.WriteString(JSONDirective)
	return b.String(), nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// avoidClause lists at most the last MaxRecentTopics titles. Empty history
// yields "".
func avoidClause(topics []string, language, aspect string) string {
	recent := lastN(topics, MaxRecentTopics)
	if len(recent) == 0 {
		return ""
	}
	return fmt.Sprintf("Previously asked topics/questions: %s. DO NOT repeat these. Choose %s of %s.",
		strings.Join(recent, ", "), aspect, language)
}

func lastN(items []string, n int) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func isHard(difficulty string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(difficulty)), "hard")
}

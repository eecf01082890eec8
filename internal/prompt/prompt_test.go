package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitio-libera/cognitio/internal/record"
)

func TestBuildEndsWithDirectiveAndExample(t *testing.T) {
	for _, kind := range record.Kinds() {
		out, err := Build(kind, "Python", "Easy", nil)
		require.NoError(t, err, kind)

		assert.True(t, strings.HasSuffix(out, JSONDirective), "%s prompt must end with the JSON directive", kind)
		assert.Contains(t, out, record.MustShape(kind).ExampleJSON(), "%s prompt must embed the example", kind)
	}
}

func TestBuildUnknownKind(t *testing.T) {
	_, err := Build(record.Kind("essay"), "Python", "Easy", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildOmitsClauseForEmptyHistory(t *testing.T) {
	out, err := Build(record.KindCoding, "Java", "Medium", nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "Previously asked")
}

func TestBuildKeepsLastFiveTopics(t *testing.T) {
	topics := []string{"Topic One", "Topic Two", "Topic Three", "Topic Four", "Topic Five", "Topic Six"}

	out, err := Build(record.KindQuiz, "PHP", "Easy", topics)
	require.NoError(t, err)

	assert.NotContains(t, out, "Topic One")
	assert.Contains(t, out, "Previously asked topics/questions: Topic Two, Topic Three, Topic Four, Topic Five, Topic Six. DO NOT repeat these.")
}

func TestBuildCodingGuidance(t *testing.T) {
	out, err := Build(record.KindCoding, "Python", "Hard (DSA)", []string{"Two Sum"})
	require.NoError(t, err)

	assert.Contains(t, out, "Generate a Hard (DSA) coding problem in Python (LeetCode style)")
	assert.Contains(t, out, "complex data structures and algorithms")
	assert.Contains(t, out, "DO NOT IMPLEMENT THE SOLUTION")
	assert.Contains(t, out, "Choose a different aspect of Python.")

	easy, err := Build(record.KindCoding, "Python", "Easy", nil)
	require.NoError(t, err)
	assert.NotContains(t, easy, "complex data structures")
}

func TestBuildQuizGuidance(t *testing.T) {
	out, err := Build(record.KindQuiz, "CSS", "Medium", nil)
	require.NoError(t, err)

	assert.Contains(t, out, "multiple-choice question (MCQ) about CSS")
	assert.Contains(t, out, "exactly 4 distinct options")
	assert.Contains(t, out, "(0-3)")
}

func TestBuildEvaluation(t *testing.T) {
	out := BuildEvaluation(EvaluationInput{
		Title:       "Two Sum",
		Description: "Return indices of two numbers adding up to target.",
		Language:    "Python",
		Submission:  "def two_sum(nums, target):\n    return [0, 1]",
	})

	assert.Contains(t, out, "Problem: Two Sum")
	assert.Contains(t, out, "User's Code (Python):\n```\ndef two_sum(nums, target):\n    return [0, 1]\n```")
	assert.True(t, strings.HasSuffix(out, JSONDirective))
	assert.Contains(t, out, `"is_correct": true`)
}

func TestBuildEvaluationDefaultsDescription(t *testing.T) {
	out := BuildEvaluation(EvaluationInput{Title: "Q", Language: "Java", Submission: "B"})
	assert.Contains(t, out, "Description: MCQ")
}

func TestBuildReport(t *testing.T) {
	entries := []record.HistoryEntry{{
		Title:      "Two Sum",
		Mode:       record.ModeCoding,
		Difficulty: "Easy",
		Language:   "Python",
		Submission: "pass",
		Correct:    false,
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	out, err := BuildReport(entries)
	require.NoError(t, err)

	assert.Contains(t, out, "supportive coding coach")
	assert.Contains(t, out, `"question": "Two Sum"`)
	assert.Contains(t, out, "Markdown")
	assert.NotContains(t, out, JSONDirective)
}

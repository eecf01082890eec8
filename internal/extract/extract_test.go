package extract

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitio-libera/cognitio/internal/record"
)

const twoSumJSON = `{
  "title": "Two Sum",
  "description": "Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.",
  "examples": ["Input: nums = [2,7,11,15], target = 9\nOutput: [0,1]"],
  "constraints": ["2 <= nums.length <= 10^4", "Only one valid answer exists."],
  "starter_code": "def two_sum(nums, target):\n    pass"
}`

var twoSum = record.CodingQuestion{
	Title:       "Two Sum",
	Description: "Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.",
	Examples:    []string{"Input: nums = [2,7,11,15], target = 9\nOutput: [0,1]"},
	Constraints: []string{"2 <= nums.length <= 10^4", "Only one valid answer exists."},
	StarterCode: "def two_sum(nums, target):\n    pass",
}

const quizJSON = `{"title": "Which keyword defines a function in Python?", "options": ["func", "def", "function", "lambda"], "correct_option_index": 1, "explanation": "def introduces a function definition."}`

func requireStage(t *testing.T, err error, want Stage) *ExtractionError {
	t.Helper()
	var xerr *ExtractionError
	require.True(t, errors.As(err, &xerr), "expected *ExtractionError, got %T (%v)", err, err)
	assert.Equal(t, want, xerr.Stage, "error: %v", err)
	return xerr
}

func TestCodingRoundTrip(t *testing.T) {
	got, err := Coding(twoSumJSON)
	require.NoError(t, err)
	assert.Equal(t, twoSum, got)
}

func TestCodingEmptyListsAllowed(t *testing.T) {
	got, err := Coding(`{"title":"Hello","description":"Print hello.","examples":[],"constraints":[],"starter_code":"def hello():\n    pass"}`)
	require.NoError(t, err)
	assert.Empty(t, got.Examples)
	assert.Empty(t, got.Constraints)
}

func TestProseWrappedMatchesBare(t *testing.T) {
	wrapped := "Sure! Here is your problem:\n" + twoSumJSON + "\nHope that helps."
	got, err := Coding(wrapped)
	require.NoError(t, err)
	assert.Equal(t, twoSum, got)
}

func TestFencedMatchesBare(t *testing.T) {
	fenced := "```json\n" + quizJSON + "\n```"
	bare, err := Quiz(quizJSON)
	require.NoError(t, err)
	got, err := Quiz(fenced)
	require.NoError(t, err)
	assert.Equal(t, bare, got)
}

func TestSingleQuotedMatchesDoubleQuoted(t *testing.T) {
	single := `{'title': 'X', 'options': ['a', 'b', 'c', 'd'], 'correct_option_index': 0, 'explanation': 'because'}`
	double := `{"title": "X", "options": ["a", "b", "c", "d"], "correct_option_index": 0, "explanation": "because"}`

	want, err := Quiz(double)
	require.NoError(t, err)
	got, err := Quiz(single)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTrailingCommaRecovered(t *testing.T) {
	raw := `{"is_correct": false, "explanation": "Off by one.", "tips": ["Check the loop bound",], "rating": 4,}`
	got, err := Evaluation(raw)
	require.NoError(t, err)
	assert.Equal(t, record.Evaluation{
		IsCorrect:   false,
		Explanation: "Off by one.",
		Tips:        []string{"Check the loop bound"},
		Rating:      4,
	}, got)
}

func TestPythonLiteralRecovered(t *testing.T) {
	raw := `{'is_correct': True, 'explanation': 'Works for all cases.', 'tips': [], 'rating': 9}`

	parsed, err := Default.Parse(raw, record.KindEvaluation)
	require.NoError(t, err)
	assert.Equal(t, "python", parsed.Strategy)

	got, err := Evaluation(raw)
	require.NoError(t, err)
	assert.True(t, got.IsCorrect)
	assert.Equal(t, 9, got.Rating)
	assert.Empty(t, got.Tips)
}

func TestPythonLiteralEscapesMatchDoubleQuoted(t *testing.T) {
	tests := []struct {
		name   string
		python string
		json   string
	}{
		{
			"newline escape",
			`{'is_correct': True, 'explanation': 'line1\nline2', 'tips': [], 'rating': 8}`,
			`{"is_correct": true, "explanation": "line1\nline2", "tips": [], "rating": 8}`,
		},
		{
			"escaped quote",
			`{'is_correct': True, 'explanation': 'It\'s fine', 'tips': ['Don\'t panic'], 'rating': 8}`,
			`{"is_correct": true, "explanation": "It's fine", "tips": ["Don't panic"], "rating": 8}`,
		},
		{
			"double quote inside single",
			`{'is_correct': False, 'explanation': 'print("hi") works', 'tips': [], 'rating': 5,}`,
			`{"is_correct": false, "explanation": "print(\"hi\") works", "tips": [], "rating": 5}`,
		},
		{
			"constant names inside strings",
			`{'is_correct': True, 'explanation': 'Returns None when False', 'tips': ['True is truthy'], 'rating': 7}`,
			`{"is_correct": true, "explanation": "Returns None when False", "tips": ["True is truthy"], "rating": 7}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := Evaluation(tt.json)
			require.NoError(t, err)
			got, err := Evaluation(tt.python)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	parsed, err := Default.Parse(tests[0].python, record.KindEvaluation)
	require.NoError(t, err)
	assert.Equal(t, "python", parsed.Strategy)
	got, err := Evaluation(tests[0].python)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", got.Explanation)
}

func TestPythonNoneIsMissing(t *testing.T) {
	raw := `{'is_correct': True, 'explanation': None, 'tips': [], 'rating': 9}`
	_, err := Evaluation(raw)
	xerr := requireStage(t, err, StageSchema)
	assert.Contains(t, xerr.Error(), "explanation")
}

func TestStrictStrategyPreferred(t *testing.T) {
	parsed, err := Default.Parse(quizJSON, record.KindQuiz)
	require.NoError(t, err)
	assert.Equal(t, "json", parsed.Strategy)
}

func TestMissingRequiredField(t *testing.T) {
	raw := `{"title": "Q", "options": ["a", "b", "c", "d"], "explanation": "e"}`
	rec, err := Extract(raw, record.KindQuiz)
	assert.Nil(t, rec)
	xerr := requireStage(t, err, StageSchema)
	assert.Contains(t, xerr.Error(), "correct_option_index")
}

func TestIndexOutOfRangeRejected(t *testing.T) {
	raw := `{"title": "Q", "options": ["a", "b", "c", "d"], "correct_option_index": 4, "explanation": "e"}`
	_, err := Quiz(raw)
	requireStage(t, err, StageSchema)

	raw = `{"title": "Q", "options": ["a", "b", "c", "d"], "correct_option_index": -1, "explanation": "e"}`
	_, err = Quiz(raw)
	requireStage(t, err, StageSchema)
}

func TestOptionsShape(t *testing.T) {
	tests := map[string]string{
		"string":    `{"title": "Q", "options": "a, b, c, d", "correct_option_index": 0, "explanation": "e"}`,
		"three":     `{"title": "Q", "options": ["a", "b", "c"], "correct_option_index": 0, "explanation": "e"}`,
		"five":      `{"title": "Q", "options": ["a", "b", "c", "d", "e"], "correct_option_index": 0, "explanation": "e"}`,
		"duplicate": `{"title": "Q", "options": ["a", "a", "c", "d"], "correct_option_index": 0, "explanation": "e"}`,
		"numbers":   `{"title": "Q", "options": [1, 2, 3, 4], "correct_option_index": 0, "explanation": "e"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Quiz(raw)
			requireStage(t, err, StageSchema)
		})
	}
}

func TestRatingCoercion(t *testing.T) {
	got, err := Evaluation(`{"is_correct": "true", "explanation": "ok", "tips": [], "rating": "8"}`)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Rating)
	assert.True(t, got.IsCorrect)

	got, err = Evaluation(`{"is_correct": false, "explanation": "ok", "tips": [], "rating": 7.0}`)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Rating)

	_, err = Evaluation(`{"is_correct": false, "explanation": "ok", "tips": [], "rating": 7.5}`)
	requireStage(t, err, StageSchema)

	_, err = Evaluation(`{"is_correct": "maybe", "explanation": "ok", "tips": [], "rating": 7}`)
	requireStage(t, err, StageSchema)
}

func TestRatingNotBounded(t *testing.T) {
	got, err := Evaluation(`{"is_correct": true, "explanation": "ok", "tips": [], "rating": 12}`)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Rating)
}

func TestTextNotCoercedFromNumber(t *testing.T) {
	_, err := Quiz(`{"title": 42, "options": ["a", "b", "c", "d"], "correct_option_index": 0, "explanation": "e"}`)
	requireStage(t, err, StageSchema)
}

func TestBlankTitleRejected(t *testing.T) {
	_, err := Coding(`{"title": "  ", "description": "d", "examples": [], "constraints": [], "starter_code": ""}`)
	requireStage(t, err, StageSchema)
}

func TestUnknownKeysIgnored(t *testing.T) {
	raw := strings.Replace(quizJSON, `"title"`, `"difficulty": "Easy", "title"`, 1)
	got, err := Quiz(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CorrectOptionIndex)
}

func TestStages(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Stage
	}{
		{"empty", "", StageNoJSON},
		{"whitespace", "  \n\t ", StageNoJSON},
		{"prose", "I'm sorry, I cannot generate that question.", StageNoJSON},
		{"reversed braces", "} oops {", StageNoJSON},
		{"not json", "{not json at all}", StageParse},
		{"truncated", `{"title": "Two Sum", "description": "Given`, StageNoJSON},
		{"unbalanced", `Here: {"title": "Two Sum", "options": [} done`, StageParse},
		{"wrong shape", `{"answer": 42}`, StageSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.raw, record.KindQuiz)
			xerr := requireStage(t, err, tt.want)
			assert.Equal(t, tt.raw, xerr.Raw, "raw text must be preserved")
			assert.Equal(t, record.KindQuiz, xerr.Kind)
		})
	}
}

func TestExtractUnknownKind(t *testing.T) {
	_, err := Extract(quizJSON, record.Kind("essay"))
	assert.ErrorIs(t, err, record.ErrInvalidArgument)
}

func TestExtractReturnsConcreteTypes(t *testing.T) {
	rec, err := Extract(twoSumJSON, record.KindCoding)
	require.NoError(t, err)
	_, ok := rec.(record.CodingQuestion)
	assert.True(t, ok, "got %T", rec)
	assert.Equal(t, record.KindCoding, rec.Kind())
}

func TestCandidate(t *testing.T) {
	c, ok := Candidate("  pre {\"a\": {\"b\": 1}} post  ")
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, c)

	c, ok = Candidate("  no braces  ")
	assert.False(t, ok)
	assert.Equal(t, "no braces", c)
}

type failing struct{}

func (failing) Name() string                          { return "never" }
func (failing) Parse(string) (map[string]any, error) { return nil, errors.New("nope") }

func TestCustomStrategyChain(t *testing.T) {
	p := New(nopLogger(), failing{})
	_, err := p.Extract(quizJSON, record.KindQuiz)
	xerr := requireStage(t, err, StageParse)

	var serrs StrategyErrors
	require.True(t, errors.As(xerr, &serrs))
	require.Len(t, serrs, 1)
	assert.Equal(t, "never", serrs[0].Strategy)

	p = New(nopLogger(), failing{}, StrictJSON{})
	got, err := p.Quiz(quizJSON)
	require.NoError(t, err)
	assert.Equal(t, "def", got.Options[got.CorrectOptionIndex])
}

func TestConcurrentExtraction(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Quiz(quizJSON)
			assert.NoError(t, err)
			_, err = Coding(twoSumJSON)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestSchemaErrorNamesStrategy(t *testing.T) {
	_, err := Extract(`{'answer': 42,}`, record.KindEvaluation)
	xerr := requireStage(t, err, StageSchema)
	assert.Equal(t, "python", xerr.Strategy)

	_, err = Extract(`{"answer": 42,}`, record.KindEvaluation)
	xerr = requireStage(t, err, StageSchema)
	assert.Equal(t, "json5", xerr.Strategy)
}

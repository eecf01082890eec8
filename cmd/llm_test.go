package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitio-libera/cognitio/internal/store"
)

func TestPrintEvents(t *testing.T) {
	var buf bytes.Buffer
	printEvents(&buf, nil)
	assert.Contains(t, buf.String(), "No model calls recorded.")

	buf.Reset()
	printEvents(&buf, []store.LLMEventRecord{{
		ID:        7,
		Timestamp: time.Now(),
		LLMRequestEventData: store.LLMRequestEventData{
			Purpose: "quiz-question", Model: "gpt-4o-mini", InputTokens: 120, OutputTokens: 80, Success: false,
		},
	}})
	text := buf.String()
	assert.Contains(t, text, "PURPOSE")
	assert.Contains(t, text, "quiz-question")
	assert.Contains(t, text, "gpt-4o-mini")
	assert.Contains(t, text, "✗")
}

func TestPrintEventNotCaptured(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, &store.LLMEventRecord{
		ID: 3,
		LLMRequestEventData: store.LLMRequestEventData{
			Provider: "mock", Model: "mock", Purpose: "evaluation", RequestBody: "[user]\nrate this",
			ErrorMessage: "boom",
		},
	})
	text := buf.String()
	assert.Contains(t, text, "rate this")
	assert.Contains(t, text, "boom")
	assert.Contains(t, text, "(not captured)")
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf,
		[]store.PurposeUsage{
			{Purpose: "coding-question", Calls: 2, InputTokens: 1000, OutputTokens: 500, Failures: 1},
			{Purpose: "evaluation", Calls: 1, InputTokens: 300, OutputTokens: 200},
		},
		[]store.ModelUsage{
			{Model: "gpt-4o-mini", Calls: 2, InputTokens: 1_000_000, OutputTokens: 1_000_000},
			{Model: "homegrown-7b", Calls: 1, InputTokens: 10, OutputTokens: 10},
		})
	text := buf.String()
	assert.Contains(t, text, "coding-question")
	assert.Contains(t, text, "$0.75")
	assert.Contains(t, text, "TOTAL (partial)")
	assert.Contains(t, text, "No pricing for: homegrown-7b")
}

func TestPrintFailures(t *testing.T) {
	var buf bytes.Buffer
	printFailures(&buf, []store.ExtractionEventRecord{{
		Sequence: 4,
		ExtractionEventData: store.ExtractionEventData{
			Kind: "quiz", Stage: "no-json-found", Model: "mock", RawText: "sorry, no", Error: "no JSON object found",
		},
	}}, true)
	text := buf.String()
	assert.Contains(t, text, "no-json-found")
	assert.Contains(t, text, "no JSON object found")
	assert.Contains(t, text, "sorry, no")
}

func TestQueryOpts(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Int("limit", 20, "")
	cmd.Flags().Duration("since", 0, "")

	opts, err := queryOpts(cmd)
	require.NoError(t, err)
	assert.Equal(t, 20, opts.Limit)
	assert.True(t, opts.From.IsZero())

	require.NoError(t, cmd.Flags().Set("since", "1h"))
	opts, err = queryOpts(cmd)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), opts.From, time.Minute)

	require.NoError(t, cmd.Flags().Set("since", "-1h"))
	_, err = queryOpts(cmd)
	assert.Error(t, err)
}

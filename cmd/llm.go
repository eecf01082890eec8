package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognitio-libera/cognitio/internal/llm"
	"github.com/cognitio-libera/cognitio/internal/store"
	"github.com/cognitio-libera/cognitio/internal/ui/theme"
)

const stampLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the model call and extraction failure log",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := queryOpts(cmd)
		if err != nil {
			return err
		}
		opts.Purpose, _ = cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		printEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		printEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		printUsage(cmd.OutOrStdout(), byPurpose, byModel)
		return nil
	},
}

var llmFailuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List model outputs the extraction pipeline rejected",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := queryOpts(cmd)
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		failures, err := s.EventRepo().QueryExtractionFailures(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query failures: %w", err)
		}
		printFailures(cmd.OutOrStdout(), failures, raw)
		return nil
	},
}

// queryOpts reads the --limit and --since flags shared by list and failures.
func queryOpts(cmd *cobra.Command) (store.QueryOpts, error) {
	limit, _ := cmd.Flags().GetInt("limit")
	since, _ := cmd.Flags().GetDuration("since")
	if since < 0 {
		return store.QueryOpts{}, fmt.Errorf("--since must be positive, got %s", since)
	}
	opts := store.QueryOpts{Limit: limit}
	if since > 0 {
		opts.From = time.Now().Add(-since)
	}
	return opts, nil
}

func printEvents(w io.Writer, events []store.LLMEventRecord) {
	if len(events) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No model calls recorded."))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tPURPOSE\tMODEL\tIN\tOUT\tMS\tOK")
	for _, e := range events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, e.Timestamp.Local().Format(stampLayout), e.Purpose, truncate(e.Model, 28),
			e.InputTokens, e.OutputTokens, e.LatencyMs, mark(e.Success))
	}
	tw.Flush()
}

func printEvent(w io.Writer, e *store.LLMEventRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", e.ID)
	fmt.Fprintf(tw, "Time:\t%s\n", e.Timestamp.Local().Format(stampLayout))
	fmt.Fprintf(tw, "Provider:\t%s\n", e.Provider)
	fmt.Fprintf(tw, "Model:\t%s\n", e.Model)
	fmt.Fprintf(tw, "Purpose:\t%s\n", e.Purpose)
	fmt.Fprintf(tw, "Tokens:\t%d in / %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(tw, "Latency:\t%dms\n", e.LatencyMs)
	fmt.Fprintf(tw, "Success:\t%v\n", e.Success)
	if e.ErrorMessage != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", e.ErrorMessage)
	}
	tw.Flush()

	section(w, "REQUEST", e.RequestBody)
	section(w, "RESPONSE", e.ResponseBody)
}

func section(w io.Writer, name, body string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Heading.Render(name))
	fmt.Fprintln(w, theme.Rule.Render(strings.Repeat("─", 60)))
	if body == "" {
		body = theme.Hint.Render("(not captured)")
	}
	fmt.Fprintln(w, body)
}

func printUsage(w io.Writer, byPurpose []store.PurposeUsage, byModel []store.ModelUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No model usage recorded yet."))
		return
	}

	fmt.Fprintln(w, theme.Heading.Render("Usage by purpose"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PURPOSE\tCALLS\tFAILED\tIN\tOUT\tAVG MS\t")
	var calls, failed, in, out int
	for _, u := range byPurpose {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t\n",
			u.Purpose, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		failed += u.Failures
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t\t\n", calls, failed, in, out)
	tw.Flush()

	if len(byModel) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Heading.Render("Estimated cost (USD)"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MODEL\tCALLS\tIN\tOUT\tCOST\t")
	var total float64
	var unpriced []string
	for _, m := range byModel {
		cost := "?"
		if c := llm.LookupCost(m.Model); c != nil {
			usd := c.Cost(m.InputTokens, m.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, m.Model)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n",
			truncate(m.Model, 32), m.Calls, m.InputTokens, m.OutputTokens, cost)
	}
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(tw, "%s\t\t\t\t%s\t\n", label, formatCost(total))
	tw.Flush()

	if len(unpriced) > 0 {
		fmt.Fprintln(w, theme.Hint.Render("No pricing for: "+strings.Join(unpriced, ", ")))
	}
}

func printFailures(w io.Writer, failures []store.ExtractionEventRecord, raw bool) {
	if len(failures) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No extraction failures recorded."))
		return
	}
	for _, f := range failures {
		strategy := f.Strategy
		if strategy == "" {
			strategy = "-"
		}
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			theme.Label.Render(fmt.Sprintf("#%d", f.Sequence)),
			f.Timestamp.Local().Format(stampLayout),
			f.Kind, f.Stage, strategy)
		fmt.Fprintf(w, "    %s\n", f.Error)
		if f.Model != "" {
			fmt.Fprintln(w, theme.Hint.Render("    model "+f.Model))
		}
		if raw {
			fmt.Fprintln(w, theme.Code.Render(f.RawText))
		}
	}
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().Duration("since", 0, "Only show calls newer than this, e.g. 24h")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (coding-question, quiz-question, evaluation, report)")

	llmFailuresCmd.Flags().IntP("limit", "n", 20, "Number of failures to show")
	llmFailuresCmd.Flags().Duration("since", 0, "Only show failures newer than this, e.g. 24h")
	llmFailuresCmd.Flags().Bool("raw", false, "Print the raw model text of each failure")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd, llmFailuresCmd)
}

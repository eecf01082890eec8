package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognitio-libera/cognitio/internal/prompt"
	"github.com/cognitio-libera/cognitio/internal/ui/theme"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Grade a solution to a coding problem",
	Long: `Send a solution to the model for grading.

The code is read from --file, or from stdin when --file is "-" or omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		file, _ := cmd.Flags().GetString("file")

		code, err := readInput(cmd, file)
		if err != nil {
			return err
		}

		rt, err := newRuntime(ctx, cmd, practiceOverrides(cmd))
		if err != nil {
			return err
		}
		defer rt.Close()

		ev, err := rt.coach.Evaluate(ctx, prompt.EvaluationInput{
			Title:       title,
			Description: description,
			Language:    rt.cfg.Practice.Language,
			Submission:  code,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		verdict := "Incorrect"
		if ev.IsCorrect {
			verdict = "Correct"
		}
		fmt.Fprintln(out, theme.Verdict(ev.IsCorrect, verdict), theme.Hint.Render(fmt.Sprintf("rating %d/10", ev.Rating)))
		fmt.Fprintln(out, ev.Explanation)
		printList(out, "Tips", ev.Tips)
		return nil
	},
}

func init() {
	f := evaluateCmd.Flags()
	f.String("title", "", "Problem title (required)")
	f.String("description", "", "Problem description")
	f.StringP("file", "f", "-", "File containing the solution")
	f.StringP("language", "l", "", "Language of the solution")
	_ = evaluateCmd.MarkFlagRequired("title")
}

// readInput reads path, or stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "" || path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}

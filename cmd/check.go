package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognitio-libera/cognitio/internal/ui/theme"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Send a test prompt to the configured model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Model: %s\n", rt.provider.ModelID())

		text, err := rt.coach.Complete(ctx, "check", "Hello, are you working?")
		if err != nil {
			fmt.Fprintln(out, theme.Verdict(false, "no response"))
			return err
		}
		fmt.Fprintln(out, theme.Verdict(true, "responding"))
		fmt.Fprintln(out, strings.TrimSpace(text))
		return nil
	},
}

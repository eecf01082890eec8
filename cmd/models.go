package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognitio-libera/cognitio/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List Gemini models that support content generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd, map[string]any{"llm.provider": "gemini"})
		if err != nil {
			return err
		}
		lc := cfg.Provider()
		if err := lc.Validate(); err != nil {
			return err
		}

		lister, err := llm.NewModelLister(ctx, lc)
		if err != nil {
			return err
		}
		models, err := lister.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-40s  %-32s  %8s  %8s\n", "Name", "Display Name", "In", "Out")
		fmt.Fprintln(out, strings.Repeat("─", 94))
		for _, m := range models {
			name := strings.TrimPrefix(m.Name, "models/")
			fmt.Fprintf(out, "%-40s  %-32s  %8d  %8d\n",
				truncate(name, 40), truncate(m.DisplayName, 32), m.InputLimit, m.OutputLimit)
		}
		return nil
	},
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cognitio-libera/cognitio/internal/extract"
	"github.com/cognitio-libera/cognitio/internal/logging"
	"github.com/cognitio-libera/cognitio/internal/record"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Run the extraction pipeline on saved model output",
	Long: `Parse raw model text into a record without calling a model.

Prints the record as JSON, or the stage at which extraction failed.
Reads stdin when no file is given. Useful for checking how a captured
response (see "cognitio llm view") is handled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindVal, _ := cmd.Flags().GetString("kind")
		kind, err := record.ParseKind(kindVal)
		if err != nil {
			return err
		}

		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		raw, err := readInput(cmd, path)
		if err != nil {
			return err
		}

		logger := zerolog.Nop()
		if cfg, err := loadConfig(cmd, nil); err == nil {
			if l, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err == nil {
				logger = l
			}
		}
		p := extract.New(logger)

		out := cmd.OutOrStdout()
		parsed, perr := p.Parse(raw, kind)
		rec, err := p.Extract(raw, kind)
		if err != nil {
			var xerr *extract.ExtractionError
			if errors.As(err, &xerr) {
				fmt.Fprintf(out, "stage:    %s\n", xerr.Stage)
				if perr == nil {
					fmt.Fprintf(out, "strategy: %s\n", parsed.Strategy)
				}
				fmt.Fprintf(out, "error:    %v\n", xerr.Err)
			}
			return err
		}

		fmt.Fprintf(out, "strategy: %s\n", parsed.Strategy)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rec)
	},
}

func init() {
	extractCmd.Flags().StringP("kind", "k", "coding", "Record kind: coding, quiz (mcq) or evaluation")
}

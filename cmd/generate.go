package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognitio-libera/cognitio/internal/record"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one question and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		kindVal, _ := cmd.Flags().GetString("kind")
		avoid, _ := cmd.Flags().GetStringSlice("avoid")

		kind, err := record.ParseKind(kindVal)
		if err != nil {
			return err
		}
		if kind == record.KindEvaluation {
			return fmt.Errorf("use the evaluate command to grade a solution")
		}

		rt, err := newRuntime(ctx, cmd, practiceOverrides(cmd))
		if err != nil {
			return err
		}
		defer rt.Close()

		sess, err := newSession(rt.cfg.Practice.Language, rt.cfg.Practice.Difficulty, string(kind), rt.logger)
		if err != nil {
			return err
		}

		var rec record.Record
		switch kind {
		case record.KindCoding:
			rec, err = rt.coach.CodingQuestion(ctx, sess.Language, sess.Difficulty, avoid)
		case record.KindQuiz:
			rec, err = rt.coach.QuizQuestion(ctx, sess.Language, sess.Difficulty, avoid)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rec)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringP("kind", "k", "coding", "Question kind: coding or quiz")
	f.StringP("language", "l", "", "Language")
	f.StringP("difficulty", "d", "", "Difficulty")
	f.StringSlice("avoid", nil, "Titles of previous questions to avoid repeating")
}

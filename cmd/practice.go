package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cognitio-libera/cognitio/internal/grading"
	"github.com/cognitio-libera/cognitio/internal/llm"
	"github.com/cognitio-libera/cognitio/internal/record"
	"github.com/cognitio-libera/cognitio/internal/report"
	"github.com/cognitio-libera/cognitio/internal/session"
	"github.com/cognitio-libera/cognitio/internal/ui/theme"
)

const practiceHelp = `Serve questions one at a time and grade each answer.

Quiz mode: answer with the option's exact text or its number. Text wins when
an option is itself a number; prefix with # (e.g. #2) to pick by position.
Coding mode: type your solution, then a line containing only :submit.

Commands: :refresh, :skip, :score, :mode coding|quiz, :report [--pdf], :help, :quit`

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start an interactive practice session",
	Long:  practiceHelp,
	RunE:  runPractice,
}

func init() {
	f := practiceCmd.Flags()
	f.StringP("mode", "m", "", "Question mode: coding or quiz")
	f.StringP("language", "l", "", "Language to practice: "+strings.Join(record.Languages, ", "))
	f.StringP("difficulty", "d", "", "Difficulty: "+strings.Join(record.Difficulties, ", "))
	f.String("out", "", "Directory for progress reports")
}

func practiceOverrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	for flag, key := range map[string]string{
		"mode":       "practice.mode",
		"language":   "practice.language",
		"difficulty": "practice.difficulty",
		"out":        "report_dir",
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			out[key] = v
		}
	}
	return out
}

func runPractice(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cmd, practiceOverrides(cmd))
	if err != nil {
		return err
	}
	defer rt.Close()

	pc := rt.cfg.Practice
	sess, err := newSession(pc.Language, pc.Difficulty, pc.Mode, rt.logger)
	if err != nil {
		return err
	}

	l := &practiceLoop{
		in:        bufio.NewScanner(os.Stdin),
		out:       cmd.OutOrStdout(),
		sess:      sess,
		gen:       rt.coach,
		grader:    rt.coach,
		reports:   report.NewGenerator(rt.coach),
		reportDir: rt.cfg.ReportDir,
		logger:    rt.logger,
	}
	return l.run(ctx)
}

// newSession validates the practice settings. Languages outside the catalog
// are allowed as typed.
func newSession(language, difficulty, mode string, logger zerolog.Logger) (*session.Session, error) {
	lang, ok := record.CanonicalLanguage(language)
	if !ok {
		logger.Warn().Str("language", language).Msg("language not in catalog; using as given")
		lang = strings.TrimSpace(language)
	}
	diff, ok := record.CanonicalDifficulty(difficulty)
	if !ok {
		return nil, fmt.Errorf("unknown difficulty %q: must be one of %s", difficulty, strings.Join(record.Difficulties, ", "))
	}
	m, ok := record.ParseMode(mode)
	if !ok {
		return nil, fmt.Errorf("unknown mode %q: must be coding or quiz", mode)
	}
	return session.New(lang, diff, m), nil
}

type practiceLoop struct {
	in        *bufio.Scanner
	out       io.Writer
	sess      *session.Session
	gen       session.Generator
	grader    session.Grader
	reports   *report.Generator
	reportDir string
	logger    zerolog.Logger

	code []string
}

func (l *practiceLoop) run(ctx context.Context) error {
	ctx = llm.WithSession(ctx, l.sess.ID.String())
	l.sess.Start()
	fmt.Fprintln(l.out, theme.Title.Render("Cognitio"), theme.Hint.Render(
		fmt.Sprintf("%s · %s · %s mode. Type :help for commands.", l.sess.Language, l.sess.Difficulty, l.sess.Mode())))
	fmt.Fprintln(l.out)

	l.next(ctx)

	for {
		if ctx.Err() != nil {
			break
		}
		line, ok := l.read()
		if !ok {
			break
		}

		trimmed := strings.TrimSpace(line)
		if isCommand(trimmed) {
			if quit := l.command(ctx, trimmed); quit {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, ":") && l.sess.Mode() == record.ModeQuiz {
			fmt.Fprintln(l.out, theme.Incorrect.Render("Unknown command "+strings.Fields(trimmed)[0]), theme.Hint.Render("(:help)"))
			continue
		}

		switch l.sess.Mode() {
		case record.ModeQuiz:
			if trimmed != "" {
				l.answerQuiz(ctx, trimmed)
			}
		case record.ModeCoding:
			l.code = append(l.code, line)
		}
	}

	l.summary()
	return nil
}

func (l *practiceLoop) read() (string, bool) {
	if l.sess.Mode() == record.ModeQuiz || len(l.code) == 0 {
		fmt.Fprint(l.out, theme.Label.Render("> "))
	}
	if !l.in.Scan() {
		fmt.Fprintln(l.out)
		return "", false
	}
	return l.in.Text(), true
}

var commandWords = map[string]bool{
	":quit": true, ":q": true, ":exit": true, ":help": true,
	":refresh": true, ":skip": true, ":score": true, ":mode": true,
	":submit": true, ":report": true,
}

// isCommand reports whether line starts with a loop command word. Other
// lines beginning with ":" are code in coding mode.
func isCommand(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && commandWords[fields[0]]
}

// command handles a command line and reports whether the loop should end.
func (l *practiceLoop) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(l.out, theme.Hint.Render(practiceHelp))
	case ":refresh":
		l.next(ctx)
	case ":skip":
		l.sess.Clear()
		fmt.Fprintln(l.out, theme.Hint.Render("Skipped."))
		l.next(ctx)
	case ":score":
		l.printScore()
	case ":mode":
		if len(fields) < 2 {
			fmt.Fprintln(l.out, theme.Hint.Render("Usage: :mode coding|quiz"))
			return false
		}
		m, ok := record.ParseMode(fields[1])
		if !ok {
			fmt.Fprintln(l.out, theme.Incorrect.Render("Unknown mode "+fields[1]))
			return false
		}
		if m != l.sess.Mode() {
			l.sess.SetMode(m)
			l.next(ctx)
		}
	case ":submit":
		l.submitCoding(ctx)
	case ":report":
		l.writeReport(ctx, len(fields) > 1 && fields[1] == "--pdf")
	default:
		fmt.Fprintln(l.out, theme.Incorrect.Render("Unknown command "+fields[0]), theme.Hint.Render("(:help)"))
	}
	return false
}

// next fetches a question in the current mode and shows it.
func (l *practiceLoop) next(ctx context.Context) {
	l.code = nil
	fmt.Fprintln(l.out, theme.Hint.Render("Generating question..."))
	if err := l.sess.Next(ctx, l.gen); err != nil {
		l.logger.Debug().Err(err).Msg("question generation failed")
		fmt.Fprintln(l.out, theme.Incorrect.Render("Could not generate a question: "+err.Error()))
		fmt.Fprintln(l.out, theme.Hint.Render("Type :refresh to try again."))
		return
	}
	l.show()
}

func (l *practiceLoop) show() {
	rule := theme.Rule.Render(strings.Repeat("─", 60))
	fmt.Fprintln(l.out, rule)

	if q, ok := l.sess.CurrentQuiz(); ok {
		fmt.Fprintln(l.out, theme.Heading.Render(q.Title))
		for i, opt := range q.Options {
			fmt.Fprintf(l.out, "  %s %s\n", theme.Option.Render(fmt.Sprintf("%d)", i+1)), opt)
		}
		fmt.Fprintln(l.out, theme.Hint.Render("Answer with the option number or text."))
		return
	}

	q, ok := l.sess.CurrentCoding()
	if !ok {
		return
	}
	fmt.Fprintln(l.out, theme.Heading.Render(q.Title))
	fmt.Fprintln(l.out, theme.Body.Render(q.Description))
	printList(l.out, "Examples", q.Examples)
	printList(l.out, "Constraints", q.Constraints)
	if q.StarterCode != "" {
		fmt.Fprintln(l.out, theme.Label.Render("Starter code"))
		fmt.Fprintln(l.out, theme.Code.Render(q.StarterCode))
	}
	fmt.Fprintln(l.out, theme.Hint.Render("Type your solution, then :submit on its own line."))
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, theme.Label.Render(label))
	for _, it := range items {
		fmt.Fprintln(w, "  • "+strings.ReplaceAll(it, "\n", "\n    "))
	}
}

func (l *practiceLoop) answerQuiz(ctx context.Context, answer string) {
	q, ok := l.sess.CurrentQuiz()
	if !ok {
		fmt.Fprintln(l.out, theme.Hint.Render("No question on screen. Type :refresh."))
		return
	}
	fb, err := l.sess.SubmitQuiz(resolveOption(q, answer))
	switch {
	case errors.Is(err, grading.ErrNotFound):
		fmt.Fprintln(l.out, theme.Incorrect.Render("That is not one of the options."))
		return
	case err != nil:
		fmt.Fprintln(l.out, theme.Incorrect.Render(err.Error()))
		return
	}

	if fb.Correct {
		fmt.Fprintln(l.out, theme.Verdict(true, "Correct!"))
	} else {
		fmt.Fprintln(l.out, theme.Verdict(false, "Wrong."), "Answer: "+fb.CorrectOption)
	}
	if fb.Explanation != "" {
		fmt.Fprintln(l.out, theme.Body.Render(fb.Explanation))
	}
	fmt.Fprintln(l.out)
	l.next(ctx)
}

// resolveOption maps an answer to option text. An exact text match wins,
// then "#N" or a bare N picks the Nth option. Anything else is returned
// unchanged for grading to reject.
func resolveOption(q record.MCQQuestion, answer string) string {
	for _, opt := range q.Options {
		if opt == answer {
			return answer
		}
	}
	n, err := strconv.Atoi(strings.TrimPrefix(answer, "#"))
	if err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1]
	}
	return answer
}

func (l *practiceLoop) submitCoding(ctx context.Context) {
	if l.sess.Mode() != record.ModeCoding {
		fmt.Fprintln(l.out, theme.Hint.Render(":submit is for coding mode."))
		return
	}
	code := strings.TrimRight(strings.Join(l.code, "\n"), "\n ")
	if strings.TrimSpace(code) == "" {
		fmt.Fprintln(l.out, theme.Hint.Render("Nothing to submit yet."))
		return
	}

	fmt.Fprintln(l.out, theme.Hint.Render("Evaluating..."))
	fb, err := l.sess.SubmitCoding(ctx, l.grader, code)
	if err != nil {
		fmt.Fprintln(l.out, theme.Incorrect.Render("Evaluation failed: "+err.Error()))
		fmt.Fprintln(l.out, theme.Hint.Render("Type :submit to try again, or keep editing."))
		return
	}
	l.code = nil

	fmt.Fprintln(l.out, theme.Verdict(fb.Correct, verdictText(fb.Correct)),
		theme.Hint.Render(fmt.Sprintf("rating %d/10", fb.Evaluation.Rating)))
	fmt.Fprintln(l.out, theme.Body.Render(fb.Explanation))
	printList(l.out, "Tips", fb.Evaluation.Tips)
	fmt.Fprintln(l.out)
	l.next(ctx)
}

func verdictText(correct bool) string {
	if correct {
		return "Correct!"
	}
	return "Not quite."
}

func (l *practiceLoop) printScore() {
	st := l.sess.History().Stats()
	fmt.Fprintf(l.out, "Score: %d / %d", l.sess.Score(), st.Attempted)
	if st.Attempted > 0 {
		fmt.Fprintf(l.out, " (%.0f%%)", st.Accuracy()*100)
	}
	fmt.Fprintln(l.out)
	for _, m := range []record.Mode{record.ModeCoding, record.ModeQuiz} {
		if ms, ok := st.ByMode[m]; ok {
			fmt.Fprintf(l.out, "  %-6s %d / %d\n", m, ms.Correct, ms.Attempted)
		}
	}
}

func (l *practiceLoop) writeReport(ctx context.Context, pdf bool) {
	fmt.Fprintln(l.out, theme.Hint.Render("Generating report..."))
	md, err := l.reports.Markdown(ctx, l.sess.History().Entries())
	if errors.Is(err, report.ErrNoHistory) {
		fmt.Fprintln(l.out, theme.Hint.Render("Answer a question first."))
		return
	}
	if err != nil {
		l.logger.Warn().Err(err).Msg("report generation failed")
		fmt.Fprintln(l.out, theme.Incorrect.Render(md))
		return
	}

	fmt.Fprintln(l.out, md)
	paths, err := report.WriteFiles(l.reportDir, md, pdf)
	if err != nil {
		fmt.Fprintln(l.out, theme.Incorrect.Render("Could not save report: "+err.Error()))
	}
	for _, p := range paths {
		fmt.Fprintln(l.out, theme.Hint.Render("Saved "+p))
	}
}

func (l *practiceLoop) summary() {
	sum := session.BuildSummary(l.sess)
	fmt.Fprintln(l.out, theme.Rule.Render(strings.Repeat("─", 60)))
	fmt.Fprintf(l.out, "Session over: %d / %d correct in %s\n",
		sum.Score, sum.Stats.Attempted, sum.Duration.Round(time.Second))
}

// Package session drives one practice run: it serves questions in the
// chosen mode, grades answers and keeps the attempt history used for topic
// diversity and the progress report.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cognitio-libera/cognitio/internal/grading"
	"github.com/cognitio-libera/cognitio/internal/prompt"
	"github.com/cognitio-libera/cognitio/internal/record"
)

// Feedback is the outcome of one submission.
type Feedback struct {
	Correct     bool
	Explanation string

	// CorrectOption is set for quiz answers.
	CorrectOption string

	// Evaluation is set for coding answers.
	Evaluation *record.Evaluation

	Entry record.HistoryEntry
}

// Next asks gen for a new question in the current mode, passing the titles
// answered so far, and puts it on screen.
func (s *Session) Next(ctx context.Context, gen Generator) error {
	topics := s.history.RecentTopics()

	switch mode := s.Mode(); mode {
	case record.ModeCoding:
		q, err := gen.CodingQuestion(ctx, s.Language, s.Difficulty, topics)
		if err != nil {
			return fmt.Errorf("generate coding question: %w", err)
		}
		s.SetCoding(q)
	case record.ModeQuiz:
		q, err := gen.QuizQuestion(ctx, s.Language, s.Difficulty, topics)
		if err != nil {
			return fmt.Errorf("generate quiz question: %w", err)
		}
		s.SetQuiz(q)
	default:
		return fmt.Errorf("%w: unknown mode %q", record.ErrInvalidArgument, mode)
	}
	return nil
}

// SubmitQuiz grades selected against the quiz question on screen. The
// question is cleared and an entry appended. An unknown option returns
// grading.ErrNotFound and leaves the question in place.
func (s *Session) SubmitQuiz(selected string) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz == nil {
		return Feedback{}, ErrNoQuestion
	}
	q := *s.quiz

	correct, err := grading.CheckAnswer(q, selected)
	if err != nil {
		return Feedback{}, err
	}

	entry := s.newEntryLocked(q.Title, record.ModeQuiz, selected, correct, q.Explanation)
	s.finishLocked(entry)

	return Feedback{
		Correct:       correct,
		Explanation:   q.Explanation,
		CorrectOption: grading.CorrectOption(q),
		Entry:         entry,
	}, nil
}

// SubmitCoding sends code to grader for the coding question on screen. On
// success the question is cleared and an entry appended. A grading failure
// leaves the question in place so the user can resubmit.
func (s *Session) SubmitCoding(ctx context.Context, grader Grader, code string) (Feedback, error) {
	s.mu.Lock()
	if s.coding == nil {
		s.mu.Unlock()
		return Feedback{}, ErrNoQuestion
	}
	q := s.coding
	s.mu.Unlock()

	ev, err := grader.Evaluate(ctx, prompt.EvaluationInput{
		Title:       q.Title,
		Description: q.Description,
		Language:    s.Language,
		Submission:  code,
	})
	if err != nil {
		return Feedback{}, fmt.Errorf("evaluate submission: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.newEntryLocked(q.Title, record.ModeCoding, code, ev.IsCorrect, ev.Explanation)
	entry.Rating = ev.Rating
	if s.coding == q {
		s.finishLocked(entry)
	} else {
		// The question changed while grading; keep the new one on screen.
		s.recordLocked(entry)
	}

	return Feedback{
		Correct:     ev.IsCorrect,
		Explanation: ev.Explanation,
		Evaluation:  &ev,
		Entry:       entry,
	}, nil
}

func (s *Session) newEntryLocked(title string, mode record.Mode, submission string, correct bool, explanation string) record.HistoryEntry {
	return record.HistoryEntry{
		ID:          uuid.New(),
		Title:       title,
		Mode:        mode,
		Difficulty:  s.Difficulty,
		Language:    s.Language,
		Submission:  submission,
		Correct:     correct,
		Explanation: explanation,
		Elapsed:     s.elapsedLocked(),
		Timestamp:   s.now(),
	}
}

func (s *Session) finishLocked(entry record.HistoryEntry) {
	s.recordLocked(entry)
	s.clearLocked()
}

func (s *Session) recordLocked(entry record.HistoryEntry) {
	s.history.Append(entry)
	if entry.Correct {
		s.score++
	}
}

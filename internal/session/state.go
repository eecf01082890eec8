package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cognitio-libera/cognitio/internal/prompt"
	"github.com/cognitio-libera/cognitio/internal/record"
)

// ErrNoQuestion is returned when an answer is submitted with no question
// on screen, or for a question of the other mode.
var ErrNoQuestion = errors.New("no active question")

// Generator produces new questions. *practice.Coach implements it.
type Generator interface {
	CodingQuestion(ctx context.Context, language, difficulty string, recentTopics []string) (record.CodingQuestion, error)
	QuizQuestion(ctx context.Context, language, difficulty string, recentTopics []string) (record.MCQQuestion, error)
}

// Grader judges coding submissions. *practice.Coach implements it.
type Grader interface {
	Evaluate(ctx context.Context, in prompt.EvaluationInput) (record.Evaluation, error)
}

// Option customizes a Session.
type Option func(*Session)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is one practice run: a language, a difficulty, a mode, at most one
// question on screen, a running score and the attempt history.
type Session struct {
	ID         uuid.UUID
	Language   string
	Difficulty string

	mu            sync.Mutex
	mode          record.Mode
	now           func() time.Time
	startTime     time.Time
	coding        *record.CodingQuestion
	quiz          *record.MCQQuestion
	questionStart time.Time
	score         int
	history       History
}

// New creates a session. Call Start before serving questions.
func New(language, difficulty string, mode record.Mode, opts ...Option) *Session {
	s := &Session{
		ID:         uuid.New(),
		Language:   language,
		Difficulty: difficulty,
		mode:       mode,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start marks the beginning of the session.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = s.now()
}

// Duration is the time since Start.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return 0
	}
	return s.now().Sub(s.startTime)
}

// Mode returns the current question mode.
func (s *Session) Mode() record.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches mode. A change of mode clears the current question.
func (s *Session) SetMode(m record.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m != s.mode {
		s.mode = m
		s.clearLocked()
	}
}

// SetCoding puts a coding question on screen and restarts its timer.
func (s *Session) SetCoding(q record.CodingQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.coding = &q
	s.questionStart = s.now()
}

// SetQuiz puts a multiple-choice question on screen and restarts its timer.
func (s *Session) SetQuiz(q record.MCQQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.quiz = &q
	s.questionStart = s.now()
}

// Clear removes the current question, as on refresh or skip.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.coding = nil
	s.quiz = nil
	s.questionStart = time.Time{}
}

// CurrentCoding returns the coding question on screen.
func (s *Session) CurrentCoding() (record.CodingQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coding == nil {
		return record.CodingQuestion{}, false
	}
	return *s.coding, true
}

// CurrentQuiz returns the multiple-choice question on screen.
func (s *Session) CurrentQuiz() (record.MCQQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil {
		return record.MCQQuestion{}, false
	}
	return *s.quiz, true
}

// Elapsed is the time since the current question was shown, or 0.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() time.Duration {
	if s.questionStart.IsZero() {
		return 0
	}
	return s.now().Sub(s.questionStart)
}

// Score is the number of correct answers so far.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// History returns the session's attempt history.
func (s *Session) History() *History {
	return &s.history
}

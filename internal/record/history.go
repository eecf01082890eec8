package record

import (
	"time"

	"github.com/google/uuid"
)

// Mode tags what kind of question a history entry answered.
type Mode string

const (
	ModeCoding Mode = "coding"
	ModeQuiz   Mode = "quiz"
)

// ParseMode accepts "coding" or "quiz" (also "mcq").
func ParseMode(s string) (Mode, bool) {
	k, err := ParseKind(s)
	if err != nil {
		return "", false
	}
	switch k {
	case KindCoding:
		return ModeCoding, true
	case KindQuiz:
		return ModeQuiz, true
	}
	return "", false
}

// HistoryEntry records one attempt. Entries are created once and never
// changed.
type HistoryEntry struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"question"`
	Mode        Mode          `json:"mode"`
	Difficulty  string        `json:"difficulty"`
	Language    string        `json:"language"`
	Submission  string        `json:"user_answer"`
	Correct     bool          `json:"is_correct"`
	Explanation string        `json:"explanation"`
	Rating      int           `json:"rating,omitempty"`
	Elapsed     time.Duration `json:"-"`
	Timestamp   time.Time     `json:"timestamp"`
}

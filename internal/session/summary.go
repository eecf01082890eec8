package session

import "time"

// Summary holds the figures shown when a session ends.
type Summary struct {
	Duration time.Duration
	Score    int
	Stats    Stats
}

// BuildSummary snapshots the session's totals.
func BuildSummary(s *Session) Summary {
	return Summary{
		Duration: s.Duration(),
		Score:    s.Score(),
		Stats:    s.History().Stats(),
	}
}

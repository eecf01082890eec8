package theme

import (
	"strings"
	"testing"
)

func TestVerdict(t *testing.T) {
	if got := Verdict(true, "Correct!"); !strings.Contains(got, "✓ Correct!") {
		t.Errorf("Verdict(true) = %q", got)
	}
	if got := Verdict(false, "Wrong."); !strings.Contains(got, "✗ Wrong.") {
		t.Errorf("Verdict(false) = %q", got)
	}
}

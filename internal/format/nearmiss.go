package format

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// InlineDiff renders the character-level difference between a pending line
// and the line that actually landed in the commit. Deletions show red,
// insertions green, common runs dim. Used when a generated line was edited
// just enough to fall out of attribution, to show the operator how close
// the match was.
func InlineDiff(pending, committed string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(pending, committed, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(Dim + d.Text + Reset)
		case diffmatchpatch.DiffDelete:
			b.WriteString(Red + d.Text + Reset)
		case diffmatchpatch.DiffInsert:
			b.WriteString(Green + d.Text + Reset)
		}
	}
	return b.String()
}

// Similarity scores how much of the pending text survived into the committed
// line, 0.0 (nothing) to 1.0 (identical). Character-based, computed from the
// same semantic diff InlineDiff renders.
func Similarity(pending, committed string) float64 {
	if pending == committed {
		return 1.0
	}
	if pending == "" && committed == "" {
		return 1.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(pending, committed, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var common, total int
	for _, d := range diffs {
		n := len([]rune(d.Text))
		total += n
		if d.Type == diffmatchpatch.DiffEqual {
			common += n
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(2*common) / float64(len([]rune(pending))+len([]rune(committed)))
}

// NearMissLine formats one near miss for terminal output: location, score,
// and the inline diff. The diffed lines are clipped to the terminal width so
// a long generated line cannot wrap the hook output into a wall of text.
func NearMissLine(file string, line int, pending, committed string) string {
	pct := int(Similarity(pending, committed) * 100)
	budget := TermWidth() - 6
	if budget < 20 {
		budget = 20
	}
	return fmt.Sprintf("  %s%s:%d%s (%d%% match)\n    %s",
		Bold, file, line, Reset, pct, InlineDiff(clip(pending, budget), clip(committed, budget)))
}

// clip truncates to at most width runes, marking the cut with an ellipsis.
func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

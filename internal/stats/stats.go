// Package stats derives per-commit authorship counts from attestation
// records and cross-checks them against git's own numstat totals. A mismatch
// means a reconciliation defect (historically: quoted non-ASCII paths failing
// to match any pending line), so it is surfaced, never corrected silently.
package stats

import (
	"fmt"

	"github.com/jensroland/git-attest/internal/attest"
)

// CommitStats are derived on demand, never stored.
type CommitStats struct {
	AIAdditions       int `json:"ai_additions"`
	HumanAdditions    int `json:"human_additions"`
	AIAccepted        int `json:"ai_accepted"`
	GitDiffAddedLines int `json:"git_diff_added_lines"`
}

// InconsistencyError reports that the attested line total diverges from the
// count git reports for the same commit. The stats it accompanies are still
// the best available answer; the caller decides how loudly to warn.
type InconsistencyError struct {
	Commit   string
	Attested int
	Reported int
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("commit %s: attested %d added lines, git reports %d",
		e.Commit, e.Attested, e.Reported)
}

// Compute sums a commit's records by author and acceptance. gitAdded is the
// addition count recomputed independently from `git show --numstat`. When
// the two disagree, Compute returns the stats together with an
// *InconsistencyError; both are meaningful.
func Compute(commit string, records []attest.Record, gitAdded int) (CommitStats, error) {
	cs := CommitStats{GitDiffAddedLines: gitAdded}
	for _, r := range records {
		switch r.Author {
		case attest.AuthorAI:
			cs.AIAdditions++
			if r.Accepted {
				cs.AIAccepted++
			}
		case attest.AuthorHuman:
			cs.HumanAdditions++
		}
	}

	if cs.AIAdditions+cs.HumanAdditions != gitAdded {
		return cs, &InconsistencyError{
			Commit:   commit,
			Attested: cs.AIAdditions + cs.HumanAdditions,
			Reported: gitAdded,
		}
	}
	return cs, nil
}

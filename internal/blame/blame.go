// Package blame reconstructs per-line authorship for a file's current state.
// git blame supplies, for every present line, the commit that introduced it
// together with the line's number and path at that commit; the attestation
// log is then consulted under those original coordinates. Whole-file renames
// cost nothing extra because blame already reports the pre-rename path.
package blame

import (
	"sort"

	"github.com/jensroland/git-attest/internal/attest"
	"github.com/jensroland/git-attest/internal/git"
)

// LineOrigin is the attribution of one line in the file's current state.
// Unattributed lines (commits that predate attestation, or uncommitted edits)
// are reported as such, never guessed at.
type LineOrigin struct {
	Line         int           // 1-based line number today
	Commit       string        // introducing commit SHA, empty when uncommitted
	Author       attest.Author // valid only when attested
	Accepted     bool
	Unattributed bool
}

// File blames a file at its current state and resolves each line against the
// attestation log.
func File(root, file string, log *attest.Log) ([]LineOrigin, error) {
	entries, err := git.BlameFile(root, file)
	if err != nil {
		return nil, err
	}
	return Resolve(entries, log), nil
}

// Range is File restricted to lines start through end.
func Range(root, file string, start, end int, log *attest.Log) ([]LineOrigin, error) {
	entries, err := git.BlameRange(root, file, start, end)
	if err != nil {
		return nil, err
	}
	return Resolve(entries, log), nil
}

// Resolve maps blame entries to attributions. Each entry is looked up under
// its commit-time coordinates (introducing SHA, original path, original line
// number); a miss yields an unattributed origin rather than an error, since
// history from before attestation was enabled is expected to miss.
func Resolve(entries map[int]git.BlameEntry, log *attest.Log) []LineOrigin {
	lines := make([]int, 0, len(entries))
	for n := range entries {
		lines = append(lines, n)
	}
	sort.Ints(lines)

	origins := make([]LineOrigin, 0, len(lines))
	for _, n := range lines {
		e := entries[n]
		o := LineOrigin{Line: n, Unattributed: true}
		if !e.IsUncommitted() {
			o.Commit = e.SHA
			if rec, ok := log.Lookup(e.SHA, e.OrigPath, e.OrigLine); ok {
				o.Author = rec.Author
				o.Accepted = rec.Accepted
				o.Unattributed = false
			}
		}
		origins = append(origins, o)
	}
	return origins
}

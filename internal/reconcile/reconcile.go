// Package reconcile matches the lines a commit's diff reports as added
// against the pending buffer of AI-authored lines, producing one attestation
// record per added line.
package reconcile

import (
	"fmt"

	"github.com/jensroland/git-attest/internal/attest"
	"github.com/jensroland/git-attest/internal/diffscan"
	"github.com/jensroland/git-attest/internal/pending"
)

// NearMiss pairs an added line that fell back to human attribution with a
// leftover pending line for the same file. Purely diagnostic: it is what the
// verbose views render to show why a line was not counted as AI.
type NearMiss struct {
	File      string
	Line      int
	Committed string
	Pending   string
}

// Result is the outcome of reconciling one commit.
type Result struct {
	Records    []attest.Record
	NearMisses []NearMiss
}

// Commit reconciles one commit's raw diff against the pending buffer.
//
// Matching is by content equality, consumed strictly in emission order, not
// by line number, because the diff algorithm can reflow AI-authored text
// around surrounding human edits. A forward-only cursor walks the pending
// sequence: each added line takes the next pending line with equal content,
// and pending lines the cursor skips over are dead, never revisited. That
// makes duplicate handling first-in-first-out and the result deterministic,
// independent of map iteration order. An added line with no match is human.
// A matched line the capture feed flagged as human-edited is also human: it
// no longer reflects unmodified AI output.
//
// Binary files and pure renames contribute no records. A path that fails to
// decode aborts the whole commit: misattributing an entire file silently is
// worse than failing loudly.
func Commit(commit, rawDiff string, buf *pending.Buffer) (*Result, error) {
	files, err := diffscan.Parse(rawDiff)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", shortSHA(commit), err)
	}

	res := &Result{}
	for _, fd := range files {
		if fd.Binary || len(fd.Added) == 0 {
			continue
		}

		pendingLines := buf.Drain(fd.Path)
		used := make([]bool, len(pendingLines))
		cursor := 0

		var unmatched []diffscan.AddedLine
		for _, al := range fd.Added {
			author := attest.AuthorHuman
			accepted := false
			matched := false

			for j := cursor; j < len(pendingLines); j++ {
				if pendingLines[j].Content != al.Content {
					continue
				}
				used[j] = true
				cursor = j + 1
				matched = true
				if !pendingLines[j].Edited {
					author = attest.AuthorAI
					accepted = true
				}
				break
			}

			if !matched {
				unmatched = append(unmatched, al)
			}
			res.Records = append(res.Records, attest.Record{
				Commit:   commit,
				File:     fd.Path,
				Line:     al.Number,
				Author:   author,
				Accepted: accepted,
			})
		}

		res.NearMisses = append(res.NearMisses, pairNearMisses(fd.Path, unmatched, pendingLines, used)...)
	}
	return res, nil
}

// pairNearMisses lines up unmatched added lines with unconsumed pending
// lines in order. Best-effort diagnostics, not part of attribution.
func pairNearMisses(file string, unmatched []diffscan.AddedLine, pendingLines []pending.Line, used []bool) []NearMiss {
	var leftovers []string
	for i, pl := range pendingLines {
		if !used[i] && !pl.Edited {
			leftovers = append(leftovers, pl.Content)
		}
	}

	n := len(unmatched)
	if len(leftovers) < n {
		n = len(leftovers)
	}
	misses := make([]NearMiss, 0, n)
	for i := 0; i < n; i++ {
		misses = append(misses, NearMiss{
			File:      file,
			Line:      unmatched[i].Number,
			Committed: unmatched[i].Content,
			Pending:   leftovers[i],
		})
	}
	return misses
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

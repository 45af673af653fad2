// Package attest holds the durable record of who authored every line a
// commit added. The Log is the source of truth for stats and blame; records
// are created once at commit time and never mutated.
package attest

import (
	"fmt"
	"sync"

	"github.com/jensroland/git-attest/internal/lineset"
)

// Author classifies the origin of an added line.
type Author string

const (
	AuthorAI    Author = "ai"
	AuthorHuman Author = "human"
)

// Record attests a single added line in a single commit. File is always a
// canonical UTF-8 path; escaped forms never reach this package. Accepted is
// true for AI lines committed exactly as the agent produced them.
type Record struct {
	Commit   string `json:"commit"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Author   Author `json:"author"`
	Accepted bool   `json:"accepted"`
}

// Attestation is the per-file view of one commit's records: all attested
// lines of a file, grouped into line sets by authorship.
type Attestation struct {
	FilePath   string          `json:"file_path"`
	AILines    lineset.LineSet `json:"ai_lines"`
	AIAccepted lineset.LineSet `json:"ai_accepted"`
	HumanLines lineset.LineSet `json:"human_lines"`
}

// AuthorshipLog is the ordered collection of attestations for one commit,
// one entry per file touched.
type AuthorshipLog struct {
	Commit       string        `json:"commit"`
	Attestations []Attestation `json:"attestations"`
}

// Log is an append-only, per-commit attestation store. It is explicitly
// owned and injectable so tests can build isolated instances. Appends are
// atomic per commit; once appended, a commit's records are immutable and may
// be read concurrently.
type Log struct {
	mu       sync.RWMutex
	byCommit map[string][]Record
	order    []string // commits in append order, oldest first
}

func NewLog() *Log {
	return &Log{byCommit: make(map[string][]Record)}
}

// Append stores all records for a commit, or none of them. Re-appending a
// commit is rejected: history rewrites produce new commits, never mutations.
func (l *Log) Append(commit string, records []Record) error {
	if commit == "" {
		return fmt.Errorf("append: empty commit id")
	}
	for i, r := range records {
		if r.File == "" {
			return fmt.Errorf("append %s: record %d has empty file path", commit, i)
		}
		if r.Line < 1 {
			return fmt.Errorf("append %s: record %d has line %d", commit, i, r.Line)
		}
		if r.Author != AuthorAI && r.Author != AuthorHuman {
			return fmt.Errorf("append %s: record %d has author %q", commit, i, r.Author)
		}
		if r.Commit != "" && r.Commit != commit {
			return fmt.Errorf("append %s: record %d belongs to commit %s", commit, i, r.Commit)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byCommit[commit]; ok {
		return fmt.Errorf("append: commit %s already attested", commit)
	}

	stored := make([]Record, len(records))
	for i, r := range records {
		r.Commit = commit
		stored[i] = r
	}
	l.byCommit[commit] = stored
	l.order = append(l.order, commit)
	return nil
}

// ForCommit returns the commit's records in diff order. The slice is a copy.
func (l *Log) ForCommit(commit string) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	records := l.byCommit[commit]
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// ForFile returns all records for a canonical path, most recent commit
// first. Backs the per-file attestation history in the CLI.
func (l *Log) ForFile(path string) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Record
	for i := len(l.order) - 1; i >= 0; i-- {
		for _, r := range l.byCommit[l.order[i]] {
			if r.File == path {
				out = append(out, r)
			}
		}
	}
	return out
}

// Lookup finds the record for a specific line of a file in a commit.
func (l *Log) Lookup(commit, file string, line int) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.byCommit[commit] {
		if r.File == file && r.Line == line {
			return r, true
		}
	}
	return Record{}, false
}

// Has reports whether the commit has been attested.
func (l *Log) Has(commit string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byCommit[commit]
	return ok
}

// Commits returns attested commits in append order.
func (l *Log) Commits() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// AuthorshipLog groups a commit's records per file, in the order files first
// appear in the diff.
func (l *Log) AuthorshipLog(commit string) AuthorshipLog {
	return GroupRecords(commit, l.ForCommit(commit))
}

// GroupRecords builds the per-file attestation view from raw line records.
func GroupRecords(commit string, records []Record) AuthorshipLog {
	byFile := make(map[string]*Attestation)
	var fileOrder []string

	for _, r := range records {
		a, ok := byFile[r.File]
		if !ok {
			a = &Attestation{FilePath: r.File}
			byFile[r.File] = a
			fileOrder = append(fileOrder, r.File)
		}
		switch r.Author {
		case AuthorAI:
			a.AILines = a.AILines.Add(r.Line)
			if r.Accepted {
				a.AIAccepted = a.AIAccepted.Add(r.Line)
			}
		case AuthorHuman:
			a.HumanLines = a.HumanLines.Add(r.Line)
		}
	}

	out := AuthorshipLog{Commit: commit}
	for _, f := range fileOrder {
		out.Attestations = append(out.Attestations, *byFile[f])
	}
	return out
}

package attest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jensroland/git-attest/internal/lineset"
)

// Store persists attestations as one JSONL file per commit under the
// attestation log directory (.attest/log/<commit>.jsonl). Lines are grouped
// into compact line sets per (file, author, accepted) so the files stay
// reviewable; Load expands them back into per-line records.
type Store struct {
	Dir string
}

// entry is one JSONL line of a commit's attestation file.
type entry struct {
	Commit   string          `json:"commit"`
	File     string          `json:"file"`
	Lines    lineset.LineSet `json:"lines"`
	Author   Author          `json:"author"`
	Accepted bool            `json:"accepted,omitempty"`
	Ts       string          `json:"ts"`
}

// Write persists all records for a commit atomically: the file appears fully
// written or not at all (temp file + rename). A commit that already has an
// attestation file is rejected, mirroring Log.Append.
func (s Store) Write(commit string, records []Record) error {
	if commit == "" {
		return fmt.Errorf("store write: empty commit id")
	}
	final := s.commitPath(commit)
	if _, err := os.Stat(final); err == nil {
		return fmt.Errorf("store write: commit %s already attested", commit)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	ts := time.Now().UTC().Format(time.RFC3339)
	var buf bytes.Buffer
	for _, e := range groupEntries(commit, records) {
		e.Ts = ts
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(s.Dir, "."+commit+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, final)
}

// Remove deletes a commit's attestation file. Used only by disable/uninit.
func (s Store) Remove(commit string) error {
	err := os.Remove(s.commitPath(commit))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load reads every attestation file into a fresh Log, replaying commits in
// write order (entry timestamp, then filename) so ForFile recency holds.
func (s Store) Load() (*Log, error) {
	log := NewLog()

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return log, nil
		}
		return nil, err
	}

	var files []commitFile

	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".jsonl") {
			continue
		}
		cf, err := s.readCommitFile(de.Name())
		if err != nil {
			return nil, err
		}
		files = append(files, cf)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ts != files[j].ts {
			return files[i].ts < files[j].ts
		}
		return files[i].name < files[j].name
	})

	for _, cf := range files {
		if err := log.Append(cf.commit, cf.records); err != nil {
			return nil, fmt.Errorf("load %s: %w", cf.name, err)
		}
	}
	return log, nil
}

type commitFile struct {
	name    string
	ts      string
	commit  string
	records []Record
}

func (s Store) readCommitFile(name string) (commitFile, error) {
	cf := commitFile{name: name}

	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		return cf, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return cf, fmt.Errorf("%s: %w", name, err)
		}
		if cf.commit == "" {
			cf.commit = e.Commit
			cf.ts = e.Ts
		}
		for _, n := range e.Lines.Lines() {
			cf.records = append(cf.records, Record{
				Commit:   e.Commit,
				File:     e.File,
				Line:     n,
				Author:   e.Author,
				Accepted: e.Accepted,
			})
		}
	}
	// A commit that added no attributable lines (deletion-only, pure rename,
	// empty commit) writes a zero-entry file. The filename still carries the
	// commit id, and the commit must stay registered so Has reports it
	// attested and a re-run does not collide with the existing file.
	if cf.commit == "" {
		cf.commit = strings.TrimSuffix(name, ".jsonl")
	}
	return cf, scanner.Err()
}

func (s Store) commitPath(commit string) string {
	return filepath.Join(s.Dir, commit+".jsonl")
}

// groupEntries folds per-line records into (file, author, accepted) groups,
// preserving the order groups first appear in the diff.
func groupEntries(commit string, records []Record) []entry {
	type key struct {
		file     string
		author   Author
		accepted bool
	}
	byKey := make(map[key]*entry)
	var order []key

	for _, r := range records {
		k := key{r.File, r.Author, r.Accepted}
		e, ok := byKey[k]
		if !ok {
			e = &entry{Commit: commit, File: r.File, Author: r.Author, Accepted: r.Accepted}
			byKey[k] = e
			order = append(order, k)
		}
		e.Lines = e.Lines.Add(r.Line)
	}

	out := make([]entry, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

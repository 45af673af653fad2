// Package index maintains a throwaway SQLite cache over the attestation log.
// The JSONL files under .attest/log/ remain the source of truth; the index
// exists so stats and blame queries over large histories do not reparse
// every file. It lives under .git/ and is rebuilt whenever the log is newer.
package index

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jensroland/git-attest/internal/format"
	"github.com/jensroland/git-attest/internal/lineset"
	"github.com/jensroland/git-attest/internal/project"
)

// IsStale returns true if the index needs rebuilding.
func IsStale(paths project.Paths) bool {
	info, err := os.Stat(paths.IndexDB)
	if err != nil {
		return true
	}
	indexMtime := info.ModTime()

	entries, err := os.ReadDir(paths.LogDir)
	if err != nil {
		return false
	}

	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		fInfo, err := e.Info()
		if err != nil {
			continue
		}
		if fInfo.ModTime().After(indexMtime) {
			return true
		}
	}
	return false
}

// logEntry matches the JSONL schema the attestation store writes: one line
// per (file, author, accepted) group with a compact line set.
type logEntry struct {
	Commit   string          `json:"commit"`
	File     string          `json:"file"`
	Lines    lineset.LineSet `json:"lines"`
	Author   string          `json:"author"`
	Accepted bool            `json:"accepted"`
	Ts       string          `json:"ts"`
}

// Rebuild drops and recreates the SQLite index from the attestation log,
// expanding line sets into one row per attributed line.
func Rebuild(paths project.Paths, quiet bool) (*sql.DB, error) {
	_ = os.MkdirAll(paths.CacheDir, 0o755)
	_ = os.Remove(paths.IndexDB)

	db, err := sql.Open("sqlite", paths.IndexDB)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE attestations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			commit_sha TEXT NOT NULL,
			file TEXT NOT NULL,
			line INTEGER NOT NULL,
			author TEXT NOT NULL,
			accepted INTEGER NOT NULL DEFAULT 0,
			ts TEXT NOT NULL,
			source_file TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	for _, idx := range []string{
		"CREATE INDEX idx_commit ON attestations(commit_sha)",
		"CREATE INDEX idx_file ON attestations(file)",
		"CREATE INDEX idx_lookup ON attestations(commit_sha, file, line)",
		"CREATE INDEX idx_author ON attestations(author)",
	} {
		if _, err := db.Exec(idx); err != nil {
			db.Close()
			return nil, fmt.Errorf("create index: %w", err)
		}
	}

	lineCount := 0
	fileCount := 0

	if _, err := os.Stat(paths.LogDir); err == nil {
		entries, _ := os.ReadDir(paths.LogDir)

		// Sort by name for deterministic ordering
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name() < entries[j].Name()
		})

		tx, err := db.Begin()
		if err != nil {
			db.Close()
			return nil, err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO attestations
			(commit_sha, file, line, author, accepted, ts, source_file)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			tx.Rollback()
			db.Close()
			return nil, err
		}
		defer stmt.Close()

		for _, e := range entries {
			if !strings.HasSuffix(e.Name(), ".jsonl") {
				continue
			}
			fileCount++

			jsonlPath := filepath.Join(paths.LogDir, e.Name())
			f, err := os.Open(jsonlPath)
			if err != nil {
				continue
			}

			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				var rec logEntry
				if err := json.Unmarshal([]byte(line), &rec); err != nil {
					continue
				}

				for _, n := range rec.Lines.Lines() {
					if _, err := stmt.Exec(rec.Commit, rec.File, n, rec.Author, rec.Accepted, rec.Ts, e.Name()); err != nil {
						f.Close()
						tx.Rollback()
						db.Close()
						return nil, fmt.Errorf("insert from %s: %w", e.Name(), err)
					}
					lineCount++
				}
			}
			f.Close()
		}

		if err := tx.Commit(); err != nil {
			db.Close()
			return nil, err
		}
	}

	if !quiet {
		fmt.Fprintf(os.Stderr, "%sIndex rebuilt: %d attributed lines from %d commits%s\n\n", format.Dim, lineCount, fileCount, format.Reset)
	}

	return db, nil
}

// Open returns a database connection, rebuilding the index if stale.
func Open(paths project.Paths, forceRebuild bool) (*sql.DB, error) {
	if forceRebuild || IsStale(paths) {
		return Rebuild(paths, false)
	}
	db, err := sql.Open("sqlite", paths.IndexDB)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// AuthorTotals sums attributed lines per author across the whole log, or for
// a single file when file is non-empty.
func AuthorTotals(db *sql.DB, file string) (ai, aiAccepted, human int, err error) {
	query := "SELECT author, accepted, COUNT(*) FROM attestations"
	var args []interface{}
	if file != "" {
		query += " WHERE file = ?"
		args = append(args, file)
	}
	query += " GROUP BY author, accepted"

	rows, err := db.Query(query, args...)
	if err != nil {
		return 0, 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var author string
		var accepted bool
		var n int
		if err := rows.Scan(&author, &accepted, &n); err != nil {
			return 0, 0, 0, err
		}
		switch author {
		case "ai":
			ai += n
			if accepted {
				aiAccepted += n
			}
		case "human":
			human += n
		}
	}
	return ai, aiAccepted, human, rows.Err()
}

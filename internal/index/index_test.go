package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jensroland/git-attest/internal/attest"
	"github.com/jensroland/git-attest/internal/project"
)

func setupTestPaths(t *testing.T) project.Paths {
	t.Helper()
	tmpDir := t.TempDir()

	paths := project.NewPaths(tmpDir)
	if err := os.MkdirAll(paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(paths.CacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return paths
}

func writeAttestation(t *testing.T, paths project.Paths, commit string, records []attest.Record) {
	t.Helper()
	store := attest.Store{Dir: paths.LogDir}
	if err := store.Write(commit, records); err != nil {
		t.Fatalf("store write: %v", err)
	}
}

func TestRebuild_ExpandsLineSets(t *testing.T) {
	paths := setupTestPaths(t)
	writeAttestation(t, paths, "c1", []attest.Record{
		{File: "a.go", Line: 1, Author: attest.AuthorAI, Accepted: true},
		{File: "a.go", Line: 2, Author: attest.AuthorAI, Accepted: true},
		{File: "a.go", Line: 3, Author: attest.AuthorHuman},
	})

	db, err := Rebuild(paths, true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM attestations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("rows = %d, want 3 (one per line)", n)
	}

	var author string
	var accepted bool
	err = db.QueryRow(
		"SELECT author, accepted FROM attestations WHERE commit_sha = ? AND file = ? AND line = ?",
		"c1", "a.go", 2).Scan(&author, &accepted)
	if err != nil {
		t.Fatal(err)
	}
	if author != "ai" || !accepted {
		t.Errorf("line 2 = %s/%v, want accepted ai", author, accepted)
	}
}

func TestRebuild_EmptyLog(t *testing.T) {
	paths := setupTestPaths(t)

	db, err := Rebuild(paths, true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM attestations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestRebuild_UTF8Paths(t *testing.T) {
	paths := setupTestPaths(t)
	writeAttestation(t, paths, "c1", []attest.Record{
		{File: "中文文件.txt", Line: 1, Author: attest.AuthorAI, Accepted: true},
	})

	db, err := Rebuild(paths, true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var file string
	if err := db.QueryRow("SELECT file FROM attestations WHERE line = 1").Scan(&file); err != nil {
		t.Fatal(err)
	}
	if file != "中文文件.txt" {
		t.Errorf("file = %q, want canonical UTF-8 path", file)
	}
}

// A garbage line in a log file is skipped; the rows that do land must match
// the count Rebuild reports, with no phantom increments for failed inserts.
func TestRebuild_SkipsMalformedEntries(t *testing.T) {
	paths := setupTestPaths(t)
	raw := "not json at all\n" +
		`{"commit":"c1","file":"a.go","lines":"1-2","author":"ai","accepted":true,"ts":"2026-01-01T00:00:00Z"}` + "\n"
	if err := os.WriteFile(filepath.Join(paths.LogDir, "c1.jsonl"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := Rebuild(paths, true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM attestations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2 from the one valid entry", n)
	}
}

func TestIsStale(t *testing.T) {
	paths := setupTestPaths(t)

	// No index yet: stale by definition.
	if !IsStale(paths) {
		t.Error("missing index reported fresh")
	}

	db, err := Rebuild(paths, true)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	if IsStale(paths) {
		t.Error("fresh index reported stale")
	}

	// A log file newer than the index marks it stale.
	time.Sleep(10 * time.Millisecond)
	writeAttestation(t, paths, "c2", []attest.Record{
		{File: "b.go", Line: 1, Author: attest.AuthorHuman},
	})
	now := time.Now()
	if err := os.Chtimes(filepath.Join(paths.LogDir, "c2.jsonl"), now, now); err != nil {
		t.Fatal(err)
	}
	if !IsStale(paths) {
		t.Error("newer log file not detected")
	}
}

func TestOpen_RebuildsWhenStale(t *testing.T) {
	paths := setupTestPaths(t)
	writeAttestation(t, paths, "c1", []attest.Record{
		{File: "a.go", Line: 1, Author: attest.AuthorAI, Accepted: true},
	})

	db, err := Open(paths, false)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM attestations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

func TestAuthorTotals(t *testing.T) {
	paths := setupTestPaths(t)
	writeAttestation(t, paths, "c1", []attest.Record{
		{File: "a.go", Line: 1, Author: attest.AuthorAI, Accepted: true},
		{File: "a.go", Line: 2, Author: attest.AuthorAI, Accepted: true},
		{File: "a.go", Line: 3, Author: attest.AuthorHuman},
		{File: "b.go", Line: 1, Author: attest.AuthorHuman},
	})

	db, err := Rebuild(paths, true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ai, aiAccepted, human, err := AuthorTotals(db, "")
	if err != nil {
		t.Fatal(err)
	}
	if ai != 2 || aiAccepted != 2 || human != 2 {
		t.Errorf("totals = %d/%d/%d, want 2/2/2", ai, aiAccepted, human)
	}

	ai, _, human, err = AuthorTotals(db, "a.go")
	if err != nil {
		t.Fatal(err)
	}
	if ai != 2 || human != 1 {
		t.Errorf("a.go totals = %d/%d, want 2/1", ai, human)
	}
}

package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// setupGitRepo creates a temp git repo with an initial commit containing a file.
func setupGitRepo(t *testing.T, fileName string, content string) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test",
			"GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=Test",
			"GIT_COMMITTER_EMAIL=test@test.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	run("init")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test")

	filePath := filepath.Join(dir, fileName)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "--", fileName)
	run("commit", "-m", "initial commit")

	return dir
}

// runGit runs a git command inside dir, failing the test on error.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@test.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return string(out)
}

func TestHeadSHA(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "hello\n")

	sha := HeadSHA(dir)
	if len(sha) != 40 {
		t.Errorf("expected 40-char SHA, got %q", sha)
	}

	empty := t.TempDir()
	if got := HeadSHA(empty); got != "" {
		t.Errorf("HeadSHA outside a repo = %q, want empty", got)
	}
}

func TestShowPatch(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\nline2\n")
	sha := HeadSHA(dir)

	raw, err := ShowPatch(dir, sha)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(raw, "diff --git a/test.txt b/test.txt") {
		t.Errorf("patch missing diff header:\n%s", raw)
	}
	if !strings.Contains(raw, "+line1") || !strings.Contains(raw, "+line2") {
		t.Errorf("patch missing added lines:\n%s", raw)
	}
	// --format= suppresses the commit message block.
	if strings.Contains(raw, "initial commit") {
		t.Errorf("patch includes commit message:\n%s", raw)
	}
}

func TestShowPatch_QuotedUTF8Path(t *testing.T) {
	dir := setupGitRepo(t, "中文文件.txt", "第一行\n第二行\n第三行\n")
	sha := HeadSHA(dir)

	raw, err := ShowPatch(dir, sha)
	if err != nil {
		t.Fatal(err)
	}
	// With core.quotePath at its default git octal-escapes the path.
	if !strings.Contains(raw, `"b/\344\270\255\346\226\207`) {
		t.Errorf("expected quoted octal path in patch:\n%s", raw)
	}
}

func TestNumstatAdded(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "1\n2\n3\n")

	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x\ny\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// PNG magic bytes so git treats the file as binary.
	if err := os.WriteFile(filepath.Join(dir, "img.png"), []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "second")

	added, err := NumstatAdded(dir, HeadSHA(dir))
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2 (binary excluded)", added)
	}
}

func TestShowFile(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\nline2\n")

	content, err := ShowFile(dir, "HEAD", "test.txt")
	if err != nil {
		t.Fatal(err)
	}
	if content != "line1\nline2\n" {
		t.Errorf("content = %q", content)
	}

	if _, err := ShowFile(dir, "HEAD", "missing.txt"); err == nil {
		t.Error("expected error for path absent at ref")
	}
}

func TestBlameFile(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\nline2\nline3\n")
	sha := HeadSHA(dir)

	entries, err := BlameFile(dir, "test.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for n := 1; n <= 3; n++ {
		e, ok := entries[n]
		if !ok {
			t.Fatalf("missing entry for line %d", n)
		}
		if e.SHA != sha {
			t.Errorf("line %d SHA = %s, want %s", n, e.SHA, sha)
		}
		if e.OrigLine != n {
			t.Errorf("line %d OrigLine = %d, want %d", n, e.OrigLine, n)
		}
		if e.OrigPath != "test.txt" {
			t.Errorf("line %d OrigPath = %q", n, e.OrigPath)
		}
	}
}

func TestBlameRange(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\nline2\nline3\nline4\nline5\n")

	entries, err := BlameRange(dir, "test.txt", 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for _, n := range []int{1, 5} {
		if _, ok := entries[n]; ok {
			t.Errorf("line %d outside range present", n)
		}
	}
}

func TestBlameFile_FollowsRename(t *testing.T) {
	dir := setupGitRepo(t, "old.txt", "line1\nline2\nline3\n")
	firstSHA := HeadSHA(dir)

	runGit(t, dir, "mv", "old.txt", "new.txt")
	runGit(t, dir, "commit", "-m", "rename")

	entries, err := BlameFile(dir, "new.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// Content is unchanged so blame points past the rename at the original
	// commit under the original path.
	for n := 1; n <= 3; n++ {
		if entries[n].SHA != firstSHA {
			t.Errorf("line %d SHA = %s, want pre-rename %s", n, entries[n].SHA, firstSHA)
		}
		if entries[n].OrigPath != "old.txt" {
			t.Errorf("line %d OrigPath = %q, want old.txt", n, entries[n].OrigPath)
		}
	}
}

func TestBlameFile_UTF8Path(t *testing.T) {
	dir := setupGitRepo(t, "中文文件.txt", "第一行\n第二行\n")

	entries, err := BlameFile(dir, "中文文件.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].OrigPath != "中文文件.txt" {
		t.Errorf("OrigPath = %q, want decoded UTF-8 path", entries[1].OrigPath)
	}
}

func TestBlameFile_Uncommitted(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\nline2\n")

	if err := os.WriteFile(filepath.Join(dir, "test.txt"), []byte("line1\nline2\nline3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := BlameFile(dir, "test.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !entries[3].IsUncommitted() {
		t.Errorf("new uncommitted line SHA = %s, want all zeros", entries[3].SHA)
	}
	if entries[1].IsUncommitted() {
		t.Error("committed line reported as uncommitted")
	}
}

func TestParseLinePorcelain(t *testing.T) {
	fixture := "0123456789abcdef0123456789abcdef01234567 2 1 1\n" +
		"author Test\n" +
		"author-mail <test@test.com>\n" +
		"summary rename\n" +
		"filename \"\\344\\270\\255.txt\"\n" +
		"\tsome content\n"

	entries, err := ParseLinePorcelain([]byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	e, ok := entries[1]
	if !ok {
		t.Fatal("missing entry for line 1")
	}
	if e.OrigLine != 2 {
		t.Errorf("OrigLine = %d, want 2", e.OrigLine)
	}
	if e.OrigPath != "中.txt" {
		t.Errorf("OrigPath = %q, want decoded form", e.OrigPath)
	}
}

package project

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Paths holds all relevant directories for an attest-enabled repo. The
// attestation log is versioned alongside the code; the feed and the index
// live under .git/ so they never enter a commit.
type Paths struct {
	Root     string // git repo root
	LogDir   string // .attest/log/
	CacheDir string // .git/attest/
	IndexDB  string // .git/attest/index.db
	FeedPath string // .git/attest/feed.jsonl
}

// FindRoot returns the git project root, preferring ATTEST_PROJECT_DIR if set.
func FindRoot() (string, error) {
	if dir := os.Getenv("ATTEST_PROJECT_DIR"); dir != "" {
		return dir, nil
	}
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}

// NewPaths constructs all path constants from a project root.
func NewPaths(root string) Paths {
	return Paths{
		Root:     root,
		LogDir:   filepath.Join(root, ".attest", "log"),
		CacheDir: filepath.Join(root, ".git", "attest"),
		IndexDB:  filepath.Join(root, ".git", "attest", "index.db"),
		FeedPath: filepath.Join(root, ".git", "attest", "feed.jsonl"),
	}
}

// IsInitialized returns true if the .attest/ directory exists.
func IsInitialized(root string) bool {
	info, err := os.Stat(filepath.Join(root, ".attest"))
	return err == nil && info.IsDir()
}

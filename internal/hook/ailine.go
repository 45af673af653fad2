// Package hook implements the two integration points of the engine: the
// ai-line hook agent integrations call when they write lines into the
// working tree, and the post-commit hook that reconciles the capture feed
// against the commit that just landed. Hooks never fail a git operation:
// anything unexpected is logged to the debug log and swallowed.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jensroland/git-attest/internal/debug"
	"github.com/jensroland/git-attest/internal/pending"
	"github.com/jensroland/git-attest/internal/project"
)

// aiLinePayload is the stdin payload agent integrations send per write. A
// multi-line content block is split into individual feed entries so the
// reconciler can match line by line.
type aiLinePayload struct {
	File    string `json:"file"`
	Content string `json:"content"`
	Edited  bool   `json:"edited,omitempty"`
}

// HandleAILine reads an ai-line payload from stdin and appends its lines to
// the capture feed. File paths are stored relative to the repo root in
// canonical UTF-8, the same form the reconciler decodes from diff headers.
func HandleAILine(r io.Reader) error {
	root, err := project.FindRoot()
	if err != nil {
		return err
	}
	if !project.IsInitialized(root) {
		return nil
	}
	paths := project.NewPaths(root)

	raw, err := io.ReadAll(r)
	if err != nil {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("ai-line: failed to read stdin: %v", err), nil)
		return nil
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}

	var payload aiLinePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("ai-line: failed to parse payload: %v", err), nil)
		return nil
	}
	if payload.File == "" {
		debug.Log(paths.CacheDir, "hook.log", "ai-line: payload without file, dropped", nil)
		return nil
	}

	file := relativizePath(payload.File, root)
	entries := splitContent(file, payload.Content, payload.Edited)
	if len(entries) == 0 {
		return nil
	}

	if err := pending.AppendFeed(paths.FeedPath, entries); err != nil {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("ai-line: feed append failed: %v", err), nil)
		return nil
	}

	debug.Log(paths.CacheDir, "hook.log",
		fmt.Sprintf("ai-line: recorded %d line(s) for %s", len(entries), file), nil)
	return nil
}

// splitContent turns a content block into one feed entry per line. A single
// trailing newline is not an extra empty line.
func splitContent(file, content string, edited bool) []pending.Entry {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	entries := make([]pending.Entry, 0, len(lines))
	for _, l := range lines {
		entries = append(entries, pending.Entry{File: file, Content: l, Edited: edited})
	}
	return entries
}

// relativizePath converts an absolute path inside the repo to a root-relative
// one. Paths outside the repo or already relative pass through unchanged.
func relativizePath(path, root string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

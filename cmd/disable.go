package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jensroland/git-attest/internal/project"
)

// RunDisable handles the "disable" subcommand.
func RunDisable(args []string) {
	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)
	cmdDisable(paths, root)
}

func cmdDisable(paths project.Paths, projectRoot string) {
	var removed []string

	// 1. Remove .attest/ (the versioned log)
	attestDir := filepath.Join(projectRoot, ".attest")
	if info, err := os.Stat(attestDir); err == nil && info.IsDir() {
		_ = os.RemoveAll(attestDir)
		removed = append(removed, ".attest/")
	}

	// 2. Remove .git/attest/ (feed, index, debug logs)
	if info, err := os.Stat(paths.CacheDir); err == nil && info.IsDir() {
		_ = os.RemoveAll(paths.CacheDir)
		removed = append(removed, ".git/attest/")
	}

	// 3. Clean the post-commit hook
	cleanGitHook(filepath.Join(projectRoot, ".git"), "post-commit", postCommitMarker, &removed)

	if len(removed) > 0 {
		for _, item := range removed {
			fmt.Printf("  Removed %s\n", item)
		}
		fmt.Println()
		fmt.Println("attest tracking removed from this repo.")
		fmt.Println("Run 'git-attest enable' to re-initialize.")
	} else {
		fmt.Println("attest is not initialized in this repo.")
	}
}

// cleanGitHook removes the attest section from a git hook file.
func cleanGitHook(gitDir, hookName, marker string, removed *[]string) {
	hookFile := filepath.Join(gitDir, "hooks", hookName)
	data, err := os.ReadFile(hookFile)
	if err != nil {
		return
	}
	content := string(data)
	if !strings.Contains(content, marker) {
		return
	}

	lines := strings.Split(content, "\n")
	var cleaned []string
	skip := false
	for _, line := range lines {
		if strings.Contains(line, marker) {
			skip = true
			// Remove preceding blank line
			if len(cleaned) > 0 && strings.TrimSpace(cleaned[len(cleaned)-1]) == "" {
				cleaned = cleaned[:len(cleaned)-1]
			}
			continue
		}
		if skip {
			stripped := strings.TrimSpace(line)
			// Skip the command line(s) following the marker
			if strings.HasPrefix(stripped, "git-attest ") || strings.HasPrefix(stripped, "#") {
				continue
			}
			skip = false
		}
		cleaned = append(cleaned, line)
	}

	remaining := strings.TrimSpace(strings.Join(cleaned, "\n"))
	if remaining == "" || remaining == "#!/usr/bin/env bash" {
		_ = os.Remove(hookFile)
		*removed = append(*removed, fmt.Sprintf(".git/hooks/%s (deleted)", hookName))
	} else {
		_ = os.WriteFile(hookFile, []byte(strings.Join(cleaned, "\n")), 0o755)
		*removed = append(*removed, fmt.Sprintf(".git/hooks/%s (cleaned)", hookName))
	}
}

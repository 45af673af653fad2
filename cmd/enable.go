package cmd

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const postCommitMarker = "# attest: reconcile commit"

// RunEnable handles the "enable" subcommand.
func RunEnable(args []string) {
	fs := flag.NewFlagSet("enable", flag.ExitOnError)
	fs.Parse(args)

	enableRepo()
}

func enableRepo() {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: not inside a git repository")
		os.Exit(1)
	}
	projDir := strings.TrimSpace(string(out))

	fmt.Printf("Initializing attest in %s\n", projDir)

	// 1. Create .attest/log/
	logDir := filepath.Join(projDir, ".attest", "log")
	_ = os.MkdirAll(logDir, 0o755)

	// .gitattributes for clean merging
	gitattr := filepath.Join(projDir, ".attest", ".gitattributes")
	if _, err := os.Stat(gitattr); os.IsNotExist(err) {
		_ = os.WriteFile(gitattr, []byte("*.jsonl merge=union\n"), 0o644)
		fmt.Println("  ✓ Created .attest/ with merge=union strategy")
	} else {
		fmt.Println("  ✓ .attest/ already exists")
	}

	// README
	readme := filepath.Join(projDir, ".attest", "README")
	if _, err := os.Stat(readme); os.IsNotExist(err) {
		_ = os.WriteFile(readme, []byte(`This directory is maintained by git-attest.
It records, per commit, which added lines were AI-authored and which were
written by humans.

JSONL files in log/ are one-per-commit, append-only and merge cleanly across
branches. Do not edit these files manually.
`), 0o644)
	}

	// 2. Local cache
	cacheDir := filepath.Join(projDir, ".git", "attest", "logs")
	_ = os.MkdirAll(cacheDir, 0o755)
	fmt.Println("  ✓ Local cache at .git/attest/")

	// 3. Post-commit hook
	hookDir := filepath.Join(projDir, ".git", "hooks")
	postCommit := filepath.Join(hookDir, "post-commit")

	if data, err := os.ReadFile(postCommit); err == nil && strings.Contains(string(data), postCommitMarker) {
		fmt.Println("  ✓ Post-commit hook already installed")
	} else {
		_ = os.MkdirAll(hookDir, 0o755)
		hookContent := `
` + postCommitMarker + `
git-attest hook post-commit
`
		if _, err := os.Stat(postCommit); err == nil {
			// Append to existing hook
			f, err := os.OpenFile(postCommit, os.O_APPEND|os.O_WRONLY, 0o755)
			if err == nil {
				f.WriteString(hookContent)
				f.Close()
				fmt.Println("  ✓ Appended to existing post-commit hook")
			}
		} else {
			_ = os.WriteFile(postCommit, []byte("#!/usr/bin/env bash\n"+hookContent), 0o755)
			fmt.Println("  ✓ Installed post-commit hook")
		}
	}

	fmt.Println()
	fmt.Println("  Ready! Commit .attest/ to share attribution with your team:")
	fmt.Println("    git add .attest && git commit -m 'Initialize attest tracking'")
	fmt.Println()
	fmt.Println("  Point your agent integration at 'git-attest hook ai-line' to")
	fmt.Println("  start capturing AI-authored lines.")
}

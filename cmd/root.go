package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/jensroland/git-attest/internal/project"
)

// RunQuery handles the default query mode (no subcommand).
func RunQuery(args []string) {
	fs := flag.NewFlagSet("git-attest", flag.ExitOnError)

	line := fs.String("L", "", "Line number or range (42 or 10,20)")
	commitSHA := fs.String("commit", "", "Show stats and attestations for a commit")
	statsFlag := fs.Bool("stats", false, "Repo-wide authorship totals")
	rebuild := fs.Bool("rebuild", false, "Force index rebuild")
	showLog := fs.Bool("log", false, "Show debug logs")
	uninit := fs.Bool("uninit", false, "Remove attest tracking from this repo")
	verbose := fs.Bool("v", false, "Show introducing commit SHAs in blame output")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `git-attest: line-accurate AI/human authorship for git repos.

Usage:
    git-attest <file>                  # per-line authorship of a file
    git-attest -L <line> <file>        # a single line
    git-attest -L <start>,<end> <file> # a line range
    git-attest --commit <sha>          # stats and attestations for a commit
    git-attest --stats                 # repo-wide authorship totals
    git-attest --json                  # machine-readable JSON output
    git-attest --rebuild               # force index rebuild
    git-attest --log                   # show debug logs
    git-attest --uninit                # remove tracking from this repo

Subcommands:
    git-attest hook <ai-line|post-commit>
    git-attest enable
    git-attest disable
`)
	}

	// Go's flag package stops at the first non-flag arg.
	// Reorder so flags come before positional args, allowing
	// both "git attest -L 42 file" and "git attest file -L 42".
	fs.Parse(reorderArgs(args))

	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)

	// Commands that don't need the log
	if *showLog {
		cmdLog(paths)
		return
	}
	if *uninit {
		cmdDisable(paths, root)
		return
	}

	if !project.IsInitialized(root) {
		fmt.Fprintln(os.Stderr, "No attestation log found.")
		fmt.Fprintln(os.Stderr, "Run 'git-attest enable' in this repo first.")
		os.Exit(1)
	}

	file := fs.Arg(0)

	switch {
	case *statsFlag:
		cmdStats(paths, *rebuild, *jsonOutput)
	case *commitSHA != "":
		cmdCommit(paths, root, *commitSHA, *jsonOutput)
	case file != "":
		cmdFile(paths, root, file, *line, *verbose, *jsonOutput)
	default:
		fs.Usage()
	}
}

// reorderArgs moves flags before positional args so flag.Parse works
// regardless of argument order (e.g. "file -L 42" -> "-L 42 file").
func reorderArgs(args []string) []string {
	var flags, positional []string
	i := 0
	for i < len(args) {
		a := args[i]
		if len(a) > 0 && a[0] == '-' {
			flags = append(flags, a)
			// Check if this flag takes a value (next arg is not a flag)
			if i+1 < len(args) && (len(args[i+1]) == 0 || args[i+1][0] != '-') {
				// Known boolean flags that don't take a value
				switch a {
				case "--stats", "--rebuild", "--log", "--uninit", "-v", "--json":
					// no value
				default:
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, a)
		}
		i++
	}
	return append(flags, positional...)
}

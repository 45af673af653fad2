package cmd

import (
	"fmt"
	"os"

	"github.com/jensroland/git-attest/internal/debug"
	"github.com/jensroland/git-attest/internal/hook"
	"github.com/jensroland/git-attest/internal/project"
)

// RunHook dispatches hook subcommands.
func RunHook(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: git-attest hook <ai-line|post-commit>")
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "ai-line":
		err = hook.HandleAILine(os.Stdin)
	case "post-commit":
		err = hook.HandlePostCommit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown hook type: %s\n", args[0])
		os.Exit(1)
	}

	if err != nil {
		// Log error but never fail -- hooks must not block a commit
		if root, e := project.FindRoot(); e == nil {
			paths := project.NewPaths(root)
			debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("Fatal error: %v", err), nil)
		}
	}
	// Always exit 0
}

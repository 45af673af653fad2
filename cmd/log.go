package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jensroland/git-attest/internal/format"
	"github.com/jensroland/git-attest/internal/project"
)

func cmdLog(paths project.Paths) {
	logFile := filepath.Join(paths.CacheDir, "logs", "hook.log")

	data, err := os.ReadFile(logFile)
	if err != nil {
		fmt.Printf("No log file at %s\n", logFile)
		return
	}

	lines := strings.Split(string(data), "\n")
	start := 0
	if len(lines) > 100 {
		start = len(lines) - 100
	}
	tail := lines[start:]

	fmt.Printf("%s--- %s (last %d lines) ---%s\n\n", format.Dim, logFile, len(tail), format.Reset)
	fmt.Println(strings.Join(tail, "\n"))
}

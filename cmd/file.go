package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jensroland/git-attest/internal/attest"
	"github.com/jensroland/git-attest/internal/blame"
	"github.com/jensroland/git-attest/internal/format"
	"github.com/jensroland/git-attest/internal/project"
)

// cmdFile reconstructs per-line authorship for a file's current state and
// prints it alongside the content, git-blame style.
func cmdFile(paths project.Paths, root, file, lineSpec string, verbose, jsonOutput bool) {
	store := attest.Store{Dir: paths.LogDir}
	log, err := store.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var origins []blame.LineOrigin
	if lineSpec != "" {
		start, end, err := parseLineSpec(lineSpec)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		origins, err = blame.Range(root, file, start, end, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	} else {
		origins, err = blame.File(root, file, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	if jsonOutput {
		type jsonLine struct {
			Line     int    `json:"line"`
			Author   string `json:"author"`
			Accepted bool   `json:"accepted,omitempty"`
			Commit   string `json:"commit,omitempty"`
		}
		out := make([]jsonLine, 0, len(origins))
		for _, o := range origins {
			jl := jsonLine{Line: o.Line, Author: "unattributed", Commit: o.Commit}
			if !o.Unattributed {
				jl.Author = string(o.Author)
				jl.Accepted = o.Accepted
			}
			out = append(out, jl)
		}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
		return
	}

	content := fileLines(root, file)

	fmt.Printf("%s%s%s\n", format.Bold, file, format.Reset)
	for _, o := range origins {
		tag := "unattributed"
		if !o.Unattributed {
			tag = string(o.Author)
		}
		color := format.AuthorColor(tag)

		text := ""
		if o.Line-1 < len(content) {
			text = content[o.Line-1]
		}

		if verbose {
			sha := o.Commit
			if sha == "" {
				sha = strings.Repeat("0", 8)
			} else if len(sha) > 8 {
				sha = sha[:8]
			}
			fmt.Printf("%s%-13s%s %s %4d  %s\n", color, tag, format.Reset, sha, o.Line, text)
		} else {
			fmt.Printf("%s%-13s%s %4d  %s\n", color, tag, format.Reset, o.Line, text)
		}
	}

	if verbose {
		if commits := attestedCommits(log, file); len(commits) > 0 {
			fmt.Printf("\n%sAttested in:%s %s\n", format.Dim, format.Reset, strings.Join(commits, ", "))
		}
	}
}

// attestedCommits lists the commits holding records for a file, most recent
// first, abbreviated for display. A line blamed to a rename origin carries
// its origin path, so this is keyed on the path as attested, not as blamed.
func attestedCommits(log *attest.Log, file string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range log.ForFile(file) {
		if seen[r.Commit] {
			continue
		}
		seen[r.Commit] = true
		sha := r.Commit
		if len(sha) > 8 {
			sha = sha[:8]
		}
		out = append(out, sha)
	}
	return out
}

// fileLines reads the working-tree content of a file for display, since
// blame covers uncommitted lines too. Blame output carries no content of
// its own.
func fileLines(root, file string) []string {
	data, err := os.ReadFile(filepath.Join(root, file))
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// parseLineSpec parses "42" or "10,20" into an inclusive range.
func parseLineSpec(spec string) (int, int, error) {
	parts := strings.SplitN(spec, ",", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || start < 1 {
		return 0, 0, fmt.Errorf("invalid line spec %q", spec)
	}
	if len(parts) == 1 {
		return start, start, nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("invalid line spec %q", spec)
	}
	return start, end, nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jensroland/git-attest/internal/attest"
	"github.com/jensroland/git-attest/internal/format"
	"github.com/jensroland/git-attest/internal/git"
	"github.com/jensroland/git-attest/internal/index"
	"github.com/jensroland/git-attest/internal/project"
	"github.com/jensroland/git-attest/internal/stats"
)

// cmdStats prints repo-wide authorship totals from the index.
func cmdStats(paths project.Paths, rebuild, jsonOutput bool) {
	db, err := index.Open(paths, rebuild)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening index at %s: %v\n", paths.IndexDB, err)
		os.Exit(1)
	}
	defer db.Close()

	ai, aiAccepted, human, err := index.AuthorTotals(db, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var commits, files int
	db.QueryRow("SELECT COUNT(DISTINCT commit_sha) FROM attestations").Scan(&commits)
	db.QueryRow("SELECT COUNT(DISTINCT file) FROM attestations").Scan(&files)

	total := ai + human
	if jsonOutput {
		b, _ := json.MarshalIndent(map[string]interface{}{
			"ai_additions":    ai,
			"ai_accepted":     aiAccepted,
			"human_additions": human,
			"total_lines":     total,
			"commits":         commits,
			"files":           files,
		}, "", "  ")
		fmt.Println(string(b))
		return
	}

	fmt.Printf("%sattest statistics%s\n\n", format.Bold, format.Reset)
	fmt.Printf("  Attributed lines:  %d\n", total)
	fmt.Printf("  AI additions:      %d (%d accepted unmodified)\n", ai, aiAccepted)
	fmt.Printf("  Human additions:   %d\n", human)
	fmt.Printf("  Commits:           %d\n", commits)
	fmt.Printf("  Files:             %d\n", files)
	if total > 0 {
		fmt.Printf("\n  %sAI share: %.1f%%%s\n", format.Cyan, 100*float64(ai)/float64(total), format.Reset)
	}
}

// cmdCommit prints one commit's stats and its per-file attestations, with
// the conservation cross-check against git's numstat.
func cmdCommit(paths project.Paths, root, commitSHA string, jsonOutput bool) {
	store := attest.Store{Dir: paths.LogDir}
	log, err := store.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	sha := resolveCommit(root, commitSHA)
	if !log.Has(sha) {
		fmt.Fprintf(os.Stderr, "Commit %s is not attested.\n", commitSHA)
		os.Exit(1)
	}

	records := log.ForCommit(sha)
	gitAdded, err := git.NumstatAdded(root, sha)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	cs, csErr := stats.Compute(sha, records, gitAdded)
	al := log.AuthorshipLog(sha)

	if jsonOutput {
		out := map[string]interface{}{
			"commit":       sha,
			"stats":        cs,
			"attestations": al.Attestations,
		}
		if csErr != nil {
			out["inconsistency"] = csErr.Error()
		}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
		return
	}

	fmt.Printf("%scommit %s%s\n\n", format.Bold, sha, format.Reset)
	fmt.Printf("  AI additions:     %d (%d accepted unmodified)\n", cs.AIAdditions, cs.AIAccepted)
	fmt.Printf("  Human additions:  %d\n", cs.HumanAdditions)
	fmt.Printf("  Git added lines:  %d\n", cs.GitDiffAddedLines)
	if csErr != nil {
		fmt.Printf("\n  %sWarning: %v%s\n", format.Yellow, csErr, format.Reset)
	}

	if len(al.Attestations) > 0 {
		fmt.Printf("\n  %sPer file:%s\n", format.Bold, format.Reset)
		for _, a := range al.Attestations {
			if !a.AILines.IsEmpty() {
				fmt.Printf("    %s  %sai%s %s", a.FilePath, format.Cyan, format.Reset, a.AILines.String())
				if !a.HumanLines.IsEmpty() {
					fmt.Printf("  %shuman%s %s", format.Green, format.Reset, a.HumanLines.String())
				}
				fmt.Println()
			} else if !a.HumanLines.IsEmpty() {
				fmt.Printf("    %s  %shuman%s %s\n", a.FilePath, format.Green, format.Reset, a.HumanLines.String())
			}
		}
	}
}

// resolveCommit expands an abbreviated SHA through git; unresolvable input
// passes through so the log lookup reports the miss.
func resolveCommit(root, ref string) string {
	if sha := git.RevParse(root, ref); sha != "" {
		return sha
	}
	return ref
}

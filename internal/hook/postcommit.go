package hook

import (
	"fmt"
	"os"

	"github.com/jensroland/git-attest/internal/attest"
	"github.com/jensroland/git-attest/internal/debug"
	"github.com/jensroland/git-attest/internal/format"
	"github.com/jensroland/git-attest/internal/git"
	"github.com/jensroland/git-attest/internal/index"
	"github.com/jensroland/git-attest/internal/pending"
	"github.com/jensroland/git-attest/internal/project"
	"github.com/jensroland/git-attest/internal/reconcile"
	"github.com/jensroland/git-attest/internal/stats"
)

// HandlePostCommit reconciles the capture feed against the commit that just
// landed at HEAD and persists the resulting attestation. The feed is cleared
// only after the attestation file is durably written; any earlier failure
// leaves both the log and the feed untouched so the next run can retry.
func HandlePostCommit() error {
	root, err := project.FindRoot()
	if err != nil {
		return err
	}
	if !project.IsInitialized(root) {
		return nil
	}
	paths := project.NewPaths(root)

	commit := git.HeadSHA(root)
	if commit == "" {
		return nil
	}

	store := attest.Store{Dir: paths.LogDir}
	log, err := store.Load()
	if err != nil {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("post-commit: log load failed: %v", err), nil)
		return nil
	}
	// Amend and rebase fire post-commit for SHAs already attested under a
	// previous identity; the old SHA's attestation stays valid for history
	// that still references it.
	if log.Has(commit) {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("post-commit: %s already attested, skipped", commit), nil)
		return nil
	}

	rawDiff, err := git.ShowPatch(root, commit)
	if err != nil {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("post-commit: %v", err), nil)
		return nil
	}

	buf, err := pending.LoadFeed(paths.FeedPath)
	if err != nil {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("post-commit: feed load failed: %v", err), nil)
		return nil
	}

	res, err := reconcile.Commit(commit, rawDiff, buf)
	if err != nil {
		// Undecodable paths and malformed diffs abort the whole commit's
		// attestation. The feed survives for diagnosis.
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("post-commit: reconcile failed: %v", err), nil)
		return err
	}

	if err := store.Write(commit, res.Records); err != nil {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("post-commit: store write failed: %v", err), nil)
		return err
	}

	// Independent cross-check against git's own numbers. A divergence is a
	// defect report, not a rollback: the attestation already reflects the
	// best available evidence.
	if gitAdded, err := git.NumstatAdded(root, commit); err == nil {
		if _, err := stats.Compute(commit, res.Records, gitAdded); err != nil {
			debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("post-commit: %v", err), nil)
		}
	}

	if len(res.NearMisses) > 0 {
		debug.Log(paths.CacheDir, "hook.log",
			fmt.Sprintf("post-commit: %d near miss(es) attributed human", len(res.NearMisses)), res.NearMisses)
		fmt.Fprintf(os.Stderr, "attest: %d AI line(s) were edited before commit and attributed human:\n", len(res.NearMisses))
		for _, nm := range res.NearMisses {
			fmt.Fprintln(os.Stderr, format.NearMissLine(nm.File, nm.Line, nm.Pending, nm.Committed))
		}
	}

	if err := pending.ClearFeed(paths.FeedPath); err != nil {
		debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("post-commit: feed clear failed: %v", err), nil)
	}

	// Refresh the query index while the log is hot. Best effort: a stale
	// index rebuilds itself on the next query anyway.
	if db, err := index.Rebuild(paths, true); err == nil {
		db.Close()
	}

	debug.Log(paths.CacheDir, "hook.log",
		fmt.Sprintf("post-commit: attested %s with %d record(s)", commit, len(res.Records)), nil)
	return nil
}

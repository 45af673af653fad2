// Package git shells out to the real git for diff, numstat, show and blame
// output. Nothing here reimplements git; the engine consumes its raw output
// and the pathenc codec undoes its path quoting.
package git

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// HeadSHA returns the current HEAD commit SHA, empty string outside a repo.
func HeadSHA(root string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// RevParse resolves a ref (branch, tag, abbreviated SHA) to a full commit
// SHA, empty string when it does not resolve.
func RevParse(root, ref string) string {
	cmd := exec.Command("git", "rev-parse", "--verify", ref+"^{commit}")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// ShowPatch returns the raw unified diff of a commit, quoted path headers
// included. Rename detection stays on so pure renames show up as rename
// headers instead of delete+add pairs.
func ShowPatch(root, commit string) (string, error) {
	cmd := exec.Command("git", "show", commit, "--format=", "--patch", "--no-color", "--find-renames")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", commit, err)
	}
	return string(out), nil
}

// NumstatAdded independently recomputes the number of added lines git
// reports for a commit. Binary files show "-" in numstat and are excluded,
// matching the reconciler's exclusion.
func NumstatAdded(root, commit string) (int, error) {
	cmd := exec.Command("git", "show", commit, "--format=", "--numstat", "--find-renames")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("git show --numstat %s: %w", commit, err)
	}

	total := 0
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 3 || fields[0] == "-" {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		total += n
	}
	return total, nil
}

// ShowFile retrieves file content at a ref. Errors for paths that do not
// exist at that ref.
func ShowFile(root, ref, file string) (string, error) {
	cmd := exec.Command("git", "show", ref+":"+file)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git show %s:%s: %w", ref, file, err)
	}
	return string(out), nil
}

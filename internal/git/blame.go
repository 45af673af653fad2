package git

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/jensroland/git-attest/internal/pathenc"
)

// BlameEntry holds parsed git blame data for a single line. OrigPath is the
// canonical path the file had at the blamed commit; git follows whole-file
// renames during blame, so this is the rename edge the attestation lookup
// needs.
type BlameEntry struct {
	SHA      string // 40-char commit SHA (0000... for uncommitted)
	Line     int    // 1-based line number in the current file
	OrigLine int    // 1-based line number at the blamed commit
	OrigPath string // canonical path at the blamed commit
}

// IsUncommitted reports whether the entry points at uncommitted content.
func (e BlameEntry) IsUncommitted() bool {
	return strings.TrimLeft(e.SHA, "0") == ""
}

// BlameFile runs git blame over a whole file, returning entries keyed by
// current line number.
func BlameFile(root, file string) (map[int]BlameEntry, error) {
	cmd := exec.Command("git", "blame", "--line-porcelain", "--", file)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git blame %s: %w", file, err)
	}
	return ParseLinePorcelain(out)
}

// BlameRange runs git blame -L start,end on a file.
func BlameRange(root, file string, start, end int) (map[int]BlameEntry, error) {
	cmd := exec.Command("git", "blame", "-L", fmt.Sprintf("%d,%d", start, end), "--line-porcelain", "--", file)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git blame -L %d,%d %s: %w", start, end, file, err)
	}
	return ParseLinePorcelain(out)
}

// ParseLinePorcelain parses `git blame --line-porcelain` output.
//
// Line-porcelain repeats the full header block for every line:
//
//	<40-byte SHA> <orig-line> <final-line> [<num-lines>]
//	author ...
//	...
//	filename <path at blamed commit>
//	\t<actual line content>
//
// Only the SHA line, the filename header and the terminating tab line
// matter here; the rest is skipped. Filenames arrive in git's on-disk byte
// form and go through the path codec like every other git-printed path.
func ParseLinePorcelain(out []byte) (map[int]BlameEntry, error) {
	entries := make(map[int]BlameEntry)

	var cur BlameEntry
	haveHeader := false

	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "\t") {
			// Content line terminates the entry.
			if haveHeader && cur.Line > 0 {
				entries[cur.Line] = cur
			}
			haveHeader = false
			continue
		}

		if strings.HasPrefix(line, "filename ") {
			p, err := pathenc.Decode(line[len("filename "):])
			if err != nil {
				return nil, err
			}
			cur.OrigPath = p
			continue
		}

		fields := strings.Fields(line)
		if len(fields) >= 3 && len(fields[0]) == 40 && !haveHeader {
			var origLine, finalLine int
			if _, err := fmt.Sscanf(fields[1], "%d", &origLine); err != nil {
				continue
			}
			if _, err := fmt.Sscanf(fields[2], "%d", &finalLine); err != nil {
				continue
			}
			cur = BlameEntry{SHA: fields[0], Line: finalLine, OrigLine: origLine}
			haveHeader = true
		}
	}

	return entries, nil
}

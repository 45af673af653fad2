// Package diffscan parses raw `git show`/`git diff` patch output into
// per-file added lines with their post-image line numbers. Every path in a
// file header goes through the pathenc codec; a path that fails to decode
// aborts the whole parse, because attributing a file under a garbled name
// is worse than failing loudly.
package diffscan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jensroland/git-attest/internal/pathenc"
)

// AddedLine is one line the diff reports as added, with its 1-based line
// number in the post-image file.
type AddedLine struct {
	Number  int
	Content string
}

// FileDiff is the parsed diff for a single file.
type FileDiff struct {
	Path    string // canonical post-image path
	OldPath string // canonical pre-image path; differs from Path on rename
	Binary  bool
	Renamed bool
	Added   []AddedLine
}

// Parse scans unified-diff output for one commit. The input is the raw text
// of `git show --format= --patch`, quoted octal path headers and all.
func Parse(raw string) ([]FileDiff, error) {
	var files []FileDiff
	var cur *FileDiff
	inHunk := false
	newLineNo := 0

	flush := func() {
		if cur != nil {
			files = append(files, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			oldPath, newPath, err := parseGitHeader(line[len("diff --git "):])
			if err != nil {
				return nil, err
			}
			cur = &FileDiff{Path: newPath, OldPath: oldPath}
			inHunk = false
			continue
		}
		if cur == nil || line == "" {
			continue
		}

		if inHunk {
			switch line[0] {
			case '+':
				cur.Added = append(cur.Added, AddedLine{Number: newLineNo, Content: line[1:]})
				newLineNo++
				continue
			case ' ':
				newLineNo++
				continue
			case '-', '\\':
				// removed line / "\ No newline at end of file"
				continue
			}
			// Anything else ends the hunk body (e.g. the next @@ header).
			inHunk = false
		}

		switch {
		case strings.HasPrefix(line, "@@"):
			start, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			newLineNo = start
			inHunk = true

		case strings.HasPrefix(line, "--- "):
			name := strings.TrimSuffix(line[4:], "\t")
			if name != "/dev/null" {
				p, err := decodeStripped(name, "a/")
				if err != nil {
					return nil, err
				}
				cur.OldPath = p
			}

		case strings.HasPrefix(line, "+++ "):
			name := strings.TrimSuffix(line[4:], "\t")
			if name != "/dev/null" {
				p, err := decodeStripped(name, "b/")
				if err != nil {
					return nil, err
				}
				cur.Path = p
			}

		case strings.HasPrefix(line, "rename from "):
			p, err := pathenc.Decode(line[len("rename from "):])
			if err != nil {
				return nil, err
			}
			cur.Renamed = true
			cur.OldPath = p

		case strings.HasPrefix(line, "rename to "):
			p, err := pathenc.Decode(line[len("rename to "):])
			if err != nil {
				return nil, err
			}
			cur.Renamed = true
			cur.Path = p

		case strings.HasPrefix(line, "Binary files "), line == "GIT binary patch":
			cur.Binary = true
		}
		// Remaining headers (index, mode, similarity) carry nothing we need.
	}

	flush()
	return files, nil
}

// parseGitHeader splits the "a/X b/Y" tail of a `diff --git` line into the
// two canonical paths. Either side may be C-quoted. For unquoted names the
// " b/" separator is ambiguous when a filename itself contains " b/"; the
// ---/+++ headers override whatever we pick here, so the header parse only
// has to stand on its own for binary files.
func parseGitHeader(rest string) (oldPath, newPath string, err error) {
	aTok, remainder, err := takePathToken(rest)
	if err != nil {
		return "", "", err
	}
	if aTok == "" {
		// Unquoted: split at the last " b/".
		idx := strings.LastIndex(rest, " b/")
		if idx < 0 {
			return "", "", fmt.Errorf("malformed diff header %q", rest)
		}
		aTok = rest[:idx]
		remainder = rest[idx+1:]
	}
	bTok := strings.TrimSpace(remainder)

	oldPath, err = decodeStripped(aTok, "a/")
	if err != nil {
		return "", "", err
	}
	newPath, err = decodeStripped(bTok, "b/")
	if err != nil {
		return "", "", err
	}
	return oldPath, newPath, nil
}

// takePathToken consumes a leading C-quoted token, returning it and the
// remainder. Returns an empty token when the input is not quoted.
func takePathToken(s string) (token, remainder string, err error) {
	if s == "" || s[0] != '"' {
		return "", s, nil
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return s[:i+1], strings.TrimPrefix(s[i+1:], " "), nil
		}
	}
	return "", "", &pathenc.DecodeError{Raw: s, Reason: "unterminated quote"}
}

// decodeStripped decodes a header token and strips the diff prefix ("a/" or
// "b/"). The prefix sits inside the quotes, so decode happens first.
func decodeStripped(token, prefix string) (string, error) {
	p, err := pathenc.Decode(token)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(p, prefix), nil
}

// parseHunkHeader extracts the post-image start line from
// "@@ -oldStart[,oldCount] +newStart[,newCount] @@ ...".
func parseHunkHeader(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || !strings.HasPrefix(fields[2], "+") {
		return 0, fmt.Errorf("malformed hunk header %q", line)
	}
	spec := fields[2][1:]
	if idx := strings.Index(spec, ","); idx >= 0 {
		spec = spec[:idx]
	}
	start, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("malformed hunk header %q: %w", line, err)
	}
	return start, nil
}

// AddedTotal sums added lines across all parsed files, excluding binary
// files. Useful as a cheap cross-check against `git show --numstat`.
func AddedTotal(files []FileDiff) int {
	n := 0
	for _, f := range files {
		if f.Binary {
			continue
		}
		n += len(f.Added)
	}
	return n
}

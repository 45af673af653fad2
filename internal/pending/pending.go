package pending

import "sort"

// Line is a single AI-authored line awaiting reconciliation. Edited marks a
// line the capture feed reports as modified by a human after the AI wrote it;
// the reconciler demotes such lines to human authorship.
type Line struct {
	File    string `json:"file"`
	Content string `json:"content"`
	Edited  bool   `json:"edited,omitempty"`
}

// Buffer holds AI-authored lines recorded since the last commit, per file,
// in the order the agent emitted them. It lives for exactly one commit
// interval: the capture feed fills it, the reconciler drains it, and
// whatever is left over is discarded.
//
// Single producer, single consumer, no locking (see the feed replay in
// feed.go for how entries arrive in order).
type Buffer struct {
	byFile map[string][]Line
}

func NewBuffer() *Buffer {
	return &Buffer{byFile: make(map[string][]Line)}
}

// Record appends an AI-authored line for a file, preserving emission order.
func (b *Buffer) Record(file, content string) {
	b.Push(Line{File: file, Content: content})
}

// Push appends a fully-formed line, used by the feed loader so the Edited
// flag survives replay.
func (b *Buffer) Push(l Line) {
	b.byFile[l.File] = append(b.byFile[l.File], l)
}

// Drain removes and returns all pending lines for a file in original order.
// Repeated identical lines come back in first-in-first-out order, which is
// what makes duplicate matching deterministic.
func (b *Buffer) Drain(file string) []Line {
	lines := b.byFile[file]
	delete(b.byFile, file)
	return lines
}

// DrainAll discards every pending line. Called after a commit completes:
// unmatched leftovers describe working-tree state that no longer exists.
func (b *Buffer) DrainAll() {
	b.byFile = make(map[string][]Line)
}

// Files returns the files with pending lines, sorted for determinism.
func (b *Buffer) Files() []string {
	files := make([]string, 0, len(b.byFile))
	for f := range b.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Len returns the total number of pending lines across all files.
func (b *Buffer) Len() int {
	n := 0
	for _, lines := range b.byFile {
		n += len(lines)
	}
	return n
}

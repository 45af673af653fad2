package pending

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one capture-feed record: a single line the agent integration
// reports as AI-authored, appended to .git/attest/feed.jsonl as it lands in
// the working tree. Per-file ordering of the feed is significant and is
// preserved by append-only writes.
type Entry struct {
	ID      string `json:"id"`
	Ts      string `json:"ts"`
	File    string `json:"file"`
	Content string `json:"content"`
	Edited  bool   `json:"edited,omitempty"`
}

// AppendFeed appends entries to the feed file, assigning ids and timestamps
// where missing.
func AppendFeed(feedPath string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(feedPath), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(feedPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.Ts == "" {
			e.Ts = now
		}
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// LoadFeed replays the feed file into a fresh Buffer, preserving append
// order. A missing feed file yields an empty buffer, not an error.
func LoadFeed(feedPath string) (*Buffer, error) {
	buf := NewBuffer()

	f, err := os.Open(feedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return buf, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("feed entry %q: %w", line, err)
		}
		buf.Push(Line{File: e.File, Content: e.Content, Edited: e.Edited})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

// ClearFeed removes the feed file after a commit's reconciliation completes.
func ClearFeed(feedPath string) error {
	err := os.Remove(feedPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

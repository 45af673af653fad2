package lineset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LineSet is a set of 1-based line numbers, stored sorted and deduplicated.
// It serializes to the compact notation used throughout the attestation
// files: "5,7-8,12".
type LineSet struct {
	lines []int
}

// New creates a LineSet from individual line numbers.
func New(lines ...int) LineSet {
	return LineSet{lines: dedupSorted(lines)}
}

// FromString parses compact notation: "5", "5-7", "5,7-8,12".
func FromString(s string) (LineSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LineSet{}, nil
	}

	var lines []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start, end, err := parsePart(part)
		if err != nil {
			return LineSet{}, err
		}
		for i := start; i <= end; i++ {
			lines = append(lines, i)
		}
	}
	return LineSet{lines: dedupSorted(lines)}, nil
}

func parsePart(part string) (start, end int, err error) {
	if idx := strings.Index(part, "-"); idx >= 0 {
		start, err = strconv.Atoi(strings.TrimSpace(part[:idx]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range start %q: %w", part[:idx], err)
		}
		end, err = strconv.Atoi(strings.TrimSpace(part[idx+1:]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range end %q: %w", part[idx+1:], err)
		}
		if end < start {
			return 0, 0, fmt.Errorf("invalid range %d-%d", start, end)
		}
		return start, end, nil
	}
	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line number %q: %w", part, err)
	}
	return n, n, nil
}

// String returns the compact notation, empty string for the empty set.
func (ls LineSet) String() string {
	if len(ls.lines) == 0 {
		return ""
	}

	var parts []string
	for i := 0; i < len(ls.lines); {
		start := ls.lines[i]
		end := start
		for i+1 < len(ls.lines) && ls.lines[i+1] == end+1 {
			end = ls.lines[i+1]
			i++
		}
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, end))
		}
		i++
	}
	return strings.Join(parts, ",")
}

func (ls LineSet) IsEmpty() bool { return len(ls.lines) == 0 }
func (ls LineSet) Len() int      { return len(ls.lines) }

// Lines returns the sorted line numbers.
func (ls LineSet) Lines() []int { return ls.lines }

// Add returns a new set with the given line included.
func (ls LineSet) Add(line int) LineSet {
	return LineSet{lines: dedupSorted(append(append([]int{}, ls.lines...), line))}
}

// MarshalJSON serializes as a compact-notation JSON string, null when empty.
func (ls LineSet) MarshalJSON() ([]byte, error) {
	s := ls.String()
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(s)
}

// UnmarshalJSON parses the compact-notation string form.
func (ls *LineSet) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		ls.lines = nil
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := FromString(str)
	if err != nil {
		return err
	}
	ls.lines = parsed.lines
	return nil
}

func dedupSorted(nums []int) []int {
	if len(nums) == 0 {
		return nil
	}
	sort.Ints(nums)
	result := nums[:1]
	for _, n := range nums[1:] {
		if n != result[len(result)-1] {
			result = append(result, n)
		}
	}
	return result
}

package logtail

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open log")
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		count = min(count+1, maxLines)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read log")
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range lines {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded zerolog JSON line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Fields  map[string]any
}

// Parse decodes a zerolog JSON line. ok is false for anything else.
func Parse(line string) (e Entry, ok bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	take := func(key string) string {
		v, _ := raw[key].(string)
		delete(raw, key)
		return v
	}
	e.Level = take(zerolog.LevelFieldName)
	e.Message = take(zerolog.MessageFieldName)
	if ts := take(zerolog.TimestampFieldName); ts != "" {
		e.Time, _ = time.Parse(time.RFC3339, ts)
	}
	e.Fields = raw
	return e, true
}

// String renders the entry as "15:04:05 INF message key=value".
func (e Entry) String() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.In(time.Local).Format("15:04:05 "))
	}
	level := strings.ToUpper(e.Level)
	if len(level) > 3 {
		level = level[:3]
	}
	if level == "" {
		level = "???"
	}
	b.WriteString(level)
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

// Tail returns the last n lines of the log at path, formatted for display.
// Lines that are not zerolog JSON are returned unchanged.
func Tail(path string, n int) ([]string, error) {
	lines, err := Read(path, n)
	if err != nil {
		return nil, err
	}
	for i, line := range lines {
		if e, ok := Parse(line); ok {
			lines[i] = e.String()
		}
	}
	return lines, nil
}

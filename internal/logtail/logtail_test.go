package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shuffler.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("Line %d", i))
	}
	logPath := writeLog(t, all)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"partial", 5, all[5:]},
		{"exact", 10, all},
		{"more than available", 20, all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil for missing file", err)
	}
	if got != nil {
		t.Fatalf("Read() = %v, want nil", got)
	}
}

func TestParse(t *testing.T) {
	e, ok := Parse(`{"level":"info","groups":3,"time":"2024-05-01T10:11:12Z","message":"loaded"}`)
	if !ok {
		t.Fatalf("Parse() ok = false")
	}
	if e.Level != "info" || e.Message != "loaded" {
		t.Fatalf("Parse() = %#v", e)
	}
	if !e.Time.Equal(time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC)) {
		t.Fatalf("Time = %v", e.Time)
	}
	if len(e.Fields) != 1 || e.Fields["groups"] != float64(3) {
		t.Fatalf("Fields = %v, want only groups", e.Fields)
	}

	if _, ok := Parse("plain text"); ok {
		t.Fatalf("Parse() accepted a non JSON line")
	}
}

func TestEntryString(t *testing.T) {
	e := Entry{Level: "warn", Message: "mpd keepalive failed", Fields: map[string]any{"error": "eof", "attempt": 2}}
	if got, want := e.String(), "WAR mpd keepalive failed attempt=2 error=eof"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestTail(t *testing.T) {
	path := writeLog(t, []string{
		`{"level":"debug","message":"old"}`,
		"not json",
		`{"level":"info","message":"enqueued"}`,
	})

	got, err := Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	want := []string{"not json", "INF enqueued"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tail() = %v, want %v", got, want)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.WindowSize != 7 {
		t.Fatalf("WindowSize = %d, want 7", cfg.WindowSize)
	}
	if !cfg.PlayOnStartup {
		t.Fatalf("PlayOnStartup = false, want true")
	}
	if cfg.Keepalive != 30*time.Second {
		t.Fatalf("Keepalive = %v, want 30s", cfg.Keepalive)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
}

func TestLoad_ParsesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
host = "  music.local  "
port = 6601
queue_buffer = 3
window_size = 12
suspend_timeout = "250ms"
play_on_startup = false
exit_on_db_update = true
group_by = ["album", "date"]
exclude = [{ artist = "beatles", album = "live" }, { genre = "podcast" }]
log_level = "DEBUG"
log_file = "~/shuffler.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "music.local" || cfg.Port != 6601 {
		t.Fatalf("Host/Port = %q/%d, want music.local/6601", cfg.Host, cfg.Port)
	}
	if cfg.QueueBuffer != 3 || cfg.WindowSize != 12 {
		t.Fatalf("QueueBuffer/WindowSize = %d/%d, want 3/12", cfg.QueueBuffer, cfg.WindowSize)
	}
	if cfg.SuspendTimeout != 250*time.Millisecond {
		t.Fatalf("SuspendTimeout = %v, want 250ms", cfg.SuspendTimeout)
	}
	if cfg.PlayOnStartup {
		t.Fatalf("PlayOnStartup = true, want explicit false to survive defaults")
	}
	if !cfg.ExitOnDBUpdate {
		t.Fatalf("ExitOnDBUpdate = false, want true")
	}
	if strings.Join(cfg.GroupBy, ",") != "album,date" {
		t.Fatalf("GroupBy = %v, want [album date]", cfg.GroupBy)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0]["album"] != "live" || cfg.Exclude[1]["genre"] != "podcast" {
		t.Fatalf("Exclude = %v", cfg.Exclude)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFile != filepath.Join(home, "shuffler.log") {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, filepath.Join(home, "shuffler.log"))
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	_, err := Load(writeConfig(t, `window_size = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, `windowsize = 3`))
	if err == nil {
		t.Fatalf("Load returned nil error, want unknown key error")
	}
	if !strings.Contains(err.Error(), "windowsize") {
		t.Fatalf("Load error = %q, want it to name the key", err.Error())
	}
}

func TestLoad_ValidatesRanges(t *testing.T) {
	_, err := Load(writeConfig(t, `window_size = 0`))
	if err == nil {
		t.Fatalf("Load returned nil error, want validation error")
	}
	if !strings.Contains(err.Error(), "window-size must be >= 1 (0 given)") {
		t.Fatalf("Load error = %q", err.Error())
	}
}

func TestApplyTweak(t *testing.T) {
	cfg := Default()
	for _, raw := range []string{
		"window-size=3",
		"suspend-timeout=5s",
		"play-on-startup=no",
		"exit-on-db-update=on",
	} {
		if err := cfg.ApplyTweak(raw); err != nil {
			t.Fatalf("ApplyTweak(%q) returned error: %v", raw, err)
		}
	}
	if cfg.WindowSize != 3 {
		t.Fatalf("WindowSize = %d, want 3", cfg.WindowSize)
	}
	if cfg.SuspendTimeout != 5*time.Second {
		t.Fatalf("SuspendTimeout = %v, want 5s", cfg.SuspendTimeout)
	}
	if cfg.PlayOnStartup {
		t.Fatalf("PlayOnStartup = true, want false")
	}
	if !cfg.ExitOnDBUpdate {
		t.Fatalf("ExitOnDBUpdate = false, want true")
	}
}

func TestApplyTweak_Errors(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"window-size", "tweak must be of the form <name>=<value>"},
		{"window-size=", "tweak must be of the form <name>=<value>"},
		{"=3", "tweak must be of the form <name>=<value>"},
		{"colour=blue", `unknown tweak "colour"`},
		{"window-size=20=x", "window_size"},
		{"window-size=0", "window-size must be >= 1 (0 given)"},
		{"window-size=-2", "window-size must be >= 1 (-2 given)"},
		{"play-on-startup=maybe", "expected a boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyTweak(tt.raw)
			if err == nil {
				t.Fatalf("ApplyTweak(%q) returned nil error", tt.raw)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("ApplyTweak(%q) error = %q, want it to contain %q", tt.raw, err.Error(), tt.want)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/shuffler.log")) {
		t.Fatalf("LogPath = %q, want it to end with /shuffler.log", got)
	}
}

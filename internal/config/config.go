package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds every setting shuffler reads from its config file. Command
// line flags are applied on top by the caller.
type Config struct {
	Host string `mapstructure:"host"`
	Port uint   `mapstructure:"port" validate:"max=65535"`

	QueueBuffer    uint          `mapstructure:"queue_buffer"`
	WindowSize     int           `mapstructure:"window_size" default:"7" validate:"min=1"`
	SuspendTimeout time.Duration `mapstructure:"suspend_timeout" validate:"min=0"`
	PlayOnStartup  bool          `mapstructure:"play_on_startup" default:"true"`
	ExitOnDBUpdate bool          `mapstructure:"exit_on_db_update"`

	GroupBy []string            `mapstructure:"group_by"`
	Exclude []map[string]string `mapstructure:"exclude"`

	Keepalive time.Duration `mapstructure:"keepalive" default:"30s" validate:"min=1s"`
	LogLevel  string        `mapstructure:"log_level" default:"info" validate:"oneof=trace debug info warn error"`
	LogFile   string        `mapstructure:"log_file" default:"~/.local/state/shuffler/shuffler.log"`
}

const defaultConfigPath = "~/.config/shuffler/config.toml"

type tweak struct {
	key    string
	toggle bool
}

// tweaks maps --tweak names to config keys.
var tweaks = map[string]tweak{
	"window-size":       {key: "window_size"},
	"suspend-timeout":   {key: "suspend_timeout"},
	"play-on-startup":   {key: "play_on_startup", toggle: true},
	"exit-on-db-update": {key: "exit_on_db_update", toggle: true},
}

// Default returns a Config with every default applied.
func Default() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	cfg.LogFile = mustExpand(cfg.LogFile)
	return cfg
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, errors.Wrap(err, "read config")
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := decode(raw, &cfg, true); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", resolved)
	}

	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if strings.TrimSpace(cfg.LogFile) == "" {
		cfg.LogFile = Default().LogFile
	}
	cfg.LogFile = mustExpand(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyTweak applies a "name=value" tweak such as "window-size=3".
func (c *Config) ApplyTweak(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return errors.Newf("tweak must be of the form <name>=<value>, got %q", raw)
	}
	tw, known := tweaks[name]
	if !known {
		return errors.Newf("unknown tweak %q", name)
	}

	var input any = value
	if tw.toggle {
		b, err := parseSwitch(value)
		if err != nil {
			return errors.Wrapf(err, "tweak %s", name)
		}
		input = b
	}
	if err := decode(map[string]any{tw.key: input}, c, false); err != nil {
		return errors.Wrapf(err, "tweak %s", name)
	}
	return c.Validate()
}

// Validate checks value ranges and reports them by config key.
func (c Config) Validate() error {
	err := newValidator().Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.Newf("invalid config: %s", strings.Join(msgs, "; "))
}

// LogPath returns the log file used while the status view owns the terminal.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return Default().LogFile
	}
	return c.LogFile
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	return v
}

func describe(fe validator.FieldError) string {
	name := strings.ReplaceAll(fe.Field(), "_", "-")
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be >= %s (%v given)", name, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be <= %s (%v given)", name, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s (%q given)", name, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

func decode(input map[string]any, out *Config, strict bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// parseSwitch accepts the usual spellings of on and off.
func parseSwitch(value string) (bool, error) {
	v := strings.ToLower(value)
	switch {
	case slices.Contains([]string{"1", "true", "yes", "on"}, v):
		return true, nil
	case slices.Contains([]string{"0", "false", "no", "off"}, v):
		return false, nil
	}
	return false, errors.Newf("expected a boolean, got %q", value)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

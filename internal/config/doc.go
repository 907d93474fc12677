// Package config loads shuffler's TOML configuration file.
//
// # Overview
//
// Every setting has a sensible default, so shuffler runs without a config
// file. The file only needs the keys a user wants to change; command line
// flags are applied on top by the caller and win over file values.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shuffler/config.toml
//  3. If the file doesn't exist, return the defaults
//
// # TOML Format
//
// Example config.toml:
//
//	host = "localhost"
//	port = 6600
//	queue_buffer = 2
//	window_size = 7
//	suspend_timeout = "5s"
//	play_on_startup = true
//	exit_on_db_update = false
//	group_by = ["album", "date"]
//	exclude = [
//		{ artist = "spoken word" },
//		{ artist = "beatles", album = "live" },
//	]
//	keepalive = "30s"
//	log_level = "info"
//	log_file = "~/.local/state/shuffler/shuffler.log"
//
// Each exclude table is one rule. A rule with several keys excludes a song
// only when every key matches it.
//
// Unknown keys are rejected so typos surface immediately.
//
// # Decoding
//
// The file is parsed into a generic map and decoded with mapstructure, the
// same path used for --tweak values. Defaults come from struct tags via
// creasty/defaults and are applied before decoding, so explicit false or
// zero values in the file are kept. Durations are written as Go duration
// strings ("500ms", "5s").
//
// # Tweaks
//
// ApplyTweak accepts "name=value" pairs for window-size, suspend-timeout,
// play-on-startup and exit-on-db-update. Switches accept 1/0, true/false,
// yes/no and on/off.
//
// # Validation
//
// Validate runs go-playground/validator over the struct and reports failures
// by their dashed key name, for example:
//
//	invalid config: window-size must be >= 1 (0 given)
//
// # Path Expansion
//
// Tilde expansion is performed for the config file location and log_file.
// Relative paths are made absolute against the current directory.
package config

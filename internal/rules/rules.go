// Package rules decides which songs are eligible for shuffling.
package rules

import (
	"slices"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/five82/shuffler/internal/mpd"
)

var knownTags = []string{
	"album", "albumartist", "albumartistsort", "albumsort", "artist",
	"artistsort", "comment", "composer", "composersort", "conductor", "date",
	"disc", "ensemble", "genre", "grouping", "label", "location", "mood",
	"movement", "movementnumber", "musicbrainz_albumartistid",
	"musicbrainz_albumid", "musicbrainz_artistid", "musicbrainz_releasetrackid",
	"musicbrainz_trackid", "musicbrainz_workid", "name", "originaldate",
	"performer", "title", "titlesort", "track", "work",
}

// ErrUnknownTag is returned for tag names MPD does not define.
var ErrUnknownTag = errors.New("unknown tag")

// ParseTag resolves a user supplied tag name to its canonical lower-case form.
func ParseTag(name string) (string, error) {
	tag := strings.ToLower(strings.TrimSpace(name))
	if !slices.Contains(knownTags, tag) {
		return "", errors.Wrapf(ErrUnknownTag, "%q", name)
	}
	return tag, nil
}

// ParseTags resolves every name in names.
func ParseTags(names []string) ([]string, error) {
	tags := make([]string, 0, len(names))
	for _, name := range names {
		tag, err := ParseTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Pattern matches songs whose Tag value contains Value, ignoring case.
type Pattern struct {
	Tag   string
	Value string
}

func (p Pattern) matches(song mpd.Song) bool {
	v, ok := song.Tag(p.Tag)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(v), strings.ToLower(p.Value))
}

// Rule excludes songs matched by every one of its patterns.
type Rule struct {
	Patterns []Pattern
}

// Accepts reports whether the rule lets song through.
func (r Rule) Accepts(song mpd.Song) bool {
	if len(r.Patterns) == 0 {
		return true
	}
	return !lo.EveryBy(r.Patterns, func(p Pattern) bool { return p.matches(song) })
}

// NewRule builds an exclusion rule from tag/value pairs.
func NewRule(match map[string]string) (Rule, error) {
	if len(match) == 0 {
		return Rule{}, errors.New("rule has no patterns")
	}
	keys := lo.Keys(match)
	sort.Strings(keys)

	r := Rule{}
	for _, key := range keys {
		tag, err := ParseTag(key)
		if err != nil {
			return Rule{}, err
		}
		if match[key] == "" {
			return Rule{}, errors.Newf("no value supplied for match %q", key)
		}
		r.Patterns = append(r.Patterns, Pattern{Tag: tag, Value: match[key]})
	}
	return r, nil
}

// ParsePattern parses "tag=value" into a single-pattern rule.
func ParsePattern(raw string) (Rule, error) {
	key, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return Rule{}, errors.Newf("exclude must be of the form <tag>=<value>, got %q", raw)
	}
	return NewRule(map[string]string{key: value})
}

// Ruleset accepts a song only if every rule does.
type Ruleset []Rule

// Accepts reports whether song passes all rules.
func (rs Ruleset) Accepts(song mpd.Song) bool {
	return lo.EveryBy(rs, func(r Rule) bool { return r.Accepts(song) })
}

// Filter returns the songs rs accepts, keeping order.
func (rs Ruleset) Filter(songs []mpd.Song) []mpd.Song {
	if len(rs) == 0 {
		return songs
	}
	return lo.Filter(songs, func(s mpd.Song, _ int) bool { return rs.Accepts(s) })
}

// Package catalog fills shuffle chains from the MPD database or a URI list.
package catalog

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/five82/shuffler/internal/mpd"
	"github.com/five82/shuffler/internal/rules"
	"github.com/five82/shuffler/internal/shuffle"
)

// Loader adds groups to a chain.
type Loader interface {
	Load(ctx context.Context, chain *shuffle.Chain) error
}

// MPDLoader loads every song in the MPD database that passes Rules.
type MPDLoader struct {
	Library mpd.Library
	Rules   rules.Ruleset
	// GroupBy lists tags whose combined values form one group. Empty means
	// one group per song.
	GroupBy []string
}

// Load implements Loader.
func (l *MPDLoader) Load(ctx context.Context, chain *shuffle.Chain) error {
	songs, err := l.Library.ListAll(ctx)
	if err != nil {
		return errors.Wrap(err, "list mpd library")
	}
	kept := l.Rules.Filter(songs)
	log.Debug().Int("listed", len(songs)).Int("kept", len(kept)).Msg("loaded mpd library")
	return addGrouped(chain, kept, l.GroupBy)
}

// addGrouped adds songs to chain, grouping by the joined values of groupBy.
// Groups keep the order in which their first song appeared.
func addGrouped(chain *shuffle.Chain, songs []mpd.Song, groupBy []string) error {
	if len(groupBy) == 0 {
		for _, s := range songs {
			if err := chain.Add(s.URI); err != nil {
				return err
			}
		}
		return nil
	}

	var order []string
	groups := make(map[string][]string)
	for _, s := range songs {
		key := groupKey(s, groupBy)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s.URI)
	}
	for _, key := range order {
		if err := chain.Add(groups[key]...); err != nil {
			return err
		}
	}
	return nil
}

// groupKey joins tag values with a separator that cannot appear in tags.
// Missing tags contribute an empty value, so untagged songs share a group.
func groupKey(s mpd.Song, groupBy []string) string {
	values := make([]string, len(groupBy))
	for i, tag := range groupBy {
		values[i], _ = s.Tag(tag)
	}
	return strings.Join(values, "\x00")
}

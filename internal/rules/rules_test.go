package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shuffler/internal/mpd"
)

func song(uri string, tags map[string]string) mpd.Song {
	return mpd.Song{URI: uri, Tags: tags}
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag("  AlbumArtist ")
	require.NoError(t, err)
	assert.Equal(t, "albumartist", tag)

	_, err = ParseTag("colour")
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestRule_ExcludesOnlyWhenAllPatternsMatch(t *testing.T) {
	r, err := NewRule(map[string]string{"artist": "beatles", "album": "abbey"})
	require.NoError(t, err)

	assert.False(t, r.Accepts(song("1", map[string]string{"artist": "The Beatles", "album": "Abbey Road"})))
	assert.True(t, r.Accepts(song("2", map[string]string{"artist": "The Beatles", "album": "Revolver"})))
	assert.True(t, r.Accepts(song("3", map[string]string{"album": "Abbey Road"})), "missing tag never matches")
}

func TestParsePattern(t *testing.T) {
	r, err := ParsePattern("Artist=__artist__")
	require.NoError(t, err)

	assert.False(t, r.Accepts(song("a", map[string]string{"artist": "__artist__"})),
		"basic rule should exclude matching song")
	assert.True(t, r.Accepts(song("b", map[string]string{"artist": "not artist"})),
		"basic rule should not exclude non-matching song")

	for _, bad := range []string{"artist", "=x", "artist=", "colour=red"} {
		_, err := ParsePattern(bad)
		assert.Error(t, err, "ParsePattern(%q)", bad)
	}
}

func TestRuleset_Filter(t *testing.T) {
	r1, err := ParsePattern("genre=podcast")
	require.NoError(t, err)
	r2, err := ParsePattern("artist=nickelback")
	require.NoError(t, err)
	rs := Ruleset{r1, r2}

	songs := []mpd.Song{
		song("keep-1", map[string]string{"artist": "Low", "genre": "Slowcore"}),
		song("drop-1", map[string]string{"artist": "Host", "genre": "Podcast"}),
		song("drop-2", map[string]string{"artist": "Nickelback"}),
		song("keep-2", map[string]string{}),
	}

	got := rs.Filter(songs)
	require.Len(t, got, 2)
	assert.Equal(t, "keep-1", got[0].URI)
	assert.Equal(t, "keep-2", got[1].URI)

	assert.Len(t, Ruleset(nil).Filter(songs), 4)
}

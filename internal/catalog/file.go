package catalog

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/five82/shuffler/internal/mpd"
	"github.com/five82/shuffler/internal/rules"
	"github.com/five82/shuffler/internal/shuffle"
)

// ErrNeedsCheck is returned when rules or grouping are requested for a URI
// list whose entries are not looked up in MPD.
var ErrNeedsCheck = errors.New("rules and group-by need uri checking")

// FileLoader loads URIs listed one per line. Blank lines are skipped.
type FileLoader struct {
	Reader  io.Reader
	Rules   rules.Ruleset
	GroupBy []string
	// Check, when set, is used to look up every URI. Unknown URIs are
	// dropped, and the returned tags feed Rules and GroupBy.
	Check mpd.Library
}

// Load implements Loader. The reader is consumed, so a FileLoader loads once.
func (l *FileLoader) Load(ctx context.Context, chain *shuffle.Chain) error {
	if l.Check == nil && (len(l.Rules) > 0 || len(l.GroupBy) > 0) {
		return ErrNeedsCheck
	}
	uris, err := readURIs(l.Reader)
	if err != nil {
		return err
	}

	if l.Check == nil {
		for _, uri := range uris {
			if err := chain.Add(uri); err != nil {
				return err
			}
		}
		return nil
	}

	songs := make([]mpd.Song, 0, len(uris))
	for _, uri := range uris {
		song, ok, err := l.Check.Search(ctx, uri)
		if err != nil {
			return errors.Wrapf(err, "check uri %q", uri)
		}
		if !ok {
			log.Debug().Str("uri", uri).Msg("skipping uri unknown to mpd")
			continue
		}
		songs = append(songs, song)
	}
	return addGrouped(chain, l.Rules.Filter(songs), l.GroupBy)
}

func readURIs(r io.Reader) ([]string, error) {
	var uris []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			uris = append(uris, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read uri list")
	}
	return uris, nil
}

// OpenList opens a URI list. "-" reads standard input.
func OpenList(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open uri list")
	}
	return file, nil
}

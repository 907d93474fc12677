package shuffle

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// ErrEmptyGroup is returned when a group is built without any URIs.
var ErrEmptyGroup = errors.New("group has no uris")

// Group is a single unit of selection. Its weight is the number of URIs it
// bundles, so a ten-song album is ten times as likely as a single song.
type Group struct {
	uris []string
}

// NewGroup builds an immutable group from the given URIs.
func NewGroup(uris ...string) (Group, error) {
	if len(uris) == 0 {
		return Group{}, ErrEmptyGroup
	}
	return Group{uris: slices.Clone(uris)}, nil
}

// URIs returns a copy of the group's URIs in insertion order.
func (g Group) URIs() []string {
	return slices.Clone(g.uris)
}

// Weight returns the number of URIs in the group.
func (g Group) Weight() int {
	return len(g.uris)
}

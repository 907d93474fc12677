package shuffle

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// DefaultWindowSize is the number of picks a group sits out after being picked.
const DefaultWindowSize = 7

// ErrEmptyChain is returned by Pick when no groups are registered.
var ErrEmptyChain = errors.New("shuffle chain is empty")

// Chain holds every registered group and picks among them at random, weighted
// by group size, while keeping the most recent picks out of rotation.
type Chain struct {
	mu sync.Mutex

	groups  []Group
	weights fenwick

	// window holds recently picked group ids, oldest first. excluded mirrors
	// it for membership checks.
	window     []int
	excluded   map[int]struct{}
	windowSize int

	rng *rand.Rand
}

// Option customises a Chain.
type Option func(*Chain)

// WithRand sets the random source used for picking.
func WithRand(r *rand.Rand) Option {
	return func(c *Chain) {
		if r != nil {
			c.rng = r
		}
	}
}

// NewChain returns an empty chain. windowSize values below one are treated as
// one; callers are expected to validate configuration before getting here.
func NewChain(windowSize int, opts ...Option) *Chain {
	c := &Chain{
		excluded:   make(map[int]struct{}),
		windowSize: max(windowSize, 1),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WindowSize returns the configured exclusion window.
func (c *Chain) WindowSize() int {
	return c.windowSize
}

// Add registers a new group built from uris. The group is immediately eligible.
func (c *Chain) Add(uris ...string) error {
	g, err := NewGroup(uris...)
	if err != nil {
		return err
	}
	c.AddGroup(g)
	return nil
}

// AddGroup registers an already built group.
func (c *Chain) AddGroup(g Group) {
	if g.Weight() == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = append(c.groups, g)
	c.weights.push(g.Weight())
}

// Pick selects a group among those outside the exclusion window and returns
// its URIs. If every group is excluded, the oldest exclusions are released
// until one group becomes selectable again.
func (c *Chain) Pick() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.groups) == 0 {
		return nil, ErrEmptyChain
	}
	for c.weights.total() == 0 && len(c.window) > 0 {
		c.releaseOldest()
	}

	id := c.weights.find(c.rng.IntN(c.weights.total()))
	if len(c.window) >= c.windowSize {
		c.releaseOldest()
	}
	c.exclude(id)

	return c.groups[id].URIs(), nil
}

func (c *Chain) exclude(id int) {
	c.window = append(c.window, id)
	c.excluded[id] = struct{}{}
	c.weights.add(id, -c.groups[id].Weight())
}

func (c *Chain) releaseOldest() {
	id := c.window[0]
	c.window = c.window[1:]
	delete(c.excluded, id)
	c.weights.add(id, c.groups[id].Weight())
}

// Len returns the number of registered groups, regardless of exclusion.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}

// LenURIs returns the number of URIs across all registered groups.
func (c *Chain) LenURIs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.SumBy(c.groups, Group.Weight)
}

// Size reports the pool size in one locked read.
func (c *Chain) Size() PoolSize {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PoolSize{
		Groups: len(c.groups),
		URIs:   lo.SumBy(c.groups, Group.Weight),
	}
}

// Clear drops every group and resets the exclusion window.
func (c *Chain) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = nil
	c.weights = fenwick{}
	c.window = nil
	c.excluded = make(map[int]struct{})
}

// Replace adopts the groups of src and resets the exclusion window. src is
// left untouched.
func (c *Chain) Replace(src *Chain) {
	if src == c {
		return
	}
	src.mu.Lock()
	groups := make([]Group, len(src.groups))
	copy(groups, src.groups)
	src.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = groups
	c.weights = newFenwick(lo.Map(groups, func(g Group, _ int) int { return g.Weight() }))
	c.window = nil
	c.excluded = make(map[int]struct{})
}

// Items returns the URIs of every registered group in registration order.
func (c *Chain) Items() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Map(c.groups, func(g Group, _ int) []string { return g.URIs() })
}

// PoolSize describes how many groups and URIs a chain can pick from.
type PoolSize struct {
	Groups int
	URIs   int
}

// Grouped reports whether groups bundle more than one URI.
func (p PoolSize) Grouped() bool {
	return p.Groups != p.URIs
}

func (p PoolSize) String() string {
	switch {
	case p.Groups == 0:
		return "Song pool is empty."
	case p.Grouped():
		return fmt.Sprintf("Picking from %d groups (%d songs).", p.Groups, p.URIs)
	default:
		return fmt.Sprintf("Picking random songs out of a pool of %d.", p.Groups)
	}
}

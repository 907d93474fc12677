package maintain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shuffler/internal/mpd"
	"github.com/five82/shuffler/internal/shuffle"
	"github.com/five82/shuffler/internal/state"
)

type fakeLoader struct {
	groups [][]string
	err    error
	calls  int
}

func (f *fakeLoader) Load(_ context.Context, chain *shuffle.Chain) error {
	f.calls++
	for _, g := range f.groups {
		if err := chain.Add(g...); err != nil {
			return err
		}
	}
	return f.err
}

func TestHandle_DatabaseUpdateReloads(t *testing.T) {
	loader := &fakeLoader{groups: [][]string{{"new/1", "new/2"}, {"new/3"}}}
	store := &state.Store{}
	player := &fakePlayer{}
	chain := newChain(t, 5, 1)
	m := New(player, chain, Policy{}, WithReloader(loader), WithStore(store))

	events := mpd.NewEventSet(mpd.EventDatabase, mpd.EventQueue)
	require.NoError(t, m.Handle(context.Background(), events))

	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, [][]string{{"new/1", "new/2"}, {"new/3"}}, chain.Items())
	assert.Equal(t, shuffle.PoolSize{Groups: 2, URIs: 3}, store.Snapshot().Pool)
	assert.Empty(t, player.calls, "a reload ends the iteration")
}

func TestReload_FailureKeepsLiveChain(t *testing.T) {
	boom := errors.New("listallinfo failed")
	loader := &fakeLoader{groups: [][]string{{"partial"}}, err: boom}
	chain := newChain(t, 3, 1)
	before := chain.Items()
	m := New(&fakePlayer{}, chain, Policy{}, WithReloader(loader))

	err := m.Reload(context.Background())
	require.ErrorIs(t, err, ErrLoadFailure)
	require.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "catalog reload failed: listallinfo failed")
	assert.Equal(t, before, chain.Items())
}

func TestReload_WithoutReloader(t *testing.T) {
	chain := newChain(t, 2, 1)
	m := New(&fakePlayer{}, chain, Policy{})

	require.NoError(t, m.Reload(context.Background()))
	assert.Equal(t, 2, chain.Len())
}

func TestLoad_ReportsPool(t *testing.T) {
	store := &state.Store{}
	chain := shuffle.NewChain(2)
	loader := &fakeLoader{groups: [][]string{{"a"}, {"b", "c"}}}

	require.NoError(t, Load(context.Background(), loader, chain, store))
	assert.Equal(t, shuffle.PoolSize{Groups: 2, URIs: 3}, store.Snapshot().Pool)

	loader.err = errors.New("nope")
	require.Error(t, Load(context.Background(), loader, shuffle.NewChain(2), store))
}

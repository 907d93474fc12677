package maintain

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/five82/shuffler/internal/catalog"
	"github.com/five82/shuffler/internal/shuffle"
	"github.com/five82/shuffler/internal/state"
)

// Reload rebuilds the chain with the configured reloader. The new catalog is
// loaded into a staging chain first, so a failed load leaves the live chain
// untouched. The error wraps both ErrLoadFailure and the loader's error.
func (m *Maintainer) Reload(ctx context.Context) error {
	if m.reloader == nil {
		return nil
	}
	staging := shuffle.NewChain(m.chain.WindowSize())
	if err := m.reloader.Load(ctx, staging); err != nil {
		return errors.WithStack(fmt.Errorf("%w: %w", ErrLoadFailure, err))
	}
	m.chain.Replace(staging)
	ReportPool(m.chain, m.store)
	return nil
}

// ReportPool logs the chain's pool size and publishes it to store, which may
// be nil.
func ReportPool(chain *shuffle.Chain, store *state.Store) {
	size := chain.Size()
	log.Info().Int("groups", size.Groups).Int("songs", size.URIs).Msg(size.String())
	if store != nil {
		store.SetPool(size)
	}
}

// Load fills chain with loader and reports the resulting pool size.
func Load(ctx context.Context, loader catalog.Loader, chain *shuffle.Chain, store *state.Store) error {
	if err := loader.Load(ctx, chain); err != nil {
		return errors.Wrap(err, "load catalog")
	}
	ReportPool(chain, store)
	return nil
}

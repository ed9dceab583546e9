package main

import (
	"context"
	"log/slog"

	"github.com/Jacobbrewer1/intercord/cmd/bridge/monitoring"
	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
)

// gaugedStore keeps the tracked channels gauge in step with the binding store.
type gaugedStore struct {
	dataaccess.BindingDal
	l *slog.Logger
}

func newGaugedStore(l *slog.Logger, store dataaccess.BindingDal) dataaccess.BindingDal {
	return &gaugedStore{
		BindingDal: store,
		l:          l,
	}
}

func (g *gaugedStore) SaveBinding(ctx context.Context, binding *entities.Binding) error {
	if err := g.BindingDal.SaveBinding(ctx, binding); err != nil {
		return err
	}
	g.refresh(ctx)
	return nil
}

func (g *gaugedStore) DeleteBinding(ctx context.Context, channelID string) (bool, error) {
	removed, err := g.BindingDal.DeleteBinding(ctx, channelID)
	if err != nil {
		return false, err
	}
	if removed {
		g.refresh(ctx)
	}
	return removed, nil
}

func (g *gaugedStore) refresh(ctx context.Context) {
	n, err := g.BindingDal.CountBindings(ctx)
	if err != nil {
		g.l.Warn("Error counting bindings", slog.String(logging.KeyError, err.Error()))
		return
	}
	monitoring.TrackedChannels.Set(float64(n))
}

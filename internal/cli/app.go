package cli

import (
	"log/slog"

	"github.com/parkside/discscore/internal/config"
	"github.com/parkside/discscore/internal/gateway"
	"github.com/parkside/discscore/internal/model"
	"github.com/parkside/discscore/internal/queue"
	"github.com/parkside/discscore/internal/round"
	"github.com/parkside/discscore/internal/stats"
	"github.com/parkside/discscore/internal/store"
)

// app wires the core components for one command invocation. Every command
// builds and tears down its own app; there is no shared global state.
type app struct {
	cfg   config.Config
	store store.Store
	gw    gateway.Gateway
	queue *queue.Queue
}

func openApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open record store", err)
	}
	slog.Debug("record store ready", "backend", st.Name())

	var gw gateway.Gateway = gateway.Unavailable{}
	if cfg.Remote.Dir != "" {
		dg, err := gateway.NewDirGateway(cfg.Remote.Dir)
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to open remote gateway", err)
		}
		gw = dg
	}

	q := queue.New(st, gw, model.UUIDv7Generator{})
	return &app{cfg: cfg, store: st, gw: gw, queue: q}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("error closing record store", "error", err)
	}
}

func (a *app) roundDeps() round.Deps {
	return round.Deps{
		Store:  a.store,
		Outbox: a.queue,
		IDs:    model.UUIDv7Generator{},
		Bounds: a.cfg.Bounds,
		Stats:  a.statsOptions(),
	}
}

func (a *app) statsOptions() stats.Options {
	return stats.Options{
		MinRounds:     a.cfg.Stats.MinRounds,
		MinDataPoints: a.cfg.Stats.MinDataPoints,
	}
}

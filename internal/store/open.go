package store

import (
	"fmt"
	"log/slog"

	"github.com/parkside/discscore/internal/config"
)

// Open selects a backend per the store configuration. With backend "auto"
// the indexed backend is probed first; if it cannot be opened the file
// fallback is selected with a logged warning instead of failing startup;
// a degraded store beats no store for an offline-first app.
//
// The selection happens once; callers hold the returned Store for the
// process lifetime.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "file":
		return OpenFile(cfg.Dir)
	case "auto", "":
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			slog.Warn("indexed backend unavailable, falling back to file store",
				"path", cfg.Path, "dir", cfg.Dir, "error", err)
			return OpenFile(cfg.Dir)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

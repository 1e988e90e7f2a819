package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DirGateway is a Gateway backed by a plain directory: one JSON file of
// rows per collection. It exists so a synced folder (network mount, file
// share) can serve as the remote store, and so the sync path can be
// exercised end to end without remote credentials. Production deployments
// substitute their own Gateway implementation.
type DirGateway struct {
	dir string
	mu  sync.Mutex
}

// NewDirGateway returns a gateway rooted at dir, creating it if needed.
func NewDirGateway(dir string) (*DirGateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create remote dir %s: %w", dir, err)
	}
	return &DirGateway{dir: dir}, nil
}

func (d *DirGateway) path(name string) string {
	return filepath.Join(d.dir, name+".json")
}

func (d *DirGateway) load(name string) ([]Row, error) {
	data, err := os.ReadFile(d.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", name, err)
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse collection %s: %w", name, err)
	}
	return rows, nil
}

func (d *DirGateway) save(name string, rows []Row) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", name, err)
	}
	tmp := d.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", name, err)
	}
	if err := os.Rename(tmp, d.path(name)); err != nil {
		return fmt.Errorf("replace collection %s: %w", name, err)
	}
	return nil
}

func (d *DirGateway) ListCollections(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

func (d *DirGateway) CreateCollection(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := os.Stat(d.path(name)); err == nil {
		return nil
	}
	return d.save(name, []Row{})
}

func (d *DirGateway) GetRows(ctx context.Context, name string) ([]Row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(name)
}

func (d *DirGateway) CreateRow(ctx context.Context, name string, fields Row) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rows, err := d.load(name)
	if err != nil {
		return 0, err
	}
	// Idempotent append: a replayed row with a known id overwrites in
	// place instead of duplicating.
	if id := fields["id"]; id != "" {
		for i, row := range rows {
			if row["id"] == id {
				rows[i] = fields
				if err := d.save(name, rows); err != nil {
					return 0, err
				}
				return i, nil
			}
		}
	}
	rows = append(rows, fields)
	if err := d.save(name, rows); err != nil {
		return 0, err
	}
	return len(rows) - 1, nil
}

func (d *DirGateway) UpdateRow(ctx context.Context, name string, rowIndex int, fields Row) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rows, err := d.load(name)
	if err != nil {
		return err
	}
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row index %d out of range for %s", rowIndex, name)
	}
	rows[rowIndex] = fields
	return d.save(name, rows)
}

func (d *DirGateway) DeleteRow(ctx context.Context, name string, rowIndex int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rows, err := d.load(name)
	if err != nil {
		return err
	}
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row index %d out of range for %s", rowIndex, name)
	}
	rows = append(rows[:rowIndex], rows[rowIndex+1:]...)
	return d.save(name, rows)
}

func (d *DirGateway) HealthCheck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := os.Stat(d.dir); err != nil {
		return fmt.Errorf("remote dir unavailable: %w", err)
	}
	return nil
}

// Unavailable is the Gateway used when no remote is configured: every call
// fails, so mutations park in the operation queue until a real gateway is
// pointed at them.
type Unavailable struct{}

func (Unavailable) err() error { return fmt.Errorf("no remote gateway configured") }

func (u Unavailable) ListCollections(ctx context.Context) ([]string, error) { return nil, u.err() }
func (u Unavailable) CreateCollection(ctx context.Context, name string) error { return u.err() }
func (u Unavailable) GetRows(ctx context.Context, name string) ([]Row, error) { return nil, u.err() }
func (u Unavailable) CreateRow(ctx context.Context, name string, fields Row) (int, error) {
	return 0, u.err()
}
func (u Unavailable) UpdateRow(ctx context.Context, name string, rowIndex int, fields Row) error {
	return u.err()
}
func (u Unavailable) DeleteRow(ctx context.Context, name string, rowIndex int) error {
	return u.err()
}
func (u Unavailable) HealthCheck(ctx context.Context) error { return u.err() }

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parkside/discscore/internal/config"
	"github.com/parkside/discscore/internal/model"
)

func storeConfig(backend, path, dir string) config.StoreConfig {
	return config.StoreConfig{Backend: backend, Path: path, Dir: dir}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// openBackends returns a fresh instance of each backend, named for subtests.
func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	file, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	t.Cleanup(func() { file.Close() })
	return map[string]Store{"sqlite": sqlite, "file": file}
}

func course(id, name string) model.Course {
	return model.Course{
		ID:        id,
		Name:      name,
		HoleCount: 9,
		CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, model.CollectionCourses, course("c1", "Pine Valley")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			got, ok := Get[model.Course](ctx, s, model.CollectionCourses, "c1")
			if !ok {
				t.Fatal("Get() ok = false, want true")
			}
			if got.Name != "Pine Valley" {
				t.Errorf("Name = %q, want %q", got.Name, "Pine Valley")
			}
			if got.HoleCount != 9 {
				t.Errorf("HoleCount = %d, want 9", got.HoleCount)
			}
			if !got.CreatedAt.Equal(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)) {
				t.Errorf("CreatedAt = %v, not preserved", got.CreatedAt)
			}
		})
	}
}

func TestStore_PutIsUpsert(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, model.CollectionCourses, course("c1", "Old Name")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := s.Put(ctx, model.CollectionCourses, course("c1", "New Name")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			all := All[model.Course](ctx, s, model.CollectionCourses)
			if len(all) != 1 {
				t.Fatalf("len(GetAll) = %d, want 1", len(all))
			}
			if all[0].Name != "New Name" {
				t.Errorf("Name = %q, want %q", all[0].Name, "New Name")
			}
		})
	}
}

func TestStore_GetByIDMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := s.GetByID(ctx, model.CollectionCourses, "nope"); ok {
				t.Error("GetByID() ok = true for missing id")
			}
		})
	}
}

func TestStore_GetAllEmptyCollection(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			docs := s.GetAll(ctx, "never-written")
			if docs == nil {
				t.Fatal("GetAll() = nil, want empty slice")
			}
			if len(docs) != 0 {
				t.Errorf("len(GetAll) = %d, want 0", len(docs))
			}
		})
	}
}

func TestStore_GetByField(t *testing.T) {
	ctx := context.Background()
	holes := []model.Hole{
		{ID: "h1", CourseID: "c1", SequenceNumber: 1, Par: 3},
		{ID: "h2", CourseID: "c1", SequenceNumber: 2, Par: 4},
		{ID: "h3", CourseID: "c2", SequenceNumber: 1, Par: 3},
	}
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, h := range holes {
				if err := s.Put(ctx, model.CollectionHoles, h); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
			}

			got := ByField[model.Hole](ctx, s, model.CollectionHoles, "course_id", "c1")
			if len(got) != 2 {
				t.Fatalf("len(GetByField) = %d, want 2", len(got))
			}
			for _, h := range got {
				if h.CourseID != "c1" {
					t.Errorf("CourseID = %q, want c1", h.CourseID)
				}
			}

			if got := ByField[model.Hole](ctx, s, model.CollectionHoles, "course_id", "c9"); len(got) != 0 {
				t.Errorf("len(GetByField no match) = %d, want 0", len(got))
			}
		})
	}
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, model.CollectionCourses, course("c1", "A")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := s.Put(ctx, model.CollectionCourses, course("c2", "B")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			if err := s.Remove(ctx, model.CollectionCourses, "c1"); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			if _, ok := s.GetByID(ctx, model.CollectionCourses, "c1"); ok {
				t.Error("removed record still present")
			}
			if _, ok := s.GetByID(ctx, model.CollectionCourses, "c2"); !ok {
				t.Error("unrelated record removed")
			}

			// Removing an absent id is not an error.
			if err := s.Remove(ctx, model.CollectionCourses, "c1"); err != nil {
				t.Errorf("Remove() absent id error = %v", err)
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, model.CollectionCourses, course("c1", "A")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := s.Put(ctx, model.CollectionHoles, model.Hole{ID: "h1", CourseID: "c1", SequenceNumber: 1, Par: 3}); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			if err := s.Clear(ctx, model.CollectionCourses); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if got := len(s.GetAll(ctx, model.CollectionCourses)); got != 0 {
				t.Errorf("len after Clear = %d, want 0", got)
			}
			// Other collections are untouched.
			if got := len(s.GetAll(ctx, model.CollectionHoles)); got != 1 {
				t.Errorf("len(holes) = %d, want 1", got)
			}
		})
	}
}

func TestStore_PutEmptyIDRejected(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, model.CollectionCourses, course("", "Nameless")); err == nil {
				t.Error("Put() with empty id did not error")
			}
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Put(ctx, model.CollectionCourses, course("c1", "Survivor")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Opening an existing database is idempotent and keeps the data.
	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if _, ok := s.GetByID(ctx, model.CollectionCourses, "c1"); !ok {
		t.Error("record lost across reopen")
	}
}

func TestSQLiteStore_PutManyLeavesOthersUntouched(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()

	if err := s.Put(ctx, model.CollectionCourses, course("c1", "Keep Me")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.PutMany(ctx, model.CollectionCourses, []model.Record{course("c2", "B"), course("c3", "C")}); err != nil {
		t.Fatalf("PutMany() error = %v", err)
	}

	if got := len(s.GetAll(ctx, model.CollectionCourses)); got != 3 {
		t.Errorf("len(GetAll) = %d, want 3", got)
	}
}

func TestFileStore_PutManyReplacesCollection(t *testing.T) {
	ctx := context.Background()
	s, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}

	if err := s.Put(ctx, model.CollectionCourses, course("c1", "Gone")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.PutMany(ctx, model.CollectionCourses, []model.Record{course("c2", "B"), course("c3", "C")}); err != nil {
		t.Fatalf("PutMany() error = %v", err)
	}

	// The batch is the authoritative full set on the flat backend.
	all := All[model.Course](ctx, s, model.CollectionCourses)
	if len(all) != 2 {
		t.Fatalf("len(GetAll) = %d, want 2", len(all))
	}
	for _, c := range all {
		if c.ID == "c1" {
			t.Error("record outside batch survived PutMany")
		}
	}
}

func TestFileStore_CorruptFileReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}

	if err := writeFile(filepath.Join(dir, "courses.json"), "{not json"); err != nil {
		t.Fatal(err)
	}
	if got := len(s.GetAll(ctx, model.CollectionCourses)); got != 0 {
		t.Errorf("len(GetAll) on corrupt file = %d, want 0", got)
	}

	// Writes through the store heal the file.
	if err := s.Put(ctx, model.CollectionCourses, course("c1", "Healed")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := s.GetByID(ctx, model.CollectionCourses, "c1"); !ok {
		t.Error("record not readable after rewrite")
	}
}

func TestOpen_BackendSelection(t *testing.T) {
	tmp := t.TempDir()

	t.Run("explicit sqlite", func(t *testing.T) {
		s, err := Open(storeConfig("sqlite", filepath.Join(tmp, "a.db"), ""))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()
		if s.Name() != "sqlite" {
			t.Errorf("Name() = %q, want sqlite", s.Name())
		}
	})

	t.Run("explicit file", func(t *testing.T) {
		s, err := Open(storeConfig("file", "", filepath.Join(tmp, "data")))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()
		if s.Name() != "file" {
			t.Errorf("Name() = %q, want file", s.Name())
		}
	})

	t.Run("auto falls back when sqlite cannot open", func(t *testing.T) {
		// Point the database into a directory that does not exist; the
		// probe fails and the file store takes over.
		s, err := Open(storeConfig("auto", filepath.Join(tmp, "missing", "b.db"), filepath.Join(tmp, "fallback")))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()
		if s.Name() != "file" {
			t.Errorf("Name() = %q, want file", s.Name())
		}
	})

	t.Run("unknown backend errors", func(t *testing.T) {
		if _, err := Open(storeConfig("etcd", "", "")); err == nil {
			t.Error("Open() with unknown backend did not error")
		}
	})
}

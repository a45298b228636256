package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/race-explorer/racegraph/execution"
	"github.com/race-explorer/racegraph/process"
)

func TestMemStoreSaveLoadRoundTrips(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	rec := Record{
		Name:       "counter-race/racy-interleaving",
		FactoryKey: "counterrace.Factory",
		SeedPath:   execution.Path{1, 2, 1, 2},
	}

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, rec.Name)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FactoryKey != rec.FactoryKey || len(got.SeedPath) != len(rec.SeedPath) {
		t.Fatalf("Load = %+v, want %+v", got, rec)
	}
	for i := range rec.SeedPath {
		if got.SeedPath[i] != rec.SeedPath[i] {
			t.Fatalf("SeedPath[%d] = %v, want %v", i, got.SeedPath[i], rec.SeedPath[i])
		}
	}
}

func TestMemStoreLoadMissingIsErrNotFound(t *testing.T) {
	store := NewMemStore()
	_, err := store.Load(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemStoreSaveOverwrites(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	name := "philosophers/deadlock"

	if err := store.Save(ctx, Record{Name: name, FactoryKey: "v1", SeedPath: execution.Path{1}}); err != nil {
		t.Fatalf("Save v1: %v", err)
	}
	if err := store.Save(ctx, Record{Name: name, FactoryKey: "v2", SeedPath: execution.Path{process.ID(2), process.ID(3)}}); err != nil {
		t.Fatalf("Save v2: %v", err)
	}

	got, err := store.Load(ctx, name)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FactoryKey != "v2" || len(got.SeedPath) != 2 {
		t.Fatalf("Load after overwrite = %+v, want FactoryKey v2 and 2-element path", got)
	}
}

func TestMemStoreListIsSorted(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mu"} {
		if err := store.Save(ctx, Record{Name: name, FactoryKey: "k"}); err != nil {
			t.Fatalf("Save %q: %v", name, err)
		}
	}

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "mu", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("List = %v, want %v", names, want)
		}
	}
}

func TestMemStoreDeleteIsIdempotent(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	name := "selfretry/finite"
	if err := store.Save(ctx, Record{Name: name}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("second Delete: %v", err)
	}

	if _, err := store.Load(ctx, name); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load after Delete = %v, want ErrNotFound", err)
	}
}

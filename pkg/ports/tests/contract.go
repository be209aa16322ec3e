package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// StateStoreContractTest is a reusable test suite that verifies if an
// adapter complies with ports.StateStore. Adapter tests construct their
// backend and hand the store here.
func StateStoreContractTest(t *testing.T, store ports.StateStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-session")
		if !errors.Is(err, domain.ErrContextNotFound) {
			t.Errorf("expected ErrContextNotFound, got %v", err)
		}
	})

	t.Run("Save_Load_RoundTrip", func(t *testing.T) {
		state := domain.State{
			"model":   "alice.mdl",
			"retries": float64(3),
			"nested":  map[string]any{"temperature": 0.7},
		}
		if err := store.Save(ctx, "session-a", state); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}

		loaded, err := store.Load(ctx, "session-a")
		if err != nil {
			t.Fatalf("failed to load state: %v", err)
		}
		if loaded["model"] != "alice.mdl" {
			t.Errorf("expected model 'alice.mdl', got %v", loaded["model"])
		}
		if loaded["retries"] != float64(3) {
			t.Errorf("expected retries 3, got %v", loaded["retries"])
		}
		nested, ok := loaded["nested"].(map[string]any)
		if !ok || nested["temperature"] != 0.7 {
			t.Errorf("expected nested temperature 0.7, got %v", loaded["nested"])
		}
	})

	t.Run("Save_Overwrites", func(t *testing.T) {
		if err := store.Save(ctx, "session-a", domain.State{"model": "bob.mdl"}); err != nil {
			t.Fatalf("failed to overwrite state: %v", err)
		}
		loaded, err := store.Load(ctx, "session-a")
		if err != nil {
			t.Fatalf("failed to load state: %v", err)
		}
		if loaded["model"] != "bob.mdl" {
			t.Errorf("expected model 'bob.mdl', got %v", loaded["model"])
		}
		if _, stale := loaded["retries"]; stale {
			t.Error("stale key 'retries' survived overwrite")
		}
	})

	t.Run("Load_IsolatedCopy", func(t *testing.T) {
		loaded, err := store.Load(ctx, "session-a")
		if err != nil {
			t.Fatalf("failed to load state: %v", err)
		}
		loaded["model"] = "mutated.mdl"

		again, err := store.Load(ctx, "session-a")
		if err != nil {
			t.Fatalf("failed to reload state: %v", err)
		}
		if again["model"] != "bob.mdl" {
			t.Errorf("mutation of a loaded state leaked into the store: %v", again["model"])
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := store.Save(ctx, "session-b", domain.State{}); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		lookup := make(map[string]bool, len(ids))
		for _, id := range ids {
			lookup[id] = true
		}
		for _, want := range []string{"session-a", "session-b"} {
			if !lookup[want] {
				t.Errorf("session %s missing from list %v", want, ids)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "session-a"); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}
		_, err := store.Load(ctx, "session-a")
		if !errors.Is(err, domain.ErrContextNotFound) {
			t.Errorf("expected ErrContextNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete_Idempotent", func(t *testing.T) {
		if err := store.Delete(ctx, "session-a"); err != nil {
			t.Errorf("deleting an absent session should not error, got %v", err)
		}
	})
}

package jsonstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/declafisc/declarations/internal/entry"
	"github.com/declafisc/declarations/internal/settings"
	"github.com/declafisc/declarations/internal/user"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestUserLifecycle(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.GetUser(ctx, "alice"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	u := user.User{Username: "alice", Fullname: "Alice", Password: "hash", Role: "visuel"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateUser(ctx, u); !errors.Is(err, user.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, err := store.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != u {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := store.UpdateUserRole(ctx, "alice", "admin"); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if err := store.UpdateUserFullname(ctx, "alice", "Alice Martin"); err != nil {
		t.Fatalf("update fullname: %v", err)
	}
	if err := store.UpdateUserRole(ctx, "ghost", "admin"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].Role != "admin" || users[0].Fullname != "Alice Martin" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestEntriesFilePerCategory(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.UpsertEntry(ctx, "alice", "taxe", "2025", map[string]any{"revenu": "50000"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// mantém o padrão de nomes legado
	if _, err := os.Stat(filepath.Join(dir, "informationstaxe.json")); err != nil {
		t.Fatalf("expected informationstaxe.json: %v", err)
	}

	values, err := store.GetEntry(ctx, "alice", "taxe", "2025")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if values["revenu"] != "50000" {
		t.Fatalf("unexpected values %v", values)
	}

	if _, err := store.GetEntry(ctx, "alice", "tns", "2025"); !errors.Is(err, entry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in other category, got %v", err)
	}
}

func TestEntryListSortedAndPaginated(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, year := range []string{"2021", "2025", "2019", "2023"} {
		if err := store.UpsertEntry(ctx, "alice", "immo", year, map[string]any{"revenu": year}); err != nil {
			t.Fatalf("upsert %s: %v", year, err)
		}
	}
	// declarações de outro usuário não vazam
	if err := store.UpsertEntry(ctx, "bob", "immo", "2025", map[string]any{}); err != nil {
		t.Fatalf("upsert bob: %v", err)
	}

	rows, total, err := store.ListEntries(ctx, "alice", "immo", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected total 4, got %d", total)
	}
	if len(rows) != 2 || rows[0].Year != "2025" || rows[1].Year != "2023" {
		t.Fatalf("expected 2025,2023 got %+v", rows)
	}

	rows, _, err = store.ListEntries(ctx, "alice", "immo", 0, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected all rows, got %d", len(rows))
	}
}

func TestDeleteEntryIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.DeleteEntry(ctx, "alice", "taxe", "2025"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}

	if err := store.UpsertEntry(ctx, "alice", "taxe", "2025", map[string]any{"x": true}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.DeleteEntry(ctx, "alice", "taxe", "2025"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetEntry(ctx, "alice", "taxe", "2025"); !errors.Is(err, entry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnknownCategoryRejected(t *testing.T) {
	store := newStore(t)

	_, err := store.GetEntry(context.Background(), "alice", "../etc", "2025")
	if !errors.Is(err, entry.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.GetConfig(ctx); !errors.Is(err, settings.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	doc := map[string]any{"fullPageColors": map[string]any{"accent": "#000000"}}
	if err := store.SetConfig(ctx, doc); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.GetConfig(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	colors, ok := got["fullPageColors"].(map[string]any)
	if !ok || colors["accent"] != "#000000" {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

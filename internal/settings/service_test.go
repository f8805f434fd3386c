package settings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/declafisc/declarations/internal/policy"
)

type stubStore struct {
	doc      map[string]any
	getCalls int
	setCalls int
	failGet  error
}

func (s *stubStore) GetConfig(ctx context.Context) (map[string]any, error) {
	s.getCalls++
	if s.failGet != nil {
		return nil, s.failGet
	}
	if s.doc == nil {
		return nil, ErrNotFound
	}
	return s.doc, nil
}

func (s *stubStore) SetConfig(ctx context.Context, doc map[string]any) error {
	s.setCalls++
	s.doc = doc
	return nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = toString(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func toString(value any) string {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(value)
}

func alice() *policy.Identity {
	return &policy.Identity{Username: "alice"}
}

func TestReadReturnsDefaultWhenNeverWritten(t *testing.T) {
	svc := NewService(&stubStore{}, &stubRedis{})

	doc, err := svc.Read(context.Background(), alice())
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	forms, ok := doc["forms"].(map[string]any)
	if !ok {
		t.Fatalf("expected forms map, got %T", doc["forms"])
	}
	for _, cat := range []string{"taxe", "tns", "immo"} {
		if _, ok := forms[cat]; !ok {
			t.Fatalf("default forms missing category %s", cat)
		}
	}
	if _, ok := doc["fullPageColors"].(map[string]any); !ok {
		t.Fatal("default missing fullPageColors")
	}
}

func TestReadRequiresIdentity(t *testing.T) {
	svc := NewService(&stubStore{}, &stubRedis{})

	if _, err := svc.Read(context.Background(), nil); !errors.Is(err, policy.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestReadUsesCacheAfterFirstHit(t *testing.T) {
	store := &stubStore{doc: map[string]any{"forms": map[string]any{"taxe": []any{}}}}
	svc := NewService(store, &stubRedis{})

	for i := 0; i < 3; i++ {
		if _, err := svc.Read(context.Background(), alice()); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}

	if store.getCalls != 1 {
		t.Fatalf("expected single store hit, got %d", store.getCalls)
	}
}

func TestWriteRequiresAdmin(t *testing.T) {
	svc := NewService(&stubStore{}, &stubRedis{})

	for _, role := range []policy.Role{policy.RoleVisuel, policy.RoleEditeur} {
		_, err := svc.Write(context.Background(), alice(), role, map[string]any{"x": 1})
		if !errors.Is(err, policy.ErrForbidden) {
			t.Fatalf("expected ErrForbidden for %s, got %v", role, err)
		}
	}
}

func TestWriteShallowMergeReplacesNestedObjects(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, &stubRedis{})
	root := &policy.Identity{Username: "root"}

	partial := map[string]any{
		"fullPageColors": map[string]any{"accent": "#000000"},
	}

	merged, err := svc.Write(context.Background(), root, policy.RoleAdmin, partial)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	// merge raso: o objeto aninhado é substituído por inteiro
	colors, ok := merged["fullPageColors"].(map[string]any)
	if !ok {
		t.Fatalf("expected colors map, got %T", merged["fullPageColors"])
	}
	if len(colors) != 1 || colors["accent"] != "#000000" {
		t.Fatalf("expected exactly {accent:#000000}, got %v", colors)
	}

	// as demais chaves de topo do padrão sobrevivem
	if _, ok := merged["forms"]; !ok {
		t.Fatal("forms dropped by merge")
	}
	if _, ok := merged["registrationFields"]; !ok {
		t.Fatal("registrationFields dropped by merge")
	}
	if store.setCalls != 1 {
		t.Fatalf("expected one persist, got %d", store.setCalls)
	}
}

func TestWriteInvalidatesCache(t *testing.T) {
	store := &stubStore{}
	cache := &stubRedis{}
	svc := NewService(store, cache)
	root := &policy.Identity{Username: "root"}

	if _, err := svc.Read(context.Background(), root); err != nil {
		t.Fatalf("warm read: %v", err)
	}
	if _, ok := cache.store[cacheKey]; !ok {
		t.Fatal("expected warm cache")
	}

	if _, err := svc.Write(context.Background(), root, policy.RoleAdmin, map[string]any{"motd": "salut"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := cache.store[cacheKey]; ok {
		t.Fatal("expected cache invalidated after write")
	}

	doc, err := svc.Read(context.Background(), root)
	if err != nil {
		t.Fatalf("read after write: %v", err)
	}
	if doc["motd"] != "salut" {
		t.Fatalf("expected merged key visible, got %v", doc["motd"])
	}
}

func TestValidCategoryFollowsForms(t *testing.T) {
	svc := NewService(&stubStore{}, &stubRedis{})
	ctx := context.Background()

	for _, cat := range []string{"taxe", "tns", "immo"} {
		if !svc.ValidCategory(ctx, cat) {
			t.Fatalf("builtin category %s rejected", cat)
		}
	}
	if svc.ValidCategory(ctx, "crypto") {
		t.Fatal("unknown category accepted")
	}

	// categoria nova criada por um admin passa a valer
	root := &policy.Identity{Username: "root"}
	_, err := svc.Write(ctx, root, policy.RoleAdmin, map[string]any{
		"forms": map[string]any{"crypto": []any{}},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !svc.ValidCategory(ctx, "crypto") {
		t.Fatal("configured category rejected")
	}
	// merge raso: as embutidas sumiram junto com o objeto forms antigo
	if svc.ValidCategory(ctx, "taxe") {
		t.Fatal("expected taxe gone after forms replacement")
	}
}

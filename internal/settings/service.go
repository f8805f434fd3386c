package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/declafisc/declarations/internal/policy"
)

const (
	cacheKey = "config:document"
	cacheTTL = 5 * time.Minute
)

// Store abstrai o backend do documento de configuração.
type Store interface {
	GetConfig(ctx context.Context) (map[string]any, error)
	SetConfig(ctx context.Context, doc map[string]any) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Service media leitura e escrita do documento de configuração. Leitura é
// liberada para qualquer identidade autenticada e passa por um cache Redis;
// escrita é exclusiva de admin e é um merge raso sobre o documento vivo.
type Service struct {
	store Store
	cache redisCommander
}

// NewService cria o serviço de configuração.
func NewService(store Store, cache redisCommander) *Service {
	return &Service{store: store, cache: cache}
}

// Read devolve o documento vivo, ou o padrão embutido se nunca gravado.
// Falha de cache nunca derruba a leitura: cai para o backend.
func (s *Service) Read(ctx context.Context, caller *policy.Identity) (map[string]any, error) {
	if err := policy.Decide(caller, "", policy.Action{Kind: policy.ActionConfigRead}); err != nil {
		return nil, err
	}
	return s.document(ctx)
}

// document devolve o documento vivo passando pelo cache.
func (s *Service) document(ctx context.Context) (map[string]any, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var doc map[string]any
			if err := json.Unmarshal(raw, &doc); err == nil {
				return doc, nil
			}
		}
	}

	doc, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	s.fillCache(ctx, doc)
	return doc, nil
}

// Write aplica merge raso do parcial sobre o documento vivo: cada chave de
// topo do parcial substitui por inteiro a chave armazenada. Estruturas
// aninhadas (forms, fullPageColors) NÃO são mescladas por chave interna.
func (s *Service) Write(ctx context.Context, caller *policy.Identity, role policy.Role, partial map[string]any) (map[string]any, error) {
	if err := policy.Decide(caller, role, policy.Action{Kind: policy.ActionConfigWrite}); err != nil {
		return nil, err
	}
	if partial == nil {
		return nil, errors.New("corpo inválido")
	}

	current, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(current)+len(partial))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}

	if err := s.store.SetConfig(ctx, merged); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, cacheKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("configuração: invalidação de cache falhou")
		}
	}

	return merged, nil
}

// ValidCategory responde se a categoria existe nas chaves de "forms" do
// documento vivo. Em caso de falha de leitura, cai para as embutidas.
func (s *Service) ValidCategory(ctx context.Context, category string) bool {
	doc, err := s.document(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("configuração: leitura falhou, usando categorias embutidas")
		doc = DefaultConfiguration()
	}

	if forms, ok := doc["forms"].(map[string]any); ok {
		if _, ok := forms[category]; ok {
			return true
		}
	}
	return false
}

func (s *Service) current(ctx context.Context) (map[string]any, error) {
	doc, err := s.store.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DefaultConfiguration(), nil
		}
		return nil, err
	}
	return doc, nil
}

func (s *Service) fillCache(ctx context.Context, doc map[string]any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("configuração: escrita de cache falhou")
	}
}

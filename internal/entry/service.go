package entry

import (
	"context"
	"errors"

	"github.com/declafisc/declarations/internal/policy"
	"github.com/declafisc/declarations/internal/util"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Store abstrai o backend de declarações (Postgres ou arquivos JSON).
type Store interface {
	ListEntries(ctx context.Context, username, category string, limit, offset int) ([]Entry, int, error)
	GetEntry(ctx context.Context, username, category, year string) (map[string]any, error)
	UpsertEntry(ctx context.Context, username, category, year string, values map[string]any) error
	DeleteEntry(ctx context.Context, username, category, year string) error
}

// CategoryResolver responde se uma categoria existe no schema vivo.
// Implementado pelo serviço de configuração.
type CategoryResolver interface {
	ValidCategory(ctx context.Context, category string) bool
}

// Service media todo acesso às declarações pela política de autorização:
// a decisão vem antes de qualquer toque no Store.
type Service struct {
	store      Store
	categories CategoryResolver
}

// NewService cria o serviço de acesso às declarações.
func NewService(store Store, categories CategoryResolver) *Service {
	return &Service{store: store, categories: categories}
}

// List devolve as declarações do dono, ano decrescente, paginadas.
// page é 1-based; limit é limitado a [1,100] com padrão 50.
func (s *Service) List(ctx context.Context, caller *policy.Identity, category, username string, page, limit int) (*Page, error) {
	action := policy.Action{Kind: policy.ActionEntryList, TargetUsername: username}
	if err := policy.Decide(caller, "", action); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, category); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, total, err := s.store.ListEntries(ctx, username, category, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Entry{}
	}
	return &Page{Total: total, Page: page, Limit: limit, Rows: rows}, nil
}

// Get devolve o payload do ano, ou objeto vazio quando ausente.
func (s *Service) Get(ctx context.Context, caller *policy.Identity, category, username, year string) (map[string]any, error) {
	action := policy.Action{Kind: policy.ActionEntryRead, TargetUsername: username}
	if err := policy.Decide(caller, "", action); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, category); err != nil {
		return nil, err
	}

	values, err := s.store.GetEntry(ctx, username, category, year)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// Put grava o payload substituindo por inteiro o valor anterior
// (last-writer-wins, sem merge nem verificação otimista).
func (s *Service) Put(ctx context.Context, caller *policy.Identity, category, username, year string, values map[string]any) (map[string]any, error) {
	action := policy.Action{Kind: policy.ActionEntryWrite, TargetUsername: username}
	if err := policy.Decide(caller, "", action); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, category); err != nil {
		return nil, err
	}
	if err := util.ValidateYear(year); err != nil {
		return nil, ErrInvalidYear
	}

	if values == nil {
		values = map[string]any{}
	}
	if err := s.store.UpsertEntry(ctx, username, category, year, values); err != nil {
		return nil, err
	}
	return values, nil
}

// Delete remove a declaração do ano; idempotente.
func (s *Service) Delete(ctx context.Context, caller *policy.Identity, category, username, year string) error {
	action := policy.Action{Kind: policy.ActionEntryDelete, TargetUsername: username}
	if err := policy.Decide(caller, "", action); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, category); err != nil {
		return err
	}

	return s.store.DeleteEntry(ctx, username, category, year)
}

func (s *Service) checkCategory(ctx context.Context, category string) error {
	if category == "" || !s.categories.ValidCategory(ctx, category) {
		return ErrUnknownCategory
	}
	return nil
}

// Package jsonstore implementa os três stores da aplicação sobre arquivos
// JSON planos, o modo de armazenamento histórico do produto: users.json,
// informations<categoria>.json e admin-config.json em um diretório de dados.
// As escritas são atômicas (arquivo temporário + rename) e serializadas por
// um mutex do processo, o que atende a atomicidade por chave exigida.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/declafisc/declarations/internal/entry"
	"github.com/declafisc/declarations/internal/settings"
	"github.com/declafisc/declarations/internal/user"
)

const (
	usersFile  = "users.json"
	configFile = "admin-config.json"
)

var categoryRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Store guarda usuários, declarações e configuração em arquivos JSON.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New cria o store garantindo a existência do diretório de dados.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonstore: %w", err)
	}
	return &Store{dir: dir}, nil
}

// entriesFile mapeia categoria para o arquivo de declarações, mantendo o
// padrão de nomes legado (informationstaxe.json etc.).
func entriesFile(category string) (string, error) {
	if !categoryRe.MatchString(category) {
		return "", entry.ErrUnknownCategory
	}
	return "informations" + category + ".json", nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readFile decodifica o arquivo em out; ausência deixa out como está.
func (s *Store) readFile(name string, out any) error {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(raw, out)
}

// writeFile grava com temporário + rename para nunca expor JSON truncado.
func (s *Store) writeFile(name string, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	target := s.path(name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// --- Credential Store ---

func (s *Store) loadUsers() ([]user.User, error) {
	var users []user.User
	if err := s.readFile(usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser busca conta pelo identifiant.
func (s *Store) GetUser(ctx context.Context, username string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return user.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

// CreateUser adiciona conta nova; identifiant duplicado devolve ErrExists.
func (s *Store) CreateUser(ctx context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	for _, existing := range users {
		if existing.Username == u.Username {
			return user.ErrExists
		}
	}
	return s.writeFile(usersFile, append(users, u))
}

// ListUsers devolve todas as contas na ordem do arquivo.
func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUsers()
}

// UpdateUserRole troca o papel da conta alvo.
func (s *Store) UpdateUserRole(ctx context.Context, username, role string) error {
	return s.updateUser(username, func(u *user.User) {
		u.Role = role
	})
}

// UpdateUserFullname atualiza o nome exibido.
func (s *Store) UpdateUserFullname(ctx context.Context, username, fullname string) error {
	return s.updateUser(username, func(u *user.User) {
		u.Fullname = fullname
	})
}

// UpsertUser grava a conta substituindo a existente (ferramenta createadmin).
func (s *Store) UpsertUser(ctx context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == u.Username {
			users[i] = u
			return s.writeFile(usersFile, users)
		}
	}
	return s.writeFile(usersFile, append(users, u))
}

func (s *Store) updateUser(username string, mutate func(*user.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == username {
			mutate(&users[i])
			return s.writeFile(usersFile, users)
		}
	}
	return user.ErrNotFound
}

// --- Entry Store ---

// loadEntries devolve o mapa username → ano → payload da categoria.
func (s *Store) loadEntries(category string) (map[string]map[string]map[string]any, string, error) {
	name, err := entriesFile(category)
	if err != nil {
		return nil, "", err
	}
	data := make(map[string]map[string]map[string]any)
	if err := s.readFile(name, &data); err != nil {
		return nil, "", err
	}
	return data, name, nil
}

// ListEntries devolve anos em ordem decrescente e o total sem paginação.
// limit <= 0 devolve tudo.
func (s *Store) ListEntries(ctx context.Context, username, category string, limit, offset int) ([]entry.Entry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, _, err := s.loadEntries(category)
	if err != nil {
		return nil, 0, err
	}

	userData := data[username]
	years := make([]string, 0, len(userData))
	for year := range userData {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	total := len(years)
	if limit > 0 {
		if offset >= len(years) {
			years = nil
		} else {
			end := offset + limit
			if end > len(years) {
				end = len(years)
			}
			years = years[offset:end]
		}
	}

	rows := make([]entry.Entry, 0, len(years))
	for _, year := range years {
		rows = append(rows, entry.Entry{Year: year, Values: userData[year]})
	}
	return rows, total, nil
}

// GetEntry busca o payload de um ano; ausência devolve ErrNotFound.
func (s *Store) GetEntry(ctx context.Context, username, category, year string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, _, err := s.loadEntries(category)
	if err != nil {
		return nil, err
	}
	values, ok := data[username][year]
	if !ok {
		return nil, entry.ErrNotFound
	}
	return values, nil
}

// UpsertEntry grava o payload substituindo o anterior por inteiro.
func (s *Store) UpsertEntry(ctx context.Context, username, category, year string, values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, name, err := s.loadEntries(category)
	if err != nil {
		return err
	}
	if data[username] == nil {
		data[username] = make(map[string]map[string]any)
	}
	data[username][year] = values
	return s.writeFile(name, data)
}

// DeleteEntry remove o ano; remover o inexistente não regrava o arquivo.
func (s *Store) DeleteEntry(ctx context.Context, username, category, year string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, name, err := s.loadEntries(category)
	if err != nil {
		return err
	}
	if _, ok := data[username][year]; !ok {
		return nil
	}
	delete(data[username], year)
	return s.writeFile(name, data)
}

// --- Configuration Store ---

// GetConfig devolve o documento vivo ou ErrNotFound se nunca gravado.
func (s *Store) GetConfig(ctx context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc map[string]any
	if err := s.readFile(configFile, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, settings.ErrNotFound
	}
	return doc, nil
}

// SetConfig substitui o documento inteiro.
func (s *Store) SetConfig(ctx context.Context, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(configFile, doc)
}

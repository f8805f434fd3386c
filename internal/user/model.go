package user

import "errors"

var (
	// ErrNotFound é retornado quando o usuário não existe.
	ErrNotFound = errors.New("usuário não encontrado")
	// ErrExists é retornado ao registrar um identifiant já usado.
	ErrExists = errors.New("identifiant já registrado")
)

// User representa uma conta do painel de declarações. O campo Password
// carrega o hash Argon2id, nunca a senha em claro; a tag json "password"
// mantém compatibilidade com os arquivos users.json legados.
type User struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

package entry

import "errors"

var (
	// ErrNotFound indica declaração ausente para a chave pedida. O serviço
	// converte em objeto vazio: ausência não é erro para o chamador.
	ErrNotFound = errors.New("declaração não encontrada")
	// ErrUnknownCategory indica categoria fora do schema configurado.
	ErrUnknownCategory = errors.New("categoria desconhecida")
	// ErrInvalidYear indica ano fora do formato de quatro dígitos.
	ErrInvalidYear = errors.New("ano inválido")
)

// Entry é a declaração de um ano para um usuário em uma categoria.
// Values é o objeto livre de campo→valor; o schema por categoria da
// configuração é consultivo para a UI, não é validado aqui.
type Entry struct {
	Year   string         `json:"year"`
	Values map[string]any `json:"values"`
}

// Page é o resultado paginado de List.
type Page struct {
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Rows  []Entry `json:"rows"`
}

package util

import (
	"errors"
	"regexp"
	"strings"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9@._-]{3,80}$`)
	yearRe     = regexp.MustCompile(`^[0-9]{4}$`)
)

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// ValidateUsername aceita e-mail ou pseudônimo. O valor vira chave de
// armazenamento e segmento de URL, então o alfabeto é restrito.
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return errors.New("identifiant inválido")
	}
	return nil
}

// ValidateYear exige ano com quatro dígitos.
func ValidateYear(year string) error {
	if !yearRe.MatchString(year) {
		return errors.New("ano inválido")
	}
	return nil
}

package settings

import "errors"

// ErrNotFound indica configuração nunca inicializada no backend.
var ErrNotFound = errors.New("configuração não encontrada")

// FieldSpec descreve um campo de formulário dinâmico.
type FieldSpec struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// Categorias embutidas; o conjunto é extensível via chaves de "forms".
const (
	CategoryTaxe = "taxe"
	CategoryTNS  = "tns"
	CategoryImmo = "immo"
)

// DefaultConfiguration devolve o documento padrão usado até o primeiro
// write de um admin. Os labels são os do produto (painel em francês).
func DefaultConfiguration() map[string]any {
	return map[string]any{
		"registrationFields": []any{
			fieldMap(FieldSpec{Name: "fullname", Label: "Nom complet", Type: "text", Required: true}),
			fieldMap(FieldSpec{Name: "username", Label: "Identifiant (email ou pseudo)", Type: "text", Required: true}),
			fieldMap(FieldSpec{Name: "password", Label: "Mot de passe", Type: "password", Required: true}),
		},
		"forms": map[string]any{
			CategoryTaxe: []any{
				fieldMap(FieldSpec{Name: "revenu", Label: "Revenu fiscal", Type: "number"}),
				fieldMap(FieldSpec{Name: "revenu_conjoint", Label: "Revenu fiscal conjoint", Type: "number"}),
				fieldMap(FieldSpec{Name: "nb_enfants", Label: "Nombre d'enfants", Type: "number"}),
				fieldMap(FieldSpec{Name: "nb_charge", Label: "Nombre de personnes à charge", Type: "number"}),
			},
			CategoryTNS: []any{
				fieldMap(FieldSpec{Name: "revenu", Label: "Revenu", Type: "number"}),
				fieldMap(FieldSpec{Name: "charges", Label: "Charges", Type: "number"}),
				fieldMap(FieldSpec{Name: "foncier", Label: "Foncier", Type: "number"}),
				fieldMap(FieldSpec{Name: "madelin", Label: "Madelin", Type: "number"}),
			},
			CategoryImmo: []any{
				fieldMap(FieldSpec{Name: "revenu", Label: "Revenu", Type: "number"}),
				fieldMap(FieldSpec{Name: "charges", Label: "Charges", Type: "number"}),
				fieldMap(FieldSpec{Name: "dispositif", Label: "Dispositif", Type: "text"}),
				fieldMap(FieldSpec{Name: "deficit", Label: "Déficit antérieur", Type: "number"}),
			},
		},
		"fullPageColors": map[string]any{
			"background": "#ffffff",
			"header":     "#0d6efd",
			"accent":     "#2dbf73",
			"text":       "#0b2a2b",
		},
	}
}

func fieldMap(f FieldSpec) map[string]any {
	m := map[string]any{
		"name":  f.Name,
		"label": f.Label,
		"type":  f.Type,
	}
	if f.Required {
		m["required"] = true
	}
	return m
}

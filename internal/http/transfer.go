package http

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/declafisc/declarations/internal/entry"
	"github.com/declafisc/declarations/internal/http/middleware"
	"github.com/declafisc/declarations/internal/service"
)

const exportPageSize = 100

// exportDocument é o formato de exportação e importação de dados próprios.
type exportDocument struct {
	Profile *service.Profile         `json:"profile"`
	Entries map[string][]entry.Entry `json:"entries"`
}

// Export devolve o perfil do subject e todas as suas declarações por
// categoria configurada.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetIdentity(ctx)
	subject := middleware.GetSubject(ctx)

	profile, err := h.authService.Me(ctx, subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	doc, err := h.settings.Read(ctx, caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := exportDocument{Profile: profile, Entries: map[string][]entry.Entry{}}
	for _, category := range categoriesOf(doc) {
		rows, err := h.collectEntries(r, category, subject)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out.Entries[category] = rows
	}

	WriteJSON(w, http.StatusOK, out)
}

// Import regrava o nome exibido e as declarações próprias contidas no
// documento. Papel e identifiant do perfil são ignorados.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetIdentity(ctx)
	subject := middleware.GetSubject(ctx)

	var doc exportDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if doc.Profile != nil && doc.Profile.Fullname != "" {
		if err := h.authService.UpdateFullname(ctx, subject, doc.Profile.Fullname); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	imported := 0
	for category, rows := range doc.Entries {
		for _, row := range rows {
			if _, err := h.entries.Put(ctx, caller, category, subject, row.Year, row.Values); err != nil {
				writeDomainError(w, err)
				return
			}
			imported++
		}
	}

	WriteJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// collectEntries pagina a listagem até esgotar os anos da categoria.
func (h *Handler) collectEntries(r *http.Request, category, subject string) ([]entry.Entry, error) {
	caller := middleware.GetIdentity(r.Context())

	rows := []entry.Entry{}
	for page := 1; ; page++ {
		result, err := h.entries.List(r.Context(), caller, category, subject, page, exportPageSize)
		if err != nil {
			return nil, err
		}
		rows = append(rows, result.Rows...)
		if len(rows) >= result.Total || len(result.Rows) == 0 {
			break
		}
	}
	return rows, nil
}

func categoriesOf(doc map[string]any) []string {
	forms, ok := doc["forms"].(map[string]any)
	if !ok {
		return nil
	}
	categories := make([]string, 0, len(forms))
	for category := range forms {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// internal/app/features/edition/economy.go
package edition

import (
	"net/http"
	"strings"

	"github.com/dalemusser/sagov/internal/app/pageedit"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type rowInput struct {
	Week     string `validate:"required,max=40" label:"Semaine"`
	Revenues string `validate:"required,numeric" label:"Recettes"`
	Expenses string `validate:"required,numeric" label:"Dépenses"`
}

func readRow(r *http.Request) (models.EconomicData, error) {
	in := rowInput{
		Week:     strings.TrimSpace(r.FormValue("week")),
		Revenues: strings.ReplaceAll(strings.TrimSpace(r.FormValue("revenues")), ",", "."),
		Expenses: strings.ReplaceAll(strings.TrimSpace(r.FormValue("expenses")), ",", "."),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		return models.EconomicData{}, formError(res.First())
	}
	return models.EconomicData{
		Week:     in.Week,
		Revenues: formAmount(in.Revenues),
		Expenses: formAmount(in.Expenses),
	}, nil
}

// HandleAddRow appends a weekly budget row.
func (h *Handler) HandleAddRow(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "economy.add", func(e *pageedit.Editor) error {
		d, err := readRow(r)
		if err != nil {
			return err
		}
		_, err = e.AddEconomicRow(d)
		return err
	})
}

// HandleUpdateRow saves one weekly row.
func (h *Handler) HandleUpdateRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "economy.update", func(e *pageedit.Editor) error {
		d, err := readRow(r)
		if err != nil {
			return err
		}
		return e.UpdateEconomicRow(id, d)
	})
}

// HandleRemoveRow deletes a weekly row.
func (h *Handler) HandleRemoveRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "economy.remove", func(e *pageedit.Editor) error {
		return e.RemoveEconomicRow(id)
	})
}

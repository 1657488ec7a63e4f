// internal/app/features/orgchart/editor.go
package orgchart

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/sagov/internal/app/orgtree"
	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const basePath = "/intranet/organigramme"

type parentOption struct {
	ID    string
	Label string
}

type memberRow struct {
	models.OrgMember
	ParentName string
	Indent     int
	Parents    []parentOption
}

type editorVM struct {
	viewdata.BaseVM
	Members []memberRow
	Parents []parentOption
	Error   string
}

type memberInput struct {
	Name     string `validate:"required,max=120" label:"Nom"`
	Position string `validate:"required,max=120" label:"Poste"`
	Photo    string `validate:"omitempty,urlorpath" label:"Photo"`
}

// formError is a validation message for the author.
type formError string

func (e formError) Error() string { return string(e) }

func userMessage(err error) (string, bool) {
	var fe formError
	switch {
	case errors.As(err, &fe):
		return string(fe), true
	case errors.Is(err, orgtree.ErrMissingField):
		return "Le nom et le poste sont obligatoires.", true
	case errors.Is(err, orgtree.ErrNotFound):
		return "Membre introuvable.", true
	case errors.Is(err, orgtree.ErrParentNotFound):
		return "Le supérieur choisi n'existe pas.", true
	case errors.Is(err, orgtree.ErrHasChildren):
		return "Ce membre a des subordonnés : réaffectez-les ou supprimez-les d'abord.", true
	case errors.Is(err, orgtree.ErrCycle):
		return "Un membre ne peut pas être placé sous lui-même ou sous un de ses subordonnés.", true
	}
	return "", false
}

// loadPage returns the organigramme page, or an empty one when it has never
// been saved.
func (h *Handler) loadPage(ctx context.Context) (models.PageContent, error) {
	page, err := pagestore.New(h.DB).GetBySlug(ctx, models.PageOrgChart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PageContent{
			Slug:     models.PageOrgChart,
			Title:    "Organigramme",
			Images:   []string{},
			Sections: []models.PageSection{},
			Buttons:  []models.PageButton{},
		}, nil
	}
	return page, err
}

// ServeEditor lists the members with their editing forms.
// GET /intranet/organigramme
func (h *Handler) ServeEditor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.loadPage(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load org chart failed", err, "Impossible de charger l'organigramme.", "/intranet")
		return
	}
	h.render(w, r, orgtree.New(page.OrgMembers), "")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, t *orgtree.Tree, errMsg string) {
	names := make(map[string]string, t.Len())
	all := make([]parentOption, 0, t.Len())
	for _, m := range t.Sorted() {
		names[m.ID] = m.Name
		all = append(all, parentOption{ID: m.ID, Label: m.Name + " (" + m.Position + ")"})
	}

	rows := make([]memberRow, 0, t.Len())
	for _, m := range t.Sorted() {
		var parents []parentOption
		for _, p := range all {
			if p.ID != m.ID && !t.IsDescendant(m.ID, p.ID) {
				parents = append(parents, p)
			}
		}
		rows = append(rows, memberRow{
			OrgMember:  m,
			ParentName: names[m.ParentID],
			Indent:     m.Level,
			Parents:    parents,
		})
	}

	templates.Render(w, r, "orgchart_editor", editorVM{
		BaseVM:  viewdata.NewBaseVM(r, "Organigramme", "/intranet"),
		Members: rows,
		Parents: all,
		Error:   errMsg,
	})
}

// mutate applies one tree operation to the stored chart and saves it.
// Failures re-render the editor and leave the stored chart unchanged.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(t *orgtree.Tree) error) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.loadPage(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load org chart failed", err, "Impossible de charger l'organigramme.", "/intranet")
		return
	}

	tree := orgtree.New(page.OrgMembers)
	if err := fn(tree); err != nil {
		msg, ok := userMessage(err)
		if !ok {
			h.ErrLog.LogServerError(w, r, "org chart edit failed", err, "La modification a échoué.", basePath)
			return
		}
		h.render(w, r, orgtree.New(page.OrgMembers), msg)
		return
	}
	if err := tree.Validate(); err != nil {
		h.Log.Warn("org chart edit refused: inconsistent chart",
			zap.String("op", op), zap.Error(err))
		h.render(w, r, orgtree.New(page.OrgMembers),
			"L'organigramme enregistré est incohérent ; la modification n'a pas été enregistrée.")
		return
	}

	_, uname, _, _ := authz.UserCtx(r)
	page.OrgMembers = tree.Members()
	page.UpdatedByName = uname
	if err := pagestore.New(h.DB).Upsert(ctx, page); err != nil {
		h.Log.Error("failed to save org chart", zap.Error(err))
		h.render(w, r, orgtree.New(page.OrgMembers), "Échec de l'enregistrement de l'organigramme.")
		return
	}
	h.Pages.Invalidate(models.PageOrgChart)

	h.Log.Info("org chart updated", zap.String("op", op), zap.String("by", uname))
	viewdata.Redirect(w, r, basePath, "saved")
}

func readMember(r *http.Request) (memberInput, error) {
	in := memberInput{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Position: strings.TrimSpace(r.FormValue("position")),
		Photo:    strings.TrimSpace(r.FormValue("photo")),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		return in, formError(res.First())
	}
	return in, nil
}

// HandleAdd inserts a member under the posted parent.
// POST /intranet/organigramme/add
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "add", func(t *orgtree.Tree) error {
		in, err := readMember(r)
		if err != nil {
			return err
		}
		_, err = t.Add(orgtree.Attrs{Name: in.Name, Position: in.Position, Photo: in.Photo}, r.FormValue("parent_id"))
		return err
	})
}

// HandleUpdate replaces name, position and photo of one member.
// POST /intranet/organigramme/{id}/update
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "update", func(t *orgtree.Tree) error {
		in, err := readMember(r)
		if err != nil {
			return err
		}
		for f, v := range map[orgtree.Field]string{
			orgtree.FieldName:     in.Name,
			orgtree.FieldPosition: in.Position,
			orgtree.FieldPhoto:    in.Photo,
		} {
			if err := t.UpdateField(id, f, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// HandleReparent places a member under another one, or at the top level.
// POST /intranet/organigramme/{id}/parent
func (h *Handler) HandleReparent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "reparent", func(t *orgtree.Tree) error {
		return t.Reparent(id, r.FormValue("parent_id"))
	})
}

// HandleMove moves a member among its siblings.
// POST /intranet/organigramme/{id}/move
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "move", func(t *orgtree.Tree) error {
		dir := orgtree.Down
		if r.FormValue("dir") == "up" {
			dir = orgtree.Up
		}
		_, err := t.Move(id, dir)
		return err
	})
}

// HandleRemove deletes a member without subordinates.
// POST /intranet/organigramme/{id}/remove
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "remove", func(t *orgtree.Tree) error {
		return t.Remove(id)
	})
}

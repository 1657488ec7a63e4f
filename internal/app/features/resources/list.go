// internal/app/features/resources/list.go
package resources

import (
	"context"
	"errors"
	"net/http"
	"strings"

	resourcestore "github.com/dalemusser/sagov/internal/app/store/resources"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const basePath = "/intranet/ressources"

type resourceRow struct {
	ID        string
	Title     string
	URL       string
	TypeLabel string
	First     bool
	Last      bool
}

type listVM struct {
	viewdata.BaseVM
	Resources []resourceRow
	Types     []ResourceTypeOption

	Error    string
	NewTitle string
	NewURL   string
	NewType  string
}

// createResourceInput defines validation rules for creating a resource.
type createResourceInput struct {
	Title string `validate:"required,max=200" label:"Titre"`
	URL   string `validate:"required,httpurl" label:"Lien"`
	Type  string `validate:"required,oneof=document form link video" label:"Type"`
}

// ServeList shows the ordered resource list with the creation form.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, listVM{NewType: "link"})
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, vm listVM) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := resourcestore.New(h.DB).List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list resources failed", err, "Impossible de charger les ressources.", "/intranet")
		return
	}

	rows := make([]resourceRow, 0, len(list))
	for i, res := range list {
		rows = append(rows, resourceRow{
			ID:        res.ID.Hex(),
			Title:     res.Title,
			URL:       res.URL,
			TypeLabel: typeLabel(res.Type),
			First:     i == 0,
			Last:      i == len(list)-1,
		})
	}

	vm.BaseVM = viewdata.NewBaseVM(r, "Ressources", "/intranet")
	vm.Resources = rows
	vm.Types = resourceTypeOptions()
	templates.Render(w, r, "resources_list", vm)
}

// HandleCreate appends a resource at the end of the list.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", basePath)
		return
	}

	input := createResourceInput{
		Title: strings.TrimSpace(r.FormValue("title")),
		URL:   strings.TrimSpace(r.FormValue("url")),
		Type:  strings.TrimSpace(r.FormValue("type")),
	}
	if input.Type == "" {
		input.Type = "link"
	}

	// Helper to re-render the form with a message
	reRender := func(msg string) {
		h.renderList(w, r, listVM{Error: msg, NewTitle: input.Title, NewURL: input.URL, NewType: input.Type})
	}

	if result := inputval.Validate(input); result.HasErrors() {
		reRender(result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, uname, uid, _ := authz.UserCtx(r)
	res, err := resourcestore.New(h.DB).Create(ctx, models.Resource{
		Title:  input.Title,
		URL:    input.URL,
		Type:   input.Type,
		UserID: uid,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create resource failed", err, "Impossible d'ajouter la ressource.", basePath)
		return
	}

	h.Log.Info("resource created",
		zap.String("resource_id", res.ID.Hex()),
		zap.Int("order", res.Order),
		zap.String("by", uname))
	viewdata.Redirect(w, r, basePath, "created")
}

func resourceID(r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return oid, err == nil
}

// HandleMove swaps a resource with its neighbour.
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	oid, ok := resourceID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", nil, "Ressource introuvable.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err := resourcestore.New(h.DB).Move(ctx, oid, r.FormValue("dir") == "up")
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "move unknown resource", err, "Ressource introuvable.", basePath)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "move resource failed", err, "Impossible de déplacer la ressource.", basePath)
		return
	}
	http.Redirect(w, r, basePath, http.StatusSeeOther)
}

// HandleDelete removes a resource; the survivors are renumbered.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, ok := resourceID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", nil, "Ressource introuvable.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := resourcestore.New(h.DB).Delete(ctx, oid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete resource failed", err, "Impossible de supprimer la ressource.", basePath)
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "delete unknown resource", nil, "Ressource introuvable.", basePath)
		return
	}

	// HTMX flow: redirect via HX-Redirect
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", basePath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	viewdata.Redirect(w, r, basePath, "deleted")
}

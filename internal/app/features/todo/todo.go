// internal/app/features/todo/todo.go
package todo

import (
	"context"
	"errors"
	"net/http"
	"strings"

	taskstore "github.com/dalemusser/sagov/internal/app/store/tasks"
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

const basePath = "/intranet/todo"

type taskRow struct {
	ID        string
	Title     string
	Completed bool
	CreatedAt string
}

type listVM struct {
	viewdata.BaseVM
	Tasks    []taskRow
	Pending  int
	Error    string
	NewTitle string
}

type taskInput struct {
	Title string `validate:"required,max=200" label:"Tâche"`
}

// ServeList shows the viewer's tasks, pending first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, "", "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, errMsg, newTitle string) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tasks, err := taskstore.New(h.DB).ListForUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list tasks failed", err, "Impossible de charger vos tâches.", "/intranet")
		return
	}

	vm := listVM{
		BaseVM:   viewdata.NewBaseVM(r, "To-Do List", "/intranet"),
		Error:    errMsg,
		NewTitle: newTitle,
	}
	for _, t := range tasks {
		done := t.Status == models.TaskCompleted
		if !done {
			vm.Pending++
		}
		vm.Tasks = append(vm.Tasks, taskRow{
			ID:        t.ID.Hex(),
			Title:     t.Title,
			Completed: done,
			CreatedAt: t.CreatedAt.Format("02/01/2006"),
		})
	}
	templates.Render(w, r, "todo_list", vm)
}

// HandleCreate adds a pending task for the viewer.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", basePath)
		return
	}

	in := taskInput{Title: strings.TrimSpace(r.FormValue("title"))}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderList(w, r, res.First(), in.Title)
		return
	}

	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := taskstore.New(h.DB).Create(ctx, models.Task{Title: in.Title, UserID: uid}); err != nil {
		h.ErrLog.LogServerError(w, r, "create task failed", err, "Impossible d'ajouter la tâche.", basePath)
		return
	}
	http.Redirect(w, r, basePath, http.StatusSeeOther)
}

func taskID(r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return oid, err == nil
}

// HandleToggle flips a task between pending and completed.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	oid, ok := taskID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad task id", nil, "Tâche introuvable.", basePath)
		return
	}
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := taskstore.New(h.DB).Toggle(ctx, oid, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "toggle unknown task", err, "Tâche introuvable.", basePath)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "toggle task failed", err, "Impossible de modifier la tâche.", basePath)
		return
	}
	h.Log.Debug("task toggled", zap.String("task_id", oid.Hex()), zap.String("status", t.Status))
	http.Redirect(w, r, basePath, http.StatusSeeOther)
}

// HandleDelete removes one of the viewer's tasks.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, ok := taskID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad task id", nil, "Tâche introuvable.", basePath)
		return
	}
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := taskstore.New(h.DB).Delete(ctx, oid, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete task failed", err, "Impossible de supprimer la tâche.", basePath)
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "delete unknown task", nil, "Tâche introuvable.", basePath)
		return
	}
	http.Redirect(w, r, basePath, http.StatusSeeOther)
}

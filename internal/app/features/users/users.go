// internal/app/features/users/users.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/sagov/internal/app/store/users"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const basePath = "/intranet/admin/utilisateurs"

type userRow struct {
	ID        string
	Username  string
	RoleLabel string
	CreatedAt string
	IsSelf    bool
}

type listVM struct {
	viewdata.BaseVM
	Users []userRow

	Error       string
	NewUsername string
	NewRole     string
}

// createUserInput defines validation rules for creating an account.
type createUserInput struct {
	Username string `validate:"required,max=60" label:"Identifiant"`
	Password string `validate:"required,min=6,max=72" label:"Mot de passe"`
	Role     string `validate:"required,oneof=admin user" label:"Rôle"`
}

func roleLabel(role string) string {
	if role == models.RoleAdmin {
		return "Administrateur"
	}
	return "Utilisateur"
}

// ServeList shows every account and the creation form.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, listVM{NewRole: models.RoleUser})
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, vm listVM) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := userstore.New(h.DB).List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list users failed", err, "Impossible de charger les utilisateurs.", "/intranet")
		return
	}

	_, _, me, _ := authz.UserCtx(r)
	for _, u := range list {
		vm.Users = append(vm.Users, userRow{
			ID:        u.ID.Hex(),
			Username:  u.Username,
			RoleLabel: roleLabel(u.Role),
			CreatedAt: u.CreatedAt.Format("02/01/2006"),
			IsSelf:    u.ID == me,
		})
	}
	vm.BaseVM = viewdata.NewBaseVM(r, "Utilisateurs", "/intranet")
	templates.Render(w, r, "users_list", vm)
}

// HandleCreate adds an intranet account.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", basePath)
		return
	}

	in := createUserInput{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		Role:     strings.ToLower(strings.TrimSpace(r.FormValue("role"))),
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}

	reRender := func(msg string) {
		h.renderList(w, r, listVM{Error: msg, NewUsername: in.Username, NewRole: in.Role})
	}

	if res := inputval.Validate(in); res.HasErrors() {
		reRender(res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).Create(ctx, models.User{
		Username: in.Username,
		Password: in.Password,
		Role:     in.Role,
	})
	if errors.Is(err, userstore.ErrDuplicateUsername) {
		reRender("Cet identifiant est déjà utilisé.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create user failed", err, "Impossible de créer l'utilisateur.", basePath)
		return
	}

	_, by, _, _ := authz.UserCtx(r)
	h.Log.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username),
		zap.String("role", u.Role),
		zap.String("by", by))
	h.AuditLog.UserCreated(ctx, r, auditlog.ActorFrom(r), u.Username, u.Role)
	viewdata.Redirect(w, r, basePath, "created")
}

// HandleDelete removes an account. Admins cannot delete their own account.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Utilisateur introuvable.", basePath)
		return
	}
	if !authz.CanDeleteUser(r, oid) {
		h.ErrLog.LogForbidden(w, r, "self delete refused", nil, "Vous ne pouvez pas supprimer votre propre compte.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users := userstore.New(h.DB)
	// The journal names the account; fall back to the id if it is already gone.
	target := oid.Hex()
	if u, err := users.GetByID(ctx, oid); err == nil {
		target = u.Username
	}

	n, err := users.Delete(ctx, oid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete user failed", err, "Impossible de supprimer l'utilisateur.", basePath)
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "delete unknown user", nil, "Utilisateur introuvable.", basePath)
		return
	}

	_, by, _, _ := authz.UserCtx(r)
	h.Log.Info("user deleted", zap.String("user_id", oid.Hex()), zap.String("by", by))
	h.AuditLog.UserDeleted(ctx, r, auditlog.ActorFrom(r), target)
	viewdata.Redirect(w, r, basePath, "deleted")
}

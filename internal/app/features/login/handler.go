// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	userstore "github.com/dalemusser/sagov/internal/app/store/users"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/navigation"
	"github.com/dalemusser/sagov/internal/app/system/ratelimit"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Limiter:    ratelimit.NewLoginLimiter(),
		AuditLog:   audit,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Username  string
	ReturnURL string
}

type loginInput struct {
	Username string `validate:"required,max=64" label:"Identifiant"`
	Password string `validate:"required,max=128" label:"Mot de passe"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, navigation.SafeBackURL(r, navigation.LoginReturn), http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Connexion", "/"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", "/login")
		return
	}

	in := loginInput{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderFormWithError(w, r, res.First(), in.Username)
		return
	}

	if ok, msg := h.Limiter.Check(r, in.Username); !ok {
		h.Log.Warn("login rate limited",
			zap.String("username", in.Username),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.AuditLog.LoginRateLimited(r.Context(), r, in.Username)
		w.WriteHeader(http.StatusTooManyRequests)
		h.renderFormWithError(w, r, msg, in.Username)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).Authenticate(ctx, in.Username, in.Password)
	switch {
	case errors.Is(err, userstore.ErrInvalidCredentials):
		h.Log.Info("login failed", zap.String("username", in.Username))
		h.AuditLog.LoginFailed(ctx, r, in.Username)
		h.renderFormWithError(w, r, "Identifiant ou mot de passe incorrect.", in.Username)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "Une erreur serveur est survenue.", "/login")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:   u.ID.Hex(),
		Name: u.Username,
		Role: u.Role,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "save session", err, "Impossible d'ouvrir la session.", "/login")
		return
	}
	h.Limiter.ResetUser(in.Username)
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Username)

	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.LoginReturn), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username string) {
	// From POST, "return" will be in the form; from GET, we might rely on the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Connexion", "/"),
		Error:     msg,
		Username:  username,
		ReturnURL: ret,
	})
}

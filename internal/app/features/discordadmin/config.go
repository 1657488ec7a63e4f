// internal/app/features/discordadmin/config.go
package discordadmin

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	discordconfigstore "github.com/dalemusser/sagov/internal/app/store/discordconfig"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const basePath = "/intranet/admin/discord"

type configVM struct {
	viewdata.BaseVM
	Enabled       bool
	HasToken      bool
	TokenHint     string
	UpdatedAt     string
	UpdatedByName string
	Error         string
}

// maskToken keeps the last four characters so admins can tell tokens apart.
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if utf8.RuneCountInString(token) <= 4 {
		return "••••"
	}
	r := []rune(token)
	return "••••" + string(r[len(r)-4:])
}

// ServeConfig shows the current delivery configuration. The token itself is
// never sent back to the browser.
func (h *Handler) ServeConfig(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errMsg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cfg, err := discordconfigstore.New(h.DB).Current(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load discord config failed", err, "Impossible de charger la configuration.", "/intranet")
		return
	}

	vm := configVM{
		BaseVM:        viewdata.NewBaseVM(r, "Configuration Discord", "/intranet"),
		Enabled:       cfg.Enabled,
		HasToken:      cfg.Token != "",
		TokenHint:     maskToken(cfg.Token),
		UpdatedByName: cfg.UpdatedByName,
		Error:         errMsg,
	}
	if !cfg.UpdatedAt.IsZero() {
		vm.UpdatedAt = cfg.UpdatedAt.Format("02/01/2006 15:04")
	}
	templates.Render(w, r, "discord_config", vm)
}

// HandleSave records a new configuration. A blank token keeps the current one.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", basePath)
		return
	}

	token := strings.TrimSpace(r.FormValue("token"))
	enabled := r.FormValue("enabled") != ""

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := discordconfigstore.New(h.DB)
	cur, err := store.Current(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load discord config failed", err, "Impossible de charger la configuration.", basePath)
		return
	}
	if enabled && token == "" && cur.Token == "" {
		h.render(w, r, "Un token de bot est nécessaire pour activer l'envoi.")
		return
	}

	_, uname, _, _ := authz.UserCtx(r)
	saved, err := store.Save(ctx, models.DiscordConfig{
		Token:         token,
		Enabled:       enabled,
		UpdatedByName: uname,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "save discord config failed", err, "Impossible d'enregistrer la configuration.", basePath)
		return
	}

	h.Log.Info("discord config updated",
		zap.Bool("enabled", saved.Enabled),
		zap.Bool("token_changed", token != ""),
		zap.String("by", uname))
	h.AuditLog.DiscordConfigChanged(ctx, r, auditlog.ActorFrom(r), saved.Enabled, token != "")
	viewdata.Redirect(w, r, basePath, "saved")
}

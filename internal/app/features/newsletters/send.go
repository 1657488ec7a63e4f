// internal/app/features/newsletters/send.go
package newsletters

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"

	subscriberstore "github.com/dalemusser/sagov/internal/app/store/subscribers"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/gates"
	"github.com/dalemusser/sagov/internal/app/system/newsletter"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type failureRow struct {
	Recipient string
	Name      string
	Reason    string
}

type reportVM struct {
	viewdata.BaseVM
	ID            string
	Title         string
	Sent          int
	Failed        int
	Total         int
	Simulated     bool
	Failures      []failureRow
	StatusWarning string
}

// sendErrorMessage maps refusals from the send action to what the user sees.
func sendErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, newsletter.ErrAlreadySent):
		return "Cette newsletter a déjà été envoyée.", true
	case errors.Is(err, newsletter.ErrNoSubscribers):
		return "Aucun abonné : il n'y a personne à qui envoyer la newsletter.", true
	case errors.Is(err, newsletter.ErrDeliveryDisabled):
		return "L'envoi Discord est désactivé ou aucun token de bot n'est configuré.", true
	case errors.Is(err, newsletter.ErrMessageTooLong):
		return "Le message dépasse la limite de 2000 caractères de Discord.", true
	}
	return "", false
}

func (h *Handler) subscriberCount(ctx context.Context) (int64, error) {
	return subscriberstore.New(h.DB).Count(ctx)
}

// subscriberNames labels failed recipients in the report. It is best-effort;
// the report still lists ids when the lookup fails.
func (h *Handler) subscriberNames(ctx context.Context, failures int) map[string]string {
	if failures == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	subs, err := subscriberstore.New(h.DB).List(ctx)
	if err != nil {
		h.Log.Warn("load subscriber names failed", zap.Error(err))
		return nil
	}
	names := make(map[string]string, len(subs))
	for _, s := range subs {
		names[s.DiscordID] = s.Name
	}
	return names
}

// journalContext gives the journal write its own budget. The dispatch
// context may already be spent when a long run ends.
func journalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
}

// HandleSend delivers a draft to every subscriber and shows the report.
//
// The run is detached from the request: a browser that navigates away must
// not stop a dispatch halfway. Its budget grows with the subscriber count.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	g := gates.RequireAdmin(w, r, "Seuls les administrateurs peuvent envoyer une newsletter.", basePath)
	if !g.OK {
		return
	}
	oid, ok := newsletterID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad newsletter id", nil, "Newsletter introuvable.", basePath)
		return
	}

	countCtx, countCancel := context.WithTimeout(r.Context(), timeouts.Short())
	n, err := h.subscriberCount(countCtx)
	countCancel()
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count subscribers failed", err, "Impossible de préparer l'envoi.", detailURL(oid))
		return
	}

	budget := timeouts.Dispatch(int(n), h.Pace)
	ctx, cancel := timeouts.WithTimeout(context.WithoutCancel(r.Context()), budget, h.Log, "newsletter send")
	defer cancel()

	res, err := h.Service.Send(ctx, oid)
	if errors.Is(err, newsletter.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "send unknown newsletter", err, "Newsletter introuvable.", basePath)
		return
	}
	if msg, known := sendErrorMessage(err); known {
		h.Log.Info("newsletter send refused",
			zap.String("newsletter_id", oid.Hex()),
			zap.String("by", g.Name),
			zap.Error(err))
		jctx, jcancel := journalContext(ctx)
		h.AuditLog.NewsletterFailed(jctx, r, auditlog.ActorFrom(r), oid.Hex(), err.Error())
		jcancel()
		h.renderPreview(w, r, msg)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "send newsletter failed", err, "L'envoi de la newsletter a échoué.", detailURL(oid))
		return
	}

	rep := res.Report
	h.Log.Info("newsletter sent",
		zap.String("newsletter_id", oid.Hex()),
		zap.String("by", g.Name),
		zap.Int("sent", rep.Sent),
		zap.Int("failed", rep.Failed),
		zap.Bool("simulated", rep.Simulated))
	jctx, jcancel := journalContext(ctx)
	h.AuditLog.NewsletterSent(jctx, r, auditlog.ActorFrom(r), res.Newsletter.Title, rep.Sent, rep.Failed, rep.Simulated)
	jcancel()

	vm := reportVM{
		BaseVM:    viewdata.NewBaseVM(r, "Rapport d'envoi", basePath),
		ID:        oid.Hex(),
		Title:     res.Newsletter.Title,
		Sent:      rep.Sent,
		Failed:    rep.Failed,
		Total:     rep.Total(),
		Simulated: rep.Simulated,
	}
	names := h.subscriberNames(r.Context(), len(rep.Errors))
	for _, id := range slices.Sorted(maps.Keys(rep.Errors)) {
		vm.Failures = append(vm.Failures, failureRow{Recipient: id, Name: names[id], Reason: rep.Errors[id]})
	}
	if res.StatusErr != nil {
		vm.StatusWarning = "Les messages sont partis mais la newsletter n'a pas pu être marquée comme envoyée. Ne la renvoyez pas."
	}
	templates.Render(w, r, "newsletter_report", vm)
}

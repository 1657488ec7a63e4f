// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/sagov/internal/app/store/audit"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings accepted by Config fields.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config selects where each category of event goes.
type Config struct {
	Auth       string
	Admin      string
	Newsletter string
}

// Logger records journal events to MongoDB (via audit.Store) and to the
// structured log (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// Actor identifies who performed an action.
type Actor struct {
	ID   primitive.ObjectID
	Name string
}

// ActorFrom returns the signed-in user of r. The zero Actor is returned for
// anonymous requests.
func ActorFrom(r *http.Request) Actor {
	_, name, id, ok := authz.UserCtx(r)
	if !ok {
		return Actor{}
	}
	return Actor{ID: id, Name: name}
}

func (a Actor) idPtr() *primitive.ObjectID {
	if a.ID.IsZero() {
		return nil
	}
	id := a.ID
	return &id
}

func (l *Logger) setting(category string) string {
	var s string
	switch category {
	case audit.CategoryAuth:
		s = l.config.Auth
	case audit.CategoryAdmin:
		s = l.config.Admin
	case audit.CategoryNewsletter:
		s = l.config.Newsletter
	}
	if s == "" {
		return All
	}
	return s
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ActorName != "" {
		fields = append(fields, zap.String("actor", event.ActorName))
	}
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's setting. A nil Logger is a
// no-op so handlers under test can run without one. Storage failures are
// logged, never returned: the journal must not block the action it records.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == Off {
		return
	}
	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if setting == All || setting == DB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) fromRequest(ctx context.Context, r *http.Request, a Actor, e audit.Event) {
	e.ActorID = a.idPtr()
	e.ActorName = a.Name
	e.IP = ratelimit.ClientIP(r)
	e.UserAgent = r.UserAgent()
	l.Log(ctx, e)
}

// --- Authentication ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	l.fromRequest(ctx, r, Actor{ID: userID, Name: username}, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Success:   true,
	})
}

// LoginFailed logs a rejected username/password pair.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attempted string) {
	l.fromRequest(ctx, r, Actor{}, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		Target:        attempted,
		FailureReason: "invalid credentials",
	})
}

// LoginRateLimited logs a sign-in refused by the login limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, attempted string) {
	l.fromRequest(ctx, r, Actor{}, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginRateLimited,
		Target:        attempted,
		FailureReason: "rate limit exceeded",
	})
}

// Logout logs a sign-out. The session stores the id as a hex string.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDHex, name string) {
	a := Actor{Name: name}
	if oid, err := primitive.ObjectIDFromHex(userIDHex); err == nil {
		a.ID = oid
	}
	l.fromRequest(ctx, r, a, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		Success:   true,
	})
}

// --- Administration ---

// UserCreated logs an account created from the admin page.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actor Actor, username, role string) {
	l.fromRequest(ctx, r, actor, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserCreated,
		Target:    username,
		Success:   true,
		Details:   map[string]string{"role": role},
	})
}

// UserDeleted logs an account removal.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actor Actor, username string) {
	l.fromRequest(ctx, r, actor, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeleted,
		Target:    username,
		Success:   true,
	})
}

// DiscordConfigChanged logs a save of the delivery settings. The token
// itself is never recorded.
func (l *Logger) DiscordConfigChanged(ctx context.Context, r *http.Request, actor Actor, enabled, tokenChanged bool) {
	l.fromRequest(ctx, r, actor, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventDiscordConfigChanged,
		Success:   true,
		Details: map[string]string{
			"enabled":       strconv.FormatBool(enabled),
			"token_changed": strconv.FormatBool(tokenChanged),
		},
	})
}

// SubscriberAdded logs a subscriber added by an admin.
func (l *Logger) SubscriberAdded(ctx context.Context, r *http.Request, actor Actor, discordID string) {
	l.fromRequest(ctx, r, actor, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSubscriberAdded,
		Target:    discordID,
		Success:   true,
	})
}

// SubscriberRemoved logs a subscriber removed by an admin.
func (l *Logger) SubscriberRemoved(ctx context.Context, r *http.Request, actor Actor, discordID string) {
	l.fromRequest(ctx, r, actor, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSubscriberRemoved,
		Target:    discordID,
		Success:   true,
	})
}

// SubscribersImported logs a CSV import.
func (l *Logger) SubscribersImported(ctx context.Context, r *http.Request, actor Actor, added, skipped int) {
	l.fromRequest(ctx, r, actor, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSubscribersImported,
		Success:   true,
		Details: map[string]string{
			"added":   strconv.Itoa(added),
			"skipped": strconv.Itoa(skipped),
		},
	})
}

// --- Newsletter ---

// NewsletterSent logs a finished send with its delivery counts.
func (l *Logger) NewsletterSent(ctx context.Context, r *http.Request, actor Actor, title string, sent, failed int, simulated bool) {
	l.fromRequest(ctx, r, actor, audit.Event{
		Category:  audit.CategoryNewsletter,
		EventType: audit.EventNewsletterSent,
		Target:    title,
		Success:   true,
		Details: map[string]string{
			"sent":      strconv.Itoa(sent),
			"failed":    strconv.Itoa(failed),
			"simulated": strconv.FormatBool(simulated),
		},
	})
}

// NewsletterFailed logs a send that was refused or could not start.
func (l *Logger) NewsletterFailed(ctx context.Context, r *http.Request, actor Actor, title, reason string) {
	l.fromRequest(ctx, r, actor, audit.Event{
		Category:      audit.CategoryNewsletter,
		EventType:     audit.EventNewsletterFailed,
		Target:        title,
		FailureReason: reason,
	})
}

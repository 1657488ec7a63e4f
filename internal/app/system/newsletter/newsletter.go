// Package newsletter runs the "send newsletter" action: it gathers the
// newsletter, its subscribers and the delivery configuration, dispatches the
// formatted message and marks the newsletter as sent.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/sagov/internal/app/system/dispatch"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNotFound         = errors.New("newsletter not found")
	ErrAlreadySent      = errors.New("this newsletter has already been sent")
	ErrNoSubscribers    = errors.New("there are no subscribers to send to")
	ErrDeliveryDisabled = errors.New("delivery through Discord is disabled or has no bot token")
	ErrMessageTooLong   = errors.New("formatted message exceeds the Discord length limit")
)

// Newsletters is the newsletter storage the service needs.
type Newsletters interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Newsletter, error)
	MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// Subscribers lists everyone who receives newsletters.
type Subscribers interface {
	List(ctx context.Context) ([]models.NewsletterSubscriber, error)
}

// Configs returns the active delivery configuration.
type Configs interface {
	Current(ctx context.Context) (models.DiscordConfig, error)
}

// Dispatcher delivers one message to many recipients.
type Dispatcher interface {
	Dispatch(ctx context.Context, message string, recipients []dispatch.Recipient, cred dispatch.Credential) dispatch.Report
}

// Options are the message and policy settings from app config.
type Options struct {
	Signature      string
	UnsubscribeURL string
	// AllowSimulation lets a send go through with delivery disabled; every
	// recipient is then a simulated success.
	AllowSimulation bool
}

// Result is what a send produced. StatusErr is set when the messages went
// out but the newsletter could not be marked as sent.
type Result struct {
	Newsletter models.Newsletter
	Report     dispatch.Report
	StatusErr  error
}

// Service wires the stores to the dispatcher.
type Service struct {
	news  Newsletters
	subs  Subscribers
	cfgs  Configs
	disp  Dispatcher
	opts  Options
	log   *zap.Logger
	clock func() time.Time
}

func NewService(news Newsletters, subs Subscribers, cfgs Configs, disp Dispatcher, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		news:  news,
		subs:  subs,
		cfgs:  cfgs,
		disp:  disp,
		opts:  opts,
		log:   logger,
		clock: time.Now,
	}
}

// Format returns the message subscribers would receive for n.
func (s *Service) Format(n models.Newsletter) string {
	return dispatch.FormatNewsletter(dispatch.Newsletter{
		Title:          n.Title,
		Image:          n.Image,
		Content:        n.Content,
		Signature:      s.opts.Signature,
		UnsubscribeURL: s.opts.UnsubscribeURL,
	})
}

// Send delivers newsletter id to every subscriber.
//
// The preconditions (exists, still a draft, at least one subscriber, delivery
// usable) are checked before anything is sent. Once dispatch has run the
// newsletter is marked sent whatever the failure count, and it is never
// dispatched twice from here.
func (s *Service) Send(ctx context.Context, id primitive.ObjectID) (Result, error) {
	n, err := s.news.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Result{}, ErrNotFound
		}
		return Result{}, fmt.Errorf("load newsletter: %w", err)
	}
	if n.IsSent() {
		return Result{Newsletter: n}, ErrAlreadySent
	}

	subs, err := s.subs.List(ctx)
	if err != nil {
		return Result{Newsletter: n}, fmt.Errorf("load subscribers: %w", err)
	}
	if len(subs) == 0 {
		return Result{Newsletter: n}, ErrNoSubscribers
	}

	cfg, err := s.cfgs.Current(ctx)
	if err != nil {
		return Result{Newsletter: n}, fmt.Errorf("load delivery config: %w", err)
	}
	cred := dispatch.Credential{Token: cfg.Token, Enabled: cfg.Enabled}
	if !cred.Usable() && !s.opts.AllowSimulation {
		return Result{Newsletter: n}, ErrDeliveryDisabled
	}

	msg := s.Format(n)
	if utf8.RuneCountInString(msg) > dispatch.MaxMessageLength {
		return Result{Newsletter: n}, ErrMessageTooLong
	}

	recipients := make([]dispatch.Recipient, 0, len(subs))
	for _, sub := range subs {
		recipients = append(recipients, dispatch.Recipient{ID: sub.DiscordID, Name: sub.Name})
	}

	s.log.Info("newsletter: sending",
		zap.String("newsletter_id", id.Hex()),
		zap.String("title", n.Title),
		zap.Int("subscribers", len(recipients)),
		zap.Bool("simulated", !cred.Usable()))

	rep := s.disp.Dispatch(ctx, msg, recipients, cred)
	res := Result{Newsletter: n, Report: rep}

	// The status update must not inherit a cancelled run's context, or a
	// newsletter that reached subscribers would stay a draft.
	at := s.clock().UTC()
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
	defer cancel()
	if err := s.news.MarkSent(markCtx, id, at); err != nil {
		s.log.Error("newsletter: sent but status not updated",
			zap.String("newsletter_id", id.Hex()), zap.Error(err))
		res.StatusErr = err
		return res, nil
	}
	res.Newsletter.Status = models.NewsletterSent
	res.Newsletter.SentAt = &at
	return res, nil
}

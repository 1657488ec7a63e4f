// Package dispatch delivers one message to many recipients, one at a time,
// through a two-step "open a private channel, then send" API.
//
// A run never aborts on a single failure. Every recipient ends up either in
// Report.Sent or in Report.Errors, and recipients are separated by a fixed
// pause so the remote service's rate limits are respected.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultPace is the pause between two consecutive recipients.
const DefaultPace = time.Second

// ReasonCancelled is recorded for recipients never attempted because the
// run's context ended.
const ReasonCancelled = "dispatch cancelled"

// Recipient identifies one destination on the remote service.
type Recipient struct {
	ID   string
	Name string
}

// Credential is the delivery configuration for a run.
type Credential struct {
	Token   string
	Enabled bool
}

// Usable reports whether real deliveries can be made with c.
func (c Credential) Usable() bool {
	return c.Enabled && c.Token != ""
}

// Deliverer is the remote messaging API.
type Deliverer interface {
	// OpenChannel returns the id of a private channel with recipientID.
	OpenChannel(ctx context.Context, recipientID string) (string, error)
	// Send posts content to channelID.
	Send(ctx context.Context, channelID, content string) error
}

// Connector builds a Deliverer for a token.
type Connector func(token string) (Deliverer, error)

// Report is the outcome of one run. Sent+Failed always equals the number of
// recipients given to Dispatch.
type Report struct {
	Sent      int
	Failed    int
	Errors    map[string]string
	Simulated bool
}

// Total is the number of recipients processed.
func (r Report) Total() int { return r.Sent + r.Failed }

func (r *Report) fail(id, reason string) {
	r.Failed++
	r.Errors[id] = reason
}

// Dispatcher runs deliveries. The zero value is not usable; call New.
type Dispatcher struct {
	connect Connector
	pace    time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	log     *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPace overrides DefaultPace. Non-positive values are ignored.
func WithPace(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.pace = d
		}
	}
}

// WithSleep replaces the pause function (tests record calls instead of waiting).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(dp *Dispatcher) {
		if fn != nil {
			dp.sleep = fn
		}
	}
}

// New returns a Dispatcher that reaches the remote service through connect.
func New(connect Connector, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		connect: connect,
		pace:    DefaultPace,
		sleep:   sleepCtx,
		log:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends message to every recipient in order.
//
// When cred is not usable every recipient is a simulated success and no
// network call is made. When ctx ends, recipients not yet attempted are
// recorded as failed with ReasonCancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, message string, recipients []Recipient, cred Credential) Report {
	rep := Report{Errors: make(map[string]string), Simulated: !cred.Usable()}
	runCounter.Inc()

	var deliverer Deliverer
	if !rep.Simulated {
		var err error
		deliverer, err = d.connect(cred.Token)
		if err != nil {
			// Without a client no recipient can be reached.
			d.log.Error("dispatch: cannot create delivery client", zap.Error(err))
			for _, rc := range recipients {
				rep.fail(rc.ID, err.Error())
				recipientCounter.WithLabelValues(outcomeFailed).Inc()
			}
			return rep
		}
	}

	for i, rc := range recipients {
		if i > 0 {
			if err := d.sleep(ctx, d.pace); err != nil {
				d.cancelRest(&rep, recipients[i:])
				break
			}
		}
		if ctx.Err() != nil {
			d.cancelRest(&rep, recipients[i:])
			break
		}

		if rep.Simulated {
			d.log.Info("dispatch: simulated send",
				zap.String("recipient", rc.ID),
				zap.String("name", rc.Name),
				zap.Int("length", len(message)))
			rep.Sent++
			recipientCounter.WithLabelValues(outcomeSimulated).Inc()
			continue
		}

		if err := d.deliverOne(ctx, deliverer, rc.ID, message); err != nil {
			d.log.Warn("dispatch: recipient failed",
				zap.String("recipient", rc.ID),
				zap.String("name", rc.Name),
				zap.Error(err))
			rep.fail(rc.ID, err.Error())
			recipientCounter.WithLabelValues(outcomeFailed).Inc()
			continue
		}
		rep.Sent++
		recipientCounter.WithLabelValues(outcomeSent).Inc()
	}

	d.log.Info("dispatch: run complete",
		zap.Int("recipients", len(recipients)),
		zap.Int("sent", rep.Sent),
		zap.Int("failed", rep.Failed),
		zap.Bool("simulated", rep.Simulated))
	return rep
}

// deliverOne performs both steps for one recipient. A panic inside the
// Deliverer is turned into an error for that recipient.
func (d *Dispatcher) deliverOne(ctx context.Context, dl Deliverer, recipientID, message string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure: %v", p)
		}
	}()

	channelID, err := dl.OpenChannel(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if channelID == "" {
		return errors.New("open channel: empty channel id")
	}
	if err := dl.Send(ctx, channelID, message); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func (d *Dispatcher) cancelRest(rep *Report, rest []Recipient) {
	d.log.Warn("dispatch: cancelled", zap.Int("remaining", len(rest)))
	for _, rc := range rest {
		rep.fail(rc.ID, ReasonCancelled)
		recipientCounter.WithLabelValues(outcomeFailed).Inc()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

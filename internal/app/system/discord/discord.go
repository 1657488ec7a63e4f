// Package discord delivers direct messages through the Discord REST API.
//
// A Client satisfies dispatch.Deliverer: OpenChannel creates (or reuses) the
// private channel with a user and Send posts into it. The client never
// retries; the dispatcher's pacing is the only rate-limit handling.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dalemusser/sagov/internal/app/system/dispatch"
)

// Error codes returned by the API that get a readable explanation.
const (
	codeUnknownUser      = 10013
	codeCannotSendToUser = 50007
	codeMissingAccess    = 50001
	codeInvalidFormBody  = 50035
)

// Client wraps a discordgo session used only for REST calls.
type Client struct {
	s *discordgo.Session
}

// New builds a Client authenticated as a bot with token.
func New(token string) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("discord: empty bot token")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: %w", err)
	}
	s.ShouldRetryOnRateLimit = false
	s.MaxRestRetries = 0
	return &Client{s: s}, nil
}

// WithHTTPClient swaps the HTTP client used for API calls.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.s.Client = hc
	return c
}

// Connector adapts New to dispatch.Connector.
func Connector(hc *http.Client) dispatch.Connector {
	return func(token string) (dispatch.Deliverer, error) {
		c, err := New(token)
		if err != nil {
			return nil, err
		}
		if hc != nil {
			c.WithHTTPClient(hc)
		}
		return c, nil
	}
}

// OpenChannel returns the DM channel id for recipientID.
func (c *Client) OpenChannel(ctx context.Context, recipientID string) (string, error) {
	ch, err := c.s.UserChannelCreate(recipientID, discordgo.WithContext(ctx))
	if err != nil {
		return "", describe(err)
	}
	if ch == nil || ch.ID == "" {
		return "", errors.New("no channel returned")
	}
	return ch.ID, nil
}

// Send posts content to channelID.
func (c *Client) Send(ctx context.Context, channelID, content string) error {
	if _, err := c.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return describe(err)
	}
	return nil
}

// describe turns API errors into the message shown in the dispatch report.
func describe(err error) error {
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		return errors.New("limite de débit Discord atteinte")
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case codeCannotSendToUser:
			return errors.New("l'utilisateur n'accepte pas les messages privés")
		case codeUnknownUser:
			return errors.New("identifiant Discord inconnu")
		case codeMissingAccess:
			return errors.New("le bot n'a pas accès à cet utilisateur")
		case codeInvalidFormBody:
			return fmt.Errorf("requête refusée: %s", rest.Message.Message)
		}
		if rest.Message.Message != "" {
			return fmt.Errorf("discord %d: %s", rest.Message.Code, rest.Message.Message)
		}
	}
	if rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("jeton du bot invalide")
		case http.StatusTooManyRequests:
			return errors.New("limite de débit Discord atteinte")
		}
		return fmt.Errorf("discord: HTTP %d", rest.Response.StatusCode)
	}
	return err
}

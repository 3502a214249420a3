package slackapi

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"pepeeats/internal/domain"
	"pepeeats/internal/infra/metrics"
)

// Client obaluje Slack Web API pro potřeby bota.
type Client struct {
	api         *slack.Client
	targetPrice int
	log         zerolog.Logger
}

var _ domain.Notifier = (*Client)(nil)

// NewClient vytváří klienta s bot tokenem.
func NewClient(token string, targetPrice int, log zerolog.Logger) *Client {
	return &Client{api: slack.New(token), targetPrice: targetPrice, log: log}
}

// SendText posílá prostou DM zprávu.
func (c *Client) SendText(ctx context.Context, userID, text string) error {
	start := time.Now()
	_, _, err := c.api.PostMessageContext(ctx, userID, slack.MsgOptionText(text, false))
	metrics.ObserveNetworkRequest("slack", "post_message", "chat", start, err)
	return err
}

// SendReminder posílá připomínku s nabídkou a tlačítky.
func (c *Client) SendReminder(ctx context.Context, userID string, dishes []string, remarks map[string]string, orderDate time.Time) error {
	blocks := ReminderBlocks(dishes, remarks, c.targetPrice, orderDate)
	fallback := fmt.Sprintf("PepeEats: objednej oběd na %s!", domain.DateKey(orderDate))

	start := time.Now()
	_, _, err := c.api.PostMessageContext(ctx, userID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	metrics.ObserveNetworkRequest("slack", "post_reminder", "chat", start, err)
	return err
}

// SendMorningReminder připomíná objednané jídlo a nabízí hodnocení.
func (c *Client) SendMorningReminder(ctx context.Context, userID, meal string, orderDate time.Time) error {
	blocks := MorningBlocks(meal, orderDate)
	fallback := fmt.Sprintf("Dobré ráno! Dnes máš k obědu: %s", meal)

	start := time.Now()
	_, _, err := c.api.PostMessageContext(ctx, userID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	metrics.ObserveNetworkRequest("slack", "post_morning", "chat", start, err)
	return err
}

// OpenOrderModal otevírá modál pro výběr jídla.
func (c *Client) OpenOrderModal(ctx context.Context, triggerID string, dishes []string, orderDate time.Time) error {
	view := OrderModalView(dishes, orderDate)

	start := time.Now()
	_, err := c.api.OpenViewContext(ctx, triggerID, view)
	metrics.ObserveNetworkRequest("slack", "open_view", "views", start, err)
	return err
}

// LookupUserByEmail překládá e-mail na Slack ID.
func (c *Client) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	start := time.Now()
	user, err := c.api.GetUserByEmailContext(ctx, email)
	metrics.ObserveNetworkRequest("slack", "lookup_by_email", "users", start, err)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

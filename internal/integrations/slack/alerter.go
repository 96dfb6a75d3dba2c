// Package slack posts operational alerts to a Slack channel.
package slack

import (
	"context"
	"fmt"

	"pecunia-backend/internal/gateway"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Alerter reports analysis backend failures to a Slack channel.
type Alerter struct {
	client    *slack.Client
	channelID string
	logger    *zap.Logger
}

// NewAlerter creates an alerter posting as the bot behind botToken.
// Extra client options (such as slack.OptionAPIURL) are passed through.
func NewAlerter(botToken, channelID string, logger *zap.Logger, opts ...slack.Option) (*Alerter, error) {
	if botToken == "" {
		return nil, fmt.Errorf("slack bot token is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("slack alert channel is required")
	}
	return &Alerter{
		client:    slack.New(botToken, opts...),
		channelID: channelID,
		logger:    logger.Named("slack"),
	}, nil
}

// NotifyFailure posts one alert line for a failed analysis call.
func (a *Alerter) NotifyFailure(ctx context.Context, sessionID uuid.UUID, gwErr *gateway.Error) error {
	text := fmt.Sprintf(":warning: Analysis call failed\n• category: `%s`\n• session: `%s`", gwErr.Category, sessionID)
	if gwErr.StatusCode != 0 {
		text += fmt.Sprintf("\n• status: %d", gwErr.StatusCode)
	}
	text += fmt.Sprintf("\n• error: %v", gwErr.Cause)
	return a.SendMessage(ctx, text)
}

// SendMessage posts text to the alert channel.
func (a *Alerter) SendMessage(ctx context.Context, text string) error {
	_, ts, err := a.client.PostMessageContext(ctx, a.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post message to Slack channel %s: %w", a.channelID, err)
	}
	a.logger.Debug("alert posted", zap.String("channel", a.channelID), zap.String("ts", ts))
	return nil
}

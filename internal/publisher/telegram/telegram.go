// Package telegram publishes posts to a Telegram channel. It is the
// alternative sink, selected by config; useful for dry-running the pipeline
// against a private channel before pointing it at an X account.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/faruk-isik/x-trend-bot/internal/publisher"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client publishes to one Telegram chat.
type Client struct {
	api    telegramAPI
	chatID int64
}

// New creates a Client for the given bot token and target chat.
func New(token string, chatID int64) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Client{api: api, chatID: chatID}, nil
}

// Name identifies the publisher in logs and diagnostics.
func (c *Client) Name() string { return "telegram" }

// Publish sends the text (with the media attached as a photo when present)
// to the configured chat. A failed photo send falls back to plain text.
func (c *Client) Publish(_ context.Context, text string, media []byte) (publisher.Result, error) {
	if len(media) > 0 {
		photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FileBytes{Name: "media", Bytes: media})
		photo.Caption = text
		if sent, err := c.api.Send(photo); err == nil {
			return publisher.Result{ID: strconv.Itoa(sent.MessageID)}, nil
		}
	}

	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.DisableWebPagePreview = true
	sent, err := c.api.Send(msg)
	if err != nil {
		return publisher.Result{}, classify(err)
	}
	return publisher.Result{ID: strconv.Itoa(sent.MessageID)}, nil
}

func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Too Many Requests"):
		return fmt.Errorf("%w: %v", publisher.ErrRateLimited, err)
	case strings.Contains(msg, "Unauthorized"), strings.Contains(msg, "Forbidden"):
		return fmt.Errorf("%w: %v", publisher.ErrAuthFailed, err)
	default:
		return fmt.Errorf("send message: %w", err)
	}
}

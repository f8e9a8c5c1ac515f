package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/amaumene/tubegram/internal/config"
	"github.com/amaumene/tubegram/internal/models"
	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// maxSendRetries bounds transport retries for a single outbound message
const maxSendRetries = 3

// Client wraps the Telegram Bot API
type Client struct {
	bot             *tgbotapi.BotAPI
	logger          *logrus.Logger
	initialInterval time.Duration
	maxElapsed      time.Duration
}

// NewClient creates a new Telegram client and verifies the token
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	return NewClientWithEndpoint(cfg.BotToken, tgbotapi.APIEndpoint, &http.Client{Timeout: 5 * time.Minute}, logger)
}

// NewClientWithEndpoint creates a client against a custom API endpoint
func NewClientWithEndpoint(token, endpoint string, httpClient tgbotapi.HTTPClient, logger *logrus.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	logger.WithField("username", bot.Self.UserName).Info("Telegram bot authorized")

	return &Client{
		bot:             bot,
		logger:          logger,
		initialInterval: backoff.DefaultInitialInterval,
		maxElapsed:      2 * time.Minute,
	}, nil
}

// Username returns the bot's username
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// SendText sends a plain text message
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return c.send(ctx, msg)
}

// SendFile uploads a local file, presented according to kind
func (c *Client) SendFile(ctx context.Context, chatID int64, kind models.CaptionKind, path, caption string) error {
	file := tgbotapi.FilePath(path)

	var msg tgbotapi.Chattable
	switch kind {
	case models.CaptionAudio:
		audio := tgbotapi.NewAudio(chatID, file)
		audio.Caption = caption
		audio.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		msg = audio
	case models.CaptionVideo:
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = caption
		video.SupportsStreaming = true
		msg = video
	default:
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		msg = doc
	}

	return c.send(ctx, msg)
}

// SetWebhook registers the public webhook URL
func (c *Client) SetWebhook(link string) error {
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if _, err := c.bot.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// SetCommands publishes the command menu
func (c *Client) SetCommands(commands map[string]string, order []string) error {
	list := make([]tgbotapi.BotCommand, 0, len(order))
	for _, name := range order {
		list = append(list, tgbotapi.BotCommand{Command: name, Description: commands[name]})
	}
	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(list...)); err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}
	return nil
}

// send retries transient transport failures. API rejections other than rate limits are final.
func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxElapsedTime = c.maxElapsed

	attempt := 0
	operation := func() error {
		attempt++
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}

		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			if apiErr.Code != http.StatusTooManyRequests && apiErr.Code < 500 {
				return backoff.Permanent(err)
			}
			if apiErr.RetryAfter > 0 {
				select {
				case <-time.After(time.Duration(apiErr.RetryAfter) * time.Second):
				case <-ctx.Done():
					return backoff.Permanent(ctx.Err())
				}
			}
		}

		c.logger.WithError(err).WithField("attempt", attempt).Warn("Telegram send failed, retrying")
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, maxSendRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

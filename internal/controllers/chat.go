package controllers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amaumene/tubegram/internal/config"
	"github.com/amaumene/tubegram/internal/metrics"
	"github.com/amaumene/tubegram/internal/models"
	"github.com/amaumene/tubegram/internal/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Telegram redelivers unacknowledged updates; ten minutes covers its retry window
const seenUpdateTTL = 10 * time.Minute

// terminalReplyTimeout bounds the final reply of a request whose context was cancelled
const terminalReplyTimeout = 30 * time.Second

const helpText = "Hi! Send me a YouTube link and I will reply with the audio 🎧\n\n" +
	"Commands:\n" +
	" /audio <url> - audio only (m4a; /mp3 <url> for mp3)\n" +
	" /video <url> - video (up to 720p within the size limit)\n" +
	"A plain link gets you the audio (m4a)."

// CommandOrder lists the bot commands as shown in the chat menu
var CommandOrder = []string{"audio", "mp3", "video", "help"}

// CommandDescriptions describes each bot command
var CommandDescriptions = map[string]string{
	"audio": "Audio only (m4a)",
	"mp3":   "Audio converted to mp3",
	"video": "Video up to 720p",
	"help":  "How to use the bot",
}

// Messenger sends replies to a chat
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendFile(ctx context.Context, chatID int64, kind models.CaptionKind, path, caption string) error
}

// ChatController routes chat updates into the acquisition pipeline
type ChatController struct {
	acquisition         *AcquisitionController
	classifier          *utils.Classifier
	messenger           Messenger
	db                  *models.Database
	seen                *cache.Cache
	capBytes            int64
	transcodeAvailable  bool
	deleteAfterDelivery bool
	logger              *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChatController creates a new chat controller
func NewChatController(
	cfg *config.Config,
	acquisition *AcquisitionController,
	classifier *utils.Classifier,
	messenger Messenger,
	db *models.Database,
	logger *logrus.Logger,
) *ChatController {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatController{
		acquisition:         acquisition,
		classifier:          classifier,
		messenger:           messenger,
		db:                  db,
		seen:                cache.New(seenUpdateTTL, 2*seenUpdateTTL),
		capBytes:            config.MaxSendBytes,
		transcodeAvailable:  cfg.TranscodeAvailable,
		deleteAfterDelivery: cfg.DeleteAfterDelivery,
		logger:              logger,
		ctx:                 ctx,
		cancel:              cancel,
	}
}

// Dispatch handles an update in the background. It returns false for a redelivered update.
func (c *ChatController) Dispatch(update tgbotapi.Update) bool {
	if err := c.seen.Add(strconv.Itoa(update.UpdateID), struct{}{}, cache.DefaultExpiration); err != nil {
		c.logger.WithField("update_id", update.UpdateID).Debug("Dropping duplicate update")
		return false
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.HandleUpdate(c.ctx, update)
	}()
	return true
}

// Shutdown waits for in-flight requests, cancelling them once ctx expires
func (c *ChatController) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.cancel()
		return nil
	case <-ctx.Done():
		c.cancel()
		<-done
		return fmt.Errorf("in-flight requests cancelled: %w", ctx.Err())
	}
}

// HandleUpdate routes one update and sends every reply it produces
func (c *ChatController) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if !msg.IsCommand() {
		text := strings.TrimSpace(msg.Text)
		if !models.IsRecognizedURL(text) {
			c.logger.WithField("chat_id", chatID).Debug("Ignoring message without a link")
			return
		}
		c.start(ctx, chatID, text, models.KindAudioPassthrough, "")
		return
	}

	command := msg.Command()
	switch command {
	case "start", "help":
		c.reply(ctx, chatID, helpText)
	case "audio":
		c.start(ctx, chatID, msg.CommandArguments(), models.KindAudioPassthrough, command)
	case "mp3":
		if !c.transcodeAvailable {
			c.reply(ctx, chatID, c.classifier.TranscodeUnavailable().Text())
			return
		}
		c.start(ctx, chatID, msg.CommandArguments(), models.KindAudioTranscode, command)
	case "video":
		c.start(ctx, chatID, msg.CommandArguments(), models.KindVideoCapped, command)
	default:
		c.logger.WithField("command", command).Debug("Ignoring unknown command")
	}
}

// start validates the argument and runs the request, replying with a usage hint when invalid
func (c *ChatController) start(ctx context.Context, chatID int64, rawURL string, kind models.MediaKind, command string) {
	req, err := models.NewMediaRequest(rawURL, kind)
	if err != nil {
		if errors.Is(err, models.ErrMissingURL) || errors.Is(err, models.ErrUnsupportedURL) {
			c.reply(ctx, chatID, usageText(command, kind))
			return
		}
		c.reply(ctx, chatID, "Error: "+err.Error())
		return
	}

	c.Process(ctx, chatID, req)
}

// Process acknowledges the request, acquires the media and sends exactly one terminal reply
func (c *ChatController) Process(ctx context.Context, chatID int64, req models.MediaRequest) {
	metrics.Requests.WithLabelValues(string(req.Kind)).Inc()
	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()

	logger := c.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"chat_id":    chatID,
		"kind":       req.Kind,
	})

	entry := &models.Delivery{
		RequestID: req.RequestID,
		ChatID:    chatID,
		URL:       req.URL,
		Kind:      req.Kind,
	}
	if err := c.db.CreateDelivery(entry); err != nil {
		logger.WithError(err).Error("Failed to journal request")
	}

	c.reply(ctx, chatID, progressText(req.Kind))

	outcome := c.acquisition.Acquire(ctx, req)

	// The terminal reply is sent even when shutdown cancelled the request
	replyCtx, cancelReply := context.WithTimeout(context.WithoutCancel(ctx), terminalReplyTimeout)
	defer cancelReply()

	if !outcome.OK() {
		classification := c.classifier.ClassifyOutcome(outcome, req.Kind)
		metrics.Outcomes.WithLabelValues(string(req.Kind), string(classification.Category)).Inc()
		logger.WithFields(logrus.Fields{
			"category": classification.Category,
			"detail":   outcome.Detail,
		}).Warn("Request failed")

		c.reply(replyCtx, chatID, classification.Text())

		entry.Category = classification.Category
		entry.Detail = outcome.Detail
		c.complete(entry, logger)
		return
	}
	metrics.Outcomes.WithLabelValues(string(req.Kind), "ok").Inc()

	artifact := outcome.Artifact
	action := c.deliver(ctx, replyCtx, chatID, artifact, req.Kind, logger)
	metrics.Deliveries.WithLabelValues(string(action.Type)).Inc()

	entry.Action = action.Type
	entry.Title = artifact.Title
	if artifact.HasLocalFile() {
		entry.ArtifactPath = artifact.LocalPath
		if info, err := os.Stat(artifact.LocalPath); err == nil {
			entry.ArtifactSize = info.Size()
		}
	}

	if c.deleteAfterDelivery && entry.ArtifactPath != "" {
		if err := os.Remove(entry.ArtifactPath); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).Warn("Failed to remove artifact")
		} else {
			now := time.Now()
			entry.Cleaned = true
			entry.CleanedAt = &now
			metrics.CleanedArtifacts.Inc()
		}
	}

	c.complete(entry, logger)
}

// deliver sends the artifact. A failed upload falls back to the link or the unavailable reply,
// which is sent with replyCtx.
func (c *ChatController) deliver(ctx, replyCtx context.Context, chatID int64, artifact *models.ResolvedArtifact, kind models.MediaKind, logger *logrus.Entry) models.DeliveryAction {
	action := DecideDelivery(artifact, c.capBytes, kind)
	logger.WithField("action", action.Type).Info("Delivering media")

	if action.Type == models.DeliverInlineFile {
		err := c.messenger.SendFile(ctx, chatID, action.CaptionKind, action.Path, Caption(action.Path, action.CaptionKind))
		if err == nil {
			return action
		}
		logger.WithError(err).Warn("Inline upload failed")

		// Retry the decision as if no local file existed
		action = DecideDelivery(&models.ResolvedArtifact{Title: artifact.Title, StreamURL: artifact.StreamURL}, c.capBytes, kind)
	}

	c.reply(replyCtx, chatID, DeliveryText(action))
	return action
}

func (c *ChatController) complete(entry *models.Delivery, logger *logrus.Entry) {
	now := time.Now()
	entry.CompletedAt = &now
	if entry.ID == 0 {
		return
	}
	if err := c.db.UpdateDelivery(entry); err != nil {
		logger.WithError(err).Error("Failed to update journal")
	}
}

func (c *ChatController) reply(ctx context.Context, chatID int64, text string) {
	if err := c.messenger.SendText(ctx, chatID, text); err != nil {
		c.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send reply")
	}
}

func progressText(kind models.MediaKind) string {
	switch kind {
	case models.KindAudioTranscode:
		return "Preparing MP3… ⏳"
	case models.KindVideoCapped:
		return "Downloading video… ⏳"
	default:
		return "Downloading audio… ⏳"
	}
}

func usageText(command string, kind models.MediaKind) string {
	if command == "" {
		command = string(kind)
	}
	return fmt.Sprintf("Send it like this: /%s <YouTube link>", command)
}

package handlers

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// maxUpdateBytes bounds a single webhook body
const maxUpdateBytes = 1 << 20

// Dispatcher accepts chat updates for background processing
type Dispatcher interface {
	Dispatch(update tgbotapi.Update) bool
}

// WebhookHandler handles Telegram webhook callbacks
type WebhookHandler struct {
	dispatcher Dispatcher
	logger     *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(dispatcher Dispatcher, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ServeHTTP acknowledges the update immediately; processing continues in the background
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		h.logger.WithError(err).Warn("Failed to decode webhook update")
		http.Error(w, "Invalid update", http.StatusBadRequest)
		return
	}

	accepted := h.dispatcher.Dispatch(update)
	h.logger.WithFields(logrus.Fields{
		"update_id": update.UpdateID,
		"accepted":  accepted,
	}).Debug("Received Telegram update")

	// Duplicates are acknowledged too, otherwise Telegram keeps redelivering them
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

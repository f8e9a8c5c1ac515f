package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amaumene/tubegram/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports journal counts
type StatusHandler struct {
	db                 *models.Database
	transcodeAvailable bool
	cookiesConfigured  bool
	logger             *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, transcodeAvailable, cookiesConfigured bool, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:                 db,
		transcodeAvailable: transcodeAvailable,
		cookiesConfigured:  cookiesConfigured,
		logger:             logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalRequests      int            `json:"total_requests"`
	InProgress         int            `json:"in_progress"`
	Succeeded          int            `json:"succeeded"`
	Failed             int            `json:"failed"`
	RequestsByKind     map[string]int `json:"requests_by_kind"`
	FailuresByCategory map[string]int `json:"failures_by_category"`
	DeliveriesByAction map[string]int `json:"deliveries_by_action"`
	ArtifactsOnDisk    int            `json:"artifacts_on_disk"`
	TranscodeAvailable bool           `json:"transcode_available"`
	CookiesConfigured  bool           `json:"cookies_configured"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	deliveries, err := h.db.GetAllDeliveries()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get deliveries")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalRequests:      len(deliveries),
		RequestsByKind:     make(map[string]int),
		FailuresByCategory: make(map[string]int),
		DeliveriesByAction: make(map[string]int),
		TranscodeAvailable: h.transcodeAvailable,
		CookiesConfigured:  h.cookiesConfigured,
	}

	for _, d := range deliveries {
		response.RequestsByKind[string(d.Kind)]++

		switch {
		case d.CompletedAt == nil:
			response.InProgress++
		case d.Category != models.CategoryNone:
			response.Failed++
			response.FailuresByCategory[string(d.Category)]++
		default:
			response.Succeeded++
			response.DeliveriesByAction[string(d.Action)]++
		}

		if d.ArtifactPath != "" && !d.Cleaned {
			response.ArtifactsOnDisk++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

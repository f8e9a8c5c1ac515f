package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/amaumene/tubegram/internal/config"
	"github.com/amaumene/tubegram/internal/metrics"
	"github.com/amaumene/tubegram/internal/models"
	"github.com/amaumene/tubegram/internal/services/ytdlp"
	"github.com/amaumene/tubegram/internal/utils"
	"github.com/sirupsen/logrus"
)

// Extractor resolves a media URL into an artifact
type Extractor interface {
	Resolve(ctx context.Context, req ytdlp.ResolveRequest) (*models.ResolvedArtifact, error)
}

// AcquisitionController turns a media request into an outcome with a single extraction call
type AcquisitionController struct {
	extractor          Extractor
	limits             utils.Limits
	ffmpegPath         string
	transcodeAvailable bool
	logger             *logrus.Logger
}

// NewAcquisitionController creates a new acquisition controller
func NewAcquisitionController(cfg *config.Config, extractor Extractor, logger *logrus.Logger) *AcquisitionController {
	return &AcquisitionController{
		extractor:          extractor,
		limits:             utils.DefaultLimits(config.MaxSendBytes),
		ffmpegPath:         cfg.FFmpegPath,
		transcodeAvailable: cfg.TranscodeAvailable,
		logger:             logger,
	}
}

// Acquire runs the request once. Failures are returned uncategorized except for the
// missing transcoding tool, which is detected before any network call.
func (c *AcquisitionController) Acquire(ctx context.Context, req models.MediaRequest) models.AcquisitionOutcome {
	if req.Kind == models.KindAudioTranscode && !c.transcodeAvailable {
		return models.Failure(models.CategoryTranscodeUnavailable, "ffmpeg is not available")
	}

	resolveReq := ytdlp.ResolveRequest{
		URL:       req.URL,
		Token:     req.Token(),
		Formats:   utils.SelectorsFor(req.Kind, c.limits),
		Transcode: utils.TranscodeFor(req.Kind, c.ffmpegPath),
	}

	logger := c.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"kind":       req.Kind,
		"url":        req.URL,
	})
	logger.WithField("format", resolveReq.Formats.String()).Info("Acquiring media")

	start := time.Now()
	artifact, err := c.extractor.Resolve(ctx, resolveReq)
	metrics.ExtractionSeconds.WithLabelValues(string(req.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		detail := err.Error()
		var extractionErr *ytdlp.ExtractionError
		if errors.As(err, &extractionErr) {
			detail = extractionErr.Detail
		}
		logger.WithError(err).Warn("Acquisition failed")
		return models.Failure(models.CategoryUnknown, detail)
	}
	if artifact == nil {
		artifact = &models.ResolvedArtifact{}
	}

	logger.WithFields(logrus.Fields{
		"title": artifact.Title,
		"path":  artifact.LocalPath,
	}).Info("Media acquired")

	return models.Success(artifact)
}

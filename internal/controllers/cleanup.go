package controllers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amaumene/tubegram/internal/config"
	"github.com/amaumene/tubegram/internal/metrics"
	"github.com/amaumene/tubegram/internal/models"
	"github.com/sirupsen/logrus"
)

// journalRetention bounds how long finished journal entries are kept
const journalRetention = 30 * 24 * time.Hour

// CleanupController removes stale artifacts from the working directory
type CleanupController struct {
	db        *models.Database
	workDir   string
	retention time.Duration
	logger    *logrus.Logger
}

// NewCleanupController creates a new cleanup controller
func NewCleanupController(cfg *config.Config, db *models.Database, logger *logrus.Logger) *CleanupController {
	return &CleanupController{
		db:        db,
		workDir:   cfg.WorkDir,
		retention: cfg.ArtifactRetention,
		logger:    logger,
	}
}

// CleanupResult summarizes one sweep
type CleanupResult struct {
	Journaled int
	Orphans   int
	Pruned    int
}

// Sweep removes journaled artifacts and orphaned working files older than the retention,
// then prunes old journal entries
func (c *CleanupController) Sweep(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult
	cutoff := time.Now().Add(-c.retention)

	c.logger.WithField("cutoff", cutoff.Format(time.RFC3339)).Debug("Starting artifact cleanup")

	deliveries, err := c.db.GetUncleanedArtifacts(cutoff)
	if err != nil {
		return result, fmt.Errorf("failed to get uncleaned artifacts: %w", err)
	}

	for _, d := range deliveries {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if err := os.Remove(d.ArtifactPath); err != nil && !os.IsNotExist(err) {
			c.logger.WithError(err).WithField("path", d.ArtifactPath).Warn("Failed to remove artifact")
			continue
		}
		if err := c.db.MarkCleaned(d); err != nil {
			c.logger.WithError(err).WithField("request_id", d.RequestID).Error("Failed to mark artifact cleaned")
			continue
		}
		metrics.CleanedArtifacts.Inc()
		result.Journaled++
	}

	orphans, err := c.removeOrphans(ctx, cutoff)
	if err != nil {
		return result, err
	}
	result.Orphans = orphans

	pruned, err := c.db.DeleteDeliveriesBefore(time.Now().Add(-journalRetention))
	if err != nil {
		return result, fmt.Errorf("failed to prune journal: %w", err)
	}
	result.Pruned = pruned

	c.logger.WithFields(logrus.Fields{
		"journaled": result.Journaled,
		"orphans":   result.Orphans,
		"pruned":    result.Pruned,
	}).Info("Artifact cleanup completed")

	return result, nil
}

// removeOrphans deletes working files, partial downloads included, not touched since cutoff
func (c *CleanupController) removeOrphans(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(c.workDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read work directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(c.workDir, entry.Name())
		if err := os.Remove(path); err != nil {
			c.logger.WithError(err).WithField("path", path).Warn("Failed to remove orphaned file")
			continue
		}
		metrics.CleanedArtifacts.Inc()
		removed++
	}

	return removed, nil
}

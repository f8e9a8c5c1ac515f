package controllers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/tubegram/internal/models"
)

func TestSweep(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArtifactRetention = time.Minute
	db := testDB(t)
	ctrl := NewCleanupController(cfg, db, testLogger())

	old := time.Now().Add(-time.Hour)

	journaled := filepath.Join(cfg.WorkDir, "journaled.m4a")
	orphan := filepath.Join(cfg.WorkDir, "orphan.webm.part")
	fresh := filepath.Join(cfg.WorkDir, "fresh.mp4")
	for _, p := range []string{journaled, orphan, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []string{journaled, orphan} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatal(err)
		}
	}

	entry := &models.Delivery{RequestID: "r1", ArtifactPath: journaled}
	if err := db.CreateDelivery(entry); err != nil {
		t.Fatal(err)
	}
	entry.CreatedAt = old
	if err := db.UpdateDelivery(entry); err != nil {
		t.Fatal(err)
	}

	result, err := ctrl.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if result.Journaled != 1 || result.Orphans != 1 {
		t.Errorf("result = %+v, want 1 journaled and 1 orphan", result)
	}

	for _, p := range []string{journaled, orphan} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should be removed", filepath.Base(p))
		}
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh file should be kept: %v", err)
	}

	got, err := db.GetDeliveryByRequestID("r1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Cleaned {
		t.Error("journal entry should be marked cleaned")
	}
}

func TestSweepMissingWorkDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.WorkDir = filepath.Join(cfg.WorkDir, "missing")
	ctrl := NewCleanupController(cfg, testDB(t), testLogger())

	if _, err := ctrl.Sweep(context.Background()); err != nil {
		t.Errorf("Sweep() error: %v", err)
	}
}

package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// CreateDelivery journals a new request
func (db *Database) CreateDelivery(d *Delivery) error {
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	return db.store.Insert(bolthold.NextSequence(), d)
}

// UpdateDelivery updates an existing journal entry
func (db *Database) UpdateDelivery(d *Delivery) error {
	d.UpdatedAt = time.Now()
	return db.store.Update(d.ID, d)
}

// GetDeliveryByRequestID retrieves the entry for a request
func (db *Database) GetDeliveryByRequestID(requestID string) (*Delivery, error) {
	var d Delivery
	if err := db.store.FindOne(&d, bolthold.Where("RequestID").Eq(requestID)); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAllDeliveries retrieves every journal entry
func (db *Database) GetAllDeliveries() ([]*Delivery, error) {
	var deliveries []*Delivery
	err := db.store.Find(&deliveries, nil)
	return deliveries, err
}

// GetUncleanedArtifacts returns entries whose artifact is still on disk and older than cutoff
func (db *Database) GetUncleanedArtifacts(cutoff time.Time) ([]*Delivery, error) {
	var deliveries []*Delivery
	if err := db.store.Find(&deliveries, bolthold.Where("Cleaned").Eq(false)); err != nil {
		return nil, err
	}

	var stale []*Delivery
	for _, d := range deliveries {
		if d.ArtifactPath != "" && d.CreatedAt.Before(cutoff) {
			stale = append(stale, d)
		}
	}
	return stale, nil
}

// MarkCleaned records that the artifact of an entry was removed
func (db *Database) MarkCleaned(d *Delivery) error {
	now := time.Now()
	d.Cleaned = true
	d.CleanedAt = &now
	return db.UpdateDelivery(d)
}

// DeleteDeliveriesBefore drops cleaned journal entries created before cutoff
func (db *Database) DeleteDeliveriesBefore(cutoff time.Time) (int, error) {
	var deliveries []*Delivery
	if err := db.store.Find(&deliveries, bolthold.Where("Cleaned").Eq(true)); err != nil {
		return 0, err
	}

	deleted := 0
	for _, d := range deliveries {
		if !d.CreatedAt.Before(cutoff) {
			continue
		}
		if err := db.store.Delete(d.ID, &Delivery{}); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

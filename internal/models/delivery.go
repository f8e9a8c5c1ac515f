package models

import "time"

// Delivery is the journal entry written for every handled chat request
type Delivery struct {
	ID        uint64 `boltholdKey:"ID"`
	RequestID string `boltholdIndex:"RequestID"`
	ChatID    int64

	URL  string
	Kind MediaKind

	// Outcome
	Category FailureCategory `boltholdIndex:"Category"`
	Action   DeliveryType
	Title    string
	Detail   string

	// Working-directory artifact, if one was produced
	ArtifactPath string
	ArtifactSize int64
	Cleaned      bool `boltholdIndex:"Cleaned"`

	// Metadata
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	CleanedAt   *time.Time
}

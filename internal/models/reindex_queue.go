package models

import (
	"time"
)

// ReindexQueue holds listings whose search documents are stale (after an
// editor save or a status change) until the background worker pushes them to
// Meilisearch. Queueing decouples the save path from search availability.
type ReindexQueue struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID   string     `gorm:"type:varchar(36);not null;index:idx_queue_listing" json:"listing_id"`
	Trigger     string     `gorm:"type:varchar(30);not null" json:"trigger"` // save, status_change, full_reindex
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_status" json:"status"`
	Priority    int        `gorm:"default:0;index:idx_priority" json:"priority"` // Higher = process first
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time `gorm:"index:idx_retry" json:"next_retry_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (ReindexQueue) TableName() string {
	return "reindex_queue"
}

// Status constants
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusDone       = "done"
	QueueStatusFailed     = "failed"
)

// Trigger constants
const (
	ReindexTriggerSave         = "save"
	ReindexTriggerStatusChange = "status_change"
	ReindexTriggerFull         = "full_reindex"
)

// MaxReindexAttempts before marking an item as permanently failed
const MaxReindexAttempts = 5

// GetNextRetryDelay calculates exponential backoff for reindex retries
func GetNextRetryDelay(attempts int) time.Duration {
	delays := []time.Duration{
		30 * time.Second,
		2 * time.Minute,
		10 * time.Minute,
		30 * time.Minute,
		1 * time.Hour,
	}

	if attempts >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempts]
}

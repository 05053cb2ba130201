package scheduler

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"listing-portal/internal/models"
	"listing-portal/internal/search"
)

// QueueWorker drains the reindex queue into Meilisearch with retry backoff
type QueueWorker struct {
	db           *gorm.DB
	search       *search.SearchClient
	stopChan     chan struct{}
	isRunning    bool
	pollInterval time.Duration
}

// NewQueueWorker creates a new queue worker
func NewQueueWorker(db *gorm.DB, searchClient *search.SearchClient) *QueueWorker {
	return &QueueWorker{
		db:           db,
		search:       searchClient,
		stopChan:     make(chan struct{}),
		pollInterval: 10 * time.Second,
	}
}

// Start starts the queue worker
func (w *QueueWorker) Start() {
	if w.isRunning {
		log.Println("QueueWorker: Already running")
		return
	}

	w.isRunning = true
	log.Printf("QueueWorker: Started (poll_interval=%v)", w.pollInterval)

	go w.run()
}

// Stop stops the queue worker
func (w *QueueWorker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("QueueWorker: Stopping...")
	w.isRunning = false
	close(w.stopChan)
}

// run is the main worker loop
func (w *QueueWorker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("QueueWorker: Stopped")
			return
		case <-ticker.C:
			w.processNext()
		}
	}
}

// processNext picks and processes the next eligible queue item
func (w *QueueWorker) processNext() {
	var item models.ReindexQueue
	now := time.Now()

	// Pending items first, by priority then age
	result := w.db.Where("status = ?", models.QueueStatusPending).
		Order("priority DESC, created_at ASC").
		First(&item)

	// Then failed items whose retry time has passed
	if result.Error == gorm.ErrRecordNotFound {
		result = w.db.Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", models.QueueStatusFailed, now).
			Order("priority DESC, created_at ASC").
			First(&item)
	}

	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			log.Printf("QueueWorker: Error fetching next queue item: %v", result.Error)
		}
		return
	}

	w.processItem(&item)
}

// processItem pushes one listing's document to the search index
func (w *QueueWorker) processItem(item *models.ReindexQueue) {
	log.Printf("QueueWorker: Processing id=%d listing_id=%s trigger=%s attempt=%d",
		item.ID, item.ListingID, item.Trigger, item.Attempts+1)

	item.Status = models.QueueStatusProcessing
	item.Attempts++
	if err := w.db.Save(item).Error; err != nil {
		log.Printf("QueueWorker: Failed to update status to processing: %v", err)
		return
	}

	var listing models.Listing
	result := w.db.Where("id = ?", item.ListingID).First(&listing)
	if result.Error == gorm.ErrRecordNotFound {
		// Listing gone: drop its document and finish the item
		if err := w.search.DeleteListing(item.ListingID); err != nil {
			w.handleIndexError(item, fmt.Errorf("failed to delete document: %w", err))
			return
		}
		w.markDone(item)
		return
	} else if result.Error != nil {
		w.handleIndexError(item, fmt.Errorf("failed to load listing: %w", result.Error))
		return
	}

	// Inactive inventory leaves the index, active inventory enters it
	var err error
	if listing.IsActive() {
		err = w.search.IndexListing(&listing)
	} else {
		err = w.search.DeleteListing(listing.ID)
	}
	if err != nil {
		w.handleIndexError(item, err)
		return
	}

	w.markDone(item)
}

// handleIndexError schedules a retry with backoff or gives up after the cap
func (w *QueueWorker) handleIndexError(item *models.ReindexQueue, err error) {
	log.Printf("QueueWorker: Reindex failed for id=%d: %v", item.ID, err)

	if item.Attempts >= models.MaxReindexAttempts {
		log.Printf("QueueWorker: Max retries exceeded for id=%d (%d attempts)", item.ID, item.Attempts)
		item.Status = models.QueueStatusFailed
		item.LastError = fmt.Sprintf("Max retries exceeded (%d): %s", item.Attempts, err.Error())
		completedAt := time.Now()
		item.CompletedAt = &completedAt
		item.NextRetryAt = nil
	} else {
		delay := models.GetNextRetryDelay(item.Attempts - 1) // -1 because we already incremented Attempts
		nextRetry := time.Now().Add(delay)
		item.Status = models.QueueStatusFailed
		item.LastError = err.Error()
		item.NextRetryAt = &nextRetry
		log.Printf("QueueWorker: Scheduling retry for id=%d in %v (attempt %d/%d)",
			item.ID, delay, item.Attempts, models.MaxReindexAttempts)
	}

	if err := w.db.Save(item).Error; err != nil {
		log.Printf("QueueWorker: Failed to save retry status: %v", err)
	}
}

func (w *QueueWorker) markDone(item *models.ReindexQueue) {
	item.Status = models.QueueStatusDone
	item.LastError = ""
	completedAt := time.Now()
	item.CompletedAt = &completedAt
	item.NextRetryAt = nil

	if err := w.db.Save(item).Error; err != nil {
		log.Printf("QueueWorker: Failed to mark item as done: %v", err)
	} else {
		log.Printf("QueueWorker: Completed id=%d listing_id=%s", item.ID, item.ListingID)
	}
}

// Enqueue adds a listing to the reindex queue unless one is already pending
func Enqueue(db *gorm.DB, listingID, trigger string, priority int) error {
	var existing models.ReindexQueue
	result := db.Where("listing_id = ? AND status = ?", listingID, models.QueueStatusPending).First(&existing)
	if result.Error == nil {
		// Already queued: bump priority if the new trigger is more urgent
		if priority > existing.Priority {
			existing.Priority = priority
			return db.Save(&existing).Error
		}
		return nil
	} else if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}

	item := models.ReindexQueue{
		ListingID: listingID,
		Trigger:   trigger,
		Status:    models.QueueStatusPending,
		Priority:  priority,
	}
	return db.Create(&item).Error
}

// GetQueueStats returns current queue statistics
func (w *QueueWorker) GetQueueStats() map[string]interface{} {
	var stats struct {
		Pending    int64
		Processing int64
		Done       int64
		Failed     int64
	}

	w.db.Model(&models.ReindexQueue{}).Where("status = ?", models.QueueStatusPending).Count(&stats.Pending)
	w.db.Model(&models.ReindexQueue{}).Where("status = ?", models.QueueStatusProcessing).Count(&stats.Processing)
	w.db.Model(&models.ReindexQueue{}).Where("status = ?", models.QueueStatusDone).Count(&stats.Done)
	w.db.Model(&models.ReindexQueue{}).Where("status = ?", models.QueueStatusFailed).Count(&stats.Failed)

	return map[string]interface{}{
		"pending":    stats.Pending,
		"processing": stats.Processing,
		"done":       stats.Done,
		"failed":     stats.Failed,
		"is_running": w.isRunning,
	}
}

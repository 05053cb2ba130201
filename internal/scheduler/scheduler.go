package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"listing-portal/internal/cleanup"
	"listing-portal/internal/config"
	"listing-portal/internal/models"
)

// Scheduler runs the recurring background jobs: the idle-session sweep and
// the nightly full search reindex.
type Scheduler struct {
	cron      *cron.Cron
	db        *gorm.DB
	cleanup   *cleanup.Service
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(db *gorm.DB, cleanupSvc *cleanup.Service, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		db:      db,
		cleanup: cleanupSvc,
		config:  cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.Enabled {
		log.Println("Scheduler: Background jobs are disabled in configuration")
		return nil
	}

	// Sweep idle sessions every N minutes
	sweepSpec := fmt.Sprintf("@every %dm", s.sweepIntervalMinutes())
	_, err := s.cron.AddFunc(sweepSpec, func() {
		if _, err := s.cleanup.SweepExpiredSessions(); err != nil {
			log.Printf("Scheduler: Session sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	// Nightly full reindex of active listings
	reindexSpec := s.parseDailyRunTime(s.config.Scheduler.FullReindexTime)
	_, err = s.cron.AddFunc(reindexSpec, func() {
		log.Println("Scheduler: Starting nightly full reindex...")
		if err := s.enqueueFullReindex(); err != nil {
			log.Printf("Scheduler: Full reindex enqueue failed: %v", err)
		} else {
			log.Println("Scheduler: Full reindex enqueued")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started (sweep: %s, full reindex at %s)", sweepSpec, s.config.Scheduler.FullReindexTime)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// enqueueFullReindex queues every active listing for the reindex worker.
// Listings already pending in the queue are not queued again.
func (s *Scheduler) enqueueFullReindex() error {
	var ids []string
	if err := s.db.Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive).
		Pluck("id", &ids).Error; err != nil {
		return err
	}

	log.Printf("Scheduler: Found %d active listings to reindex", len(ids))

	queued := 0
	for _, id := range ids {
		var existing models.ReindexQueue
		result := s.db.Where("listing_id = ? AND status = ?", id, models.QueueStatusPending).First(&existing)
		if result.Error == nil {
			continue
		} else if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}

		item := models.ReindexQueue{
			ListingID: id,
			Trigger:   models.ReindexTriggerFull,
			Status:    models.QueueStatusPending,
		}
		if err := s.db.Create(&item).Error; err != nil {
			log.Printf("Scheduler: Failed to enqueue listing %s: %v", id, err)
			continue
		}
		queued++
	}

	log.Printf("Scheduler: Enqueued %d listings for reindex", queued)
	return nil
}

// RunSweepNow immediately runs the session sweep (for manual trigger)
func (s *Scheduler) RunSweepNow() (*cleanup.SweepResult, error) {
	log.Println("Scheduler: Manual trigger - running session sweep...")
	return s.cleanup.SweepExpiredSessions()
}

// RunFullReindexNow immediately enqueues the full reindex (for manual trigger)
func (s *Scheduler) RunFullReindexNow() error {
	log.Println("Scheduler: Manual trigger - enqueueing full reindex...")
	return s.enqueueFullReindex()
}

func (s *Scheduler) sweepIntervalMinutes() int {
	if s.config.Scheduler.SweepIntervalMinutes <= 0 {
		return 5
	}
	return s.config.Scheduler.SweepIntervalMinutes
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "03:00" -> "0 3 * * *" (run at 3:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 3:00 AM if parsing fails
	log.Printf("Scheduler: Failed to parse time '%s', using default 03:00", timeStr)
	return "0 3 * * *"
}

package cleanup

import (
	"log"
	"time"

	"gorm.io/gorm"

	"listing-portal/internal/models"
	"listing-portal/internal/session"
)

// Service expires idle editor sessions and persists their audit logs
type Service struct {
	db       *gorm.DB
	sessions *session.Manager
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB, sessions *session.Manager) *Service {
	return &Service{db: db, sessions: sessions}
}

// SweepResult holds the result of one sweep
type SweepResult struct {
	OpenCount      int       `json:"open_count"`      // Sessions open before the sweep
	ExpiredCount   int       `json:"expired_count"`   // Sessions closed as idle
	ExecutedAt     time.Time `json:"executed_at"`     // When the sweep ran
	ClosedSessions []string  `json:"closed_sessions"` // IDs of the closed sessions
}

// SweepExpiredSessions closes sessions idle past their TTL. Log persistence
// happens through RecordClose, which the manager invokes for every close, so
// the sweep only drives the expiry and reports what it closed.
func (s *Service) SweepExpiredSessions() (*SweepResult, error) {
	result := &SweepResult{
		OpenCount:  s.sessions.Count(),
		ExecutedAt: time.Now(),
	}

	logs := s.sessions.SweepExpired()
	result.ExpiredCount = len(logs)

	if len(logs) == 0 {
		return result, nil
	}

	for _, entry := range logs {
		result.ClosedSessions = append(result.ClosedSessions, entry.SessionID)
		log.Printf("Expired session %s (listing: %s, saves: %d)",
			entry.SessionID, entry.ListingID, entry.SaveCount)
	}

	log.Printf("Sweep completed: %d expired (%d were open)", result.ExpiredCount, result.OpenCount)
	return result, nil
}

// RecordClose persists a session audit log entry. Wired as the manager's
// close hook so every ended session lands in session_logs exactly once.
func (s *Service) RecordClose(entry models.SessionLog) {
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("ERROR: Failed to log session %s: %v", entry.SessionID, err)
	}
}

// GetSessionStats returns statistics about ended sessions
func (s *Service) GetSessionStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	// Total ended sessions
	var totalEnded int64
	if err := s.db.Model(&models.SessionLog{}).Count(&totalEnded).Error; err != nil {
		return nil, err
	}
	stats["total_ended"] = totalEnded

	// Ended sessions by close reason
	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := s.db.Model(&models.SessionLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}

	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	// Sessions ended in the last 30 days
	var recentEnded int64
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.SessionLog{}).
		Where("closed_at >= ?", thirtyDaysAgo).
		Count(&recentEnded).Error; err != nil {
		return nil, err
	}
	stats["ended_last_30_days"] = recentEnded

	// Saves done in ended sessions
	var totalSaves int64
	if err := s.db.Model(&models.SessionLog{}).
		Select("COALESCE(SUM(save_count), 0)").
		Scan(&totalSaves).Error; err != nil {
		return nil, err
	}
	stats["total_saves"] = totalSaves

	// Currently open sessions
	stats["currently_open"] = s.sessions.Count()

	return stats, nil
}

// GetRecentSessionLogs returns recent session log entries
func (s *Service) GetRecentSessionLogs(limit int) ([]models.SessionLog, error) {
	var logs []models.SessionLog
	err := s.db.Order("closed_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

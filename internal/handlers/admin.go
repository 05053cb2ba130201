package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"listing-portal/internal/cleanup"
	"listing-portal/internal/models"
	"listing-portal/internal/scheduler"
	"listing-portal/internal/snapshot"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db              *gorm.DB
	scheduler       *scheduler.Scheduler
	worker          *scheduler.QueueWorker
	snapshotService *snapshot.Service
	cleanupService  *cleanup.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, sched *scheduler.Scheduler, worker *scheduler.QueueWorker, cleanupSvc *cleanup.Service) *AdminHandler {
	return &AdminHandler{
		db:              db,
		scheduler:       sched,
		worker:          worker,
		snapshotService: snapshot.NewService(db),
		cleanupService:  cleanupSvc,
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	// Listing counts by status
	counts := make(map[string]int64)
	var total int64
	for _, status := range []models.ListingStatus{
		models.ListingStatusActive,
		models.ListingStatusInactive,
		models.ListingStatusSold,
		models.ListingStatusRented,
	} {
		var count int64
		h.db.Model(&models.Listing{}).Where("status = ?", status).Count(&count)
		counts[string(status)] = count
		total += count
	}
	counts["total"] = total
	stats["listings"] = counts

	// Recent editing activity (last 24 hours)
	last24h := time.Now().AddDate(0, 0, -1)
	var recentlyEdited int64
	h.db.Model(&models.Listing{}).Where("updated_at >= ?", last24h).Count(&recentlyEdited)
	stats["recent_activity"] = map[string]interface{}{
		"edited_last_24h": recentlyEdited,
	}

	// Snapshot statistics
	var snapshotCount int64
	h.db.Model(&models.ListingSnapshot{}).Count(&snapshotCount)
	stats["snapshots"] = map[string]interface{}{
		"total": snapshotCount,
	}

	// Listing changes (last 7 days)
	last7days := time.Now().AddDate(0, 0, -7)
	var recentChanges int64
	h.db.Model(&models.ListingChange{}).Where("detected_at >= ?", last7days).Count(&recentChanges)
	stats["changes"] = map[string]interface{}{
		"last_7_days": recentChanges,
	}

	// Session statistics
	sessionStats, err := h.cleanupService.GetSessionStats()
	if err != nil {
		log.Printf("Failed to get session stats: %v", err)
	} else {
		stats["sessions"] = sessionStats
	}

	// Reindex queue statistics
	if h.worker != nil {
		stats["reindex_queue"] = h.worker.GetQueueStats()
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentActivity returns recently edited listings
func (h *AdminHandler) GetRecentActivity(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	var listings []models.Listing
	err := h.db.Order("updated_at DESC").Limit(limit).Find(&listings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// RunSweep manually triggers the idle-session sweep
func (h *AdminHandler) RunSweep(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available",
		})
		return
	}

	log.Println("Admin: Manual session sweep requested")

	result, err := h.scheduler.RunSweepNow()
	if err != nil {
		log.Printf("Admin: Manual sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunFullReindex manually enqueues a full search reindex
func (h *AdminHandler) RunFullReindex(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available",
		})
		return
	}

	log.Println("Admin: Manual full reindex requested")

	// Run in goroutine to avoid blocking
	go func() {
		if err := h.scheduler.RunFullReindexNow(); err != nil {
			log.Printf("Admin: Full reindex enqueue failed: %v", err)
		} else {
			log.Println("Admin: Full reindex enqueued successfully")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Full reindex started",
		"status":  "running",
	})
}

// GetQueueStats returns reindex queue statistics
func (h *AdminHandler) GetQueueStats(c *gin.Context) {
	if h.worker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue worker not available"})
		return
	}
	c.JSON(http.StatusOK, h.worker.GetQueueStats())
}

// GetSessionLogs returns recent session log entries
func (h *AdminHandler) GetSessionLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.cleanupService.GetRecentSessionLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetListingHistory returns snapshot history for a listing
func (h *AdminHandler) GetListingHistory(c *gin.Context) {
	listingID := c.Param("id")
	limitStr := c.DefaultQuery("limit", "30")
	limit, _ := strconv.Atoi(limitStr)

	snapshots, err := h.snapshotService.GetListingHistory(listingID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing_id": listingID,
		"snapshots":  snapshots,
		"count":      len(snapshots),
	})
}

// GetRecentChanges returns recent listing changes
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	changes, err := h.snapshotService.GetRecentChanges(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// GetCityStats returns active listing counts by city
func (h *AdminHandler) GetCityStats(c *gin.Context) {
	type CityStat struct {
		City  string `json:"city"`
		Count int64  `json:"count"`
	}

	var stats []CityStat
	err := h.db.Model(&models.Listing{}).
		Select("city, count(*) as count").
		Where("status = ? AND city IS NOT NULL AND city != ''", models.ListingStatusActive).
		Group("city").
		Order("count DESC").
		Limit(20).
		Scan(&stats).Error

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"city_stats": stats,
		"count":      len(stats),
	})
}

// GetPriceDistribution returns active listing counts by price band
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	type PriceRange struct {
		RangeLabel string  `json:"range_label"`
		MinPrice   float64 `json:"min_price"`
		MaxPrice   float64 `json:"max_price"`
		Count      int64   `json:"count"`
	}

	// Price bands in rupees
	ranges := []PriceRange{
		{RangeLabel: "under 10k", MinPrice: 0, MaxPrice: 10000},
		{RangeLabel: "10k-25k", MinPrice: 10000, MaxPrice: 25000},
		{RangeLabel: "25k-50k", MinPrice: 25000, MaxPrice: 50000},
		{RangeLabel: "50k-1L", MinPrice: 50000, MaxPrice: 100000},
		{RangeLabel: "1L-50L", MinPrice: 100000, MaxPrice: 5000000},
		{RangeLabel: "50L+", MinPrice: 5000000, MaxPrice: 10000000000},
	}

	for i := range ranges {
		var count int64
		h.db.Model(&models.Listing{}).
			Where("status = ? AND price >= ? AND price < ?",
				models.ListingStatusActive, ranges[i].MinPrice, ranges[i].MaxPrice).
			Count(&count)
		ranges[i].Count = count
	}

	c.JSON(http.StatusOK, gin.H{
		"price_distribution": ranges,
	})
}

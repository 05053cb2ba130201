package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"listing-portal/internal/cleanup"
	"listing-portal/internal/config"
	"listing-portal/internal/database"
	"listing-portal/internal/handlers"
	"listing-portal/internal/models"
	"listing-portal/internal/ratelimit"
	"listing-portal/internal/records"
	"listing-portal/internal/scheduler"
	"listing-portal/internal/search"
	"listing-portal/internal/session"
	"listing-portal/internal/snapshot"
)

var (
	db              *database.DB
	gormDB          *database.GormDB
	searchClient    *search.SearchClient
	appConfig       *config.Config
	rateLimiter     *ratelimit.RateLimiter
	appScheduler    *scheduler.Scheduler
	queueWorker     *scheduler.QueueWorker
	snapshotService *snapshot.Service
	cleanupService  *cleanup.Service
	sessionManager  *session.Manager
)

// reindexOnStatusChange enqueues a listing for reindexing whenever the
// editor flips its status, so sold/rented inventory leaves search promptly.
type reindexOnStatusChange struct{}

func (reindexOnStatusChange) StatusChanged(listingID string, status models.ListingStatus) {
	if gormDB == nil {
		return
	}
	if err := scheduler.Enqueue(gormDB.DB(), listingID, models.ReindexTriggerStatusChange, 1); err != nil {
		log.Printf("Warning: Failed to enqueue reindex for %s: %v", listingID, err)
	}
}

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "/app/config/portal_config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "mysql" {
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormDB, err = database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "listing_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "listing_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "listing_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()

		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Println("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		db, err = database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "listing_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "listing_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "listing_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	}

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}

	searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

	// Wait for Meilisearch to be ready
	time.Sleep(2 * time.Second)

	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	// Initialize rate limiter for save/upload endpoints
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour, %d req/day (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)

	// Select the record backend for editor saves
	var recordService session.RecordService
	if appConfig.Upstream.Mode == "remote" && appConfig.Upstream.BaseURL != "" {
		log.Printf("Editor saves go to remote backend at %s", appConfig.Upstream.BaseURL)
		recordService = records.NewRemoteService(appConfig.Upstream)
	} else {
		if gormDB == nil {
			log.Fatalf("Local record backend requires MySQL/GORM")
		}
		uploadsDir := getEnv("UPLOADS_DIR", "./uploads")
		local, err := records.NewLocalService(gormDB, uploadsDir, appConfig.Editor.AssetBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize local record backend: %v", err)
		}
		recordService = local
		log.Printf("Editor saves go to the local database (uploads: %s)", uploadsDir)
	}

	// Initialize snapshot and cleanup services (MySQL only)
	if gormDB != nil {
		snapshotService = snapshot.NewService(gormDB.DB())
		log.Println("Snapshot service initialized")
	}

	// Session manager with its save/close hooks
	hooks := session.Hooks{
		AfterSave: func(listing *models.Listing) {
			if snapshotService != nil {
				if err := snapshotService.RecordSave(listing); err != nil {
					log.Printf("Warning: Failed to record save snapshot for %s: %v", listing.ID, err)
				}
			}
			if gormDB != nil {
				if err := scheduler.Enqueue(gormDB.DB(), listing.ID, models.ReindexTriggerSave, 0); err != nil {
					log.Printf("Warning: Failed to enqueue reindex for %s: %v", listing.ID, err)
				}
			}
		},
		OnClose: func(entry models.SessionLog) {
			if cleanupService != nil {
				cleanupService.RecordClose(entry)
			}
			rateLimiter.Forget(entry.SessionID)
		},
	}
	sessionManager = session.NewManager(recordService, session.LogNotifier{}, reindexOnStatusChange{}, appConfig.Editor, hooks)
	defer sessionManager.CloseAll()

	// Background jobs (MySQL only)
	if gormDB != nil {
		cleanupService = cleanup.NewService(gormDB.DB(), sessionManager)

		appScheduler = scheduler.NewScheduler(gormDB.DB(), cleanupService, appConfig)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()

		queueWorker = scheduler.NewQueueWorker(gormDB.DB(), searchClient)
		queueWorker.Start()
		defer queueWorker.Stop()
		log.Println("Queue worker started")
	}

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Routes
	r.GET("/health", healthCheck)
	r.GET("/api/listings", getListings)
	r.GET("/api/listings/:id", getListing)

	// Editor session routes
	editor := r.Group("/api/editor")
	{
		editor.POST("/sessions", openSession)
		editor.GET("/sessions/:sid", getSessionState)
		editor.DELETE("/sessions/:sid", closeSession)

		editor.PATCH("/sessions/:sid/fields", setSessionField)
		editor.POST("/sessions/:sid/status", setSessionStatus)

		// Media operations; uploads are rate limited per session
		editor.POST("/sessions/:sid/media/:bucket", rateLimitMiddleware(), uploadSessionMedia)
		editor.POST("/sessions/:sid/media/:bucket/cover", setSessionCover)
		editor.POST("/sessions/:sid/media/:bucket/reorder", reorderSessionMedia)
		editor.DELETE("/sessions/:sid/media/:bucket/:itemId", removeSessionMedia)
		editor.GET("/sessions/:sid/previews/:itemId", getSessionPreview)

		// Section navigation
		editor.POST("/sessions/:sid/next", sessionNext)
		editor.POST("/sessions/:sid/previous", sessionPrevious)
		editor.POST("/sessions/:sid/jump", sessionJump)
		editor.POST("/sessions/:sid/advanced", sessionToggleAdvanced)

		editor.POST("/sessions/:sid/save", rateLimitMiddleware(), saveSession)
	}

	// Rate limiter stats endpoint
	r.GET("/api/ratelimit/stats", getRateLimitStats)

	r.GET("/api/search", searchListings)
	r.POST("/api/search/advanced", advancedSearchListings)
	r.GET("/api/search/facets", getSearchFacets)
	r.GET("/api/filter", filterListings)

	// Persisted uploads served as static assets
	r.Static("/uploads", getEnv("UPLOADS_DIR", "./uploads"))

	// Admin API routes (requires authentication in production)
	if gormDB != nil {
		adminHandler := handlers.NewAdminHandler(gormDB.DB(), appScheduler, queueWorker, cleanupService)

		admin := r.Group("/api/admin")
		{
			// Statistics
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/activity", adminHandler.GetRecentActivity)
			admin.GET("/city-stats", adminHandler.GetCityStats)
			admin.GET("/price-distribution", adminHandler.GetPriceDistribution)

			// Background job control
			admin.POST("/sweep/run", adminHandler.RunSweep)
			admin.POST("/reindex/run", adminHandler.RunFullReindex)
			admin.GET("/queue/stats", adminHandler.GetQueueStats)

			// Session audit
			admin.GET("/sessions/logs", adminHandler.GetSessionLogs)

			// Listing history
			admin.GET("/listings/:id/history", adminHandler.GetListingHistory)
			admin.GET("/changes/recent", adminHandler.GetRecentChanges)
		}

		log.Println("Admin API routes registered at /api/admin/*")
	}

	port := getEnv("PORT", "8084")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until shutdown signal, then drain sessions before exiting so
	// every open session gets its shutdown audit entry.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"open_sessions": sessionManager.Count(),
		"time":          time.Now(),
	})
}

func getListings(c *gin.Context) {
	filters := database.ListingFilters{
		City:         c.Query("city"),
		Locality:     c.Query("locality"),
		ListingType:  c.Query("listing_type"),
		PropertyType: c.Query("property_type"),
		Status:       c.DefaultQuery("status", string(models.ListingStatusActive)),
		Furnishing:   c.Query("furnishing"),
		SortBy:       c.DefaultQuery("sort", "created_at"),
	}

	if minPriceStr := c.Query("min_price"); minPriceStr != "" {
		if minPrice, parseErr := strconv.ParseFloat(minPriceStr, 64); parseErr == nil {
			filters.MinPrice = &minPrice
		}
	}
	if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
		if maxPrice, parseErr := strconv.ParseFloat(maxPriceStr, 64); parseErr == nil {
			filters.MaxPrice = &maxPrice
		}
	}
	if minBedroomsStr := c.Query("min_bedrooms"); minBedroomsStr != "" {
		if minBedrooms, parseErr := strconv.Atoi(minBedroomsStr); parseErr == nil {
			filters.MinBedrooms = &minBedrooms
		}
	}
	if maxBedroomsStr := c.Query("max_bedrooms"); maxBedroomsStr != "" {
		if maxBedrooms, parseErr := strconv.Atoi(maxBedroomsStr); parseErr == nil {
			filters.MaxBedrooms = &maxBedrooms
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, parseErr := strconv.Atoi(limitStr); parseErr == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, parseErr := strconv.Atoi(offsetStr); parseErr == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	if gormDB != nil {
		start := time.Now()
		result, err := gormDB.GetListingsPaginated(filters)
		duration := time.Since(start)

		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		log.Printf("[Listings API] duration_ms=%d total=%d limit=%d sort=%s",
			duration.Milliseconds(), result.Total, result.Limit, filters.SortBy)

		c.JSON(http.StatusOK, result)
		return
	}

	// Postgres fallback has no filter support
	listings, err := db.GetActiveListings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, listings)
}

func getListing(c *gin.Context) {
	id := c.Param("id")
	var listing *models.Listing
	var err error

	if gormDB != nil {
		listing, err = gormDB.GetListingByID(id)
	} else {
		listing, err = db.GetListingByID(id)
	}

	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// openSession loads a listing and opens an editor session on it
func openSession(c *gin.Context) {
	var req struct {
		ListingID string `json:"listingId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := sessionManager.Open(c.Request.Context(), req.ListingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, s.State())
}

func getSessionState(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State())
}

func closeSession(c *gin.Context) {
	entry, err := sessionManager.Close(c.Param("sid"), models.CloseReasonUser)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// setSessionField applies one field edit to the session draft
func setSessionField(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	var req struct {
		Field string      `json:"field" binding:"required"`
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.SetField(req.Field, req.Value); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrSessionClosed) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

func setSessionStatus(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.SetStatus(models.ListingStatus(req.Status)); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

// uploadSessionMedia spools a multipart upload into the session
func uploadSessionMedia(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	bucket, err := models.ParseMediaBucket(c.Param("bucket"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file part"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	item, err := s.UploadMedia(bucket, fileHeader.Filename, contentType, f)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrSessionClosed) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func setSessionCover(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	bucket, err := models.ParseMediaBucket(c.Param("bucket"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		ItemID string `json:"itemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.SetCover(bucket, req.ItemID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

func reorderSessionMedia(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	bucket, err := models.ParseMediaBucket(c.Param("bucket"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		OrderedIDs []string `json:"orderedIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ReorderMedia(bucket, req.OrderedIDs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

func removeSessionMedia(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	bucket, err := models.ParseMediaBucket(c.Param("bucket"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.RemoveMedia(bucket, c.Param("itemId")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

// getSessionPreview streams a pending upload back to the editor
func getSessionPreview(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	f, err := s.OpenPreview(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	path := f.Name()
	f.Close()

	c.File(path)
}

func sessionNext(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}
	moved := s.Next()
	state := s.State()
	c.JSON(http.StatusOK, gin.H{"moved": moved, "state": state})
}

func sessionPrevious(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}
	moved := s.Previous()
	state := s.State()
	c.JSON(http.StatusOK, gin.H{"moved": moved, "state": state})
}

func sessionJump(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.JumpTo(*req.Index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

func sessionToggleAdvanced(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}
	showAdvanced := s.ToggleAdvanced()
	state := s.State()
	c.JSON(http.StatusOK, gin.H{"showAdvanced": showAdvanced, "state": state})
}

// saveSession serializes the draft and sends it to the record backend
func saveSession(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	listing, err := s.Save(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSaveInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, session.ErrSessionClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, records.ErrUpstreamBlocked):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing": listing,
		"state":   s.State(),
	})
}

// lookupSession resolves the :sid route parameter, writing the 404 itself
func lookupSession(c *gin.Context) (*session.Session, bool) {
	s, err := sessionManager.Get(c.Param("sid"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}

func searchListings(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	// If no query, get all active from database
	if query == "" {
		var listings []models.Listing
		var err error

		if gormDB != nil {
			listings, err = gormDB.GetActiveListings()
		} else {
			listings, err = db.GetActiveListings()
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, listings)
		return
	}

	// Search using Meilisearch
	listings, err := searchClient.Search(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listings)
}

func filterListings(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	params := search.FilterParams{
		Query:        query,
		City:         c.Query("city"),
		ListingType:  c.Query("listing_type"),
		PropertyType: c.Query("property_type"),
		Furnishing:   c.Query("furnishing"),
		Limit:        limit,
	}

	// Price range
	if minPriceStr := c.Query("min_price"); minPriceStr != "" {
		if minPrice, err := strconv.ParseFloat(minPriceStr, 64); err == nil {
			params.MinPrice = &minPrice
		}
	}
	if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
		if maxPrice, err := strconv.ParseFloat(maxPriceStr, 64); err == nil {
			params.MaxPrice = &maxPrice
		}
	}

	// Localities (multi-select)
	if localities := c.QueryArray("locality"); len(localities) > 0 {
		params.Localities = localities
	}

	// Minimum bedrooms
	if minBedroomsStr := c.Query("min_bedrooms"); minBedroomsStr != "" {
		if minBedrooms, err := strconv.Atoi(minBedroomsStr); err == nil {
			params.MinBedrooms = &minBedrooms
		}
	}

	// Sort by
	if sortBy := c.Query("sort_by"); sortBy != "" {
		params.SortBy = sortBy
	}

	listings, err := searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// advancedSearchListings performs advanced search with filters and facets
func advancedSearchListings(c *gin.Context) {
	var reqBody struct {
		Query        string   `json:"query"`
		Limit        int64    `json:"limit"`
		Offset       int64    `json:"offset"`
		City         string   `json:"city"`
		Localities   []string `json:"localities"`
		MinPrice     *float64 `json:"min_price"`
		MaxPrice     *float64 `json:"max_price"`
		MinBedrooms  *int     `json:"min_bedrooms"`
		PropertyType string   `json:"property_type"`
		Sort         string   `json:"sort"` // "price_asc", "price_desc", "newest", etc.
		Facets       []string `json:"facets"`
	}

	if err := c.ShouldBindJSON(&reqBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Build filter conditions
	filters := []string{"status = 'active'"}

	if reqBody.City != "" {
		filters = append(filters, fmt.Sprintf("city = '%s'", reqBody.City))
	}
	if len(reqBody.Localities) > 0 {
		localityFilters := make([]string, len(reqBody.Localities))
		for i, loc := range reqBody.Localities {
			localityFilters[i] = fmt.Sprintf("locality = '%s'", loc)
		}
		filters = append(filters, "("+strings.Join(localityFilters, " OR ")+")")
	}
	if reqBody.PropertyType != "" {
		filters = append(filters, fmt.Sprintf("propertyType = '%s'", reqBody.PropertyType))
	}
	if reqBody.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %f", *reqBody.MinPrice))
	}
	if reqBody.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %f", *reqBody.MaxPrice))
	}
	if reqBody.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *reqBody.MinBedrooms))
	}

	// Build sort conditions
	sortConditions := []string{}
	switch reqBody.Sort {
	case "price_asc":
		sortConditions = append(sortConditions, "price:asc")
	case "price_desc":
		sortConditions = append(sortConditions, "price:desc")
	case "area_desc":
		sortConditions = append(sortConditions, "builtUpArea:desc")
	case "newest":
		sortConditions = append(sortConditions, "createdAt:desc")
	}

	// Default facets
	facets := reqBody.Facets
	if len(facets) == 0 {
		facets = []string{"city", "propertyType", "furnishing"}
	}

	searchReq := search.SearchRequest{
		Query:        reqBody.Query,
		Limit:        reqBody.Limit,
		Offset:       reqBody.Offset,
		Filter:       filters,
		Sort:         sortConditions,
		FacetsFilter: facets,
	}

	if searchReq.Limit == 0 {
		searchReq.Limit = 20
	}

	result, err := searchClient.AdvancedSearch(searchReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":            result.Hits,
		"total_hits":      result.TotalHits,
		"facets":          result.Facets,
		"processing_time": result.ProcessingTime,
		"query":           reqBody.Query,
		"filters":         filters,
	})
}

// getSearchFacets retrieves facet distributions
func getSearchFacets(c *gin.Context) {
	facetsParam := c.DefaultQuery("facets", "city,propertyType,furnishing")
	facets := strings.Split(facetsParam, ",")

	facetDist, err := searchClient.GetFacets(facets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"facets": facetDist,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

// rateLimitMiddleware enforces per-session rate limits on save/upload routes
func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("sid")
		if key == "" {
			key = c.ClientIP()
		}

		if !rateLimiter.AllowRequest(key) {
			stats := rateLimiter.GetStats(key)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
				"stats":   stats,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// getRateLimitStats returns current rate limiter statistics for a key
func getRateLimitStats(c *gin.Context) {
	key := c.DefaultQuery("key", "")
	if key == "" {
		key = c.ClientIP()
	}
	c.JSON(http.StatusOK, rateLimiter.GetStats(key))
}

package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"listing-portal/internal/models"
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	// AutoMigrate will create tables if they don't exist
	return gdb.db.AutoMigrate(
		&models.Listing{},
		&models.ListingSnapshot{},
		&models.ListingChange{},
		&models.SessionLog{},
		&models.ReindexQueue{},
	)
}

// SaveListing saves or updates a listing (upsert by ID)
func (gdb *GormDB) SaveListing(l *models.Listing) error {
	if l.Status == "" {
		l.Status = models.ListingStatusActive
	}

	var existing models.Listing
	result := gdb.db.Where("id = ?", l.ID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return gdb.db.Create(l).Error
	} else if result.Error != nil {
		return result.Error
	}

	// Update existing (keep original CreatedAt)
	l.CreatedAt = existing.CreatedAt
	return gdb.db.Save(l).Error
}

// GetListingByID retrieves a listing by ID
func (gdb *GormDB) GetListingByID(id string) (*models.Listing, error) {
	var listing models.Listing
	err := gdb.db.Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetActiveListings retrieves all active listings
func (gdb *GormDB) GetActiveListings() ([]models.Listing, error) {
	var listings []models.Listing
	err := gdb.db.Where("status = ?", models.ListingStatusActive).Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// ListingFilters holds the query parameters the listing index supports
type ListingFilters struct {
	City         string
	Locality     string
	ListingType  string
	PropertyType string
	Status       string
	Furnishing   string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	MaxBedrooms  *int
	SortBy       string
	Limit        int
	Offset       int
}

// PaginatedListings is one page of filtered listings
type PaginatedListings struct {
	Listings []models.Listing `json:"listings"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// GetListingsPaginated retrieves listings matching the filters with total
// count for pagination
func (gdb *GormDB) GetListingsPaginated(filters ListingFilters) (*PaginatedListings, error) {
	query := gdb.db.Model(&models.Listing{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	} else {
		query = query.Where("status = ?", models.ListingStatusActive)
	}
	if filters.City != "" {
		query = query.Where("city = ?", filters.City)
	}
	if filters.Locality != "" {
		query = query.Where("locality = ?", filters.Locality)
	}
	if filters.ListingType != "" {
		query = query.Where("listing_type = ?", filters.ListingType)
	}
	if filters.PropertyType != "" {
		query = query.Where("property_type = ?", filters.PropertyType)
	}
	if filters.Furnishing != "" {
		query = query.Where("furnishing = ?", filters.Furnishing)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.MinBedrooms != nil {
		query = query.Where("bedrooms >= ?", *filters.MinBedrooms)
	}
	if filters.MaxBedrooms != nil {
		query = query.Where("bedrooms <= ?", *filters.MaxBedrooms)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	// Map sort parameter to SQL ORDER BY clause, NULLs last for ASC
	var orderClause string
	switch filters.SortBy {
	case "price_asc":
		orderClause = "CASE WHEN price IS NULL THEN 1 ELSE 0 END, price ASC"
	case "price_desc":
		orderClause = "CASE WHEN price IS NULL THEN 1 ELSE 0 END, price DESC"
	case "area_desc":
		orderClause = "CASE WHEN built_up_area IS NULL THEN 1 ELSE 0 END, built_up_area DESC"
	case "created_at_asc":
		orderClause = "created_at ASC"
	default:
		orderClause = "created_at DESC"
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var listings []models.Listing
	err := query.Order(orderClause).Limit(limit).Offset(filters.Offset).Find(&listings).Error
	if err != nil {
		return nil, err
	}

	return &PaginatedListings{
		Listings: listings,
		Total:    total,
		Limit:    limit,
		Offset:   filters.Offset,
	}, nil
}

// CreateSessionLog persists one ended-session audit entry
func (gdb *GormDB) CreateSessionLog(entry *models.SessionLog) error {
	return gdb.db.Create(entry).Error
}

// GetRecentSessionLogs returns recent session audit entries
func (gdb *GormDB) GetRecentSessionLogs(limit int) ([]models.SessionLog, error) {
	var logs []models.SessionLog
	err := gdb.db.Order("closed_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

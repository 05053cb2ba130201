package snapshot

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"listing-portal/internal/models"
)

// Service records a snapshot of a listing after each successful editor save
// and detects what changed since the previous save.
type Service struct {
	db *gorm.DB
}

// NewService creates a new snapshot service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordSave creates a snapshot for the saved listing and persists any
// detected changes. Detection failures are logged but never fail the save.
func (s *Service) RecordSave(listing *models.Listing) error {
	changes, err := s.DetectChanges(listing)
	if err != nil {
		log.Printf("Warning: Failed to detect changes for listing %s: %v", listing.ID, err)
	}

	snapshot := &models.ListingSnapshot{
		ListingID:   listing.ID,
		SavedAt:     time.Now(),
		Price:       listing.Price,
		BuiltUpArea: listing.BuiltUpArea,
		Bedrooms:    listing.Bedrooms,
		Bathrooms:   listing.Bathrooms,
		City:        listing.City,
		Locality:    listing.Locality,
		Furnishing:  listing.Furnishing,
		Title:       listing.Title,
		PhotoCount:  photoCount(listing),
		Status:      string(listing.Status),
		HasChanged:  len(changes) > 0,
	}
	if len(changes) > 0 {
		snapshot.ChangeNote = fmt.Sprintf("%d changes detected", len(changes))
	}

	if err := s.db.Create(snapshot).Error; err != nil {
		return err
	}

	if len(changes) > 0 {
		if err := s.SaveChanges(changes, snapshot.ID); err != nil {
			log.Printf("Warning: Failed to save changes: %v", err)
		} else {
			log.Printf("Detected %d changes for listing %s", len(changes), listing.ID)
		}
	}

	return nil
}

// DetectChanges compares the listing against its most recent snapshot
func (s *Service) DetectChanges(listing *models.Listing) ([]models.ListingChange, error) {
	var last models.ListingSnapshot
	result := s.db.Where("listing_id = ?", listing.ID).
		Order("saved_at DESC").
		First(&last)

	if result.Error == gorm.ErrRecordNotFound {
		// First save of this listing in the editor
		return []models.ListingChange{{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeNew,
			NewValue:   "first save recorded",
			DetectedAt: time.Now(),
		}}, nil
	} else if result.Error != nil {
		return nil, result.Error
	}

	changes := []models.ListingChange{}

	// Price change
	if !float64PtrEqual(listing.Price, last.Price) {
		oldVal := "nil"
		newVal := "nil"
		var magnitude float64

		if last.Price != nil {
			oldVal = fmt.Sprintf("%.2f", *last.Price)
		}
		if listing.Price != nil {
			newVal = fmt.Sprintf("%.2f", *listing.Price)
		}
		if last.Price != nil && listing.Price != nil {
			magnitude = *listing.Price - *last.Price
		}

		changes = append(changes, models.ListingChange{
			ListingID:       listing.ID,
			ChangeType:      models.ChangeTypePrice,
			OldValue:        oldVal,
			NewValue:        newVal,
			ChangeMagnitude: &magnitude,
			DetectedAt:      time.Now(),
		})
	}

	// Status change
	if string(listing.Status) != last.Status {
		changes = append(changes, models.ListingChange{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeStatus,
			OldValue:   last.Status,
			NewValue:   string(listing.Status),
			DetectedAt: time.Now(),
		})
	}

	// Area change
	if !float64PtrEqual(listing.BuiltUpArea, last.BuiltUpArea) {
		oldVal := "nil"
		newVal := "nil"

		if last.BuiltUpArea != nil {
			oldVal = fmt.Sprintf("%.2f", *last.BuiltUpArea)
		}
		if listing.BuiltUpArea != nil {
			newVal = fmt.Sprintf("%.2f", *listing.BuiltUpArea)
		}

		changes = append(changes, models.ListingChange{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeArea,
			OldValue:   oldVal,
			NewValue:   newVal,
			DetectedAt: time.Now(),
		})
	}

	// Title change
	if listing.Title != last.Title {
		changes = append(changes, models.ListingChange{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeTitle,
			OldValue:   last.Title,
			NewValue:   listing.Title,
			DetectedAt: time.Now(),
		})
	}

	// Location change
	if listing.City != last.City || listing.Locality != last.Locality {
		changes = append(changes, models.ListingChange{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeLocation,
			OldValue:   fmt.Sprintf("%s / %s", last.City, last.Locality),
			NewValue:   fmt.Sprintf("%s / %s", listing.City, listing.Locality),
			DetectedAt: time.Now(),
		})
	}

	// Furnishing change
	if listing.Furnishing != last.Furnishing {
		changes = append(changes, models.ListingChange{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeFurnishing,
			OldValue:   last.Furnishing,
			NewValue:   listing.Furnishing,
			DetectedAt: time.Now(),
		})
	}

	// Photo count change
	if count := photoCount(listing); count != last.PhotoCount {
		magnitude := float64(count - last.PhotoCount)
		changes = append(changes, models.ListingChange{
			ListingID:       listing.ID,
			ChangeType:      models.ChangeTypePhotos,
			OldValue:        fmt.Sprintf("%d", last.PhotoCount),
			NewValue:        fmt.Sprintf("%d", count),
			ChangeMagnitude: &magnitude,
			DetectedAt:      time.Now(),
		})
	}

	return changes, nil
}

// SaveChanges saves detected changes to the database
func (s *Service) SaveChanges(changes []models.ListingChange, snapshotID uint) error {
	if len(changes) == 0 {
		return nil
	}

	for i := range changes {
		changes[i].SnapshotID = snapshotID
	}

	return s.db.Create(&changes).Error
}

// GetListingHistory retrieves snapshot history for a listing
func (s *Service) GetListingHistory(listingID string, limit int) ([]models.ListingSnapshot, error) {
	var snapshots []models.ListingSnapshot
	query := s.db.Where("listing_id = ?", listingID).Order("saved_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

// GetRecentChanges retrieves recent listing changes
func (s *Service) GetRecentChanges(limit int) ([]models.ListingChange, error) {
	var changes []models.ListingChange
	query := s.db.Order("detected_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&changes).Error; err != nil {
		return nil, err
	}

	return changes, nil
}

// photoCount counts surviving structured photos, falling back to the legacy
// flat array when migration has not happened yet.
func photoCount(l *models.Listing) int {
	if l.Media != nil {
		count := 0
		for _, item := range l.Media.Photos {
			if !item.IsDeleted {
				count++
			}
		}
		if count > 0 || len(l.Media.Photos) > 0 {
			return count
		}
	}
	return len(l.Images)
}

func float64PtrEqual(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

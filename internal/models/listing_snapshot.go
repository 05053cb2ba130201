package models

import "time"

// ListingSnapshot represents the state of a listing captured after each
// successful editor save.
type ListingSnapshot struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID string    `gorm:"type:varchar(36);not null;index:idx_listing_date" json:"listing_id"`
	SavedAt   time.Time `gorm:"type:datetime;not null;index:idx_listing_date,priority:2" json:"saved_at"`

	// Listing state at save time
	Price       *float64 `gorm:"type:decimal(14,2)" json:"price,omitempty"`
	BuiltUpArea *float64 `gorm:"type:decimal(10,2)" json:"built_up_area,omitempty"`
	Bedrooms    *int     `gorm:"type:int" json:"bedrooms,omitempty"`
	Bathrooms   *int     `gorm:"type:int" json:"bathrooms,omitempty"`
	City        string   `gorm:"type:varchar(100)" json:"city,omitempty"`
	Locality    string   `gorm:"type:varchar(150)" json:"locality,omitempty"`
	Furnishing  string   `gorm:"type:varchar(30)" json:"furnishing,omitempty"`
	Title       string   `gorm:"type:text" json:"title,omitempty"`
	PhotoCount  int      `gorm:"type:int;default:0" json:"photo_count"`
	Status      string   `gorm:"type:varchar(20);not null" json:"status"`

	// Change detection
	HasChanged bool   `gorm:"type:boolean;default:false" json:"has_changed"`
	ChangeNote string `gorm:"type:text" json:"change_note,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (ListingSnapshot) TableName() string {
	return "listing_snapshots"
}

// ListingChange represents a detected field change between saves
type ListingChange struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID       string    `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	SnapshotID      uint      `gorm:"type:bigint;not null" json:"snapshot_id"`
	ChangeType      string    `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue        string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue        string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangeMagnitude *float64  `gorm:"type:decimal(14,2)" json:"change_magnitude,omitempty"` // For numerical changes
	DetectedAt      time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"detected_at"`
}

// TableName specifies the table name
func (ListingChange) TableName() string {
	return "listing_changes"
}

// ChangeType constants
const (
	ChangeTypePrice      = "price_changed"
	ChangeTypeStatus     = "status_changed"
	ChangeTypeArea       = "area_changed"
	ChangeTypeTitle      = "title_changed"
	ChangeTypeLocation   = "location_changed"
	ChangeTypeFurnishing = "furnishing_changed"
	ChangeTypePhotos     = "photos_changed"
	ChangeTypeNew        = "new_listing"
)

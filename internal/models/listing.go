package models

import "time"

// Listing is the authoritative server-side representation of a property
// listing. JSON field names are the wire names the editor and frontend
// exchange, so they stay camelCase and must not change.
type Listing struct {
	// 基本情報
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ListingType  string `gorm:"type:varchar(20);index" json:"listingType,omitempty"`
	PropertyType string `gorm:"type:varchar(30);index" json:"propertyType,omitempty"`
	Title        string `gorm:"type:text" json:"title,omitempty"`
	Description  string `gorm:"type:text" json:"description,omitempty"`

	// 所在地
	City     string `gorm:"type:varchar(100);index" json:"city,omitempty"`
	Locality string `gorm:"type:varchar(150);index" json:"locality,omitempty"`
	Pincode  string `gorm:"type:varchar(10)" json:"pincode,omitempty"`
	Address  string `gorm:"type:text" json:"address,omitempty"`
	Landmark string `gorm:"type:text" json:"landmark,omitempty"`

	// 価格
	Price             *float64 `gorm:"type:decimal(14,2);index" json:"price,omitempty"`
	PriceNegotiable   *bool    `gorm:"type:boolean" json:"priceNegotiable,omitempty"`
	MaintenanceCharge *float64 `gorm:"type:decimal(12,2)" json:"maintenanceCharge,omitempty"`
	MaintenancePeriod string   `gorm:"type:varchar(20)" json:"maintenancePeriod,omitempty"`
	SecurityDeposit   *float64 `gorm:"type:decimal(12,2)" json:"securityDeposit,omitempty"`

	// 詳細
	BuiltUpArea *float64 `gorm:"type:decimal(10,2)" json:"builtUpArea,omitempty"`
	CarpetArea  *float64 `gorm:"type:decimal(10,2)" json:"carpetArea,omitempty"`
	Bedrooms    *int     `gorm:"type:int;index" json:"bedrooms,omitempty"`
	Bathrooms   *int     `gorm:"type:int" json:"bathrooms,omitempty"`
	Balconies   *int     `gorm:"type:int" json:"balconies,omitempty"`
	TotalFloors *int     `gorm:"type:int" json:"totalFloors,omitempty"`
	FloorNumber *int     `gorm:"type:int" json:"floorNumber,omitempty"`
	PropertyAge *int     `gorm:"type:int" json:"propertyAge,omitempty"`
	Furnishing  string   `gorm:"type:varchar(30)" json:"furnishing,omitempty"`
	Facing      string   `gorm:"type:varchar(20)" json:"facing,omitempty"`

	// 設備
	Amenities StringList `gorm:"type:text" json:"amenities,omitempty"`

	// 連絡先
	OwnerName   string `gorm:"type:varchar(150)" json:"ownerName,omitempty"`
	PhoneNumber string `gorm:"type:varchar(20)" json:"phoneNumber,omitempty"`
	Email       string `gorm:"type:varchar(150)" json:"email,omitempty"`
	ContactRole string `gorm:"type:varchar(30)" json:"contactRole,omitempty"`

	// 詳細設定
	ReraNumber    string `gorm:"type:varchar(50)" json:"reraNumber,omitempty"`
	AvailableFrom string `gorm:"type:varchar(20)" json:"availableFrom,omitempty"`

	// メディア: Images is the legacy flat array kept for listings that predate
	// the structured media model, Media is the four-bucket structured form.
	Images LegacyImageList `gorm:"type:text" json:"images,omitempty"`
	Media  *MediaSet       `gorm:"type:text" json:"media,omitempty"`

	// ステータス管理
	Status ListingStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	// タイムスタンプ
	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_created_at,sort:desc" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updatedAt"`
}

// ListingStatus は物件のステータス
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusRented   ListingStatus = "rented"
)

// TableName はテーブル名を明示的に指定
func (Listing) TableName() string {
	return "listings"
}

// IsActive は物件がアクティブかどうか
func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

// HasLegacyImages reports whether the record still carries the flat image
// array that predates the structured media model.
func (l *Listing) HasLegacyImages() bool {
	return len(l.Images) > 0
}

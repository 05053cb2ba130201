package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"listing-portal/internal/media"
	"listing-portal/internal/models"
)

// ErrUnknownField is returned when SetField is called with a field name the
// listing domain does not define.
var ErrUnknownField = errors.New("unknown draft field")

// Options carries the environment a draft is seeded with.
type Options struct {
	AssetBaseURL     string
	PlaceholderAsset string
	// DeletedLegacyIndices excludes already-removed flat-array entries from
	// migration when the draft is reseeded after a save.
	DeletedLegacyIndices map[int]bool
}

// Draft is the in-progress, locally-held edit of one listing. Fields are
// typed; optionals are pointers so an unset field serializes as omitted.
// Media is always in structured form once the draft exists.
type Draft struct {
	ListingType  string `json:"listingType"`
	PropertyType string `json:"propertyType"`
	Title        string `json:"title"`
	Description  string `json:"description"`

	City     string `json:"city"`
	Locality string `json:"locality"`
	Pincode  string `json:"pincode"`
	Address  string `json:"address"`
	Landmark string `json:"landmark"`

	Price             *float64 `json:"price,omitempty"`
	PriceNegotiable   *bool    `json:"priceNegotiable,omitempty"`
	MaintenanceCharge *float64 `json:"maintenanceCharge,omitempty"`
	MaintenancePeriod string   `json:"maintenancePeriod"`
	SecurityDeposit   *float64 `json:"securityDeposit,omitempty"`

	BuiltUpArea *float64 `json:"builtUpArea,omitempty"`
	CarpetArea  *float64 `json:"carpetArea,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty"`
	Bathrooms   *int     `json:"bathrooms,omitempty"`
	Balconies   *int     `json:"balconies,omitempty"`
	TotalFloors *int     `json:"totalFloors,omitempty"`
	FloorNumber *int     `json:"floorNumber,omitempty"`
	PropertyAge *int     `json:"propertyAge,omitempty"`
	Furnishing  string   `json:"furnishing"`
	Facing      string   `json:"facing"`

	Amenities []string `json:"amenities,omitempty"`

	OwnerName   string `json:"ownerName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	ContactRole string `json:"contactRole"`

	ReraNumber    string `json:"reraNumber"`
	AvailableFrom string `json:"availableFrom"`

	Status models.ListingStatus `json:"status"`

	Media *models.MediaSet `json:"media"`

	// Dirty tracks which fields were mutated since the last successful save.
	Dirty      map[string]bool `json:"dirtyFields"`
	HasChanges bool            `json:"hasChanges"`
}

// New seeds a draft from the authoritative record, applying domain defaults
// and running legacy image migration when the record still carries the flat
// array. The caller guards against reseeding mid-session.
func New(record *models.Listing, opts Options) *Draft {
	d := &Draft{
		ListingType:       record.ListingType,
		PropertyType:      record.PropertyType,
		Title:             record.Title,
		Description:       record.Description,
		City:              record.City,
		Locality:          record.Locality,
		Pincode:           record.Pincode,
		Address:           record.Address,
		Landmark:          record.Landmark,
		Price:             record.Price,
		PriceNegotiable:   record.PriceNegotiable,
		MaintenanceCharge: record.MaintenanceCharge,
		MaintenancePeriod: record.MaintenancePeriod,
		SecurityDeposit:   record.SecurityDeposit,
		BuiltUpArea:       record.BuiltUpArea,
		CarpetArea:        record.CarpetArea,
		Bedrooms:          record.Bedrooms,
		Bathrooms:         record.Bathrooms,
		Balconies:         record.Balconies,
		TotalFloors:       record.TotalFloors,
		FloorNumber:       record.FloorNumber,
		PropertyAge:       record.PropertyAge,
		Furnishing:        record.Furnishing,
		Facing:            record.Facing,
		Amenities:         append([]string(nil), record.Amenities...),
		OwnerName:         record.OwnerName,
		PhoneNumber:       record.PhoneNumber,
		Email:             record.Email,
		ContactRole:       record.ContactRole,
		ReraNumber:        record.ReraNumber,
		AvailableFrom:     record.AvailableFrom,
		Status:            record.Status,
		Dirty:             make(map[string]bool),
	}

	// Domain defaults
	if d.Furnishing == "" {
		d.Furnishing = DefaultFurnishing
	}
	if d.MaintenancePeriod == "" {
		d.MaintenancePeriod = DefaultMaintenancePeriod
	}
	if d.Status == "" {
		d.Status = models.ListingStatusActive
	}

	// Media is structured from the moment the draft exists.
	if media.ShouldMigrate(record.Images, record.Media) {
		d.Media = media.Migrate(record.Images, record.Media, media.MigrateOptions{
			AssetBaseURL:     opts.AssetBaseURL,
			PlaceholderAsset: opts.PlaceholderAsset,
			DeletedIndices:   opts.DeletedLegacyIndices,
			RecordCreatedAt:  record.CreatedAt,
		})
	} else {
		d.Media = record.Media.Clone()
	}

	return d
}

// SetField assigns a value to the named field, coercing it to the field's
// type. Nil clears optional fields. Every successful assignment marks the
// field dirty.
func (d *Draft) SetField(name string, value interface{}) error {
	switch name {
	case FieldListingType:
		d.ListingType = toString(value)
	case FieldPropertyType:
		d.PropertyType = toString(value)
	case FieldTitle:
		d.Title = toString(value)
	case FieldDescription:
		d.Description = toString(value)
	case FieldCity:
		d.City = toString(value)
	case FieldLocality:
		d.Locality = toString(value)
	case FieldPincode:
		d.Pincode = toString(value)
	case FieldAddress:
		d.Address = toString(value)
	case FieldLandmark:
		d.Landmark = toString(value)
	case FieldPrice:
		f, err := toFloatPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.Price = f
	case FieldPriceNegotiable:
		b, err := toBoolPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.PriceNegotiable = b
	case FieldMaintenanceCharge:
		f, err := toFloatPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.MaintenanceCharge = f
	case FieldMaintenancePeriod:
		d.MaintenancePeriod = toString(value)
	case FieldSecurityDeposit:
		f, err := toFloatPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.SecurityDeposit = f
	case FieldBuiltUpArea:
		f, err := toFloatPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.BuiltUpArea = f
	case FieldCarpetArea:
		f, err := toFloatPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.CarpetArea = f
	case FieldBedrooms:
		n, err := toIntPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.Bedrooms = n
	case FieldBathrooms:
		n, err := toIntPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.Bathrooms = n
	case FieldBalconies:
		n, err := toIntPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.Balconies = n
	case FieldTotalFloors:
		n, err := toIntPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.TotalFloors = n
	case FieldFloorNumber:
		n, err := toIntPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.FloorNumber = n
	case FieldPropertyAge:
		n, err := toIntPtr(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.PropertyAge = n
	case FieldFurnishing:
		d.Furnishing = toString(value)
	case FieldFacing:
		d.Facing = toString(value)
	case FieldAmenities:
		list, err := toStringSlice(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		d.Amenities = list
	case FieldOwnerName:
		d.OwnerName = toString(value)
	case FieldPhoneNumber:
		d.PhoneNumber = toString(value)
	case FieldEmail:
		d.Email = toString(value)
	case FieldContactRole:
		d.ContactRole = toString(value)
	case FieldReraNumber:
		d.ReraNumber = toString(value)
	case FieldAvailableFrom:
		d.AvailableFrom = toString(value)
	case FieldStatus:
		d.Status = models.ListingStatus(toString(value))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	d.Dirty[name] = true
	d.HasChanges = true
	return nil
}

// ClearDirty wipes the dirty map after a successful save.
func (d *Draft) ClearDirty() {
	d.Dirty = make(map[string]bool)
	d.HasChanges = false
}

// Snapshot returns a read-only copy of the draft. Media and amenities are
// deep-copied so callers cannot mutate the live draft through it.
func (d *Draft) Snapshot() Draft {
	out := *d
	out.Media = d.Media.Clone()
	out.Amenities = append([]string(nil), d.Amenities...)
	dirty := make(map[string]bool, len(d.Dirty))
	for k, v := range d.Dirty {
		dirty[k] = v
	}
	out.Dirty = dirty
	return out
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloatPtr(value interface{}) (*float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", v)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("expected number, got %T", value)
	}
}

func toIntPtr(value interface{}) (*int, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int:
		return &v, nil
	case float64:
		n := int(v)
		return &n, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %q", v)
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", value)
	}
}

func toBoolPtr(value interface{}) (*bool, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return &v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("expected boolean, got %q", v)
		}
		return &b, nil
	default:
		return nil, fmt.Errorf("expected boolean, got %T", value)
	}
}

func toStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string array element, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("expected JSON string array: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string array, got %T", value)
	}
}

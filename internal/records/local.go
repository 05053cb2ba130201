package records

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"listing-portal/internal/database"
	"listing-portal/internal/draft"
	"listing-portal/internal/models"
	"listing-portal/internal/serializer"
)

// LocalService persists saves straight into the listing database. Uploaded
// binaries are moved into the uploads directory and the media JSON is
// rewritten to point at their served URLs.
type LocalService struct {
	db           *database.GormDB
	uploadsDir   string
	assetBaseURL string
}

// NewLocalService creates a record service backed by the local database.
func NewLocalService(db *database.GormDB, uploadsDir, assetBaseURL string) (*LocalService, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &LocalService{
		db:           db,
		uploadsDir:   uploadsDir,
		assetBaseURL: strings.TrimRight(assetBaseURL, "/"),
	}, nil
}

// Load fetches the authoritative listing record.
func (s *LocalService) Load(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.db.GetListingByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}
	return listing, nil
}

// Save applies a serialized payload to the stored listing and returns the
// updated record. Deleted legacy images are removed from the flat array,
// pending uploads are persisted to disk, and the media JSON replaces the
// stored one wholesale.
func (s *LocalService) Save(ctx context.Context, id string, payload *serializer.Payload) (*models.Listing, error) {
	listing, err := s.db.GetListingByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}

	if err := applyFields(listing, payload.Fields); err != nil {
		return nil, err
	}

	var legacyRemap map[int]int
	if raw, ok := payload.Fields["legacyImagesToDelete"]; ok && raw != "" {
		remap, err := removeLegacyImages(listing, raw)
		if err != nil {
			return nil, err
		}
		legacyRemap = remap
	}

	if raw, ok := payload.Fields["media"]; ok && raw != "" {
		var set models.MediaSet
		if err := json.Unmarshal([]byte(raw), &set); err != nil {
			return nil, fmt.Errorf("failed to decode media payload: %w", err)
		}
		if legacyRemap != nil {
			renumberLegacyIndices(&set, legacyRemap)
		}
		if err := s.persistUploads(&set, payload.Files); err != nil {
			return nil, err
		}
		listing.Media = &set
	}

	if err := s.db.SaveListing(listing); err != nil {
		return nil, fmt.Errorf("failed to save listing %s: %w", id, err)
	}

	log.Printf("[records] listing_id=%s saved locally, %d files persisted", id, len(payload.Files))
	return s.db.GetListingByID(id)
}

// applyFields copies the transport string fields back onto the record.
// Empty strings clear text fields; absent numeric keys clear their columns.
func applyFields(l *models.Listing, fields map[string]string) error {
	l.ListingType = fields[draft.FieldListingType]
	l.PropertyType = fields[draft.FieldPropertyType]
	l.Title = fields[draft.FieldTitle]
	l.Description = fields[draft.FieldDescription]
	l.City = fields[draft.FieldCity]
	l.Locality = fields[draft.FieldLocality]
	l.Pincode = fields[draft.FieldPincode]
	l.Address = fields[draft.FieldAddress]
	l.Landmark = fields[draft.FieldLandmark]
	l.MaintenancePeriod = fields[draft.FieldMaintenancePeriod]
	l.Furnishing = fields[draft.FieldFurnishing]
	l.Facing = fields[draft.FieldFacing]
	l.OwnerName = fields[draft.FieldOwnerName]
	l.PhoneNumber = fields[draft.FieldPhoneNumber]
	l.Email = fields[draft.FieldEmail]
	l.ContactRole = fields[draft.FieldContactRole]
	l.ReraNumber = fields[draft.FieldReraNumber]
	l.AvailableFrom = fields[draft.FieldAvailableFrom]

	if status, ok := fields[draft.FieldStatus]; ok && status != "" {
		l.Status = models.ListingStatus(status)
	}

	var err error
	if l.Price, err = floatField(fields, draft.FieldPrice); err != nil {
		return err
	}
	if l.MaintenanceCharge, err = floatField(fields, draft.FieldMaintenanceCharge); err != nil {
		return err
	}
	if l.SecurityDeposit, err = floatField(fields, draft.FieldSecurityDeposit); err != nil {
		return err
	}
	if l.BuiltUpArea, err = floatField(fields, draft.FieldBuiltUpArea); err != nil {
		return err
	}
	if l.CarpetArea, err = floatField(fields, draft.FieldCarpetArea); err != nil {
		return err
	}
	if l.Bedrooms, err = intField(fields, draft.FieldBedrooms); err != nil {
		return err
	}
	if l.Bathrooms, err = intField(fields, draft.FieldBathrooms); err != nil {
		return err
	}
	if l.Balconies, err = intField(fields, draft.FieldBalconies); err != nil {
		return err
	}
	if l.TotalFloors, err = intField(fields, draft.FieldTotalFloors); err != nil {
		return err
	}
	if l.FloorNumber, err = intField(fields, draft.FieldFloorNumber); err != nil {
		return err
	}
	if l.PropertyAge, err = intField(fields, draft.FieldPropertyAge); err != nil {
		return err
	}

	if raw, ok := fields[draft.FieldPriceNegotiable]; ok {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid priceNegotiable %q: %w", raw, err)
		}
		l.PriceNegotiable = &b
	} else {
		l.PriceNegotiable = nil
	}

	if raw, ok := fields[draft.FieldAmenities]; ok && raw != "" {
		var amenities models.StringList
		if err := json.Unmarshal([]byte(raw), &amenities); err != nil {
			return fmt.Errorf("failed to decode amenities: %w", err)
		}
		l.Amenities = amenities
	} else {
		l.Amenities = nil
	}

	return nil
}

func floatField(fields map[string]string, key string) (*float64, error) {
	raw, ok := fields[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &f, nil
}

func intField(fields map[string]string, key string) (*int, error) {
	raw, ok := fields[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &n, nil
}

// removeLegacyImages drops the listed indices from the flat legacy array.
// Out-of-range indices are ignored, matching how stale deletion requests
// behave when the array already shrank. The returned map translates each
// surviving entry's old index to its position in the pruned array so the
// stored media can be renumbered alongside it.
func removeLegacyImages(l *models.Listing, raw string) (map[int]int, error) {
	var indices []int
	if err := json.Unmarshal([]byte(raw), &indices); err != nil {
		return nil, fmt.Errorf("failed to decode legacy deletion set: %w", err)
	}
	if len(indices) == 0 {
		return nil, nil
	}

	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		drop[idx] = true
	}

	kept := make(models.LegacyImageList, 0, len(l.Images))
	remap := make(map[int]int, len(l.Images))
	for i, img := range l.Images {
		if drop[i] {
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, img)
	}
	sort.Ints(indices)
	log.Printf("[records] listing_id=%s removed %d legacy images %v", l.ID, len(l.Images)-len(kept), indices)
	l.Images = kept
	return remap, nil
}

// renumberLegacyIndices rewrites surviving photos' legacy indices to their
// positions in the pruned flat array. A photo whose index no longer resolves
// loses it; keeping the old number would make a later deletion target the
// wrong entry and let the pruned image migrate back in.
func renumberLegacyIndices(set *models.MediaSet, remap map[int]int) {
	for i := range set.Photos {
		item := &set.Photos[i]
		if !item.IsLegacy || item.LegacyIndex == nil {
			continue
		}
		if pos, ok := remap[*item.LegacyIndex]; ok {
			idx := pos
			item.LegacyIndex = &idx
		} else {
			item.LegacyIndex = nil
		}
	}
}

// persistUploads moves payload binaries into the uploads directory and
// rewrites the matching media item URLs to the served path.
func (s *LocalService) persistUploads(set *models.MediaSet, files []serializer.FilePart) error {
	for _, part := range files {
		bucket, err := bucketForField(part.Field)
		if err != nil {
			return err
		}

		name := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(part.FileName))
		dst := filepath.Join(s.uploadsDir, name)
		if err := copyFile(part.Path, dst); err != nil {
			return fmt.Errorf("failed to persist %s: %w", part.FileName, err)
		}
		url := s.assetBaseURL + "/uploads/" + name

		items := set.Bucket(bucket)
		for i := range items {
			if items[i].FileName == part.FileName && !items[i].IsDeleted {
				items[i].URL = url
				break
			}
		}
		set.SetBucket(bucket, items)
	}
	return nil
}

func bucketForField(field string) (models.MediaBucket, error) {
	for _, bucket := range models.MediaBuckets {
		if bucket.TransportField() == field {
			return bucket, nil
		}
	}
	return "", fmt.Errorf("unknown upload field %q", field)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

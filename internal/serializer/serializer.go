package serializer

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"

	"listing-portal/internal/draft"
	"listing-portal/internal/models"
)

// FilePart is one binary attachment of a save request. The binary stays on
// disk until the transport writes it; only metadata travels in the struct.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Path        string
}

// Payload is the transport-ready form of a draft: text fields plus ordered
// binary parts. Field names match the backend contract exactly.
type Payload struct {
	Fields map[string]string
	Files  []FilePart
}

// Serialize converts the draft into a transport payload. Scalars are
// stringified, arrays JSON-encoded, unset optionals omitted. Media is walked
// bucket by bucket: deleted entries are dropped, pending binaries become
// multipart parts (at most one per save for video and brochures), and the
// binary handle is stripped before the media JSON is built so a file is
// never duplicated inside the JSON text.
func Serialize(d *draft.Draft, legacyImagesToDelete map[int]bool) (*Payload, error) {
	p := &Payload{Fields: make(map[string]string)}

	p.Fields[draft.FieldListingType] = d.ListingType
	p.Fields[draft.FieldPropertyType] = d.PropertyType
	p.Fields[draft.FieldTitle] = d.Title
	p.Fields[draft.FieldDescription] = d.Description
	p.Fields[draft.FieldCity] = d.City
	p.Fields[draft.FieldLocality] = d.Locality
	p.Fields[draft.FieldPincode] = d.Pincode
	p.Fields[draft.FieldAddress] = d.Address
	p.Fields[draft.FieldLandmark] = d.Landmark
	p.Fields[draft.FieldMaintenancePeriod] = d.MaintenancePeriod
	p.Fields[draft.FieldFurnishing] = d.Furnishing
	p.Fields[draft.FieldFacing] = d.Facing
	p.Fields[draft.FieldOwnerName] = d.OwnerName
	p.Fields[draft.FieldPhoneNumber] = d.PhoneNumber
	p.Fields[draft.FieldEmail] = d.Email
	p.Fields[draft.FieldContactRole] = d.ContactRole
	p.Fields[draft.FieldReraNumber] = d.ReraNumber
	p.Fields[draft.FieldAvailableFrom] = d.AvailableFrom
	p.Fields[draft.FieldStatus] = string(d.Status)

	putFloat(p.Fields, draft.FieldPrice, d.Price)
	putFloat(p.Fields, draft.FieldMaintenanceCharge, d.MaintenanceCharge)
	putFloat(p.Fields, draft.FieldSecurityDeposit, d.SecurityDeposit)
	putFloat(p.Fields, draft.FieldBuiltUpArea, d.BuiltUpArea)
	putFloat(p.Fields, draft.FieldCarpetArea, d.CarpetArea)
	putInt(p.Fields, draft.FieldBedrooms, d.Bedrooms)
	putInt(p.Fields, draft.FieldBathrooms, d.Bathrooms)
	putInt(p.Fields, draft.FieldBalconies, d.Balconies)
	putInt(p.Fields, draft.FieldTotalFloors, d.TotalFloors)
	putInt(p.Fields, draft.FieldFloorNumber, d.FloorNumber)
	putInt(p.Fields, draft.FieldPropertyAge, d.PropertyAge)
	if d.PriceNegotiable != nil {
		p.Fields[draft.FieldPriceNegotiable] = strconv.FormatBool(*d.PriceNegotiable)
	}

	if d.Amenities != nil {
		data, err := json.Marshal(d.Amenities)
		if err != nil {
			return nil, fmt.Errorf("failed to encode amenities: %w", err)
		}
		p.Fields[draft.FieldAmenities] = string(data)
	}

	if len(legacyImagesToDelete) > 0 {
		indices := make([]int, 0, len(legacyImagesToDelete))
		for idx := range legacyImagesToDelete {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		data, err := json.Marshal(indices)
		if err != nil {
			return nil, fmt.Errorf("failed to encode legacy deletion set: %w", err)
		}
		p.Fields["legacyImagesToDelete"] = string(data)
	}

	mediaJSON, files, err := serializeMedia(d.Media)
	if err != nil {
		return nil, err
	}
	// The media blob is always emitted, even when no files are attached.
	p.Fields["media"] = mediaJSON
	p.Files = files

	return p, nil
}

// serializeMedia walks the four buckets, collecting binary parts and the
// cleaned media JSON.
func serializeMedia(set *models.MediaSet) (string, []FilePart, error) {
	cleaned := models.MediaSet{}
	var files []FilePart
	attached := make(map[string]bool)

	for _, bucket := range models.MediaBuckets {
		var items []models.MediaItem
		for _, item := range set.Bucket(bucket) {
			if item.IsDeleted {
				continue
			}

			if item.HasFile() {
				field := bucket.TransportField()
				if bucket.AllowsMultipleUploads() || !attached[field] {
					files = append(files, FilePart{
						Field:       field,
						FileName:    item.FileName,
						ContentType: item.FileType,
						Path:        item.FilePath,
					})
					attached[field] = true
				} else {
					// Single-file buckets: extra pending uploads are dropped,
					// not queued for a later save.
					log.Printf("[serializer] bucket=%s file=%s dropped, one %s per save", bucket, item.FileName, field)
				}
			}

			// Strip the binary handle before the item enters the JSON blob.
			item.FilePath = ""
			items = append(items, item)
		}
		cleaned.SetBucket(bucket, items)
	}

	data, err := json.Marshal(cleaned)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode media: %w", err)
	}
	return string(data), files, nil
}

func putFloat(fields map[string]string, name string, v *float64) {
	if v == nil {
		return
	}
	fields[name] = strconv.FormatFloat(*v, 'f', -1, 64)
}

func putInt(fields map[string]string, name string, v *int) {
	if v == nil {
		return
	}
	fields[name] = strconv.Itoa(*v)
}

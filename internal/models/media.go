package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MediaBucket identifies one of the four structured media sections.
type MediaBucket string

const (
	BucketPhotos     MediaBucket = "photos"
	BucketVideos     MediaBucket = "videos"
	BucketFloorplans MediaBucket = "floorplans"
	BucketBrochures  MediaBucket = "brochures"
)

// MediaBuckets lists the buckets in their fixed wire order.
var MediaBuckets = []MediaBucket{BucketPhotos, BucketVideos, BucketFloorplans, BucketBrochures}

// ParseMediaBucket validates a bucket name from a request path.
func ParseMediaBucket(name string) (MediaBucket, error) {
	for _, b := range MediaBuckets {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown media bucket: %s", name)
}

// TransportField returns the multipart field name used for binary attachments
// of this bucket. These names are fixed by the backend contract.
func (b MediaBucket) TransportField() string {
	switch b {
	case BucketPhotos:
		return "images"
	case BucketVideos:
		return "video"
	case BucketFloorplans:
		return "floorplans"
	case BucketBrochures:
		return "brochures"
	}
	return string(b)
}

// AllowsMultipleUploads reports whether more than one binary part may be
// attached for this bucket in a single save. Videos and brochures are capped
// at one per save.
func (b MediaBucket) AllowsMultipleUploads() bool {
	return b == BucketPhotos || b == BucketFloorplans
}

// MediaItem is one entry of the structured media model.
type MediaItem struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType,omitempty"`
	FileSize   int64     `json:"fileSize,omitempty"`
	URL        string    `json:"url"`
	IsCover    bool      `json:"isCover"`
	SortOrder  int       `json:"sortOrder"`
	UploadDate time.Time `json:"uploadDate"`
	ImageType  string    `json:"imageType,omitempty"`
	IsLegacy   bool      `json:"isLegacy"`
	IsDeleted  bool      `json:"isDeleted"`
	IsError    bool      `json:"isError,omitempty"`

	// LegacyIndex is the position of the source entry in the original flat
	// image array. Only set on migrated items; the deletion set is keyed by
	// this index because the structured array alone cannot recover it.
	LegacyIndex *int `json:"legacyIndex,omitempty"`

	// FilePath points at the session-scoped temp file holding a not-yet-
	// persisted upload. It is the binary handle: never serialized into the
	// media JSON, released when the session closes or the item is removed.
	FilePath string `json:"-"`
}

// HasFile reports whether the item carries a pending binary upload.
func (m *MediaItem) HasFile() bool {
	return m.FilePath != ""
}

// MediaSet is the four-bucket structured media model, stored as one JSON text
// column on the listing record.
type MediaSet struct {
	Photos     []MediaItem `json:"photos"`
	Videos     []MediaItem `json:"videos"`
	Floorplans []MediaItem `json:"floorplans"`
	Brochures  []MediaItem `json:"brochures"`
}

// Bucket returns the items of the named bucket.
func (m *MediaSet) Bucket(b MediaBucket) []MediaItem {
	switch b {
	case BucketPhotos:
		return m.Photos
	case BucketVideos:
		return m.Videos
	case BucketFloorplans:
		return m.Floorplans
	case BucketBrochures:
		return m.Brochures
	}
	return nil
}

// SetBucket replaces the items of the named bucket.
func (m *MediaSet) SetBucket(b MediaBucket, items []MediaItem) {
	switch b {
	case BucketPhotos:
		m.Photos = items
	case BucketVideos:
		m.Videos = items
	case BucketFloorplans:
		m.Floorplans = items
	case BucketBrochures:
		m.Brochures = items
	}
}

// IsEmpty reports whether no bucket has any surviving (non-deleted) item.
func (m *MediaSet) IsEmpty() bool {
	if m == nil {
		return true
	}
	for _, b := range MediaBuckets {
		for _, item := range m.Bucket(b) {
			if !item.IsDeleted {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy. Drafts always work on a copy so the source
// record is never mutated in place.
func (m *MediaSet) Clone() *MediaSet {
	if m == nil {
		return &MediaSet{}
	}
	out := &MediaSet{}
	for _, b := range MediaBuckets {
		src := m.Bucket(b)
		if len(src) == 0 {
			continue
		}
		items := make([]MediaItem, len(src))
		copy(items, src)
		out.SetBucket(b, items)
	}
	return out
}

// Scan implements sql.Scanner.
func (m *MediaSet) Scan(value interface{}) error {
	if value == nil {
		*m = MediaSet{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for media set: %T", value)
	}

	if len(data) == 0 {
		*m = MediaSet{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Value implements driver.Valuer.
func (m MediaSet) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

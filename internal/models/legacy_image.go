package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LegacyImage is one entry of the flat image array that predates the
// structured media model. Entries arrive in two shapes: a bare URL string, or
// an object carrying size variants. RawURL is set only for the string form.
type LegacyImage struct {
	RawURL    string `json:"-"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Medium    string `json:"medium,omitempty"`
	Optimized string `json:"optimized,omitempty"`
}

// UnmarshalJSON accepts both the string form and the object form.
func (li *LegacyImage) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &li.RawURL)
	}

	type variants struct {
		Thumbnail string `json:"thumbnail"`
		Medium    string `json:"medium"`
		Optimized string `json:"optimized"`
	}
	var v variants
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to parse legacy image entry: %w", err)
	}
	li.Thumbnail = v.Thumbnail
	li.Medium = v.Medium
	li.Optimized = v.Optimized
	return nil
}

// MarshalJSON writes the entry back in the shape it arrived in.
func (li LegacyImage) MarshalJSON() ([]byte, error) {
	if li.RawURL != "" {
		return json.Marshal(li.RawURL)
	}
	type variants struct {
		Thumbnail string `json:"thumbnail,omitempty"`
		Medium    string `json:"medium,omitempty"`
		Optimized string `json:"optimized,omitempty"`
	}
	return json.Marshal(variants{
		Thumbnail: li.Thumbnail,
		Medium:    li.Medium,
		Optimized: li.Optimized,
	})
}

// Resolve picks the best usable URL for the entry. Object entries prefer the
// optimized variant, then medium, then thumbnail. Returns "" when nothing is
// usable.
func (li LegacyImage) Resolve() string {
	if li.RawURL != "" {
		return li.RawURL
	}
	if li.Optimized != "" {
		return li.Optimized
	}
	if li.Medium != "" {
		return li.Medium
	}
	return li.Thumbnail
}

// LegacyImageList is stored as a JSON text column.
type LegacyImageList []LegacyImage

// Scan implements sql.Scanner.
func (l *LegacyImageList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for legacy image list: %T", value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Value implements driver.Valuer.
func (l LegacyImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

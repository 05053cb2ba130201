package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"listing-portal/internal/models"
)

func TestPhotoCount(t *testing.T) {
	legacyOnly := &models.Listing{
		Images: models.LegacyImageList{{RawURL: "a.jpg"}, {RawURL: "b.jpg"}},
	}
	assert.Equal(t, 2, photoCount(legacyOnly))

	structured := &models.Listing{
		Images: models.LegacyImageList{{RawURL: "a.jpg"}},
		Media: &models.MediaSet{Photos: []models.MediaItem{
			{ID: "p1"},
			{ID: "p2", IsDeleted: true},
			{ID: "p3"},
		}},
	}
	assert.Equal(t, 2, photoCount(structured), "structured media wins and deleted items do not count")

	allDeleted := &models.Listing{
		Images: models.LegacyImageList{{RawURL: "a.jpg"}},
		Media:  &models.MediaSet{Photos: []models.MediaItem{{ID: "p1", IsDeleted: true}}},
	}
	assert.Equal(t, 0, photoCount(allDeleted), "a migrated record never falls back to the legacy array")

	empty := &models.Listing{Media: &models.MediaSet{}}
	assert.Equal(t, 0, photoCount(empty))
}

func TestFloat64PtrEqual(t *testing.T) {
	a, b := 42.0, 42.0
	c := 43.0

	assert.True(t, float64PtrEqual(nil, nil))
	assert.True(t, float64PtrEqual(&a, &b))
	assert.False(t, float64PtrEqual(&a, &c))
	assert.False(t, float64PtrEqual(&a, nil))
	assert.False(t, float64PtrEqual(nil, &a))
}

package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-portal/internal/models"
)

func sampleRecord() *models.Listing {
	price := 45000.0
	return &models.Listing{
		ID:          "listing-1",
		ListingType: "rent",
		Title:       "2BHK near the station",
		City:        "Mumbai",
		Locality:    "Andheri West",
		Price:       &price,
		Amenities:   models.StringList{"lift", "parking"},
		Status:      models.ListingStatusActive,
		Images: models.LegacyImageList{
			{RawURL: "https://img.example.com/a.jpg"},
			{RawURL: "https://img.example.com/b.jpg"},
		},
	}
}

func TestNewAppliesDomainDefaults(t *testing.T) {
	d := New(&models.Listing{ID: "x"}, Options{})

	assert.Equal(t, DefaultFurnishing, d.Furnishing)
	assert.Equal(t, DefaultMaintenancePeriod, d.MaintenancePeriod)
	assert.Equal(t, models.ListingStatusActive, d.Status)
	assert.NotNil(t, d.Media, "media is structured from the moment the draft exists")
	assert.False(t, d.HasChanges)
	assert.Empty(t, d.Dirty)
}

func TestNewKeepsExplicitValues(t *testing.T) {
	d := New(&models.Listing{
		Furnishing:        "furnished",
		MaintenancePeriod: "yearly",
		Status:            models.ListingStatusSold,
	}, Options{})

	assert.Equal(t, "furnished", d.Furnishing)
	assert.Equal(t, "yearly", d.MaintenancePeriod)
	assert.Equal(t, models.ListingStatusSold, d.Status)
}

func TestNewMigratesLegacyImages(t *testing.T) {
	d := New(sampleRecord(), Options{AssetBaseURL: "https://assets.example.com"})

	require.Len(t, d.Media.Photos, 2)
	assert.True(t, d.Media.Photos[0].IsLegacy)
	assert.True(t, d.Media.Photos[0].IsCover)
}

func TestNewExcludesDeletedLegacyIndicesOnReseed(t *testing.T) {
	d := New(sampleRecord(), Options{
		DeletedLegacyIndices: map[int]bool{0: true},
	})

	require.Len(t, d.Media.Photos, 1)
	require.NotNil(t, d.Media.Photos[0].LegacyIndex)
	assert.Equal(t, 1, *d.Media.Photos[0].LegacyIndex)
}

func TestNewDoesNotAliasRecordState(t *testing.T) {
	record := sampleRecord()
	record.Media = &models.MediaSet{Photos: []models.MediaItem{{ID: "p1"}}}
	record.Images = nil

	d := New(record, Options{})
	d.Media.Photos[0].IsCover = true
	d.Amenities[0] = "changed"

	assert.False(t, record.Media.Photos[0].IsCover)
	assert.Equal(t, "lift", record.Amenities[0])
}

func TestSetFieldStrings(t *testing.T) {
	d := New(sampleRecord(), Options{})

	require.NoError(t, d.SetField(FieldTitle, "Updated title"))
	assert.Equal(t, "Updated title", d.Title)
	assert.True(t, d.Dirty[FieldTitle])
	assert.True(t, d.HasChanges)
}

func TestSetFieldNumericCoercion(t *testing.T) {
	d := New(sampleRecord(), Options{})

	require.NoError(t, d.SetField(FieldPrice, "52000"))
	require.NotNil(t, d.Price)
	assert.Equal(t, 52000.0, *d.Price)

	require.NoError(t, d.SetField(FieldBedrooms, float64(3)))
	require.NotNil(t, d.Bedrooms)
	assert.Equal(t, 3, *d.Bedrooms)

	require.NoError(t, d.SetField(FieldPriceNegotiable, "true"))
	require.NotNil(t, d.PriceNegotiable)
	assert.True(t, *d.PriceNegotiable)
}

func TestSetFieldNilClearsOptionals(t *testing.T) {
	d := New(sampleRecord(), Options{})
	require.NotNil(t, d.Price)

	require.NoError(t, d.SetField(FieldPrice, nil))
	assert.Nil(t, d.Price)
	assert.True(t, d.Dirty[FieldPrice])

	// Whitespace strings clear too
	require.NoError(t, d.SetField(FieldBedrooms, "  "))
	assert.Nil(t, d.Bedrooms)
}

func TestSetFieldAmenities(t *testing.T) {
	d := New(sampleRecord(), Options{})

	require.NoError(t, d.SetField(FieldAmenities, []interface{}{"gym", "pool"}))
	assert.Equal(t, []string{"gym", "pool"}, d.Amenities)

	require.NoError(t, d.SetField(FieldAmenities, `["lift"]`))
	assert.Equal(t, []string{"lift"}, d.Amenities)

	assert.Error(t, d.SetField(FieldAmenities, []interface{}{"ok", 7}))
}

func TestSetFieldBadValueDoesNotDirty(t *testing.T) {
	d := New(sampleRecord(), Options{})

	err := d.SetField(FieldPrice, "not-a-number")
	require.Error(t, err)
	assert.False(t, d.Dirty[FieldPrice])
	assert.False(t, d.HasChanges)
	require.NotNil(t, d.Price)
	assert.Equal(t, 45000.0, *d.Price, "old value survives a failed assignment")
}

func TestSetFieldUnknownField(t *testing.T) {
	d := New(sampleRecord(), Options{})
	err := d.SetField("notAField", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestClearDirty(t *testing.T) {
	d := New(sampleRecord(), Options{})
	require.NoError(t, d.SetField(FieldTitle, "x"))

	d.ClearDirty()
	assert.Empty(t, d.Dirty)
	assert.False(t, d.HasChanges)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	d := New(sampleRecord(), Options{})
	require.NoError(t, d.SetField(FieldTitle, "x"))

	snap := d.Snapshot()
	snap.Media.Photos[0].IsDeleted = true
	snap.Amenities[0] = "changed"
	snap.Dirty["injected"] = true

	assert.False(t, d.Media.Photos[0].IsDeleted)
	assert.Equal(t, "lift", d.Amenities[0])
	assert.False(t, d.Dirty["injected"])
}

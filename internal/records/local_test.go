package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-portal/internal/draft"
	"listing-portal/internal/models"
)

func savedFields() map[string]string {
	return map[string]string{
		draft.FieldListingType:  "rent",
		draft.FieldPropertyType: "apartment",
		draft.FieldTitle:        "Updated title",
		draft.FieldCity:         "Mumbai",
		draft.FieldLocality:     "Andheri West",
		draft.FieldFurnishing:   "furnished",
		draft.FieldOwnerName:    "R. Mehta",
		draft.FieldPhoneNumber:  "+91-9820000001",
		draft.FieldStatus:       "active",
		draft.FieldPrice:        "52000",
		draft.FieldBedrooms:     "2",
		draft.FieldAmenities:    `["lift","parking"]`,
	}
}

func TestApplyFields(t *testing.T) {
	listing := &models.Listing{ID: "listing-1", Title: "Old"}

	require.NoError(t, applyFields(listing, savedFields()))

	assert.Equal(t, "Updated title", listing.Title)
	assert.Equal(t, "Mumbai", listing.City)
	assert.Equal(t, models.ListingStatusActive, listing.Status)
	require.NotNil(t, listing.Price)
	assert.Equal(t, 52000.0, *listing.Price)
	require.NotNil(t, listing.Bedrooms)
	assert.Equal(t, 2, *listing.Bedrooms)
	assert.Equal(t, models.StringList{"lift", "parking"}, listing.Amenities)
}

func TestApplyFieldsAbsentKeysClearColumns(t *testing.T) {
	price := 45000.0
	negotiable := true
	listing := &models.Listing{
		ID:              "listing-1",
		Price:           &price,
		PriceNegotiable: &negotiable,
		Amenities:       models.StringList{"lift"},
	}

	fields := savedFields()
	delete(fields, draft.FieldPrice)
	delete(fields, draft.FieldAmenities)

	require.NoError(t, applyFields(listing, fields))
	assert.Nil(t, listing.Price, "omitted optional clears the column")
	assert.Nil(t, listing.PriceNegotiable)
	assert.Nil(t, listing.Amenities)
}

func TestApplyFieldsKeepsStatusWhenAbsent(t *testing.T) {
	listing := &models.Listing{ID: "listing-1", Status: models.ListingStatusSold}

	fields := savedFields()
	delete(fields, draft.FieldStatus)

	require.NoError(t, applyFields(listing, fields))
	assert.Equal(t, models.ListingStatusSold, listing.Status)
}

func TestApplyFieldsBadNumbers(t *testing.T) {
	fields := savedFields()
	fields[draft.FieldPrice] = "lots"
	assert.Error(t, applyFields(&models.Listing{}, fields))

	fields = savedFields()
	fields[draft.FieldBedrooms] = "two"
	assert.Error(t, applyFields(&models.Listing{}, fields))

	fields = savedFields()
	fields[draft.FieldPriceNegotiable] = "maybe"
	assert.Error(t, applyFields(&models.Listing{}, fields))
}

func TestRemoveLegacyImages(t *testing.T) {
	listing := &models.Listing{
		ID: "listing-1",
		Images: models.LegacyImageList{
			{RawURL: "https://img.example.com/a.jpg"},
			{RawURL: "https://img.example.com/b.jpg"},
			{RawURL: "https://img.example.com/c.jpg"},
		},
	}

	remap, err := removeLegacyImages(listing, "[0,2]")
	require.NoError(t, err)
	require.Len(t, listing.Images, 1)
	assert.Equal(t, "https://img.example.com/b.jpg", listing.Images[0].RawURL)
	assert.Equal(t, map[int]int{1: 0}, remap)
}

func TestRemoveLegacyImagesIgnoresOutOfRange(t *testing.T) {
	listing := &models.Listing{
		ID:     "listing-1",
		Images: models.LegacyImageList{{RawURL: "https://img.example.com/a.jpg"}},
	}

	// A stale deletion request may reference indices the array no longer has
	_, err := removeLegacyImages(listing, "[0,7]")
	require.NoError(t, err)
	assert.Empty(t, listing.Images)
}

func TestRemoveLegacyImagesBadPayload(t *testing.T) {
	_, err := removeLegacyImages(&models.Listing{}, "not-json")
	assert.Error(t, err)
}

func TestRenumberLegacyIndicesAfterPrune(t *testing.T) {
	listing := &models.Listing{
		ID: "listing-1",
		Images: models.LegacyImageList{
			{RawURL: "https://img.example.com/a.jpg"},
			{RawURL: "https://img.example.com/b.jpg"},
			{RawURL: "https://img.example.com/c.jpg"},
		},
	}

	remap, err := removeLegacyImages(listing, "[1]")
	require.NoError(t, err)

	zero, two := 0, 2
	set := &models.MediaSet{Photos: []models.MediaItem{
		{ID: "legacy-0", IsLegacy: true, LegacyIndex: &zero},
		{ID: "legacy-2", IsLegacy: true, LegacyIndex: &two},
		{ID: "new-1"},
	}}
	renumberLegacyIndices(set, remap)

	require.NotNil(t, set.Photos[0].LegacyIndex)
	assert.Equal(t, 0, *set.Photos[0].LegacyIndex)
	require.NotNil(t, set.Photos[1].LegacyIndex)
	assert.Equal(t, 1, *set.Photos[1].LegacyIndex)
	assert.Nil(t, set.Photos[2].LegacyIndex)
}

func TestRenumberLegacyIndicesClearsUnresolvable(t *testing.T) {
	listing := &models.Listing{
		ID:     "listing-1",
		Images: models.LegacyImageList{{RawURL: "https://img.example.com/a.jpg"}},
	}

	remap, err := removeLegacyImages(listing, "[3]")
	require.NoError(t, err)

	seven := 7
	set := &models.MediaSet{Photos: []models.MediaItem{
		{ID: "legacy-7", IsLegacy: true, LegacyIndex: &seven},
	}}
	renumberLegacyIndices(set, remap)
	assert.Nil(t, set.Photos[0].LegacyIndex)
}

// A record saved after a legacy deletion keeps renumbered indices, so a
// later session deleting a surviving photo prunes the right flat entry and
// the deleted image cannot migrate back in.
func TestPrunedRecordDoesNotResurrectDeletedPhoto(t *testing.T) {
	listing := &models.Listing{
		ID: "listing-1",
		Images: models.LegacyImageList{
			{RawURL: "https://img.example.com/a.jpg"},
			{RawURL: "https://img.example.com/b.jpg"},
		},
	}

	// First session deletes flat index 0 and saves.
	remap, err := removeLegacyImages(listing, "[0]")
	require.NoError(t, err)

	one := 1
	stored := &models.MediaSet{Photos: []models.MediaItem{{
		ID:          "legacy-1",
		FileName:    "b.jpg",
		URL:         "https://img.example.com/b.jpg",
		IsLegacy:    true,
		IsCover:     true,
		LegacyIndex: &one,
	}}}
	renumberLegacyIndices(stored, remap)
	listing.Media = stored

	require.NotNil(t, stored.Photos[0].LegacyIndex)
	assert.Equal(t, 0, *stored.Photos[0].LegacyIndex, "survivor keys its new flat position")

	// Second session deletes the survivor by its stored index. The prune
	// empties the flat array instead of missing out of range.
	_, err = removeLegacyImages(listing, "[0]")
	require.NoError(t, err)
	assert.Empty(t, listing.Images)

	listing.Media = &models.MediaSet{}
	d := draft.New(listing, draft.Options{})
	assert.Empty(t, d.Media.Photos, "no legacy source left to migrate back")
}

func TestBucketForField(t *testing.T) {
	cases := map[string]models.MediaBucket{
		"images":     models.BucketPhotos,
		"video":      models.BucketVideos,
		"floorplans": models.BucketFloorplans,
		"brochures":  models.BucketBrochures,
	}
	for field, want := range cases {
		got, err := bucketForField(field)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := bucketForField("attachments")
	assert.Error(t, err)
}

package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-portal/internal/models"
)

func photoSet(ids ...string) *models.MediaSet {
	set := &models.MediaSet{}
	for i, id := range ids {
		set.Photos = append(set.Photos, models.MediaItem{
			ID:        id,
			IsCover:   i == 0,
			SortOrder: i,
		})
	}
	return set
}

func TestSetCover(t *testing.T) {
	set := photoSet("a", "b", "c")

	require.NoError(t, SetCover(set, models.BucketPhotos, "c"))
	assert.False(t, set.Photos[0].IsCover)
	assert.False(t, set.Photos[1].IsCover)
	assert.True(t, set.Photos[2].IsCover)

	// Idempotent on the same item
	require.NoError(t, SetCover(set, models.BucketPhotos, "c"))
	covers := 0
	for _, p := range set.Photos {
		if p.IsCover {
			covers++
		}
	}
	assert.Equal(t, 1, covers)
}

func TestSetCoverUnknownItem(t *testing.T) {
	set := photoSet("a")
	err := SetCover(set, models.BucketPhotos, "missing")
	assert.ErrorContains(t, err, "not found")
	assert.True(t, set.Photos[0].IsCover, "existing cover untouched on failure")
}

func TestSetCoverRejectsDeletedItem(t *testing.T) {
	idx := 0
	set := &models.MediaSet{Photos: []models.MediaItem{
		{ID: "legacy-0", IsLegacy: true, IsDeleted: true, LegacyIndex: &idx, SortOrder: 1},
		{ID: "fresh", IsCover: true},
	}}

	err := SetCover(set, models.BucketPhotos, "legacy-0")
	assert.ErrorContains(t, err, "deleted")
	assert.True(t, set.Photos[1].IsCover, "live cover untouched on failure")
}

func TestReorder(t *testing.T) {
	set := photoSet("a", "b", "c")

	require.NoError(t, Reorder(set, models.BucketPhotos, []string{"c", "a", "b"}))
	assert.Equal(t, "c", set.Photos[0].ID)
	assert.Equal(t, "a", set.Photos[1].ID)
	assert.Equal(t, "b", set.Photos[2].ID)
	for i, p := range set.Photos {
		assert.Equal(t, i, p.SortOrder)
	}
}

func TestReorderPartialKeepsRemainderAtEnd(t *testing.T) {
	set := photoSet("a", "b", "c", "d")

	require.NoError(t, Reorder(set, models.BucketPhotos, []string{"d", "b"}))
	ids := []string{set.Photos[0].ID, set.Photos[1].ID, set.Photos[2].ID, set.Photos[3].ID}
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
}

func TestReorderRejectsUnknownAndDuplicateIDs(t *testing.T) {
	set := photoSet("a", "b")
	assert.ErrorContains(t, Reorder(set, models.BucketPhotos, []string{"a", "x"}), "not found")
	assert.ErrorContains(t, Reorder(set, models.BucketPhotos, []string{"a", "a"}), "duplicate")
}

func TestRemoveNewItem(t *testing.T) {
	set := photoSet("a", "b", "c")

	legacyIndex, err := Remove(set, models.BucketPhotos, "a")
	require.NoError(t, err)
	assert.Nil(t, legacyIndex)

	require.Len(t, set.Photos, 2)
	assert.Equal(t, "b", set.Photos[0].ID)
	assert.True(t, set.Photos[0].IsCover, "cover moves to the first survivor")
	assert.Equal(t, 0, set.Photos[0].SortOrder)
	assert.Equal(t, 1, set.Photos[1].SortOrder)
}

func TestRemoveLegacyItemSoftDeletes(t *testing.T) {
	idx0, idx1 := 0, 1
	set := &models.MediaSet{Photos: []models.MediaItem{
		{ID: "legacy-0", IsCover: true, IsLegacy: true, LegacyIndex: &idx0},
		{ID: "legacy-1", IsLegacy: true, LegacyIndex: &idx1, SortOrder: 1},
	}}

	legacyIndex, err := Remove(set, models.BucketPhotos, "legacy-0")
	require.NoError(t, err)
	require.NotNil(t, legacyIndex)
	assert.Equal(t, 0, *legacyIndex)

	// Soft-deleted in place so the save can still report it
	require.Len(t, set.Photos, 2)
	assert.True(t, set.Photos[0].IsDeleted)
	assert.False(t, set.Photos[0].IsCover)

	// Survivor takes the cover and sort order 0; the deleted entry is parked after
	assert.True(t, set.Photos[1].IsCover)
	assert.Equal(t, 0, set.Photos[1].SortOrder)
	assert.Equal(t, 1, set.Photos[0].SortOrder)
}

func TestRemoveUnknownItem(t *testing.T) {
	set := photoSet("a")
	_, err := Remove(set, models.BucketPhotos, "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestAddFirstItemBecomesCover(t *testing.T) {
	set := &models.MediaSet{}

	Add(set, models.BucketPhotos, models.MediaItem{ID: "a"})
	Add(set, models.BucketPhotos, models.MediaItem{ID: "b"})

	require.Len(t, set.Photos, 2)
	assert.True(t, set.Photos[0].IsCover)
	assert.False(t, set.Photos[1].IsCover)
	assert.Equal(t, 0, set.Photos[0].SortOrder)
	assert.Equal(t, 1, set.Photos[1].SortOrder)
}

func TestAddAfterCoverDeleted(t *testing.T) {
	idx := 0
	set := &models.MediaSet{Photos: []models.MediaItem{
		{ID: "legacy-0", IsLegacy: true, IsDeleted: true, LegacyIndex: &idx},
	}}

	Add(set, models.BucketPhotos, models.MediaItem{ID: "fresh"})
	require.Len(t, set.Photos, 2)
	assert.True(t, set.Photos[1].IsCover, "no live cover existed, the new item takes it")
	assert.Equal(t, 0, set.Photos[1].SortOrder)
}

func TestAddToSingleFileBuckets(t *testing.T) {
	set := &models.MediaSet{}
	Add(set, models.BucketVideos, models.MediaItem{ID: "v1"})
	Add(set, models.BucketBrochures, models.MediaItem{ID: "b1"})

	require.Len(t, set.Videos, 1)
	require.Len(t, set.Brochures, 1)
	assert.True(t, set.Videos[0].IsCover)
	assert.True(t, set.Brochures[0].IsCover)
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaBucket(t *testing.T) {
	for _, name := range []string{"photos", "videos", "floorplans", "brochures"} {
		b, err := ParseMediaBucket(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(b))
	}

	_, err := ParseMediaBucket("attachments")
	assert.ErrorContains(t, err, "unknown media bucket")
}

func TestBucketUploadRules(t *testing.T) {
	assert.True(t, BucketPhotos.AllowsMultipleUploads())
	assert.True(t, BucketFloorplans.AllowsMultipleUploads())
	assert.False(t, BucketVideos.AllowsMultipleUploads())
	assert.False(t, BucketBrochures.AllowsMultipleUploads())

	assert.Equal(t, "images", BucketPhotos.TransportField())
	assert.Equal(t, "video", BucketVideos.TransportField())
}

func TestMediaSetClone(t *testing.T) {
	var nilSet *MediaSet
	clone := nilSet.Clone()
	require.NotNil(t, clone, "cloning nil yields an empty usable set")

	src := &MediaSet{Photos: []MediaItem{{ID: "p1"}}}
	clone = src.Clone()
	clone.Photos[0].IsDeleted = true
	assert.False(t, src.Photos[0].IsDeleted)
}

func TestMediaSetIsEmpty(t *testing.T) {
	var nilSet *MediaSet
	assert.True(t, nilSet.IsEmpty())
	assert.True(t, (&MediaSet{}).IsEmpty())

	deleted := &MediaSet{Photos: []MediaItem{{ID: "p1", IsDeleted: true}}}
	assert.True(t, deleted.IsEmpty(), "soft-deleted items do not count")

	live := &MediaSet{Brochures: []MediaItem{{ID: "b1"}}}
	assert.False(t, live.IsEmpty())
}

func TestMediaItemFilePathNeverSerialized(t *testing.T) {
	item := MediaItem{ID: "p1", FileName: "a.jpg", FilePath: "/tmp/secret/a.jpg"}
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "/tmp/secret")
}

func TestLegacyImageBothWireShapes(t *testing.T) {
	raw := `["https://img.example.com/a.jpg",{"thumbnail":"t.jpg","optimized":"o.jpg"}]`

	var list LegacyImageList
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	require.Len(t, list, 2)

	assert.Equal(t, "https://img.example.com/a.jpg", list[0].Resolve())
	assert.Equal(t, "o.jpg", list[1].Resolve(), "optimized variant preferred")

	// Round-trips in the shape each entry arrived in
	out, err := json.Marshal(list)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"https://img.example.com/a.jpg"`)
	assert.Contains(t, string(out), `"optimized":"o.jpg"`)
}

func TestLegacyImageResolveOrder(t *testing.T) {
	assert.Equal(t, "o", LegacyImage{Optimized: "o", Medium: "m", Thumbnail: "t"}.Resolve())
	assert.Equal(t, "m", LegacyImage{Medium: "m", Thumbnail: "t"}.Resolve())
	assert.Equal(t, "t", LegacyImage{Thumbnail: "t"}.Resolve())
	assert.Equal(t, "", LegacyImage{}.Resolve())
}

func TestMediaSetScanValueRoundTrip(t *testing.T) {
	src := MediaSet{Photos: []MediaItem{{ID: "p1", FileName: "a.jpg", IsCover: true}}}

	val, err := src.Value()
	require.NoError(t, err)

	var dst MediaSet
	require.NoError(t, dst.Scan(val))
	require.Len(t, dst.Photos, 1)
	assert.Equal(t, "p1", dst.Photos[0].ID)

	var fromNil MediaSet
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsEmpty())
}

package media

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"listing-portal/internal/models"
)

// MigrateOptions carries the environment the migration needs.
type MigrateOptions struct {
	// AssetBaseURL is prefixed onto relative image URLs so they render
	// directly.
	AssetBaseURL string
	// PlaceholderAsset is the path served for entries whose URL cannot be
	// resolved.
	PlaceholderAsset string
	// DeletedIndices are original flat-array positions the user already
	// removed this session. Matching entries are skipped so they do not
	// reappear after a save refresh.
	DeletedIndices map[int]bool
	// RecordCreatedAt seeds uploadDate for migrated items; zero means now.
	RecordCreatedAt time.Time
}

// ShouldMigrate reports whether the legacy flat image array needs converting
// into the structured media model. Migration runs only when the photos bucket
// is empty or absent, legacy images exist, and no photo already carries the
// legacy marker. The marker check guards against re-migrating after a partial
// edit already produced legacy-derived entries.
func ShouldMigrate(legacy models.LegacyImageList, existing *models.MediaSet) bool {
	if len(legacy) == 0 {
		return false
	}
	if existing == nil {
		return true
	}
	for _, p := range existing.Photos {
		if p.IsLegacy {
			return false
		}
	}
	return len(existing.Photos) == 0
}

// Migrate converts the legacy flat image array into the structured media
// model. It is a no-op (the existing set is returned unchanged) when
// ShouldMigrate is false. Malformed entries never abort the migration; they
// degrade to an error placeholder item so the rest of the array survives.
func Migrate(legacy models.LegacyImageList, existing *models.MediaSet, opts MigrateOptions) *models.MediaSet {
	if !ShouldMigrate(legacy, existing) {
		return existing
	}

	uploadDate := opts.RecordCreatedAt
	if uploadDate.IsZero() {
		uploadDate = time.Now()
	}

	photos := make([]models.MediaItem, 0, len(legacy))
	pos := 0
	for i, entry := range legacy {
		if opts.DeletedIndices[i] {
			continue
		}

		idx := i
		item := models.MediaItem{
			ID:          fmt.Sprintf("legacy-%d", i),
			IsCover:     pos == 0,
			SortOrder:   pos,
			IsLegacy:    true,
			ImageType:   "photo",
			UploadDate:  uploadDate,
			LegacyIndex: &idx,
		}

		resolved := entry.Resolve()
		if resolved == "" {
			// Unresolvable entry: degrade to a visible placeholder instead of
			// failing the whole migration.
			item.IsError = true
			item.URL = joinAssetURL(opts.AssetBaseURL, opts.PlaceholderAsset)
			item.FileName = fmt.Sprintf("image_%d.webp", i+1)
		} else {
			item.URL = absoluteURL(resolved, opts.AssetBaseURL)
			item.FileName = fileNameFromURL(resolved, i)
		}

		photos = append(photos, item)
		pos++
	}

	out := existing.Clone()
	out.Photos = photos
	return out
}

// fileNameFromURL derives a file name from the URL's last path segment, or
// synthesizes one when the URL has no usable segment.
func fileNameFromURL(rawURL string, index int) string {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return fmt.Sprintf("image_%d.webp", index+1)
	}
	return trimmed
}

// absoluteURL prefixes relative URLs with the configured asset base.
func absoluteURL(rawURL, assetBase string) string {
	if u, err := url.Parse(rawURL); err == nil && u.IsAbs() {
		return rawURL
	}
	return joinAssetURL(assetBase, rawURL)
}

func joinAssetURL(base, path string) string {
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

package media

import (
	"fmt"

	"listing-portal/internal/models"
)

// SetCover marks the item with the given ID as the bucket's cover and clears
// the flag on every sibling. At most one cover exists per bucket; calling
// twice on the same item is a no-op.
func SetCover(set *models.MediaSet, bucket models.MediaBucket, id string) error {
	items := set.Bucket(bucket)
	found := false
	for i := range items {
		if items[i].ID == id {
			if items[i].IsDeleted {
				return fmt.Errorf("media item %s in %s is deleted", id, bucket)
			}
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("media item %s not found in %s", id, bucket)
	}

	for i := range items {
		items[i].IsCover = items[i].ID == id
	}
	set.SetBucket(bucket, items)
	return nil
}

// Reorder rearranges a bucket to match the given ID order and renumbers every
// item to a dense 0..n-1 sortOrder. IDs missing from the order keep their
// relative position at the end.
func Reorder(set *models.MediaSet, bucket models.MediaBucket, orderedIDs []string) error {
	items := set.Bucket(bucket)
	byID := make(map[string]models.MediaItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	reordered := make([]models.MediaItem, 0, len(items))
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		item, ok := byID[id]
		if !ok {
			return fmt.Errorf("media item %s not found in %s", id, bucket)
		}
		if seen[id] {
			return fmt.Errorf("duplicate media item %s in reorder request", id)
		}
		seen[id] = true
		reordered = append(reordered, item)
	}

	// Items the request omitted keep their relative order at the end.
	for _, item := range items {
		if !seen[item.ID] {
			reordered = append(reordered, item)
		}
	}

	renumber(reordered)
	set.SetBucket(bucket, reordered)
	return nil
}

// Remove deletes the item with the given ID from the bucket. Legacy items are
// soft-deleted in place (they must survive in the array so the save can
// report them); new items are removed outright. The returned legacy index is
// non-nil when a legacy item was removed, so the caller can record it in the
// session's deletion set.
func Remove(set *models.MediaSet, bucket models.MediaBucket, id string) (*int, error) {
	items := set.Bucket(bucket)
	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("media item %s not found in %s", id, bucket)
	}

	var legacyIndex *int
	wasCover := items[idx].IsCover

	if items[idx].IsLegacy {
		items[idx].IsDeleted = true
		items[idx].IsCover = false
		legacyIndex = items[idx].LegacyIndex
	} else {
		items = append(items[:idx], items[idx+1:]...)
	}

	renumber(items)

	// Reassign the cover to the first surviving item when the deleted one
	// held it.
	if wasCover {
		for i := range items {
			if !items[i].IsDeleted {
				items[i].IsCover = true
				break
			}
		}
	}

	set.SetBucket(bucket, items)
	return legacyIndex, nil
}

// Add appends a new item to the bucket with the next sort order. The first
// surviving item of a bucket becomes its cover.
func Add(set *models.MediaSet, bucket models.MediaBucket, item models.MediaItem) {
	items := set.Bucket(bucket)

	hasCover := false
	for _, existing := range items {
		if !existing.IsDeleted && existing.IsCover {
			hasCover = true
			break
		}
	}
	item.IsCover = !hasCover

	items = append(items, item)
	renumber(items)
	set.SetBucket(bucket, items)
}

// renumber assigns a dense 0..n-1 sortOrder over surviving items. Deleted
// legacy items are parked after the live ones.
func renumber(items []models.MediaItem) {
	next := 0
	for i := range items {
		if items[i].IsDeleted {
			continue
		}
		items[i].SortOrder = next
		next++
	}
	for i := range items {
		if items[i].IsDeleted {
			items[i].SortOrder = next
			next++
		}
	}
}

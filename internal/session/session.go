package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"listing-portal/internal/draft"
	"listing-portal/internal/media"
	"listing-portal/internal/models"
	"listing-portal/internal/sections"
	"listing-portal/internal/serializer"
	"listing-portal/internal/validation"
)

var (
	// ErrSaveInFlight rejects a save while one is already pending. There is
	// no cancellation; the caller retries after the pending save settles.
	ErrSaveInFlight = errors.New("a save is already in flight")
	// ErrSessionClosed rejects operations on a closed session.
	ErrSessionClosed = errors.New("session is closed")
)

// RecordService is the network boundary to the authoritative listing store.
type RecordService interface {
	Load(ctx context.Context, id string) (*models.Listing, error)
	Save(ctx context.Context, id string, payload *serializer.Payload) (*models.Listing, error)
}

// Notifier is the toast surface collaborator.
type Notifier interface {
	Notify(kind, message string)
}

// StatusListener is the listing-status collaborator, called immediately when
// the status field changes through SetStatus.
type StatusListener interface {
	StatusChanged(listingID string, status models.ListingStatus)
}

// LogNotifier is the default Notifier; it writes toasts to the server log.
type LogNotifier struct{}

func (LogNotifier) Notify(kind, message string) {
	log.Printf("[notify] kind=%s message=%s", kind, message)
}

// Session is one open multi-section editor for one listing. All the editor
// guards are fields here: initialized prevents reseeding the draft
// mid-session, saving allows one save in flight.
type Session struct {
	mu sync.Mutex

	ID        string
	ListingID string

	draft         *draft.Draft
	nav           *sections.Navigator
	deletedLegacy map[int]bool
	previews      *previewStore

	initialized bool
	saving      bool
	closed      bool

	openedAt     time.Time
	lastActivity time.Time
	saveCount    int

	records        RecordService
	notifier       Notifier
	statusListener StatusListener
	afterSave      func(*models.Listing)

	draftOpts     draft.Options
	maxUploadSize int64
}

// open seeds the session exactly once. The initialized guard means a repeat
// call cannot silently discard in-flight edits; the session must be closed
// and reopened to get a fresh draft.
func (s *Session) open(record *models.Listing, showAdvanced bool) error {
	if s.initialized {
		return fmt.Errorf("session %s already initialized", s.ID)
	}

	s.draftOpts.DeletedLegacyIndices = s.deletedLegacy
	s.draft = draft.New(record, s.draftOpts)
	s.nav = sections.NewNavigator(showAdvanced, func(sec sections.Section) bool {
		return validation.SectionValid(sec.ID, s.draft)
	})
	s.initialized = true
	s.openedAt = time.Now()
	s.lastActivity = s.openedAt

	log.Printf("[editor] session_id=%s listing_id=%s opened photos=%d", s.ID, s.ListingID, len(s.draft.Media.Photos))
	return nil
}

func (s *Session) touch() {
	s.lastActivity = time.Now()
}

// SetField updates one draft field and marks it dirty.
func (s *Session) SetField(name string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.touch()
	return s.draft.SetField(name, value)
}

// SetStatus is a narrow alias of SetField("status", ...) plus an immediate
// call into the listing-status collaborator.
func (s *Session) SetStatus(status models.ListingStatus) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.touch()
	err := s.draft.SetField(draft.FieldStatus, string(status))
	listener := s.statusListener
	listingID := s.ListingID
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if listener != nil {
		listener.StatusChanged(listingID, status)
	}
	return nil
}

// UploadMedia spools an upload into the session's preview store and appends
// a pending media item to the bucket. The binary stays session-local until
// the next save attaches it.
func (s *Session) UploadMedia(bucket models.MediaBucket, fileName, contentType string, r io.Reader) (*models.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.touch()

	id := uuid.New().String()
	path, size, err := s.previews.Put(id, fileName, r, s.maxUploadSize)
	if err != nil {
		return nil, err
	}

	item := models.MediaItem{
		ID:         id,
		FileName:   fileName,
		FileType:   contentType,
		FileSize:   size,
		URL:        fmt.Sprintf("/api/editor/sessions/%s/previews/%s", s.ID, id),
		UploadDate: time.Now(),
		FilePath:   path,
	}
	media.Add(s.draft.Media, bucket, item)
	s.markMediaDirty()

	log.Printf("[editor] session_id=%s bucket=%s file=%s size=%d uploaded", s.ID, bucket, fileName, size)
	added := s.draft.Media.Bucket(bucket)
	return &added[len(added)-1], nil
}

// SetCover marks one media item as its bucket's cover.
func (s *Session) SetCover(bucket models.MediaBucket, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.touch()
	if err := media.SetCover(s.draft.Media, bucket, itemID); err != nil {
		return err
	}
	s.markMediaDirty()
	return nil
}

// ReorderMedia rearranges a bucket to the given ID order.
func (s *Session) ReorderMedia(bucket models.MediaBucket, orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.touch()
	if err := media.Reorder(s.draft.Media, bucket, orderedIDs); err != nil {
		return err
	}
	s.markMediaDirty()
	return nil
}

// RemoveMedia deletes one media item. Legacy items are soft-deleted and
// their original flat-array index is accumulated in the session's deletion
// set; new items have their preview binary released immediately.
func (s *Session) RemoveMedia(bucket models.MediaBucket, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.touch()

	legacyIndex, err := media.Remove(s.draft.Media, bucket, itemID)
	if err != nil {
		return err
	}
	if legacyIndex != nil {
		s.deletedLegacy[*legacyIndex] = true
	} else {
		s.previews.Release(itemID)
	}
	s.markMediaDirty()
	return nil
}

// OpenPreview returns the spooled binary of a pending upload for serving.
func (s *Session) OpenPreview(itemID string) (*os.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.previews.Open(itemID)
}

func (s *Session) markMediaDirty() {
	s.draft.Dirty["media"] = true
	s.draft.HasChanges = true
}

// Next advances to the following section when the current one validates.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.nav.Next()
}

// Previous moves back one section.
func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.nav.Previous()
}

// JumpTo moves directly to a visible section index.
func (s *Session) JumpTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.nav.JumpTo(index)
}

// ToggleAdvanced flips visibility of the advanced sections.
func (s *Session) ToggleAdvanced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.nav.ToggleAdvanced()
}

// Save serializes the draft, sends it to the record service, and on success
// reseeds the draft from the authoritative response while preserving the
// active section. On failure the draft and dirty flags are left untouched so
// no edits are lost.
func (s *Session) Save(ctx context.Context) (*models.Listing, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.saving {
		s.mu.Unlock()
		return nil, ErrSaveInFlight
	}
	s.saving = true
	s.touch()
	s.nav.PreserveIndex()

	payload, err := serializer.Serialize(s.draft, s.deletedLegacy)
	if err != nil {
		s.saving = false
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to serialize draft: %w", err)
	}
	s.mu.Unlock()

	start := time.Now()
	record, err := s.records.Save(ctx, s.ListingID, payload)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.mu.Unlock()
		s.notifier.Notify("error", fmt.Sprintf("Failed to save listing: %v", err))
		return nil, fmt.Errorf("save failed: %w", err)
	}

	// Reseed from the authoritative response using the same rules as
	// initialization; migration re-runs minus the indices the user deleted.
	s.draftOpts.DeletedLegacyIndices = s.deletedLegacy
	s.draft = draft.New(record, s.draftOpts)
	s.nav.RestoreIndex()
	s.saveCount++
	// Attached binaries are persisted now; their previews are stale.
	s.previews.ReleaseAll()
	afterSave := s.afterSave
	s.mu.Unlock()

	log.Printf("[editor] session_id=%s listing_id=%s saved duration_ms=%d files=%d",
		s.ID, s.ListingID, time.Since(start).Milliseconds(), len(payload.Files))
	s.notifier.Notify("success", "Listing saved")

	if afterSave != nil {
		afterSave(record)
	}
	return record, nil
}

// State is the session's externally visible shape.
type State struct {
	SessionID        string             `json:"sessionId"`
	ListingID        string             `json:"listingId"`
	Draft            draft.Draft        `json:"draft"`
	Sections         []sections.Section `json:"sections"`
	ActiveIndex      int                `json:"activeSectionIndex"`
	ShowAdvanced     bool               `json:"showAdvanced"`
	Completeness     int                `json:"completeness"`
	SectionValidity  map[string]bool    `json:"sectionValidity"`
	HasChanges       bool               `json:"hasChanges"`
	IsSaving         bool               `json:"isSaving"`
	DeletedLegacy    []int              `json:"legacyImagesToDelete"`
	SaveCount        int                `json:"saveCount"`
	LastActivity     time.Time          `json:"lastActivity"`
}

// State snapshots the session for API responses.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	validity := make(map[string]bool, len(sections.All))
	for _, sec := range sections.All {
		validity[string(sec.ID)] = validation.SectionValid(sec.ID, s.draft)
	}

	deleted := make([]int, 0, len(s.deletedLegacy))
	for idx := range s.deletedLegacy {
		deleted = append(deleted, idx)
	}

	return State{
		SessionID:       s.ID,
		ListingID:       s.ListingID,
		Draft:           s.draft.Snapshot(),
		Sections:        s.nav.Sections(),
		ActiveIndex:     s.nav.ActiveIndex(),
		ShowAdvanced:    s.nav.ShowAdvanced(),
		Completeness:    validation.Completeness(s.draft),
		SectionValidity: validity,
		HasChanges:      s.draft.HasChanges,
		IsSaving:        s.saving,
		DeletedLegacy:   deleted,
		SaveCount:       s.saveCount,
		LastActivity:    s.lastActivity,
	}
}

// close releases the session's resources and returns its audit log entry.
func (s *Session) close(reason string) models.SessionLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.initialized = false
		s.previews.ReleaseAll()
	}

	return models.SessionLog{
		SessionID: s.ID,
		ListingID: s.ListingID,
		OpenedAt:  s.openedAt,
		SaveCount: s.saveCount,
		Reason:    reason,
	}
}

// IdleSince reports the last time anything touched the session.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

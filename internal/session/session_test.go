package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-portal/internal/config"
	"listing-portal/internal/draft"
	"listing-portal/internal/models"
	"listing-portal/internal/serializer"
)

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

// fakeRecords is an in-memory RecordService. Save echoes the stored record
// back, optionally after applying mutate, mimicking the authoritative
// response refresh.
type fakeRecords struct {
	mu       sync.Mutex
	record   *models.Listing
	payloads []*serializer.Payload
	loadErr  error
	saveErr  error
	mutate   func(*models.Listing, *serializer.Payload)
	block    chan struct{}
}

func (f *fakeRecords) Load(ctx context.Context, id string) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.record == nil || f.record.ID != id {
		return nil, fmt.Errorf("listing %s not found", id)
	}
	clone := *f.record
	return &clone, nil
}

func (f *fakeRecords) Save(ctx context.Context, id string, payload *serializer.Payload) (*models.Listing, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.mutate != nil {
		f.mutate(f.record, payload)
	}
	clone := *f.record
	return &clone, nil
}

func (f *fakeRecords) lastPayload() *serializer.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return nil
	}
	return f.payloads[len(f.payloads)-1]
}

func testRecord() *models.Listing {
	price := 45000.0
	return &models.Listing{
		ID:          "listing-1",
		ListingType: "rent",
		Title:       "2BHK near the station",
		City:        "Mumbai",
		Locality:    "Andheri West",
		Price:       &price,
		Status:      models.ListingStatusActive,
		Images: models.LegacyImageList{
			{RawURL: "https://img.example.com/a.jpg"},
			{RawURL: "https://img.example.com/b.jpg"},
		},
	}
}

func testManager(t *testing.T, records RecordService, hooks Hooks) *Manager {
	t.Helper()
	cfg := config.EditorConfig{
		PreviewDir:      t.TempDir(),
		MaxUploadSizeMB: 1,
	}
	return NewManager(records, nil, nil, cfg, hooks)
}

func TestOpenSeedsFromRecord(t *testing.T) {
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{})

	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	state := s.State()
	assert.Equal(t, "listing-1", state.ListingID)
	assert.Equal(t, "2BHK near the station", state.Draft.Title)
	assert.Equal(t, 0, state.ActiveIndex)
	assert.False(t, state.HasChanges)
	assert.Len(t, state.Draft.Media.Photos, 2, "legacy images migrate on open")
	assert.Equal(t, 1, m.Count())
}

func TestOpenUnknownListing(t *testing.T) {
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{})

	_, err := m.Open(context.Background(), "missing")
	assert.ErrorContains(t, err, "missing")
	assert.Equal(t, 0, m.Count())
}

func TestGetUnknownSession(t *testing.T) {
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{})
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSetFieldMarksChanges(t *testing.T) {
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{})
	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	require.NoError(t, s.SetField(draft.FieldTitle, "Updated"))
	state := s.State()
	assert.True(t, state.HasChanges)
	assert.True(t, state.Draft.Dirty[draft.FieldTitle])
}

func TestSaveSuccess(t *testing.T) {
	records := &fakeRecords{record: testRecord()}
	records.mutate = func(l *models.Listing, p *serializer.Payload) {
		l.Title = p.Fields[draft.FieldTitle]
	}
	var afterSaved *models.Listing
	m := testManager(t, records, Hooks{AfterSave: func(l *models.Listing) { afterSaved = l }})

	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)
	require.NoError(t, s.SetField(draft.FieldTitle, "Updated title"))
	require.NoError(t, s.JumpTo(3))

	listing, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Updated title", listing.Title)
	require.NotNil(t, afterSaved)
	assert.Equal(t, "Updated title", afterSaved.Title)

	state := s.State()
	assert.Equal(t, "Updated title", state.Draft.Title, "draft reseeds from the response")
	assert.False(t, state.HasChanges, "dirty flags clear on success")
	assert.Equal(t, 3, state.ActiveIndex, "active section survives the refresh")
	assert.Equal(t, 1, state.SaveCount)
	assert.False(t, state.IsSaving)
}

func TestSaveFailurePreservesDraft(t *testing.T) {
	records := &fakeRecords{record: testRecord(), saveErr: errors.New("backend down")}
	m := testManager(t, records, Hooks{})

	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)
	require.NoError(t, s.SetField(draft.FieldTitle, "Unsaved edit"))

	_, err = s.Save(context.Background())
	require.ErrorContains(t, err, "backend down")

	state := s.State()
	assert.Equal(t, "Unsaved edit", state.Draft.Title, "no edits are lost on failure")
	assert.True(t, state.HasChanges)
	assert.Equal(t, 0, state.SaveCount)
	assert.False(t, state.IsSaving, "the guard releases so the user can retry")

	// Retry after the backend recovers
	records.mu.Lock()
	records.saveErr = nil
	records.mu.Unlock()
	_, err = s.Save(context.Background())
	assert.NoError(t, err)
}

func TestSaveInFlightRejected(t *testing.T) {
	records := &fakeRecords{record: testRecord(), block: make(chan struct{})}
	m := testManager(t, records, Hooks{})

	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Save(context.Background())
		done <- err
	}()

	// Wait for the first save to reach the record service
	require.Eventually(t, func() bool { return s.State().IsSaving }, testWait, testTick)

	_, err = s.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveInFlight)

	close(records.block)
	require.NoError(t, <-done)

	// Settled; the next save goes through
	_, err = s.Save(context.Background())
	assert.NoError(t, err)
}

func TestUploadAndPreview(t *testing.T) {
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{})
	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	item, err := s.UploadMedia(models.BucketVideos, "tour.mp4", "video/mp4", strings.NewReader("mp4-bytes"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("/api/editor/sessions/%s/previews/%s", s.ID, item.ID), item.URL)
	assert.Equal(t, int64(9), item.FileSize)
	assert.True(t, item.IsCover)

	f, err := s.OpenPreview(item.ID)
	require.NoError(t, err)
	f.Close()

	// Removing a pending upload releases its preview
	require.NoError(t, s.RemoveMedia(models.BucketVideos, item.ID))
	_, err = s.OpenPreview(item.ID)
	assert.Error(t, err)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{})
	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	big := strings.NewReader(strings.Repeat("x", (1<<20)+1))
	_, err = s.UploadMedia(models.BucketPhotos, "huge.jpg", "image/jpeg", big)
	assert.ErrorContains(t, err, "size limit")
}

func TestSaveAttachesUploadAndReleasesPreview(t *testing.T) {
	records := &fakeRecords{record: testRecord()}
	m := testManager(t, records, Hooks{})
	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	item, err := s.UploadMedia(models.BucketPhotos, "new.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	_, err = s.Save(context.Background())
	require.NoError(t, err)

	payload := records.lastPayload()
	require.NotNil(t, payload)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "images", payload.Files[0].Field)
	assert.Equal(t, "new.jpg", payload.Files[0].FileName)

	// The binary is persisted server-side now; the preview is stale
	_, err = s.OpenPreview(item.ID)
	assert.Error(t, err)
}

func TestRemoveLegacyThenSave(t *testing.T) {
	records := &fakeRecords{record: testRecord()}
	m := testManager(t, records, Hooks{})
	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	// legacy-0 is the migrated first flat-array entry
	require.NoError(t, s.RemoveMedia(models.BucketPhotos, "legacy-0"))
	state := s.State()
	assert.Equal(t, []int{0}, state.DeletedLegacy)

	_, err = s.Save(context.Background())
	require.NoError(t, err)

	payload := records.lastPayload()
	require.NotNil(t, payload)
	assert.Equal(t, "[0]", payload.Fields["legacyImagesToDelete"])

	// The response still carries both legacy entries (the fake does not
	// prune), yet the reseeded draft must not resurrect the deleted one.
	state = s.State()
	require.Len(t, state.Draft.Media.Photos, 1)
	require.NotNil(t, state.Draft.Media.Photos[0].LegacyIndex)
	assert.Equal(t, 1, *state.Draft.Media.Photos[0].LegacyIndex)
}

func TestStatusChangeNotifiesListener(t *testing.T) {
	var gotID string
	var gotStatus models.ListingStatus
	listener := statusListenerFunc(func(id string, status models.ListingStatus) {
		gotID = id
		gotStatus = status
	})

	cfg := config.EditorConfig{PreviewDir: t.TempDir(), MaxUploadSizeMB: 1}
	m := NewManager(&fakeRecords{record: testRecord()}, nil, listener, cfg, Hooks{})
	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	require.NoError(t, s.SetStatus(models.ListingStatusSold))
	assert.Equal(t, "listing-1", gotID)
	assert.Equal(t, models.ListingStatusSold, gotStatus)
	assert.Equal(t, models.ListingStatusSold, s.State().Draft.Status)
}

type statusListenerFunc func(string, models.ListingStatus)

func (f statusListenerFunc) StatusChanged(id string, status models.ListingStatus) { f(id, status) }

func TestCloseEndsSession(t *testing.T) {
	var closed []models.SessionLog
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{
		OnClose: func(entry models.SessionLog) { closed = append(closed, entry) },
	})

	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)
	_, err = s.Save(context.Background())
	require.NoError(t, err)

	entry, err := m.Close(s.ID, models.CloseReasonUser)
	require.NoError(t, err)
	assert.Equal(t, s.ID, entry.SessionID)
	assert.Equal(t, models.CloseReasonUser, entry.Reason)
	assert.Equal(t, 1, entry.SaveCount)

	require.Len(t, closed, 1)
	assert.Equal(t, s.ID, closed[0].SessionID)
	assert.Equal(t, 0, m.Count())

	// The session object itself rejects further operations
	assert.ErrorIs(t, s.SetField(draft.FieldTitle, "x"), ErrSessionClosed)
	_, err = s.Save(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCloseUnknownSession(t *testing.T) {
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{})
	_, err := m.Close("nope", models.CloseReasonUser)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCloseAll(t *testing.T) {
	var reasons []string
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{
		OnClose: func(entry models.SessionLog) { reasons = append(reasons, entry.Reason) },
	})

	_, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)
	_, err = m.Open(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Equal(t, 2, m.Count())

	m.CloseAll()
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, []string{models.CloseReasonShutdown, models.CloseReasonShutdown}, reasons)
}

func TestSweepExpiredLeavesFreshSessions(t *testing.T) {
	m := testManager(t, &fakeRecords{record: testRecord()}, Hooks{})
	_, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	assert.Empty(t, m.SweepExpired())
	assert.Equal(t, 1, m.Count())
}

func TestNavigationGating(t *testing.T) {
	record := testRecord()
	record.PropertyType = "" // basic section incomplete
	m := testManager(t, &fakeRecords{record: record}, Hooks{})
	s, err := m.Open(context.Background(), "listing-1")
	require.NoError(t, err)

	assert.False(t, s.Next(), "incomplete section blocks forward navigation")
	assert.Equal(t, 0, s.State().ActiveIndex)

	// Sidebar jump bypasses the gate
	require.NoError(t, s.JumpTo(4))
	assert.Equal(t, 4, s.State().ActiveIndex)

	// Filling the gap unblocks Next from the basic section
	require.NoError(t, s.JumpTo(0))
	require.NoError(t, s.SetField(draft.FieldPropertyType, "apartment"))
	assert.True(t, s.Next())
	assert.Equal(t, 1, s.State().ActiveIndex)
}

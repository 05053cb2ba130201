package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"listing-portal/internal/config"
	"listing-portal/internal/draft"
	"listing-portal/internal/models"
)

// ErrSessionNotFound is returned for unknown or already-closed session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Hooks are the collaborator callbacks a manager wires into each session.
type Hooks struct {
	// AfterSave runs after a successful save with the refreshed record
	// (snapshotting, reindex queueing).
	AfterSave func(*models.Listing)
	// OnClose runs with the audit entry of every ended session
	// (persistence, navigate-away side effects).
	OnClose func(models.SessionLog)
}

// Manager owns the open editor sessions. There is no shared mutable state
// between sessions; the manager only guards its own map.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	records        RecordService
	notifier       Notifier
	statusListener StatusListener
	hooks          Hooks

	editorCfg config.EditorConfig
	ttl       time.Duration
}

// NewManager creates a session manager.
func NewManager(records RecordService, notifier Notifier, statusListener StatusListener, editorCfg config.EditorConfig, hooks Hooks) *Manager {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Manager{
		sessions:       make(map[string]*Session),
		records:        records,
		notifier:       notifier,
		statusListener: statusListener,
		hooks:          hooks,
		editorCfg:      editorCfg,
		ttl:            editorCfg.SessionTTL(),
	}
}

// Open loads the listing and seeds a new editor session for it.
func (m *Manager) Open(ctx context.Context, listingID string) (*Session, error) {
	record, err := m.records.Load(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", listingID, err)
	}

	id := uuid.New().String()
	previews, err := newPreviewStore(m.editorCfg.PreviewDir, id)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:             id,
		ListingID:      listingID,
		deletedLegacy:  make(map[int]bool),
		previews:       previews,
		records:        m.records,
		notifier:       m.notifier,
		statusListener: m.statusListener,
		afterSave:      m.hooks.AfterSave,
		maxUploadSize:  m.editorCfg.MaxUploadSize(),
		draftOpts: draft.Options{
			AssetBaseURL:     m.editorCfg.AssetBaseURL,
			PlaceholderAsset: m.editorCfg.PlaceholderAsset,
		},
	}
	if err := s.open(record, m.editorCfg.ShowAdvancedByDefault); err != nil {
		previews.ReleaseAll()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns an open session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close ends a session, releases its resources, and reports the audit entry
// to the close hook.
func (m *Manager) Close(id, reason string) (*models.SessionLog, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	entry := s.close(reason)
	log.Printf("[editor] session_id=%s listing_id=%s closed reason=%s saves=%d", entry.SessionID, entry.ListingID, reason, entry.SaveCount)
	if m.hooks.OnClose != nil {
		m.hooks.OnClose(entry)
	}
	return &entry, nil
}

// SweepExpired closes every session idle longer than the configured TTL and
// returns their audit entries.
func (m *Manager) SweepExpired() []models.SessionLog {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	var entries []models.SessionLog
	for _, id := range expired {
		entry, err := m.Close(id, models.CloseReasonExpired)
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

// CloseAll ends every open session (server shutdown).
func (m *Manager) CloseAll() {
	m.mu.Lock()
	var ids []string
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Close(id, models.CloseReasonShutdown)
	}
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

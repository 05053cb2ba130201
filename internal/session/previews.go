package session

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// previewStore holds not-yet-persisted upload binaries as temp files scoped
// to one session. It is the server-side analogue of browser object URLs:
// every handle must be released when the media list changes or the session
// closes, or the files leak.
type previewStore struct {
	dir   string
	files map[string]string // media item ID -> temp file path
}

func newPreviewStore(baseDir, sessionID string) (*previewStore, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	dir, err := os.MkdirTemp(baseDir, "editor-"+sessionID+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create preview dir: %w", err)
	}
	return &previewStore{dir: dir, files: make(map[string]string)}, nil
}

// Put spools the upload to a temp file and returns its path and size.
func (ps *previewStore) Put(itemID, fileName string, r io.Reader, limit int64) (string, int64, error) {
	path := filepath.Join(ps.dir, itemID+filepath.Ext(fileName))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create preview file: %w", err)
	}

	size, err := io.Copy(f, io.LimitReader(r, limit+1))
	f.Close()
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to spool upload: %w", err)
	}
	if size > limit {
		os.Remove(path)
		return "", 0, fmt.Errorf("upload exceeds size limit of %d bytes", limit)
	}

	ps.files[itemID] = path
	return path, size, nil
}

// Open returns the spooled file for serving a preview.
func (ps *previewStore) Open(itemID string) (*os.File, error) {
	path, ok := ps.files[itemID]
	if !ok {
		return nil, fmt.Errorf("no preview for media item %s", itemID)
	}
	return os.Open(path)
}

// Release removes one spooled file.
func (ps *previewStore) Release(itemID string) {
	path, ok := ps.files[itemID]
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to remove preview file %s: %v", path, err)
	}
	delete(ps.files, itemID)
}

// ReleaseAll removes every spooled file and the session's preview dir.
func (ps *previewStore) ReleaseAll() {
	for id := range ps.files {
		ps.Release(id)
	}
	if err := os.RemoveAll(ps.dir); err != nil {
		log.Printf("Warning: failed to remove preview dir %s: %v", ps.dir, err)
	}
}

// Count returns the number of live preview files.
func (ps *previewStore) Count() int {
	return len(ps.files)
}

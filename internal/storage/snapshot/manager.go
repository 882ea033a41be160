// Package snapshot provides snapshot management for the code table.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/yndnr/discountd/internal/core/domain"
)

// DefaultFile is the snapshot file used when none is configured.
const DefaultFile = "discount_codes.json"

const tempSuffix = ".tmp"

// Config configures the snapshot manager.
type Config struct {
	// Path is the snapshot file.
	Path string

	// FileMode is the permission of newly written files (default 0640).
	FileMode fs.FileMode
}

// DefaultConfig returns a config writing to path.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		FileMode: 0640,
	}
}

// Manager reads and writes one snapshot file.
type Manager struct {
	cfg Config
}

// NewManager creates a manager and makes sure the snapshot directory exists.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("snapshot: path is required")
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0640
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	return &Manager{cfg: cfg}, nil
}

// Path returns the snapshot file path.
func (m *Manager) Path() string {
	return m.cfg.Path
}

// Info contains metadata about a written or loaded snapshot.
type Info struct {
	Path      string `json:"path"`
	Count     int    `json:"count"`
	Size      int64  `json:"size"`
	Checksum  string `json:"checksum"`
	CreatedAt int64  `json:"created_at"`
}

// EnsureExists writes an empty list if the snapshot file is absent.
// It reports whether the file was created.
func (m *Manager) EnsureExists() (bool, error) {
	_, err := os.Stat(m.cfg.Path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("snapshot: stat: %w", err)
	}
	if _, err := m.Save(nil); err != nil {
		return false, err
	}
	return true, nil
}

// Save overwrites the snapshot with entries.
func (m *Manager) Save(entries []domain.CodeEntry) (*Info, error) {
	if entries == nil {
		entries = []domain.CodeEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, domain.ErrSnapshotWrite.WithDetails("marshal").WithCause(err)
	}
	data = append(data, '\n')

	tempPath := m.cfg.Path + tempSuffix
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, m.cfg.FileMode)
	if err != nil {
		return nil, domain.ErrSnapshotWrite.WithDetails("create temp file").WithCause(err)
	}
	defer os.Remove(tempPath)

	if _, err := file.Write(data); err != nil {
		file.Close()
		return nil, domain.ErrSnapshotWrite.WithDetails("write").WithCause(err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, domain.ErrSnapshotWrite.WithDetails("sync").WithCause(err)
	}
	if err := file.Close(); err != nil {
		return nil, domain.ErrSnapshotWrite.WithDetails("close").WithCause(err)
	}
	if err := os.Rename(tempPath, m.cfg.Path); err != nil {
		return nil, domain.ErrSnapshotWrite.WithDetails("rename").WithCause(err)
	}

	sum := sha256.Sum256(data)
	return &Info{
		Path:      m.cfg.Path,
		Count:     len(entries),
		Size:      int64(len(data)),
		Checksum:  hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UnixMilli(),
	}, nil
}

// Load parses the snapshot file.
//
// Field names are matched case-insensitively, so files written with
// "Code"/"Used" keys load as well. A JSON null is treated as an empty list.
func (m *Manager) Load() ([]domain.CodeEntry, *Info, error) {
	data, err := os.ReadFile(m.cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: read: %w", err)
	}

	// Unmarshal rejects anything after the top-level value, stray
	// closing brackets included.
	var entries []domain.CodeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, domain.ErrSnapshotMalformed.WithDetails(m.cfg.Path).WithCause(err)
	}

	for i, e := range entries {
		if err := domain.ValidateCode(e.Code); err != nil {
			return nil, nil, domain.ErrSnapshotMalformed.
				WithDetails(fmt.Sprintf("%s: entry %d", m.cfg.Path, i)).
				WithCause(err)
		}
	}

	sum := sha256.Sum256(data)
	info := &Info{
		Path:     m.cfg.Path,
		Count:    len(entries),
		Size:     int64(len(data)),
		Checksum: hex.EncodeToString(sum[:]),
	}
	if st, err := os.Stat(m.cfg.Path); err == nil {
		info.CreatedAt = st.ModTime().UnixMilli()
	}
	return entries, info, nil
}

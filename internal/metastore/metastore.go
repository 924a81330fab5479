// Package metastore persists per-asset metadata to JSON sidecar files and
// keeps a write-through cache keyed by asset path.
package metastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/materialvault/materialvault/internal/logging"
	"github.com/materialvault/materialvault/internal/metrics"
	"github.com/materialvault/materialvault/internal/vault"
)

// TimeFormat is the wire format of the LastModified field.
const TimeFormat = "2006.01.02-15.04.05"

// contentRootPrefix is stripped from package names before deriving the
// sidecar file name.
const contentRootPrefix = "/Game/"

// sidecarRecord is the fixed on-disk shape of a metadata sidecar.
type sidecarRecord struct {
	MaterialName string   `json:"MaterialName"`
	Location     string   `json:"Location"`
	Author       string   `json:"Author"`
	LastModified string   `json:"LastModified"`
	Notes        string   `json:"Notes"`
	Category     string   `json:"Category"`
	Tags         []string `json:"Tags"`
}

// Store reads and writes metadata sidecar files under a single directory.
type Store struct {
	dir string

	mu    sync.RWMutex
	cache map[string]vault.Metadata
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create metadata dir: %w", err)
	}
	return &Store{
		dir:   dir,
		cache: make(map[string]vault.Metadata),
	}, nil
}

// Dir returns the sidecar directory.
func (s *Store) Dir() string {
	return s.dir
}

// FilePath returns the sidecar file path for an asset identity.
// The content-root prefix is stripped from the package name and the
// remaining slashes become underscores.
func (s *Store) FilePath(rec vault.Record) string {
	pkg := strings.TrimPrefix(rec.PackageName, contentRootPrefix)
	pkg = strings.ReplaceAll(pkg, "/", "_")
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", pkg, rec.Name))
}

// Load returns the metadata for the asset. Cached metadata wins; otherwise
// the sidecar file is read and parsed. A missing or corrupt sidecar is a
// normal state and yields a default record.
func (s *Store) Load(rec vault.Record) vault.Metadata {
	s.mu.RLock()
	md, ok := s.cache[rec.Path]
	s.mu.RUnlock()
	if ok {
		return md
	}

	md = defaultMetadata(rec)

	data, err := os.ReadFile(s.FilePath(rec))
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("metadata sidecar unreadable",
				zap.String("path", rec.Path), zap.Error(err))
		}
		metrics.RecordMetadataLoad("absent")
		return md
	}

	var wire sidecarRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		logging.Warn("metadata sidecar corrupt, using defaults",
			zap.String("path", rec.Path), zap.Error(err))
		metrics.RecordMetadataLoad("corrupt")
		return md
	}

	md = fromWire(wire, md)

	s.mu.Lock()
	s.cache[rec.Path] = md
	s.mu.Unlock()

	metrics.RecordMetadataLoad("ok")
	return md
}

// Save writes the metadata sidecar and updates the cache unconditionally.
// The cache reflects the save even when the disk write fails; the write
// error is logged and returned for callers that surface notifications.
func (s *Store) Save(rec vault.Record, md vault.Metadata) error {
	s.mu.Lock()
	s.cache[rec.Path] = md
	s.mu.Unlock()

	data, err := json.MarshalIndent(toWire(md), "", "\t")
	if err != nil {
		metrics.RecordMetadataSave(false)
		logging.Error("metadata marshal failed", zap.String("path", rec.Path), zap.Error(err))
		return fmt.Errorf("marshal metadata %s: %w", rec.Path, err)
	}

	path := s.FilePath(rec)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		metrics.RecordMetadataSave(false)
		logging.Error("metadata write failed", zap.String("path", rec.Path), zap.Error(err))
		return fmt.Errorf("write metadata %s: %w", rec.Path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		metrics.RecordMetadataSave(false)
		logging.Error("metadata rename failed", zap.String("path", rec.Path), zap.Error(err))
		return fmt.Errorf("write metadata %s: %w", rec.Path, err)
	}

	metrics.RecordMetadataSave(true)
	return nil
}

// Remove drops the cached metadata for the asset path. The sidecar file is
// left in place so annotations survive re-indexing.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	delete(s.cache, path)
	s.mu.Unlock()
}

// ClearCache drops all cached metadata.
func (s *Store) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]vault.Metadata)
	s.mu.Unlock()
}

func defaultMetadata(rec vault.Record) vault.Metadata {
	return vault.Metadata{
		MaterialName: rec.Name,
		Location:     rec.PackageName,
		LastModified: time.Now(),
	}
}

func toWire(md vault.Metadata) sidecarRecord {
	tags := md.Tags
	if tags == nil {
		tags = []string{}
	}
	return sidecarRecord{
		MaterialName: md.MaterialName,
		Location:     md.Location,
		Author:       md.Author,
		LastModified: md.LastModified.Format(TimeFormat),
		Notes:        md.Notes,
		Category:     md.Category,
		Tags:         tags,
	}
}

func fromWire(wire sidecarRecord, md vault.Metadata) vault.Metadata {
	md.MaterialName = wire.MaterialName
	md.Location = wire.Location
	md.Author = wire.Author
	md.Notes = wire.Notes
	md.Category = wire.Category
	md.Tags = wire.Tags

	// An unparsable timestamp silently keeps the default.
	if t, err := time.Parse(TimeFormat, wire.LastModified); err == nil {
		md.LastModified = t
	}
	return md
}

package registry

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/materialvault/materialvault/internal/logging"
	"github.com/materialvault/materialvault/internal/vault"
)

// Asset file extensions recognized by the scanner.
var assetTypesByExt = map[string]string{
	".mat":   vault.TypeMaterial,
	".mi":    vault.TypeMaterialInstance,
	".minst": vault.TypeMaterialInstanceConstant,
}

// Scanner is a polling directory watcher that presents material descriptor
// files under a content root as registry records. File paths map onto
// package paths under /Game.
type Scanner struct {
	root     string
	interval time.Duration

	mu       sync.RWMutex
	state    map[string]time.Time // file path -> mtime
	records  map[string]vault.Record
	handlers map[int]Handler
	nextID   int

	done chan struct{}
}

// NewScanner creates a scanner over the given content root.
func NewScanner(root string, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Scanner{
		root:     root,
		interval: interval,
		state:    make(map[string]time.Time),
		records:  make(map[string]vault.Record),
		handlers: make(map[int]Handler),
		done:     make(chan struct{}),
	}
}

// Subscribe implements Source.
func (s *Scanner) Subscribe(h Handler) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = h
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

// Records implements Source.
func (s *Scanner) Records() []vault.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]vault.Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	return recs
}

// Start performs the initial scan and begins polling for changes.
func (s *Scanner) Start(ctx context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("scan root: %w", err)
	}
	if err := s.scan(true); err != nil {
		return err
	}
	go s.watchLoop(ctx)
	return nil
}

// Stop ends the polling loop.
func (s *Scanner) Stop() {
	close(s.done)
}

// Resolver returns a resolver that loads asset payloads from the scanned
// files.
func (s *Scanner) Resolver() vault.Resolver {
	return vault.ResolverFunc(func(_ context.Context, assetPath string) (*vault.Payload, error) {
		filePath, ok := s.filePathFor(assetPath)
		if !ok {
			return nil, fmt.Errorf("unknown asset %s", assetPath)
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read asset %s: %w", assetPath, err)
		}
		return &vault.Payload{Path: assetPath, FilePath: filePath, Data: data}, nil
	})
}

func (s *Scanner) filePathFor(assetPath string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for filePath, rec := range s.records {
		if rec.Path == assetPath {
			return filePath, true
		}
	}
	return "", false
}

func (s *Scanner) watchLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.scan(false); err != nil {
				logging.Warn("content scan failed", zap.Error(err))
			}
		}
	}
}

// scan diffs the directory against the previous state and emits
// add/update/remove events. The initial scan records state silently.
func (s *Scanner) scan(initial bool) error {
	seen := make(map[string]time.Time)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := assetTypesByExt[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		seen[path] = info.ModTime()
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", s.root, err)
	}

	var added, updated []vault.Record
	var removed []vault.Record

	s.mu.Lock()
	for path, mtime := range seen {
		prev, existed := s.state[path]
		if !existed {
			rec, err := s.recordFor(path)
			if err != nil {
				continue
			}
			s.records[path] = rec
			if !initial {
				added = append(added, rec)
			}
		} else if !mtime.Equal(prev) {
			updated = append(updated, s.records[path])
		}
	}
	for path := range s.state {
		if _, ok := seen[path]; !ok {
			removed = append(removed, s.records[path])
			delete(s.records, path)
		}
	}
	s.state = seen
	handlers := make([]Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		for _, rec := range added {
			h.AssetAdded(rec)
		}
		for _, rec := range updated {
			h.AssetUpdated(rec)
		}
		for _, rec := range removed {
			h.AssetRemoved(rec)
		}
	}
	return nil
}

// recordFor maps a descriptor file onto an asset identity. A file
// Mats/Rock.mat under the root becomes /Game/Mats/Rock.Rock.
func (s *Scanner) recordFor(filePath string) (vault.Record, error) {
	rel, err := filepath.Rel(s.root, filePath)
	if err != nil {
		return vault.Record{}, err
	}

	ext := strings.ToLower(filepath.Ext(rel))
	assetType := assetTypesByExt[ext]

	name := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	dir := filepath.ToSlash(filepath.Dir(rel))

	packagePath := "/Game"
	if dir != "." {
		packagePath = "/Game/" + dir
	}
	packageName := packagePath + "/" + name

	return vault.Record{
		Path:        packageName + "." + name,
		PackageName: packageName,
		PackagePath: packagePath,
		Name:        name,
		Type:        assetType,
	}, nil
}

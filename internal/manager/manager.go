// Package manager composes the asset browser core: it owns the asset index,
// folder tree, category view, metadata store, and thumbnail cache, and it
// consumes the external lifecycle source.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/materialvault/materialvault/internal/category"
	"github.com/materialvault/materialvault/internal/events"
	"github.com/materialvault/materialvault/internal/foldertree"
	"github.com/materialvault/materialvault/internal/index"
	"github.com/materialvault/materialvault/internal/logging"
	"github.com/materialvault/materialvault/internal/metastore"
	"github.com/materialvault/materialvault/internal/metrics"
	"github.com/materialvault/materialvault/internal/registry"
	"github.com/materialvault/materialvault/internal/thumbcache"
	"github.com/materialvault/materialvault/internal/vault"
)

// Applier applies a resolved material to the host's current selection.
// The engine's transaction machinery implements this.
type Applier interface {
	Apply(ctx context.Context, payload *vault.Payload) (modified int, err error)
}

// Options configure a Manager.
type Options struct {
	Source   registry.Source
	Store    *metastore.Store
	Resolver vault.Resolver
	Renderer thumbcache.Renderer
	Applier  Applier

	SettingsFile  string
	ThumbCacheMax int
	ThumbWorkers  int
}

// Manager is the composition root. A Manager is either uninitialized or
// initialized; queries against an uninitialized manager return empty results.
type Manager struct {
	source      registry.Source
	store       *metastore.Store
	resolver    vault.Resolver
	applier     Applier
	broadcaster *events.Broadcaster

	index      *index.Index
	thumbs     *thumbcache.Cache
	categories *category.Index

	settingsFile string

	mu          sync.RWMutex
	initialized bool
	settings    vault.Settings
	tree        *foldertree.Tree
	unsubscribe func()
}

// New wires a manager from its collaborators. Initialize must be called
// before use.
func New(opts Options) *Manager {
	m := &Manager{
		source:       opts.Source,
		store:        opts.Store,
		resolver:     opts.Resolver,
		applier:      opts.Applier,
		broadcaster:  events.NewBroadcaster(),
		settingsFile: opts.SettingsFile,
		settings:     vault.DefaultSettings(),
	}

	m.index = index.New(func(item *vault.Item) {
		item.Metadata = m.store.Load(item.Record)
	})
	m.categories = category.New(m.index, m.store)
	m.thumbs = thumbcache.New(thumbcache.Config{
		MaxEntries: opts.ThumbCacheMax,
		Workers:    opts.ThumbWorkers,
		Resolver:   opts.Resolver,
		Renderer:   opts.Renderer,
		OnInsert: func(key thumbcache.Key) {
			m.broadcaster.Publish(events.Event{
				Type: events.EventThumbnail,
				Path: key.Path,
				Size: key.Size,
			})
		},
	})

	return m
}

// Initialize subscribes to the lifecycle source, starts the thumbnail cache,
// and runs a full refresh. Idempotent while initialized.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if m.settingsFile != "" {
		if s, err := LoadSettings(m.settingsFile); err == nil {
			m.settings = s
		}
	}

	m.thumbs.Start(ctx)
	m.unsubscribe = m.source.Subscribe(m)
	m.tree = foldertree.NewTree()
	m.initialized = true

	m.refreshLocked()

	logging.Info("material vault initialized",
		zap.Int("assets", m.index.Len()), zap.Int("folders", m.tree.Len()))
	return nil
}

// Deinitialize unsubscribes and discards all indices and caches.
// No-op while uninitialized.
func (m *Manager) Deinitialize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.thumbs.Clear()
	m.thumbs.Stop()
	m.index.Clear()
	m.store.ClearCache()
	m.tree = nil
	m.initialized = false

	logging.Info("material vault deinitialized")
}

// Initialized reports whether the manager has been initialized.
func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// Events returns the notification broadcaster for refresh, settings, and
// thumbnail events.
func (m *Manager) Events() *events.Broadcaster {
	return m.broadcaster
}

// Refresh rebuilds the index from the lifecycle source and the folder tree
// from the index.
func (m *Manager) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return
	}
	m.refreshLocked()
}

func (m *Manager) refreshLocked() {
	start := time.Now()

	m.index.Clear()
	for _, rec := range m.source.Records() {
		if vault.TrackedType(rec.Type) {
			m.index.Upsert(rec)
		}
	}
	m.rebuildTreeLocked()

	metrics.ObserveRefresh(time.Since(start))
	m.broadcaster.Publish(events.Event{Type: events.EventRefresh})
}

func (m *Manager) rebuildTreeLocked() {
	m.tree = foldertree.Build(m.index.All())
	metrics.SetIndexItems(m.index.Len())
	metrics.SetFolderNodes(m.tree.Len())
}

// AssetAdded implements registry.Handler.
func (m *Manager) AssetAdded(rec vault.Record) {
	if !vault.TrackedType(rec.Type) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return
	}

	m.index.Upsert(rec)
	m.rebuildTreeLocked()
	metrics.RecordLifecycleEvent(registry.EventAdded)
	m.broadcaster.Publish(events.Event{Type: events.EventRefresh, Path: rec.Path})
}

// AssetRemoved implements registry.Handler.
func (m *Manager) AssetRemoved(rec vault.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return
	}

	m.removeLocked(rec.Path)
	m.rebuildTreeLocked()
	metrics.RecordLifecycleEvent(registry.EventRemoved)
	m.broadcaster.Publish(events.Event{Type: events.EventRefresh, Path: rec.Path})
}

// AssetRenamed implements registry.Handler. A rename is remove-then-add; the
// folder tree is rebuilt before the lock is released, so the intermediate
// state is never observable.
func (m *Manager) AssetRenamed(rec vault.Record, oldPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return
	}

	m.removeLocked(oldPath)
	if vault.TrackedType(rec.Type) {
		m.index.Upsert(rec)
	}
	m.rebuildTreeLocked()
	metrics.RecordLifecycleEvent(registry.EventRenamed)
	m.broadcaster.Publish(events.Event{Type: events.EventRefresh, Path: rec.Path})
}

// AssetUpdated implements registry.Handler. Path membership is unchanged, so
// no folder rebuild is needed.
func (m *Manager) AssetUpdated(rec vault.Record) {
	if !vault.TrackedType(rec.Type) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return
	}

	m.index.Upsert(rec)
	metrics.RecordLifecycleEvent(registry.EventUpdated)
}

func (m *Manager) removeLocked(path string) {
	m.index.Remove(path)
	m.store.Remove(path)
	m.thumbs.Invalidate(path)
}

// RootFolder returns the synthetic root of the folder tree.
func (m *Manager) RootFolder() *foldertree.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized || m.tree == nil {
		return nil
	}
	return m.tree.Root()
}

// FindFolder returns the folder node for a path.
func (m *Manager) FindFolder(path string) (*foldertree.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized || m.tree == nil {
		return nil, false
	}
	return m.tree.Find(path)
}

// MaterialsInFolder returns the items attached to a folder, sorted by the
// active sort mode. Unknown folders yield an empty result.
func (m *Manager) MaterialsInFolder(path string) []*vault.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized || m.tree == nil {
		return nil
	}

	node, ok := m.tree.Find(path)
	if !ok {
		return nil
	}

	items := make([]*vault.Item, 0, len(node.Items))
	for _, itemPath := range node.Items {
		if item, found := m.index.Get(itemPath); found {
			items = append(items, item)
		}
	}
	index.Sort(items, m.settings.SortMode)
	return items
}

// Materials returns every indexed item, sorted by the active sort mode.
func (m *Manager) Materials() []*vault.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized {
		return nil
	}

	items := make([]*vault.Item, 0, m.index.Len())
	for item := range m.index.All() {
		items = append(items, item)
	}
	index.Sort(items, m.settings.SortMode)
	return items
}

// MaterialByPath returns the indexed item for an asset path.
func (m *Manager) MaterialByPath(path string) (*vault.Item, bool) {
	if !m.Initialized() {
		return nil, false
	}
	return m.index.Get(path)
}

// Search matches the term against display names and package paths,
// case-insensitively.
func (m *Manager) Search(term string) []*vault.Item {
	m.mu.RLock()
	mode := m.settings.SortMode
	ok := m.initialized
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return m.index.Search(term, mode)
}

// FilterByTag returns items carrying the exact tag.
func (m *Manager) FilterByTag(tag string) []*vault.Item {
	m.mu.RLock()
	mode := m.settings.SortMode
	ok := m.initialized
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return m.index.FilterByTag(tag, mode)
}

// LoadMetadata returns the stored metadata for an asset path, refreshing the
// indexed item from the sidecar store.
func (m *Manager) LoadMetadata(path string) (vault.Metadata, bool) {
	item, ok := m.MaterialByPath(path)
	if !ok {
		return vault.Metadata{}, false
	}
	item.Metadata = m.store.Load(item.Record)
	return item.Metadata, true
}

// SaveMetadata updates the item's metadata and persists it. The in-memory
// record always reflects the save; a disk failure is returned for operator
// feedback but leaves the system consistent.
func (m *Manager) SaveMetadata(path string, md vault.Metadata) error {
	item, ok := m.MaterialByPath(path)
	if !ok {
		return fmt.Errorf("unknown asset %s", path)
	}
	md.Touch()
	item.Metadata = md
	return m.store.Save(item.Record, md)
}

// Thumbnail returns the cached artifact for an asset at the given size, or
// a placeholder while population runs. size <= 0 uses the settings size.
func (m *Manager) Thumbnail(path string, size int) *thumbcache.Artifact {
	if size <= 0 {
		size = m.Settings().ThumbnailSize
	}
	item, ok := m.MaterialByPath(path)
	if !ok {
		return m.thumbs.DefaultArtifact()
	}
	return m.thumbs.Get(item, size)
}

// RequestThumbnail schedules thumbnail population without returning an
// artifact.
func (m *Manager) RequestThumbnail(path string, size int) {
	if size <= 0 {
		size = m.Settings().ThumbnailSize
	}
	if item, ok := m.MaterialByPath(path); ok {
		m.thumbs.RequestPopulate(item, size)
	}
}

// Categories rebuilds and returns the category view.
func (m *Manager) Categories() []*category.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized || m.tree == nil {
		return nil
	}
	m.categories.Rebuild(m.tree)
	return m.categories.Categories()
}

// Tags returns the distinct tags across all indexed items.
func (m *Manager) Tags() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized || m.tree == nil {
		return nil
	}
	return m.categories.Tags(m.tree)
}

// DeleteCategory moves the members of a category to Uncategorized,
// persisting each item. Returns the number of items moved.
func (m *Manager) DeleteCategory(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized || m.tree == nil {
		return 0
	}
	m.categories.Rebuild(m.tree)
	return m.categories.DeleteCategory(m.tree, name)
}

// DeleteTag removes a tag from every item carrying it, persisting each item.
// Returns the number of items changed.
func (m *Manager) DeleteTag(tag string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized || m.tree == nil {
		return 0
	}
	return m.categories.DeleteTag(m.tree, tag)
}

// LoadDependencies resolves the asset payload and records its texture
// dependencies on the item. Dependencies stay empty until this is called.
func (m *Manager) LoadDependencies(ctx context.Context, path string) ([]string, error) {
	item, ok := m.MaterialByPath(path)
	if !ok {
		return nil, fmt.Errorf("unknown asset %s", path)
	}

	payload, err := item.Ref.Resolve(ctx, m.resolver)
	if err != nil {
		return nil, err
	}

	item.TextureDependencies = vault.ParseTextureRefs(payload.Data)
	return item.TextureDependencies, nil
}

// ApplyToSelection resolves the asset and hands it to the host applier.
// Returns the number of components modified.
func (m *Manager) ApplyToSelection(ctx context.Context, path string) (int, error) {
	if m.applier == nil {
		return 0, fmt.Errorf("no applier configured")
	}
	item, ok := m.MaterialByPath(path)
	if !ok {
		return 0, fmt.Errorf("unknown asset %s", path)
	}

	payload, err := item.Ref.Resolve(ctx, m.resolver)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve asset: %w", err)
	}
	return m.applier.Apply(ctx, payload)
}

// Settings returns the active settings.
func (m *Manager) Settings() vault.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// ApplySettings replaces the active settings, persists them when a settings
// file is configured, and notifies subscribers.
func (m *Manager) ApplySettings(s vault.Settings) {
	if s.ThumbnailSize < 32 {
		s.ThumbnailSize = 32
	} else if s.ThumbnailSize > 512 {
		s.ThumbnailSize = 512
	}

	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()

	if m.settingsFile != "" {
		if err := SaveSettings(m.settingsFile, s); err != nil {
			logging.Warn("settings not persisted", zap.Error(err))
		}
	}
	m.broadcaster.Publish(events.Event{Type: events.EventSettings, Settings: &s})
}

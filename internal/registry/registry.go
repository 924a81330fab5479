// Package registry defines the asset lifecycle event source consumed by the
// browser core, plus a filesystem-backed implementation for running the core
// outside an engine.
package registry

import (
	"github.com/materialvault/materialvault/internal/vault"
)

// Lifecycle event kinds.
const (
	EventAdded   = "added"
	EventRemoved = "removed"
	EventRenamed = "renamed"
	EventUpdated = "updated"
)

// Handler receives asset lifecycle notifications. Implementations must not
// assume a particular calling goroutine.
type Handler interface {
	AssetAdded(rec vault.Record)
	AssetRemoved(rec vault.Record)
	AssetRenamed(rec vault.Record, oldPath string)
	AssetUpdated(rec vault.Record)
}

// Source is the external asset registry. The core subscribes on
// initialization and unsubscribes on teardown.
type Source interface {
	// Subscribe registers a handler and returns an unsubscribe function.
	Subscribe(h Handler) (unsubscribe func())

	// Records returns the current set of known assets for an initial scan.
	Records() []vault.Record
}

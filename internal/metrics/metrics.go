// Package metrics provides Prometheus metrics for the MaterialVault core.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Index metrics
	indexItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "materialvault_index_items",
			Help: "Number of assets in the index",
		},
	)

	folderNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "materialvault_folder_nodes",
			Help: "Number of nodes in the folder tree",
		},
	)

	refreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "materialvault_refresh_duration_seconds",
			Help:    "Time to rebuild the index and folder tree",
			Buckets: prometheus.DefBuckets,
		},
	)

	lifecycleEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materialvault_lifecycle_events_total",
			Help: "Total asset lifecycle events handled",
		},
		[]string{"type"},
	)

	// Thumbnail metrics
	thumbCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "materialvault_thumb_cache_entries",
			Help: "Number of entries in the thumbnail cache",
		},
	)

	thumbPopulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materialvault_thumb_populations_total",
			Help: "Total thumbnail population attempts",
		},
		[]string{"status"},
	)

	thumbEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "materialvault_thumb_evictions_total",
			Help: "Total thumbnail cache evictions",
		},
	)

	// Metadata sidecar metrics
	metadataLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materialvault_metadata_loads_total",
			Help: "Total metadata sidecar loads",
		},
		[]string{"status"},
	)

	metadataSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materialvault_metadata_saves_total",
			Help: "Total metadata sidecar saves",
		},
		[]string{"status"},
	)

	// Event broadcast metrics
	subscribersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "materialvault_event_subscribers_active",
			Help: "Number of active event subscribers",
		},
	)

	eventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materialvault_events_published_total",
			Help: "Total events published to subscribers",
		},
		[]string{"type"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetIndexItems sets the current asset index size.
func SetIndexItems(n int) {
	indexItems.Set(float64(n))
}

// SetFolderNodes sets the current folder tree node count.
func SetFolderNodes(n int) {
	folderNodes.Set(float64(n))
}

// ObserveRefresh records the duration of a full refresh.
func ObserveRefresh(d time.Duration) {
	refreshDuration.Observe(d.Seconds())
}

// RecordLifecycleEvent records a handled lifecycle event.
func RecordLifecycleEvent(eventType string) {
	lifecycleEventsTotal.WithLabelValues(eventType).Inc()
}

// SetThumbCacheEntries sets the current thumbnail cache size.
func SetThumbCacheEntries(n int) {
	thumbCacheEntries.Set(float64(n))
}

// RecordThumbPopulation records a thumbnail population attempt.
func RecordThumbPopulation(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	thumbPopulationsTotal.WithLabelValues(status).Inc()
}

// RecordThumbEvictions records cache evictions.
func RecordThumbEvictions(n int) {
	thumbEvictionsTotal.Add(float64(n))
}

// RecordMetadataLoad records a sidecar load.
func RecordMetadataLoad(status string) {
	metadataLoadsTotal.WithLabelValues(status).Inc()
}

// RecordMetadataSave records a sidecar save.
func RecordMetadataSave(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	metadataSavesTotal.WithLabelValues(status).Inc()
}

// SetSubscribersActive sets the active event subscriber count.
func SetSubscribersActive(n int) {
	subscribersActive.Set(float64(n))
}

// RecordEventPublished records a published event.
func RecordEventPublished(eventType string) {
	eventsPublishedTotal.WithLabelValues(eventType).Inc()
}

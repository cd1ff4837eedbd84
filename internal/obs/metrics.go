// Copyright 2025 James Ross
package obs

import (
    "fmt"
    "net/http"

    "github.com/gauntlet-host/launcherd/internal/config"
    "github.com/prometheus/client_golang/prometheus"
    promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    PluginsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "plugins_loaded_total",
        Help: "Total number of plugins successfully loaded",
    })
    PluginsLoadFailed = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "plugins_load_failed_total",
        Help: "Total number of plugin load failures",
    })
    PluginsUnloaded = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "plugins_unloaded_total",
        Help: "Total number of plugins unloaded",
    })
    PluginsActive = prometheus.NewGauge(prometheus.GaugeOpts{
        Name: "plugins_active",
        Help: "Number of plugin runtimes currently running",
    })
    PluginRuntimeCrashes = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "plugin_runtime_crashes_total",
        Help: "Total number of plugin runtime panics/crashes, by plugin",
    }, []string{"plugin_id"})
    PluginOpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
        Name:    "plugin_op_duration_seconds",
        Help:    "Histogram of host-op call durations exposed to plugins",
        Buckets: prometheus.DefBuckets,
    }, []string{"op"})
    PluginOpDenied = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "plugin_op_permission_denied_total",
        Help: "Total number of host-op calls rejected for missing permission",
    }, []string{"op", "plugin_id"})
    WidgetValidationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "widget_validation_failures_total",
        Help: "Total number of widget tree validation failures, by reason",
    }, []string{"reason"})
    WidgetRenderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
        Name:    "widget_render_duration_seconds",
        Help:    "Histogram of widget tree reconciliation durations",
        Buckets: prometheus.DefBuckets,
    })
    SearchQueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
        Name:    "search_query_duration_seconds",
        Help:    "Histogram of search index query durations",
        Buckets: prometheus.DefBuckets,
    })
    SearchIndexSize = prometheus.NewGauge(prometheus.GaugeOpts{
        Name: "search_index_items",
        Help: "Current number of items held in the search index",
    })
    ShortcutDispatches = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "shortcut_dispatches_total",
        Help: "Total number of global shortcut events dispatched to a handler",
    })
    ShortcutUnmatched = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "shortcut_unmatched_total",
        Help: "Total number of OS hotkey events with no registered handler",
    })
)

func init() {
    prometheus.MustRegister(
        PluginsLoaded, PluginsLoadFailed, PluginsUnloaded, PluginsActive,
        PluginRuntimeCrashes, PluginOpDuration, PluginOpDenied,
        WidgetValidationFailures, WidgetRenderDuration,
        SearchQueryDuration, SearchIndexSize,
        ShortcutDispatches, ShortcutUnmatched,
    )
}

// StartMetricsServer exposes /metrics and returns a server for controlled shutdown.
// StartMetricsServer is retained for compatibility but consider using StartHTTPServer
// which also registers health endpoints.
func StartMetricsServer(cfg *config.Config) *http.Server {
    mux := http.NewServeMux()
    mux.Handle("/metrics", promhttp.Handler())
    srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Observability.MetricsPort), Handler: mux}
    go func() { _ = srv.ListenAndServe() }()
    return srv
}

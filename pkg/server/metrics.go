package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	listingRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tyrefinder_listing_total",
		Help: "The total number of listing filter requests",
	})
	filterChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tyrefinder_filter_changes_total",
		Help: "The total number of dropdown changes per binding",
	}, []string{"binding"})
	finderSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tyrefinder_finder_searches_total",
		Help: "The total number of find-your-tyre searches",
	})
	pdfExports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tyrefinder_exports_total",
		Help: "The total number of table PDF exports",
	})
	pdfExportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tyrefinder_export_failures_total",
		Help: "The total number of failed table PDF exports",
	})
	catalogItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tyrefinder_catalog_items",
		Help: "The number of products in the current catalog",
	})
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tyrefinder_sessions",
		Help: "The number of visitor sessions held in memory",
	})
)

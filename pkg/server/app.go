// Package server exposes the tyre listing bindings over http. Every visitor
// gets a session holding their own controllers.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/matst80/tyre-finder/pkg/binding"
	"github.com/matst80/tyre-finder/pkg/catalog"
	"github.com/matst80/tyre-finder/pkg/common"
	"github.com/matst80/tyre-finder/pkg/export"
	"github.com/matst80/tyre-finder/pkg/gallery"
	"github.com/matst80/tyre-finder/pkg/messaging"
	"github.com/matst80/tyre-finder/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Store      *catalog.Store
	Cache      *Cache
	Tracking   types.Tracking
	Exporter   *export.Exporter
	Galleries  *gallery.Loader
	ListingTTL time.Duration
	// Admin guards /admin routes, they answer 403 without it.
	Admin *AdminAuth
	// ExportHosts are the hosts the pdf export may render.
	ExportHosts []string
	// Notify publishes a catalog change after an admin reload.
	Notify func(change messaging.CatalogChange) error
}

type App struct {
	store        *catalog.Store
	engines      atomic.Pointer[binding.Engines]
	sessions     *SessionStore
	cache        *Cache
	listingCache *CacheHelper[binding.ListingResult]
	listingTTL   time.Duration
	tracker      types.Tracking
	exporter     *export.Exporter
	galleries    *gallery.Loader
	admin        *AdminAuth
	exportHosts  []string
	notify       func(change messaging.CatalogChange) error
}

func NewApp(opts Options) *App {
	a := &App{
		store:      opts.Store,
		sessions:   NewSessionStore(),
		cache:      opts.Cache,
		listingTTL: opts.ListingTTL,
		tracker:    opts.Tracking,
		exporter:   opts.Exporter,
		galleries:  opts.Galleries,
		admin:      opts.Admin,
		notify:     opts.Notify,
	}
	for _, host := range opts.ExportHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			a.exportHosts = append(a.exportHosts, host)
		}
	}
	if a.listingTTL <= 0 {
		a.listingTTL = 10 * time.Minute
	}
	if opts.Cache != nil {
		a.listingCache = NewCacheHelper[binding.ListingResult](opts.Cache)
	}
	if a.store == nil {
		a.store = catalog.NewStaticStore(&catalog.Catalog{})
	}
	a.setCatalog(a.store.Get())
	a.store.OnChange(a.setCatalog)
	return a
}

func (a *App) setCatalog(c *catalog.Catalog) {
	e := binding.NewEngines(c)
	a.engines.Store(e)
	catalogItems.Set(float64(len(e.Catalog.Products)))
	if a.galleries != nil {
		a.galleries.Forget()
	}
	if a.cache != nil {
		a.cache.Flush()
	}
}

// Engines is the current snapshot. Sessions move to it on their next request.
func (a *App) Engines() *binding.Engines {
	return a.engines.Load()
}

func (a *App) Sessions() *SessionStore {
	return a.sessions
}

// Reload asks the store for a new snapshot without publishing a change.
func (a *App) Reload(ctx context.Context) (*catalog.Catalog, error) {
	return a.store.Reload(ctx)
}

// OnCatalogChange is the broker callback: another instance or the publisher
// reported new markup.
func (a *App) OnCatalogChange(change messaging.CatalogChange) error {
	log.Infof("Catalog change from %s (%s), reloading", change.Source, change.Reason)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	_, err := a.Reload(ctx)
	if errors.Is(err, catalog.ErrNoProducts) {
		return nil
	}
	return err
}

func (a *App) trackFilter(sessionId, name string, selection types.Selection, resultLen int, r *http.Request) {
	filterChanges.WithLabelValues(name).Inc()
	if a.tracker != nil {
		a.tracker.TrackFilter(sessionId, name, selection, resultLen, r)
	}
}

func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("OPTIONS /api/", common.RespondToOptions)

	mux.HandleFunc("GET /api/listing", common.JsonHandler(a.tracker, a.Listing))

	mux.HandleFunc("GET /api/finder", common.JsonHandler(a.tracker, a.FinderState))
	mux.HandleFunc("POST /api/finder/change", common.JsonHandler(a.tracker, a.FinderChange))
	mux.HandleFunc("GET /api/finder/search", common.JsonHandler(a.tracker, a.FinderSearch))
	mux.HandleFunc("POST /api/finder/search", common.JsonHandler(a.tracker, a.FinderSearch))

	mux.HandleFunc("GET /api/sidebar", common.JsonHandler(a.tracker, a.SidebarState))
	mux.HandleFunc("POST /api/sidebar/change", common.JsonHandler(a.tracker, a.SidebarChange))
	mux.HandleFunc("POST /api/sidebar/clear", common.JsonHandler(a.tracker, a.SidebarClear))

	mux.HandleFunc("GET /api/table", common.JsonHandler(a.tracker, a.TableState))
	mux.HandleFunc("POST /api/table/change", common.JsonHandler(a.tracker, a.TableChange))

	mux.HandleFunc("GET /api/gallery/{slug}", common.JsonHandler(a.tracker, a.GalleryState))
	mux.HandleFunc("POST /api/gallery/{slug}/select", common.JsonHandler(a.tracker, a.GallerySelect))

	mux.HandleFunc("GET /api/export/pdf", a.ExportPdf)

	mux.HandleFunc("POST /admin/reload", a.admin.Middleware(common.JsonHandler(a.tracker, a.ReloadCatalog)))
	return mux
}

// DebugHandler serves health and prometheus metrics on the debug listener.
func (a *App) DebugHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

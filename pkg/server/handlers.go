package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/matst80/tyre-finder/pkg/binding"
	"github.com/matst80/tyre-finder/pkg/catalog"
	"github.com/matst80/tyre-finder/pkg/common"
	"github.com/matst80/tyre-finder/pkg/export"
	"github.com/matst80/tyre-finder/pkg/gallery"
	"github.com/matst80/tyre-finder/pkg/messaging"
	log "github.com/sirupsen/logrus"
)

var (
	ErrGalleriesDisabled = errors.New("product galleries are not configured")
	ErrExportDisabled    = errors.New("pdf export is not configured")
	ErrInvalidUrl        = errors.New("url must be an absolute http(s) url")
	ErrHostNotAllowed    = errors.New("export of this host is not allowed")
)

func (a *App) Listing(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	listingRequests.Inc()
	e := a.Engines()
	ctx := r.Context()
	key := fmt.Sprintf("listing:%d:%s", e.Catalog.LoadedAt.UnixNano(), r.URL.RawQuery)

	var result binding.ListingResult
	err := a.listingCache.Handle(ctx, key, &result, func() binding.ListingResult {
		return binding.NewListing(e).Apply(ctx, r.URL.RawQuery)
	}, a.listingTTL)
	if err != nil {
		log.Warnf("Unable to cache %s: %v", key, err)
	}
	if result.Applied {
		a.trackFilter(sessionId, "listing", result.Selection, result.Report.Matched, r)
	}
	w.Header().Set("Cache-Control", "private, stale-while-revalidate=60")
	return enc.Encode(result)
}

func (a *App) FinderState(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	return a.sessions.With(r.Context(), sessionId, a.Engines(), func(s *Session) error {
		return enc.Encode(s.Finder().View())
	})
}

func (a *App) FinderChange(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	var req ChangeRequest
	if err := decodeRequest(r, &req); err != nil {
		return common.ErrorResponse(w, http.StatusBadRequest, err)
	}
	ctx := r.Context()
	return a.sessions.With(ctx, sessionId, a.Engines(), func(s *Session) error {
		finder := s.Finder()
		view, err := finder.Change(ctx, req.Dimension, req.Value)
		if err != nil {
			return common.ErrorResponse(w, http.StatusBadRequest, err)
		}
		a.trackFilter(sessionId, "finder", finder.Selection(), view.Matched, r)
		return enc.Encode(view)
	})
}

// FinderSearch redirects to the search target, or returns it as json when
// the client asks for json.
func (a *App) FinderSearch(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	return a.sessions.With(r.Context(), sessionId, a.Engines(), func(s *Session) error {
		location, err := s.Finder().Search()
		if err != nil {
			return common.ErrorResponse(w, http.StatusConflict, err)
		}
		finderSearches.Inc()
		if a.tracker != nil {
			a.tracker.TrackNavigation(sessionId, location)
		}
		if wantsJson(r) {
			return enc.Encode(map[string]string{"location": location})
		}
		w.Header().Del("Content-Type")
		http.Redirect(w, r, location, http.StatusFound)
		return nil
	})
}

func (a *App) SidebarState(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	ctx := r.Context()
	return a.sessions.With(ctx, sessionId, a.Engines(), func(s *Session) error {
		return enc.Encode(s.Sidebar(ctx).View())
	})
}

func (a *App) SidebarChange(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	var req ChangeRequest
	if err := decodeRequest(r, &req); err != nil {
		return common.ErrorResponse(w, http.StatusBadRequest, err)
	}
	ctx := r.Context()
	return a.sessions.With(ctx, sessionId, a.Engines(), func(s *Session) error {
		sidebar := s.Sidebar(ctx)
		view, err := sidebar.Change(ctx, req.Dimension, req.Value)
		if err != nil {
			return common.ErrorResponse(w, http.StatusBadRequest, err)
		}
		a.trackFilter(sessionId, "sidebar", sidebar.Selection(), view.Report.Matched, r)
		return enc.Encode(view)
	})
}

func (a *App) SidebarClear(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	ctx := r.Context()
	return a.sessions.With(ctx, sessionId, a.Engines(), func(s *Session) error {
		view := s.Sidebar(ctx).Clear(ctx)
		return enc.Encode(view)
	})
}

func (a *App) TableState(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	ctx := r.Context()
	return a.sessions.With(ctx, sessionId, a.Engines(), func(s *Session) error {
		return enc.Encode(s.Table(ctx).View())
	})
}

func (a *App) TableChange(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	var req ChangeRequest
	if err := decodeRequest(r, &req); err != nil {
		return common.ErrorResponse(w, http.StatusBadRequest, err)
	}
	ctx := r.Context()
	return a.sessions.With(ctx, sessionId, a.Engines(), func(s *Session) error {
		table := s.Table(ctx)
		view, err := table.Change(ctx, req.Dimension, req.Value)
		if err != nil {
			return common.ErrorResponse(w, http.StatusBadRequest, err)
		}
		a.trackFilter(sessionId, "table", table.Selection(), view.Visible, r)
		return enc.Encode(view)
	})
}

type galleryResponse struct {
	*gallery.Gallery
	Active int `json:"active"`
}

func (a *App) withGallery(w http.ResponseWriter, r *http.Request, sessionId string, fn func(g *gallery.Gallery) error) error {
	if a.galleries == nil {
		return common.ErrorResponse(w, http.StatusNotFound, ErrGalleriesDisabled)
	}
	ctx := r.Context()
	slug := r.PathValue("slug")
	return a.sessions.With(ctx, sessionId, a.Engines(), func(s *Session) error {
		g, err := s.Gallery(ctx, slug, a.galleries)
		if errors.Is(err, gallery.ErrNoGallery) {
			return common.ErrorResponse(w, http.StatusNotFound, err)
		}
		if err != nil {
			log.Warnf("Unable to load gallery %s: %v", slug, err)
			return common.ErrorResponse(w, http.StatusBadGateway, err)
		}
		return fn(g)
	})
}

func (a *App) GalleryState(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	return a.withGallery(w, r, sessionId, func(g *gallery.Gallery) error {
		return enc.Encode(galleryResponse{Gallery: g, Active: g.Active()})
	})
}

func (a *App) GallerySelect(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	var req SelectRequest
	if err := decodeRequest(r, &req); err != nil {
		return common.ErrorResponse(w, http.StatusBadRequest, err)
	}
	return a.withGallery(w, r, sessionId, func(g *gallery.Gallery) error {
		return enc.Encode(g.Select(req.Index))
	})
}

func validExportUrl(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	return u, (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (a *App) exportAllowed(u *url.URL) bool {
	return slices.Contains(a.exportHosts, strings.ToLower(u.Hostname()))
}

// ExportPdf renders the table of the page at ?url= and streams it back as a
// pdf attachment.
func (a *App) ExportPdf(w http.ResponseWriter, r *http.Request) {
	if a.exporter == nil {
		common.ErrorResponse(w, http.StatusServiceUnavailable, ErrExportDisabled)
		return
	}
	var req ExportRequest
	if err := decodeRequest(r, &req); err != nil {
		common.ErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	u, ok := validExportUrl(req.Url)
	if !ok {
		common.ErrorResponse(w, http.StatusBadRequest, ErrInvalidUrl)
		return
	}
	if !a.exportAllowed(u) {
		log.Warnf("Rejected export of %s", req.Url)
		common.ErrorResponse(w, http.StatusForbidden, ErrHostNotAllowed)
		return
	}
	buf, err := a.exporter.Export(r.Context(), req.Url)
	if err != nil {
		pdfExportFailures.Inc()
		log.Errorf("Unable to export %s: %v", req.Url, err)
		status := http.StatusBadGateway
		if errors.Is(err, export.ErrNoTable) {
			status = http.StatusNotFound
		}
		common.ErrorResponse(w, status, err)
		return
	}
	pdfExports.Inc()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.exporter.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(buf.Bytes()); err != nil {
		log.Warnf("Unable to write pdf: %v", err)
	}
}

type reloadResponse struct {
	Products int       `json:"products"`
	Rows     int       `json:"rows"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loadedAt"`
	Warning  string    `json:"warning,omitempty"`
}

func (a *App) ReloadCatalog(w http.ResponseWriter, r *http.Request, sessionId string, enc common.Encoder) error {
	c, err := a.Reload(r.Context())
	if err != nil && !errors.Is(err, catalog.ErrNoProducts) {
		log.Errorf("Catalog reload failed: %v", err)
		return common.ErrorResponse(w, http.StatusBadGateway, err)
	}
	if c == nil {
		c = &catalog.Catalog{}
	}
	resp := reloadResponse{
		Products: len(c.Products),
		Rows:     len(c.Rows),
		Source:   c.Source,
		LoadedAt: c.LoadedAt,
	}
	if err != nil {
		resp.Warning = err.Error()
	} else if a.notify != nil {
		change := messaging.CatalogChange{Source: c.Source, Reason: "admin reload", Time: time.Now()}
		if err := a.notify(change); err != nil {
			log.Warnf("Unable to publish catalog change: %v", err)
		}
	}
	return enc.Encode(resp)
}

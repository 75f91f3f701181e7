package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

var ErrNoGallery = errors.New("product page has no gallery")

// Loader reads product pages either from a site (base starting with http) or
// from a directory of <slug>.html files. Parsed galleries are kept and
// handed out as clones.
type Loader struct {
	Base   string
	client *retryablehttp.Client
	mu     sync.RWMutex
	loaded map[string]*Gallery
}

func NewLoader(base string, retryMax int) *Loader {
	client := retryablehttp.NewClient()
	client.Logger = stdlog.New(io.Discard, "", 0)
	if retryMax > 0 {
		client.RetryMax = retryMax
	}
	return &Loader{
		Base:   strings.TrimSuffix(base, "/"),
		client: client,
		loaded: make(map[string]*Gallery),
	}
}

func (l *Loader) isRemote() bool {
	return strings.HasPrefix(l.Base, "http://") || strings.HasPrefix(l.Base, "https://")
}

// Load returns a fresh copy of the gallery for slug.
func (l *Loader) Load(ctx context.Context, slug string) (*Gallery, error) {
	if slug == "" || strings.ContainsAny(slug, "/\\") || strings.Contains(slug, "..") {
		return nil, fmt.Errorf("invalid product slug %q", slug)
	}
	l.mu.RLock()
	g, ok := l.loaded[slug]
	l.mu.RUnlock()
	if ok {
		return g.Clone(), nil
	}

	var err error
	if l.isRemote() {
		g, err = l.fetch(ctx, slug)
	} else {
		g, err = l.read(slug)
	}
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNoGallery
	}
	l.mu.Lock()
	l.loaded[slug] = g
	l.mu.Unlock()
	log.Debugf("Loaded gallery for %s with %d thumbs", slug, len(g.Thumbs))
	return g.Clone(), nil
}

// Forget drops every parsed page, used when the catalog changes.
func (l *Loader) Forget() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.loaded)
}

func (l *Loader) read(slug string) (*Gallery, error) {
	f, err := os.Open(filepath.Join(l.Base, slug+".html"))
	if err != nil {
		return nil, fmt.Errorf("unable to read product page %s: %w", slug, err)
	}
	defer f.Close()
	return Parse(f)
}

func (l *Loader) fetch(ctx context.Context, slug string) (*Gallery, error) {
	url := l.Base + "/product/" + slug
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from %s: %d", url, resp.StatusCode)
	}
	return Parse(resp.Body)
}

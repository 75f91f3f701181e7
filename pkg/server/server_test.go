package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/matst80/tyre-finder/pkg/binding"
	"github.com/matst80/tyre-finder/pkg/catalog"
	"github.com/matst80/tyre-finder/pkg/common"
	"github.com/matst80/tyre-finder/pkg/export"
	"github.com/matst80/tyre-finder/pkg/gallery"
	"github.com/matst80/tyre-finder/pkg/types"
)

const pageHtml = `<html><body>
<div class="collection-list-item">
  <div class="product-data" data-category="Car / SUV" data-equipment="Tubeless" data-rim="R15,R16"
    data-size="195/65R15,205/55R16" data-pattern="Grip" data-tracode="C1" data-serialno="5" data-slug="grip"></div>
</div>
<div class="collection-list-item">
  <div class="product-data" data-category="Truck" data-equipment="Tube Type,Tubeless" data-rim="R22.5,8-Hole"
    data-size="11R22.5" data-pattern="Haul" data-tracode="D2"></div>
</div>
<div class="collection-list-item hidden">
  <div class="product-data" data-category="Car / SUV" data-rim="R16" data-size="205/55R16"
    data-pattern="Urban" data-tracode="C1" data-serialno="1"></div>
</div>
<table id="res_table"><tbody>
  <tr data-size="11R22.5" data-pr="16"></tr>
  <tr data-size="11R22.5" data-pr="18"></tr>
  <tr data-size="12R22.5" data-pr="18"></tr>
</tbody></table>
</body></html>`

const galleryHtml = `<img class="main-image" src="/img/main.jpg">
<div class="collection-list-thumb"><img class="thumb" src="/img/side.jpg"></div>`

func testApp(t *testing.T, opts Options) *App {
	t.Helper()
	if opts.Store == nil {
		c, err := catalog.ParseHtml(strings.NewReader(pageHtml), "test")
		if err != nil {
			t.Fatal(err)
		}
		opts.Store = catalog.NewStaticStore(c)
	}
	return NewApp(opts)
}

func send(h http.Handler, req *http.Request, sessionId string) *httptest.ResponseRecorder {
	if sessionId != "" {
		req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: sessionId})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Unable to decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestListingEndpoint(t *testing.T) {
	h := testApp(t, Options{}).Handler()
	rec := send(h, httptest.NewRequest(http.MethodGet, "/api/listing?category=Car%2FSUV&size=16", nil), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	result := decode[binding.ListingResult](t, rec)
	if !result.Applied || result.Selection.Get(types.Category) != "car-suv" {
		t.Errorf("Expected normalized selection, got %+v", result.Selection)
	}
	if result.Report.Matched != 0 || !result.Report.NoResults {
		t.Errorf("Expected whole token size match to fail, got %+v", result.Report)
	}

	rec = send(h, httptest.NewRequest(http.MethodGet, "/api/listing?category=Car%2FSUV", nil), "")
	result = decode[binding.ListingResult](t, rec)
	if result.Report.Matched != 2 {
		t.Errorf("Expected 2, got %d", result.Report.Matched)
	}

	rec = send(h, httptest.NewRequest(http.MethodGet, "/api/listing", nil), "")
	if result = decode[binding.ListingResult](t, rec); result.Applied {
		t.Errorf("Expected listing without params to be left alone")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Errorf("Expected a session cookie")
	}
}

func TestFinderFlow(t *testing.T) {
	h := testApp(t, Options{}).Handler()
	sid := uuid.NewString()

	rec := send(h, httptest.NewRequest(http.MethodGet, "/api/finder/search", nil), sid)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected search to be disabled, got %d", rec.Code)
	}

	rec = send(h, postForm("/api/finder/change", url.Values{"dimension": {"category"}, "value": {"Car / SUV"}}), sid)
	view := decode[binding.FinderView](t, rec)
	if view.Count != "2" || !view.SearchEnabled || view.Category != "car-suv" {
		t.Errorf("Expected car-suv with 2 matches, got %+v", view)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/finder/search", nil)
	req.Header.Set("Accept", "application/json")
	rec = send(h, req, sid)
	location := decode[map[string]string](t, rec)["location"]
	if location != "/products?category=car-suv" {
		t.Errorf("Expected listing url, got %s", location)
	}

	rec = send(h, postForm("/api/finder/change", url.Values{"dimension": {"pattern"}, "value": {"Grip"}}), sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	rec = send(h, httptest.NewRequest(http.MethodPost, "/api/finder/search", nil), sid)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/product/grip" {
		t.Errorf("Expected redirect to /product/grip, got %d %s", rec.Code, rec.Header().Get("Location"))
	}

	rec = send(h, postForm("/api/finder/change", url.Values{"dimension": {"width"}, "value": {"1"}}), sid)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown dimension, got %d", rec.Code)
	}

	other := decode[binding.FinderView](t, send(h, httptest.NewRequest(http.MethodGet, "/api/finder", nil), uuid.NewString()))
	if other.SearchEnabled || other.Count != "0" {
		t.Errorf("Expected a fresh form for another visitor, got %+v", other)
	}
}

func TestSidebarAndTable(t *testing.T) {
	h := testApp(t, Options{}).Handler()
	sid := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, "/api/sidebar/change", strings.NewReader(`{"dimension":"traCode","value":"D2"}`))
	req.Header.Set("Content-Type", "application/json")
	view := decode[binding.SidebarView](t, send(h, req, sid))
	if view.Report.Count != "Showing 1 of 3 products" || !view.HasInteracted {
		t.Errorf("Expected one truck, got %+v", view.Report)
	}

	view = decode[binding.SidebarView](t, send(h, httptest.NewRequest(http.MethodPost, "/api/sidebar/clear", nil), sid))
	if view.Report.Count != "Showing 3 of 3 products" {
		t.Errorf("Expected cleared sidebar, got %s", view.Report.Count)
	}

	table := decode[binding.TableView](t, send(h, postForm("/api/table/change", url.Values{"dimension": {"filter-ply"}, "value": {"18"}}), sid))
	if table.Visible != 2 {
		t.Errorf("Expected 2 rows, got %d", table.Visible)
	}
	for _, s := range table.Selects {
		if s.Id == types.Size && !slices.Equal(s.Options, []string{"11R22.5", "12R22.5"}) {
			t.Errorf("Expected sizes with ply 18, got %v", s.Options)
		}
	}
}

func TestGalleryEndpoints(t *testing.T) {
	h := testApp(t, Options{}).Handler()
	rec := send(h, httptest.NewRequest(http.MethodGet, "/api/gallery/grip", nil), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a loader, got %d", rec.Code)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "grip.html"), []byte(galleryHtml), 0o644); err != nil {
		t.Fatal(err)
	}
	h = testApp(t, Options{Galleries: gallery.NewLoader(dir, 0)}).Handler()
	sid := uuid.NewString()

	swap := decode[gallery.Swap](t, send(h, postForm("/api/gallery/grip/select", url.Values{"index": {"1"}}), sid))
	if !swap.Changed || swap.Src != "/img/side.jpg" {
		t.Errorf("Expected swap to side image, got %+v", swap)
	}
	type galleryState struct {
		MainSrc string `json:"mainSrc"`
		Active  int    `json:"active"`
	}
	state := decode[galleryState](t, send(h, httptest.NewRequest(http.MethodGet, "/api/gallery/grip", nil), sid))
	if state.Active != 1 || state.MainSrc != "/img/side.jpg" {
		t.Errorf("Expected the session to keep the active thumb, got %+v", state)
	}
	state = decode[galleryState](t, send(h, httptest.NewRequest(http.MethodGet, "/api/gallery/grip", nil), uuid.NewString()))
	if state.Active != 0 {
		t.Errorf("Expected a fresh gallery for another visitor, got %d", state.Active)
	}
}

func TestExportDisabled(t *testing.T) {
	h := testApp(t, Options{}).Handler()
	rec := send(h, httptest.NewRequest(http.MethodGet, "/api/export/pdf?url=https://example.com/sizes", nil), "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

func TestValidExportUrl(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/p": true,
		"http://localhost:8080": true,
		"file:///etc/passwd":    false,
		"/relative":             false,
		"":                      false,
	}
	for raw, expected := range cases {
		if _, got := validExportUrl(raw); got != expected {
			t.Errorf("Expected %v for %q, got %v", expected, raw, got)
		}
	}
}

func TestExportRejectsUnlistedHost(t *testing.T) {
	h := testApp(t, Options{
		Exporter:    export.NewExporter(export.DefaultConfig()),
		ExportHosts: []string{" Tyres.Example.com "},
	}).Handler()
	for _, target := range []string{
		"http://169.254.169.254/latest/meta-data/",
		"http://localhost:8080/sizes",
		"https://tyres.example.com.evil.io/sizes",
	} {
		rec := send(h, httptest.NewRequest(http.MethodGet, "/api/export/pdf?url="+url.QueryEscape(target), nil), "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403 for %s, got %d", target, rec.Code)
		}
	}

	app := testApp(t, Options{ExportHosts: []string{"tyres.example.com"}})
	u, _ := validExportUrl("https://TYRES.example.com:443/sizes")
	if !app.exportAllowed(u) {
		t.Errorf("Expected listed host to be allowed")
	}
}

func TestAdminRequiresCredentials(t *testing.T) {
	h := testApp(t, Options{}).Handler()
	if rec := send(h, httptest.NewRequest(http.MethodPost, "/admin/reload", nil), ""); rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without admin config, got %d", rec.Code)
	}

	admin := &AdminAuth{ApiKey: "key", Secret: []byte("secret")}
	h = testApp(t, Options{Admin: admin}).Handler()
	if rec := send(h, httptest.NewRequest(http.MethodPost, "/admin/reload", nil), ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if rec := send(h, req, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a wrong key, got %d", rec.Code)
	}

	forged, _ := (&AdminAuth{Secret: []byte("other")}).NewToken("mallory", time.Hour)
	req = httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: forged})
	if rec := send(h, req, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a foreign token, got %d", rec.Code)
	}

	expired, _ := admin.NewToken("ops", -time.Minute)
	req = httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: expired})
	if rec := send(h, req, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for an expired token, got %d", rec.Code)
	}

	token, err := admin.NewToken("ops", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: token})
	if rec := send(h, req, ""); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with a signed cookie, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if rec := send(h, req, ""); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with a bearer token, got %d", rec.Code)
	}
}

func TestReloadRebindsSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listing.html")
	if err := os.WriteFile(path, []byte(pageHtml), 0o644); err != nil {
		t.Fatal(err)
	}
	store := catalog.NewStore(&catalog.FileSource{Path: path})
	if _, err := store.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	app := testApp(t, Options{Store: store, Admin: &AdminAuth{ApiKey: "key"}})
	h := app.Handler()
	sid := uuid.NewString()

	view := decode[binding.FinderView](t, send(h, postForm("/api/finder/change", url.Values{"dimension": {"category"}, "value": {"car-suv"}}), sid))
	if view.Count != "2" {
		t.Fatalf("Expected 2, got %s", view.Count)
	}

	smaller := strings.Replace(pageHtml, `data-category="Car / SUV" data-rim="R16"`, `data-category="Truck" data-rim="R16"`, 1)
	if err := os.WriteFile(path, []byte(smaller), 0o644); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer key")
	rec := send(h, req, "")
	if resp := decode[reloadResponse](t, rec); resp.Products != 3 || resp.Warning != "" {
		t.Errorf("Expected 3 products, got %+v", resp)
	}

	view = decode[binding.FinderView](t, send(h, httptest.NewRequest(http.MethodGet, "/api/finder", nil), sid))
	if view.Count != "1" || view.Category != "car-suv" {
		t.Errorf("Expected the session to follow the new catalog, got %+v", view)
	}
}

func TestSessionPrune(t *testing.T) {
	app := testApp(t, Options{})
	h := app.Handler()
	send(h, httptest.NewRequest(http.MethodGet, "/api/finder", nil), uuid.NewString())
	send(h, httptest.NewRequest(http.MethodGet, "/api/finder", nil), uuid.NewString())
	if app.Sessions().Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", app.Sessions().Len())
	}
	if removed := app.Sessions().Prune(0); removed != 2 || app.Sessions().Len() != 0 {
		t.Errorf("Expected all sessions pruned, got %d", removed)
	}
}

func TestCacheHelperWithoutCache(t *testing.T) {
	var helper *CacheHelper[int]
	var out int
	if err := helper.Handle(context.Background(), "k", &out, func() int { return 42 }, 0); err != nil || out != 42 {
		t.Errorf("Expected 42, got %d %v", out, err)
	}
}

func TestDebugHandler(t *testing.T) {
	h := testApp(t, Options{}).DebugHandler()
	rec := send(h, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("Expected ok, got %d %s", rec.Code, rec.Body.String())
	}
	rec = send(h, httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	if !strings.Contains(rec.Body.String(), "tyrefinder_catalog_items") {
		t.Errorf("Expected catalog gauge in metrics")
	}
}

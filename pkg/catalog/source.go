package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/matst80/tyre-finder/pkg/browser"
	"github.com/matst80/tyre-finder/pkg/types"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Source produces a fresh catalog each time Load is called.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
	String() string
}

type SourceConfig struct {
	Kind        string
	Path        string
	RenderDelay time.Duration
	RetryMax    int
	Browser     browser.Config
}

const DefaultRenderDelay = 200 * time.Millisecond

// NewSource picks a source implementation from its kind name.
func NewSource(cfg SourceConfig) (Source, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", "html", "file":
		return &FileSource{Path: cfg.Path}, nil
	case "url", "remote":
		return NewRemoteSource(cfg.Path, cfg.RetryMax), nil
	case "rendered", "browser":
		delay := cfg.RenderDelay
		if delay <= 0 {
			delay = DefaultRenderDelay
		}
		return &RenderedSource{Url: cfg.Path, RenderDelay: delay, Browser: cfg.Browser}, nil
	case "csv":
		return &CsvSource{Path: cfg.Path}, nil
	case "json":
		return &JsonSource{Path: cfg.Path}, nil
	}
	return nil, fmt.Errorf("unknown catalog source %q", cfg.Kind)
}

type FileSource struct {
	Path string
}

func (s *FileSource) String() string {
	return "file:" + s.Path
}

func (s *FileSource) Load(ctx context.Context) (*Catalog, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to read catalog file %s: %w", s.Path, err)
	}
	defer f.Close()
	return ParseHtml(f, s.String())
}

// RemoteSource fetches the listing page over http with retries.
type RemoteSource struct {
	Url    string
	client *retryablehttp.Client
}

func NewRemoteSource(url string, retryMax int) *RemoteSource {
	client := retryablehttp.NewClient()
	client.Logger = stdlog.New(io.Discard, "", 0)
	if retryMax > 0 {
		client.RetryMax = retryMax
	}
	return &RemoteSource{Url: url, client: client}
}

func (s *RemoteSource) String() string {
	return s.Url
}

func (s *RemoteSource) Load(ctx context.Context) (*Catalog, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.Url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.Url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from %s: %d", s.Url, resp.StatusCode)
	}
	return ParseHtml(resp.Body, s.String())
}

// RenderedSource lets a headless browser run the page scripts, waits for the
// render delay and reads the resulting DOM.
type RenderedSource struct {
	Url         string
	RenderDelay time.Duration
	Browser     browser.Config
}

func (s *RenderedSource) String() string {
	return "rendered:" + s.Url
}

func (s *RenderedSource) Load(ctx context.Context) (*Catalog, error) {
	b, err := browser.New(ctx, s.Browser)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	defer b.Close()

	var html string
	err = chromedp.Run(b.Ctx,
		chromedp.Navigate(s.Url),
		chromedp.Sleep(s.RenderDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", s.Url, err)
	}
	log.Debugf("Rendered %s (%d bytes)", s.Url, len(html))
	return ParseHtml(strings.NewReader(html), s.String())
}

// CsvSource reads a ';' separated export with a header row naming the
// attributes. A "hidden" column marks products rendered hidden.
type CsvSource struct {
	Path string
}

func (s *CsvSource) String() string {
	return "csv:" + s.Path
}

func (s *CsvSource) Load(ctx context.Context) (*Catalog, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", s.Path, err)
	}
	defer f.Close()
	products, err := ReadCsv(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse file as CSV for %s: %w", s.Path, err)
	}
	return &Catalog{Products: products, Source: s.String(), LoadedAt: time.Now()}, nil
}

func ReadCsv(r io.Reader) ([]*types.Item, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = ';'
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	items := make([]*types.Item, 0, len(records))
	var header []string
	for i, record := range records {
		if i == 0 {
			header = make([]string, len(record))
			for j, name := range record {
				header[j] = strings.ToLower(strings.TrimSpace(name))
			}
			continue
		}
		raw := make(map[string]string, len(header))
		hidden := false
		for j, value := range record {
			if j >= len(header) {
				break
			}
			if header[j] == HiddenClass {
				hidden = isTruthy(value)
				continue
			}
			raw[header[j]] = value
		}
		item := NewItemFromRaw(types.ItemId(len(items)+1), raw)
		item.Hidden = hidden
		items = append(items, item)
	}
	return items, nil
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", HiddenClass:
		return true
	}
	return false
}

// JsonSource reads a CMS export: either a plain array of items or an object
// with an "items" array whose entries keep their attributes under
// "fieldData".
type JsonSource struct {
	Path string
}

func (s *JsonSource) String() string {
	return "json:" + s.Path
}

func (s *JsonSource) Load(ctx context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", s.Path, err)
	}
	products, err := ReadJson(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return &Catalog{Products: products, Source: s.String(), LoadedAt: time.Now()}, nil
}

func ReadJson(data []byte) ([]*types.Item, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json")
	}
	root := gjson.ParseBytes(data)
	list := root
	if !root.IsArray() {
		list = root.Get("items")
	}
	items := make([]*types.Item, 0)
	for _, entry := range list.Array() {
		fields := entry
		if fd := entry.Get("fieldData"); fd.Exists() {
			fields = fd
		}
		raw := make(map[string]string, len(productAttributes))
		for _, name := range productAttributes {
			value := fields.Get(name)
			if !value.Exists() {
				continue
			}
			raw[name] = jsonValue(value)
		}
		item := NewItemFromRaw(types.ItemId(len(items)+1), raw)
		item.Hidden = entry.Get("isDraft").Bool() || entry.Get(HiddenClass).Bool()
		items = append(items, item)
	}
	return items, nil
}

// jsonValue flattens arrays into the comma separated form used in markup.
func jsonValue(value gjson.Result) string {
	if !value.IsArray() {
		return value.String()
	}
	parts := make([]string, 0)
	for _, v := range value.Array() {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ",")
}

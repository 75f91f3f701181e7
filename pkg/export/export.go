// Package export rasterises the size table of a page and wraps the image in
// a single A4 page PDF.
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"math"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/matst80/tyre-finder/pkg/browser"
	log "github.com/sirupsen/logrus"
)

var ErrNoTable = errors.New("table not found on page")

const (
	DefaultSelector = "#res_table"
	DefaultFileName = "download.pdf"
)

type Config struct {
	Selector    string
	FileName    string
	RenderDelay time.Duration
	// SettleDelay is the wait after scrolling to the top before capturing.
	SettleDelay time.Duration
	Browser     browser.Config
}

func DefaultConfig() Config {
	return Config{
		Selector:    DefaultSelector,
		FileName:    DefaultFileName,
		RenderDelay: 200 * time.Millisecond,
		SettleDelay: 300 * time.Millisecond,
		Browser:     browser.DefaultConfig(),
	}
}

type Exporter struct {
	cfg Config
}

func NewExporter(cfg Config) *Exporter {
	if cfg.Selector == "" {
		cfg.Selector = DefaultSelector
	}
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}
	return &Exporter{cfg: cfg}
}

func (e *Exporter) FileName() string {
	return e.cfg.FileName
}

// Capture opens url in a headless browser and returns a PNG of the table.
func (e *Exporter) Capture(ctx context.Context, url string) ([]byte, error) {
	b, err := browser.New(ctx, e.cfg.Browser)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	defer b.Close()

	var exists bool
	err = chromedp.Run(b.Ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(e.cfg.RenderDelay),
		chromedp.Evaluate(fmt.Sprintf("document.querySelector(%q) !== null", e.cfg.Selector), &exists),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}
	if !exists {
		return nil, ErrNoTable
	}

	var buf []byte
	err = chromedp.Run(b.Ctx,
		chromedp.Evaluate(`window.scrollTo({top: 0, behavior: "instant"})`, nil),
		chromedp.Sleep(e.cfg.SettleDelay),
		chromedp.Screenshot(e.cfg.Selector, &buf, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		if browser.IsBrowserClosed(err) {
			log.Warnf("Browser went away while capturing %s", url)
		}
		return nil, fmt.Errorf("failed to capture %s: %w", e.cfg.Selector, err)
	}
	log.Debugf("Captured %s from %s (%d bytes)", e.cfg.Selector, url, len(buf))
	return buf, nil
}

// Export captures the table on url and returns the PDF.
func (e *Exporter) Export(ctx context.Context, url string) (bytes.Buffer, error) {
	png, err := e.Capture(ctx, url)
	if err != nil {
		return bytes.Buffer{}, err
	}
	m, err := NewDocument(png)
	if err != nil {
		return bytes.Buffer{}, err
	}
	return m.Output()
}

// ExportFile writes the PDF for url to path.
func (e *Exporter) ExportFile(ctx context.Context, url, path string) error {
	png, err := e.Capture(ctx, url)
	if err != nil {
		return err
	}
	m, err := NewDocument(png)
	if err != nil {
		return err
	}
	return m.OutputFileAndClose(path)
}

// NewDocument places the image at the top of one A4 portrait page, scaled to
// the page width. Images taller than the page are shrunk to fit.
func NewDocument(png []byte) (pdf.Maroto, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("failed to read captured image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("captured image is empty")
	}

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(0, 0, 0)
	pageWidth, pageHeight := m.GetPageSize()
	_, top, _, bottom := m.GetPageMargins()
	// rows taller than the space left on the page are moved to a new page
	available := pageHeight - top - bottom - 1
	height := math.Min(float64(cfg.Height)*pageWidth/float64(cfg.Width), available)

	var imageErr error
	m.Row(height, func() {
		m.Col(12, func() {
			imageErr = m.Base64Image(base64.StdEncoding.EncodeToString(png), consts.Png, props.Rect{
				Left:    0,
				Top:     0,
				Percent: 100,
			})
		})
	})
	if imageErr != nil {
		return nil, fmt.Errorf("failed to add image: %w", imageErr)
	}
	return m, nil
}

// Package browser starts the headless Chrome used to render catalog pages and
// rasterise the size table.
package browser

import (
	"context"
	"errors"
	"strings"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	ExecPath     string
	WindowWidth  int
	WindowHeight int
	Timeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		WindowWidth:  1280,
		WindowHeight: 1024,
		Timeout:      60 * time.Second,
	}
}

// Context holds the browser context and the cancel funcs that tear it down.
type Context struct {
	Ctx         context.Context
	allocCancel context.CancelFunc
	ctxCancel   context.CancelFunc
}

// New starts a headless browser tab. The returned context is bounded by
// cfg.Timeout and by parent.
func New(parent context.Context, cfg Config) (*Context, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Debugf))
	if cfg.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, cfg.Timeout)
		inner := ctxCancel
		ctxCancel = func() {
			timeoutCancel()
			inner()
		}
	}

	c := &Context{
		Ctx:         ctx,
		allocCancel: allocCancel,
		ctxCancel:   ctxCancel,
	}

	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, product, _, _, _, err := cdpbrowser.GetVersion().Do(ctx)
		if err != nil {
			return err
		}
		log.Debugf("Started browser %s", product)
		return nil
	}))
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Context) Close() {
	if c.ctxCancel != nil {
		c.ctxCancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
}

// IsBrowserClosed reports whether err means the browser went away.
func IsBrowserClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"websocket: close", "target closed", "session closed", "broken pipe"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

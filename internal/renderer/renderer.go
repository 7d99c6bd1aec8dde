// Package renderer turns HTML or a remote URL into a PNG screenshot using a
// headless browser. Every render runs in its own browser session which is
// released on all exit paths; sessions are never pooled or shared.
package renderer

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "go-design-critic/internal/errors"
)

// renderSettleDelay gives the page time to finish loading images and fonts
// after the DOM is ready, standing in for a network-idle signal.
const renderSettleDelay = 1500 * time.Millisecond

// Options control viewport sizing and capture mode for a single render
type Options struct {
	Width    int
	Height   int
	FullPage bool
	Scale    float64
}

func (o *Options) setDefaults() {
	if o.Width <= 0 {
		o.Width = 600
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.Scale <= 0 {
		o.Scale = 2.0
	}
}

type Renderer interface {
	RenderHTML(ctx context.Context, html string, opts Options) ([]byte, error)
	RenderURL(ctx context.Context, url string, opts Options) ([]byte, error)
}

type chromeRenderer struct{}

// NewChromeRenderer creates a headless-Chrome backed renderer
func NewChromeRenderer() Renderer {
	return &chromeRenderer{}
}

func (r *chromeRenderer) RenderHTML(ctx context.Context, html string, opts Options) ([]byte, error) {
	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
	png, err := r.capture(ctx, dataURI, opts)
	if err != nil {
		return nil, apperrors.NewRenderError("failed to render HTML", err)
	}
	return png, nil
}

func (r *chromeRenderer) RenderURL(ctx context.Context, url string, opts Options) ([]byte, error) {
	png, err := r.capture(ctx, url, opts)
	if err != nil {
		return nil, apperrors.NewRenderError("failed to render URL", err)
	}
	return png, nil
}

func (r *chromeRenderer) capture(ctx context.Context, target string, opts Options) ([]byte, error) {
	opts.setDefaults()
	if ctx == nil {
		ctx = context.Background()
	}
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height), chromedp.EmulateScale(opts.Scale)),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(renderSettleDelay),
	}
	if opts.FullPage {
		// Quality 100 selects PNG output
		tasks = append(tasks, chromedp.FullScreenshot(&screenshot, 100))
	} else {
		tasks = append(tasks, chromedp.CaptureScreenshot(&screenshot))
	}
	if err := chromedp.Run(browserCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// Warmup starts and stops a headless browser once so the first render does
// not pay the full startup cost. A failure here is not fatal: renders launch
// their own sessions and surface their own errors.
func Warmup(ctx context.Context) error {
	headlessOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		browserCtx, cancel := chromedp.NewContext(ctx)
		defer cancel()
		headlessErr = chromedp.Run(browserCtx)
	})
	return headlessErr
}

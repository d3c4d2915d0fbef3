// Package browser owns the chromedp session and provides the human-paced
// page operations the rest of the pipeline is built on. It is the only
// package that talks to the browser engine.
package browser

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
)

// Link is an anchor harvested from the current page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Driver wraps a single browser session. It is not safe for concurrent
// use; the pipeline is strictly sequential by design.
type Driver struct {
	cfg    *config.Config
	logger *logging.Logger

	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// New launches the browser with the configured viewport, user agent and
// headless setting.
func New(parent context.Context, cfg *config.Config, logger *logging.Logger) (*Driver, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
		chromedp.UserAgent(cfg.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		// cdproto emits unmarshal warnings for events it does not know;
		// they are noise at this layer.
		msg := fmt.Sprintf(format, v...)
		if strings.Contains(msg, "could not unmarshal event") ||
			strings.Contains(msg, "unknown PrivateNetworkRequestPolicy") ||
			strings.Contains(msg, "unknown ClientNavigationReason") {
			return
		}
		log.Printf(format, v...)
	}))

	d := &Driver{cfg: cfg, logger: logger, ctx: ctx, cancelCtx: cancelCtx, cancelAlloc: cancelAlloc}

	// Starts the browser process eagerly so a broken install fails the
	// run before any company is touched.
	if err := chromedp.Run(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Success("Browser started")
	return d, nil
}

// Close tears down the browser session.
func (d *Driver) Close() {
	if d.cancelCtx != nil {
		d.cancelCtx()
	}
	if d.cancelAlloc != nil {
		d.cancelAlloc()
	}
	if d.logger != nil {
		d.logger.Info("Browser closed")
	}
}

// Navigate loads url and waits for the document body, bounded by the
// configured page timeout. Human-like delays frame the navigation.
func (d *Driver) Navigate(url string) error {
	d.HumanDelay(0, 0)
	d.logger.Info("Navigating to: %s", url)

	err := Retry(d.ctx, d.cfg.MaxRetries, d.cfg.RetryDelay, func() error {
		ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
		defer cancel()
		return chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	d.HumanDelay(0, 0)
	return nil
}

// Back returns to the previous page in session history.
func (d *Driver) Back() error {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.NavigateBack())
}

// HTML returns the current page's full markup.
func (d *Driver) HTML() (string, error) {
	var html string
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Location returns the current page URL.
func (d *Driver) Location() (string, error) {
	var url string
	ctx, cancel := context.WithTimeout(d.ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

const linksJS = `(() => {
	const anchors = Array.from(document.querySelectorAll('a'));
	return anchors.map(a => ({ href: a.href, text: a.textContent.trim() }));
})()`

// Links returns every anchor on the current page with its resolved href.
func (d *Driver) Links() ([]Link, error) {
	var links []Link
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Evaluate(linksJS, &links)); err != nil {
		return nil, fmt.Errorf("failed to collect links: %w", err)
	}
	return links, nil
}

// WaitVisible waits for the selector to become visible within timeout.
// Selectors beginning with // are treated as XPath.
func (d *Driver) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitVisible(selector, queryOption(selector)))
}

// IsEnabled reports whether the element carries no disabled attribute.
func (d *Driver) IsEnabled(selector string) bool {
	var value string
	var ok bool
	ctx, cancel := context.WithTimeout(d.ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.AttributeValue(selector, "disabled", &value, &ok, queryOption(selector))); err != nil {
		return false
	}
	return !ok
}

// HumanType clears the field then types text with randomized per-character
// pacing.
func (d *Driver) HumanType(selector, text string) error {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	defer cancel()

	opt := queryOption(selector)
	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(selector, opt),
		chromedp.Click(selector, opt),
		chromedp.Clear(selector, opt),
	); err != nil {
		return fmt.Errorf("failed to focus %s: %w", selector, err)
	}

	for _, r := range text {
		if err := chromedp.Run(ctx, chromedp.SendKeys(selector, string(r), opt)); err != nil {
			return fmt.Errorf("failed to type into %s: %w", selector, err)
		}
		time.Sleep(randomDuration(d.cfg.TypingDelayMin, d.cfg.TypingDelayMax))
	}
	return nil
}

// HumanClick clicks the selector with settle delays on both sides.
func (d *Driver) HumanClick(selector string) error {
	d.HumanDelay(500*time.Millisecond, 1500*time.Millisecond)
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Click(selector, queryOption(selector))); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	d.HumanDelay(500*time.Millisecond, time.Second)
	return nil
}

// Upload attaches the file at path to the file input matched by selector.
func (d *Driver) Upload(selector, path string) error {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.SetUploadFiles(selector, []string{path}, queryOption(selector))); err != nil {
		return fmt.Errorf("failed to upload %s via %s: %w", path, selector, err)
	}
	return nil
}

// ScrollToBottom scrolls repeatedly until the page height stops growing,
// to trigger lazy-loaded listings. Bounded to avoid infinite feeds.
func (d *Driver) ScrollToBottom() {
	const maxScrolls = 20
	var prev int64 = -1
	for i := 0; i < maxScrolls; i++ {
		var height int64
		ctx, cancel := context.WithTimeout(d.ctx, 10*time.Second)
		err := chromedp.Run(ctx,
			chromedp.Evaluate("window.scrollTo(0, document.body.scrollHeight)", nil),
			chromedp.Sleep(d.cfg.ScrollDelay),
			chromedp.Evaluate("document.body.scrollHeight", &height),
		)
		cancel()
		if err != nil || height == prev {
			return
		}
		prev = height
	}
}

// Screenshot captures the full page to path, best effort.
func (d *Driver) Screenshot(path string) error {
	var buf []byte
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return os.WriteFile(path, buf, 0644)
}

// HumanDelay sleeps a random interval. Zero bounds fall back to the
// configured min/max pacing.
func (d *Driver) HumanDelay(min, max time.Duration) {
	if min == 0 && max == 0 {
		min, max = d.cfg.MinDelay, d.cfg.MaxDelay
	}
	time.Sleep(randomDuration(min, max))
}

func randomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func queryOption(selector string) chromedp.QueryOption {
	if strings.HasPrefix(selector, "//") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

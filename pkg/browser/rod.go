package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"dev/bravebird/forum-automation-go/pkg/config"
)

// quiescenceWindow is how long the network must stay silent before a
// page counts as settled.
const quiescenceWindow = 500 * time.Millisecond

// urlPollInterval paces the URL-pattern wait loop.
const urlPollInterval = 250 * time.Millisecond

// RodDriver implements Driver on top of go-rod. One instance drives one
// browser session; handles are created by Start and released by Close.
type RodDriver struct {
	settings config.Settings
	log      *zap.SugaredLogger

	browser *rod.Browser
	page    *rod.Page
}

// NewRodDriver creates a driver with the given settings. Start must be
// called before use.
func NewRodDriver(settings config.Settings, log *zap.SugaredLogger) *RodDriver {
	return &RodDriver{settings: settings, log: log}
}

// Start launches Chrome, connects, and creates the page handle. On
// partial failure whatever was created is released before returning.
func (r *RodDriver) Start(ctx context.Context) error {
	r.log.Infow("Initializing browser session", "headless", r.settings.Headless)

	l := launcher.New().Headless(r.settings.Headless)

	// Use CHROME_BIN if set (Docker environment)
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		l = l.Bin(chromeBin)
	}

	// Chrome flags for Docker compatibility
	l = l.Set("no-sandbox")
	l = l.Set("disable-gpu")
	l = l.Set("disable-dev-shm-usage")

	url, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.Close()
		return fmt.Errorf("failed to create page: %w", err)
	}

	r.browser = browser
	r.page = page
	return nil
}

// pageFor returns the page handle scoped to ctx with the configured
// operation timeout applied.
func (r *RodDriver) pageFor(ctx context.Context) (*rod.Page, error) {
	if r.page == nil {
		return nil, fmt.Errorf("driver not started")
	}
	return r.page.Context(ctx).Timeout(r.settings.OperationTimeout), nil
}

// Navigate loads the URL and waits for the load event.
func (r *RodDriver) Navigate(ctx context.Context, url string) error {
	p, err := r.pageFor(ctx)
	if err != nil {
		return err
	}
	r.log.Infow("Navigating", "url", url)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load wait for %s failed: %w", url, err)
	}
	return nil
}

// WaitQuiescent resolves once no network requests have been in flight
// for the quiescence window.
func (r *RodDriver) WaitQuiescent(ctx context.Context) error {
	p, err := r.pageFor(ctx)
	if err != nil {
		return err
	}
	wait := p.WaitRequestIdle(quiescenceWindow, nil, nil, nil)
	wait()
	// The wait itself reports nothing; the page clone's context tells us
	// whether it ended by quiescence or by deadline.
	if err := p.GetContext().Err(); err != nil {
		return fmt.Errorf("quiescence wait aborted: %w", err)
	}
	return nil
}

// WaitURL polls the page URL until it matches pattern or the timeout
// elapses.
func (r *RodDriver) WaitURL(ctx context.Context, pattern string, timeout time.Duration) error {
	p, err := r.pageFor(ctx)
	if err != nil {
		return err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid URL pattern %q: %w", pattern, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		info, err := p.Info()
		if err != nil {
			return fmt.Errorf("failed to read page info: %w", err)
		}
		if re.MatchString(info.URL) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %v waiting for URL matching %q, current URL %s", timeout, pattern, info.URL)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(urlPollInterval):
		}
	}
}

// Click clicks the first element matching the target.
func (r *RodDriver) Click(ctx context.Context, target Target) error {
	p, err := r.pageFor(ctx)
	if err != nil {
		return err
	}
	elem, err := r.find(p, target)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", target, err)
	}
	if err := elem.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll to %s failed: %w", target, err)
	}
	if err := elem.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click on %s failed: %w", target, err)
	}
	r.pause()
	return nil
}

// Fill clears the element matching the target and types value into it.
// The value is never logged.
func (r *RodDriver) Fill(ctx context.Context, target Target, value string) error {
	p, err := r.pageFor(ctx)
	if err != nil {
		return err
	}
	elem, err := r.find(p, target)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", target, err)
	}
	// Clear existing text before typing
	if err := elem.SelectAllText(); err != nil {
		return fmt.Errorf("select text in %s failed: %w", target, err)
	}
	if err := elem.Input(value); err != nil {
		return fmt.Errorf("input into %s failed: %w", target, err)
	}
	r.pause()
	return nil
}

// Press sends a keyboard key to the page.
func (r *RodDriver) Press(ctx context.Context, key string) error {
	p, err := r.pageFor(ctx)
	if err != nil {
		return err
	}
	if err := p.Keyboard.Press(keyFromName(key)); err != nil {
		return fmt.Errorf("key press %q failed: %w", key, err)
	}
	r.pause()
	return nil
}

// Text returns the rendered text of the first matching element. A
// missing element is reported through found, not as an error.
func (r *RodDriver) Text(ctx context.Context, target Target) (string, bool, error) {
	p, err := r.pageFor(ctx)
	if err != nil {
		return "", false, err
	}

	var has bool
	var elem *rod.Element
	if target.Text != "" {
		has, elem, err = p.HasR(target.Selector(), regexp.QuoteMeta(target.Text))
	} else {
		has, elem, err = p.Has(target.Selector())
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s failed: %w", target, err)
	}
	if !has {
		return "", false, nil
	}

	text, err := elem.Text()
	if err != nil {
		return "", false, fmt.Errorf("text of %s failed: %w", target, err)
	}
	return text, true, nil
}

// Texts returns the text of every matching element in document order.
func (r *RodDriver) Texts(ctx context.Context, target Target) ([]string, error) {
	p, err := r.pageFor(ctx)
	if err != nil {
		return nil, err
	}
	elems, err := p.Elements(target.Selector())
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", target, err)
	}

	texts := make([]string, 0, len(elems))
	for _, elem := range elems {
		text, err := elem.Text()
		if err != nil {
			return nil, fmt.Errorf("text of %s failed: %w", target, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// CurrentURL returns the page URL.
func (r *RodDriver) CurrentURL(ctx context.Context) (string, error) {
	p, err := r.pageFor(ctx)
	if err != nil {
		return "", err
	}
	info, err := p.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

// HTML returns the serialized document.
func (r *RodDriver) HTML(ctx context.Context) (string, error) {
	p, err := r.pageFor(ctx)
	if err != nil {
		return "", err
	}
	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

// Screenshot writes a full-page PNG to path.
func (r *RodDriver) Screenshot(ctx context.Context, path string) error {
	p, err := r.pageFor(ctx)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot dir: %w", err)
		}
	}
	data, err := p.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}
	r.log.Infow("Screenshot saved", "path", path)
	return nil
}

// Close releases the page and browser handles. Each release is guarded
// so a failure on one does not prevent the other.
func (r *RodDriver) Close() error {
	var errs []error
	if r.page != nil {
		if err := r.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("page close: %w", err))
		}
		r.page = nil
	}
	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("browser close: %w", err))
		}
		r.browser = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// find locates the first element designated by the target, using text
// matching when the target carries visible text.
func (r *RodDriver) find(p *rod.Page, target Target) (*rod.Element, error) {
	if target.Text != "" {
		return p.ElementR(target.Selector(), regexp.QuoteMeta(target.Text))
	}
	return p.Element(target.Selector())
}

// pause applies the configured interaction delay between actions.
func (r *RodDriver) pause() {
	if r.settings.InteractionDelay > 0 {
		time.Sleep(r.settings.InteractionDelay)
	}
}

// keyFromName converts a key name to a rod input key.
func keyFromName(name string) input.Key {
	switch strings.ToLower(name) {
	case "enter":
		return input.Enter
	case "tab":
		return input.Tab
	case "escape":
		return input.Escape
	case "backspace":
		return input.Backspace
	case "arrowup":
		return input.ArrowUp
	case "arrowdown":
		return input.ArrowDown
	case "arrowleft":
		return input.ArrowLeft
	case "arrowright":
		return input.ArrowRight
	default:
		// Single characters map directly
		if len(name) == 1 {
			return input.Key(name[0])
		}
		return input.Enter
	}
}

// Package browser defines the capability set an automation engine must
// expose for the session pipeline to operate, plus the go-rod backed
// implementation of it.
package browser

import (
	"context"
	"time"
)

// Driver is the page-level capability set consumed by the session runner
// and the forum helpers. Implementations own the underlying browser,
// context and page handles; callers never see them. A Driver instance is
// not safe for concurrent use.
type Driver interface {
	// Start acquires the browser and page handles. Must be called before
	// any other operation.
	Start(ctx context.Context) error

	// Navigate loads the URL and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitQuiescent blocks until no network activity is observed for a
	// short window, a proxy for "page finished loading".
	WaitQuiescent(ctx context.Context) error

	// WaitURL blocks until the page URL matches the regexp pattern, or
	// the timeout elapses.
	WaitURL(ctx context.Context, pattern string, timeout time.Duration) error

	Click(ctx context.Context, target Target) error
	Fill(ctx context.Context, target Target, value string) error
	Press(ctx context.Context, key string) error

	// Text returns the rendered text of the first element matching the
	// target. found is false when no element matches; that is not an
	// error.
	Text(ctx context.Context, target Target) (text string, found bool, err error)

	// Texts returns the rendered text of every element matching the
	// target, in document order.
	Texts(ctx context.Context, target Target) ([]string, error)

	CurrentURL(ctx context.Context) (string, error)

	// HTML returns the serialized document of the current page.
	HTML(ctx context.Context) (string, error)

	// Screenshot writes a full-page PNG to path, creating parent
	// directories as needed.
	Screenshot(ctx context.Context, path string) error

	// Close releases the page and browser handles. Each release is
	// guarded independently; Close never panics and is a no-op once the
	// handles are gone.
	Close() error
}

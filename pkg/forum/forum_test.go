package forum

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev/bravebird/forum-automation-go/pkg/browser"
	"dev/bravebird/forum-automation-go/pkg/models"
)

// stubDriver implements the subset of browser.Driver the helpers touch,
// recording calls in order.
type stubDriver struct {
	html     string
	htmlErr  error
	clickErr map[string]error
	calls    []string
}

func (s *stubDriver) record(call string) { s.calls = append(s.calls, call) }

func (s *stubDriver) Start(ctx context.Context) error                { return nil }
func (s *stubDriver) Navigate(ctx context.Context, url string) error { return nil }

func (s *stubDriver) WaitQuiescent(ctx context.Context) error {
	s.record("quiescent")
	return nil
}

func (s *stubDriver) WaitURL(ctx context.Context, pattern string, timeout time.Duration) error {
	return nil
}

func (s *stubDriver) Click(ctx context.Context, target browser.Target) error {
	s.record("click:" + target.String())
	return s.clickErr[target.String()]
}

func (s *stubDriver) Fill(ctx context.Context, target browser.Target, value string) error {
	s.record("fill:" + target.Selector() + "=" + value)
	return nil
}

func (s *stubDriver) Press(ctx context.Context, key string) error {
	s.record("press:" + key)
	return nil
}

func (s *stubDriver) Text(ctx context.Context, target browser.Target) (string, bool, error) {
	return "", false, nil
}

func (s *stubDriver) Texts(ctx context.Context, target browser.Target) ([]string, error) {
	return nil, nil
}

func (s *stubDriver) CurrentURL(ctx context.Context) (string, error) { return "", nil }

func (s *stubDriver) HTML(ctx context.Context) (string, error) { return s.html, s.htmlErr }

func (s *stubDriver) Screenshot(ctx context.Context, path string) error { return nil }

func (s *stubDriver) Close() error { return nil }

func TestPostContentRendersText(t *testing.T) {
	driver := &stubDriver{html: `
		<html><body>
		<div class="topic-post">
			<div class="cooked">
				<p>First paragraph.</p>
				<p>Second<br>line.</p>
				<script>console.log("noise")</script>
				<style>.x{}</style>
			</div>
		</div>
		</body></html>`}

	text, err := PostContent(context.Background(), driver)
	require.NoError(t, err)

	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second\nline.")
	assert.NotContains(t, text, "noise")
	assert.NotContains(t, text, ".x{}")
}

func TestPostContentSentinelWhenAbsent(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no container", `<html><body><p>just a page</p></body></html>`},
		{"empty container", `<html><body><div class="topic-post"><div class="cooked">   </div></div></body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := PostContent(context.Background(), &stubDriver{html: tt.html})
			require.NoError(t, err)
			assert.Equal(t, models.NoContentFound, text)
		})
	}
}

func TestPostContentPropagatesDriverError(t *testing.T) {
	driver := &stubDriver{htmlErr: errors.New("page gone")}
	_, err := PostContent(context.Background(), driver)
	assert.Error(t, err)
}

func TestSearchSequence(t *testing.T) {
	driver := &stubDriver{}
	require.NoError(t, Search(context.Background(), driver, "claude desktop"))

	want := []string{
		"click:" + searchButton.String(),
		"fill:" + searchInput.Selector() + "=claude desktop",
		"press:enter",
		"quiescent",
	}
	assert.Equal(t, want, driver.calls)
}

func TestOpenCategory(t *testing.T) {
	driver := &stubDriver{}
	require.NoError(t, OpenCategory(context.Background(), driver, "General"))

	want := []string{
		"click:" + browser.Target{Tag: "a", Text: "General"}.String(),
		"quiescent",
	}
	assert.Equal(t, want, driver.calls)
}

func TestOpenCategoryMissingLink(t *testing.T) {
	driver := &stubDriver{clickErr: map[string]error{
		browser.Target{Tag: "a", Text: "Nope"}.String(): errors.New("not found"),
	}}
	assert.Error(t, OpenCategory(context.Background(), driver, "Nope"))
}

func TestCreateTopic(t *testing.T) {
	driver := &stubDriver{}
	topic := NewTopic{Title: "Hello", Body: "World", Category: "General"}
	require.NoError(t, CreateTopic(context.Background(), driver, topic))

	want := []string{
		"click:" + newTopicButton.String(),
		"fill:" + titleInput.Selector() + "=Hello",
		"fill:" + bodyInput.Selector() + "=World",
		"click:" + categoryPicker.String(),
		"click:" + browser.Target{CSS: ".category-row, li", Text: "General"}.String(),
		"click:" + createButton.String(),
		"quiescent",
	}
	assert.Equal(t, want, driver.calls)
}

func TestCreateTopicWithoutCategorySkipsPicker(t *testing.T) {
	driver := &stubDriver{}
	require.NoError(t, CreateTopic(context.Background(), driver, NewTopic{Title: "Hello", Body: "World"}))

	for _, call := range driver.calls {
		assert.NotContains(t, call, categoryPicker.Selector())
	}
}

func TestCreateTopicRequiresTitle(t *testing.T) {
	driver := &stubDriver{}
	assert.Error(t, CreateTopic(context.Background(), driver, NewTopic{Body: "World"}))
	assert.Empty(t, driver.calls)
}

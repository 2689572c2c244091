// Package forum provides stateless helpers for common forum
// interactions. They operate on any browser.Driver and are independent
// of the session runner pipeline: callers compose their own flows from
// them. Each helper follows the same pattern as the pipeline stages:
// locate by role or placeholder, act, wait for quiescence.
package forum

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dev/bravebird/forum-automation-go/pkg/browser"
	"dev/bravebird/forum-automation-go/pkg/models"
)

var (
	searchButton   = browser.Target{Label: "Search"}
	searchInput    = browser.Target{CSS: "input[type='search'], #search-term"}
	newTopicButton = browser.Target{Tag: "button", Text: "New Topic"}
	titleInput     = browser.Target{CSS: "#reply-title, input[name='title']"}
	bodyInput      = browser.Target{CSS: ".d-editor-input, textarea[name='body']"}
	categoryPicker = browser.Target{CSS: ".category-chooser"}
	createButton   = browser.Target{CSS: ".save-or-cancel .create, button.create"}

	postContentSelector = ".topic-post .cooked, .post-content, article .cooked"
)

// NewTopic is the input for CreateTopic.
type NewTopic struct {
	Title    string
	Body     string
	Category string // optional
}

// PostContent returns the rendered text of the first post on the
// current page. When no post content container exists it returns the
// sentinel instead of an error.
func PostContent(ctx context.Context, d browser.Driver) (string, error) {
	html, err := d.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	post := doc.Find(postContentSelector).First()
	if post.Length() == 0 {
		return models.NoContentFound, nil
	}

	text := strings.TrimSpace(renderText(post))
	if text == "" {
		return models.NoContentFound, nil
	}
	return text, nil
}

// OpenCategory navigates to a category by its link text.
func OpenCategory(ctx context.Context, d browser.Driver, name string) error {
	if err := d.Click(ctx, browser.Target{Tag: "a", Text: name}); err != nil {
		return fmt.Errorf("category %q not found: %w", name, err)
	}
	return d.WaitQuiescent(ctx)
}

// Search invokes the search control, fills the query and submits it.
func Search(ctx context.Context, d browser.Driver, query string) error {
	if err := d.Click(ctx, searchButton); err != nil {
		return fmt.Errorf("search control not found: %w", err)
	}
	if err := d.Fill(ctx, searchInput, query); err != nil {
		return fmt.Errorf("failed to fill search query: %w", err)
	}
	if err := d.Press(ctx, "enter"); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	return d.WaitQuiescent(ctx)
}

// CreateTopic opens the composer, fills title and body, optionally
// selects a category, and submits.
func CreateTopic(ctx context.Context, d browser.Driver, topic NewTopic) error {
	if topic.Title == "" {
		return fmt.Errorf("topic title must not be empty")
	}

	if err := d.Click(ctx, newTopicButton); err != nil {
		return fmt.Errorf("composer not found: %w", err)
	}
	if err := d.Fill(ctx, titleInput, topic.Title); err != nil {
		return fmt.Errorf("failed to fill title: %w", err)
	}
	if err := d.Fill(ctx, bodyInput, topic.Body); err != nil {
		return fmt.Errorf("failed to fill body: %w", err)
	}

	if topic.Category != "" {
		if err := d.Click(ctx, categoryPicker); err != nil {
			return fmt.Errorf("category picker not found: %w", err)
		}
		if err := d.Click(ctx, browser.Target{CSS: ".category-row, li", Text: topic.Category}); err != nil {
			return fmt.Errorf("category %q not found: %w", topic.Category, err)
		}
	}

	if err := d.Click(ctx, createButton); err != nil {
		return fmt.Errorf("failed to submit topic: %w", err)
	}
	return d.WaitQuiescent(ctx)
}

// ==================== Text Rendering ====================

var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "li": {}, "ul": {}, "ol": {}, "blockquote": {},
	"pre": {}, "table": {}, "tr": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
}

var collapseNewlines = regexp.MustCompile(`\n{3,}`)

// renderText flattens an HTML fragment to plain text, turning block
// elements and <br> into newlines and dropping scripts and styles.
func renderText(sel *goquery.Selection) string {
	var b strings.Builder
	walkText(sel, &b)
	return collapseNewlines.ReplaceAllString(b.String(), "\n\n")
}

func walkText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		name := goquery.NodeName(node)
		switch name {
		case "#text":
			b.WriteString(node.Text())
		case "br":
			b.WriteString("\n")
		case "script", "style":
			// skip
		default:
			walkText(node, b)
			if _, block := blockTags[name]; block {
				b.WriteString("\n")
			}
		}
	})
}

package browser

import "fmt"

// Target designates an element by accessible attributes rather than
// brittle structural selectors. The zero tag matches any element.
type Target struct {
	Tag         string // element tag, optional
	Label       string // aria-label
	Name        string // name attribute
	Placeholder string // placeholder attribute
	TestID      string // data-testid attribute
	Role        string // ARIA role attribute
	Text        string // visible text, matched by the driver
	CSS         string // explicit selector, lowest priority fallback
}

// Selector builds a CSS selector for the target. Priority: aria-label >
// name > placeholder > data-testid > role > explicit CSS > bare tag.
// Text matching is not expressible in CSS and is handled by the driver.
func (t Target) Selector() string {
	if t.Label != "" {
		return fmt.Sprintf("%s[aria-label='%s']", t.Tag, t.Label)
	}
	if t.Name != "" {
		return fmt.Sprintf("%s[name='%s']", t.Tag, t.Name)
	}
	if t.Placeholder != "" {
		return fmt.Sprintf("%s[placeholder='%s']", t.Tag, t.Placeholder)
	}
	if t.TestID != "" {
		return fmt.Sprintf("[data-testid='%s']", t.TestID)
	}
	if t.Role != "" {
		return fmt.Sprintf("%s[role='%s']", t.Tag, t.Role)
	}
	if t.CSS != "" {
		return t.CSS
	}
	if t.Tag != "" {
		return t.Tag
	}
	return "*"
}

// String implements fmt.Stringer for log output.
func (t Target) String() string {
	if t.Text != "" {
		return fmt.Sprintf("%s {text=%q}", t.Selector(), t.Text)
	}
	return t.Selector()
}

package domain

import (
	"encoding/json"
	"strings"
)

// Fragment is one piece of extracted body text. A fragment carries either a
// paragraph (Para) or a section wrapping an inner fragment list (Section),
// never both.
type Fragment struct {
	Para    string     `json:"para_content,omitempty"`
	Section []Fragment `json:"content1,omitempty"`
}

// Content is raw extracted article body in one of three shapes: a plain
// string, a flat list of paragraph fragments, or a nested list of section
// fragments. The shape is resolved once, at ingestion time, by Flatten.
type Content struct {
	Text      string
	Fragments []Fragment
}

// IsZero reports whether no content was extracted at all.
func (c Content) IsZero() bool {
	return c.Text == "" && len(c.Fragments) == 0
}

// UnmarshalJSON accepts either a JSON string or a fragment list.
func (c *Content) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		c.Text = s
		c.Fragments = nil
		return nil
	}
	var frags []Fragment
	if err := json.Unmarshal(b, &frags); err == nil {
		c.Text = ""
		c.Fragments = frags
		return nil
	}
	return ErrMalformedContent
}

// MarshalJSON emits the normalized representation when only text is set,
// otherwise the fragment list as-is.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Fragments == nil {
		return json.Marshal(c.Text)
	}
	return json.Marshal(c.Fragments)
}

// Flatten resolves the content into a single string. The first fragment
// decides the shape: paragraph fragments are joined with a single space;
// section fragments have their inner paragraph lists joined the same way.
// A fragment list whose first entry carries neither shape is malformed.
func (c Content) Flatten() (string, error) {
	if len(c.Fragments) == 0 {
		return c.Text, nil
	}

	first := c.Fragments[0]
	switch {
	case first.Para != "":
		parts := make([]string, 0, len(c.Fragments))
		for _, f := range c.Fragments {
			if f.Para != "" {
				parts = append(parts, f.Para)
			}
		}
		return strings.Join(parts, " "), nil

	case first.Section != nil:
		var parts []string
		for _, f := range c.Fragments {
			for _, inner := range f.Section {
				if inner.Para != "" {
					parts = append(parts, inner.Para)
				}
			}
		}
		return strings.Join(parts, " "), nil

	default:
		return "", ErrMalformedContent
	}
}

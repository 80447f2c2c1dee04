package core

import (
	"fmt"
	"time"
)

// Frontmatter keys understood by the schema. Anything else in a document's
// metadata is preserved by the storage layer but invisible to the typed view.
const (
	KeyTitle        = "title"
	KeyDate         = "date"
	KeyLastmod      = "lastmod"
	KeyTags         = "tags"
	KeyDraft        = "draft"
	KeySummary      = "summary"
	KeyLayout       = "layout"
	KeyCanonicalURL = "canonicalUrl"
)

// dateLayout accepts calendar dates with possibly unpadded month/day
// ("2023-4-7" and "2023-04-07" both parse).
const dateLayout = "2006-1-2"

// Date is a calendar date (no time-of-day component).
type Date struct {
	time.Time
}

// ParseDate parses an ISO-like year-month-day string.
// Unpadded month and day are accepted; a full RFC 3339 timestamp is
// tolerated and truncated to its date.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// String renders the date in padded form regardless of how it was written.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// FrontMatter is the typed metadata schema of a blog post.
type FrontMatter struct {
	Title        string
	Date         Date
	Lastmod      Date
	Tags         []string
	Draft        bool
	Summary      string
	Layout       string
	CanonicalURL string
}

// FrontMatterFrom builds a typed FrontMatter from raw document metadata.
// It returns schema errors (bad dates, non-boolean draft, non-string tags)
// but does NOT enforce required fields; that is Validate's job, so callers
// can distinguish "malformed" from "incomplete".
func FrontMatterFrom(meta Metadata) (FrontMatter, error) {
	var fm FrontMatter

	if v, ok := meta[KeyTitle].(string); ok {
		fm.Title = v
	}
	if v, ok := meta[KeySummary].(string); ok {
		fm.Summary = v
	}
	if v, ok := meta[KeyLayout].(string); ok {
		fm.Layout = v
	}
	if v, ok := meta[KeyCanonicalURL].(string); ok {
		fm.CanonicalURL = v
	}

	var err error
	if fm.Date, err = dateField(meta, KeyDate); err != nil {
		return FrontMatter{}, err
	}
	if fm.Lastmod, err = dateField(meta, KeyLastmod); err != nil {
		return FrontMatter{}, err
	}

	if v, present := meta[KeyDraft]; present {
		b, ok := v.(bool)
		if !ok {
			return FrontMatter{}, fmt.Errorf("frontmatter %q must be a boolean, got %T", KeyDraft, v)
		}
		fm.Draft = b
	}

	if v, present := meta[KeyTags]; present {
		tags, err := stringSlice(v)
		if err != nil {
			return FrontMatter{}, fmt.Errorf("frontmatter %q: %w", KeyTags, err)
		}
		fm.Tags = tags
	}

	return fm, nil
}

// Metadata converts the typed frontmatter back to raw document metadata.
// Zero-valued optional fields are omitted; dates serialize padded.
func (fm FrontMatter) Metadata() Metadata {
	meta := make(Metadata)
	if fm.Title != "" {
		meta[KeyTitle] = fm.Title
	}
	if !fm.Date.IsZero() {
		meta[KeyDate] = fm.Date.String()
	}
	if !fm.Lastmod.IsZero() {
		meta[KeyLastmod] = fm.Lastmod.String()
	}
	if len(fm.Tags) > 0 {
		// Copy to keep the frontmatter value immutable from the caller's view.
		tags := make([]string, len(fm.Tags))
		copy(tags, fm.Tags)
		meta[KeyTags] = tags
	}
	if fm.Draft {
		meta[KeyDraft] = true
	}
	if fm.Summary != "" {
		meta[KeySummary] = fm.Summary
	}
	if fm.Layout != "" {
		meta[KeyLayout] = fm.Layout
	}
	if fm.CanonicalURL != "" {
		meta[KeyCanonicalURL] = fm.CanonicalURL
	}
	return meta
}

// Validate enforces the required-field invariant: a post cannot render
// without a title, a date, and a layout. Violations are authoring errors
// and fail the build.
func (fm FrontMatter) Validate() error {
	if fm.Title == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, KeyTitle)
	}
	if fm.Date.IsZero() {
		return fmt.Errorf("%w: %s", ErrMissingField, KeyDate)
	}
	if fm.Layout == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, KeyLayout)
	}
	return nil
}

func dateField(meta Metadata, key string) (Date, error) {
	v, present := meta[key]
	if !present {
		return Date{}, nil
	}
	switch t := v.(type) {
	case string:
		d, err := ParseDate(t)
		if err != nil {
			return Date{}, fmt.Errorf("frontmatter %q: %w", key, err)
		}
		return d, nil
	case time.Time:
		// yaml decoders resolve timestamps into time.Time when the target is typed.
		return Date{t}, nil
	default:
		return Date{}, fmt.Errorf("frontmatter %q: %w: %v", key, ErrBadDate, v)
	}
}

func stringSlice(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}

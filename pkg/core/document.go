// Document is the central entity of the domain.
package core

// Metadata represents the flexible key-value pairs associated with a document.
type Metadata map[string]any

// Document is the central entity of the domain.
// It represents a single content file identified by an ID (the vault-relative
// path without extension). The Body is opaque prose; structure lives in Metadata.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Post is the typed view of a Document whose metadata conforms to the
// frontmatter schema. It is what the service layer and renderer work with.
type Post struct {
	ID     string
	Body   string
	Matter FrontMatter
}

// Published reports whether the post belongs in public listings.
func (p Post) Published() bool {
	return !p.Matter.Draft
}

// HasTag reports whether the post carries the given tag.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Matter.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PostFrom converts a raw Document into a typed Post.
// It fails on schema violations (non-boolean draft, malformed dates).
func PostFrom(doc Document) (Post, error) {
	fm, err := FrontMatterFrom(doc.Metadata)
	if err != nil {
		return Post{}, err
	}
	return Post{ID: doc.ID, Body: doc.Content, Matter: fm}, nil
}

// Document converts the typed Post back to its raw form.
func (p Post) Document() Document {
	return Document{
		ID:       p.ID,
		Content:  p.Body,
		Metadata: p.Matter.Metadata(),
	}
}

// EventType represents the type of change in the vault.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in the vault.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event so vault events can feed lifecycle sources.
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}

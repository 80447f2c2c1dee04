package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tmorell/inkwell/pkg/core"
)

// Serializer defines how to read and write a specific file format.
type Serializer interface {
	// Parse reads from r and returns a Document.
	Parse(r io.Reader) (*core.Document, error)
	// Serialize converts the Document to bytes.
	Serialize(doc core.Document) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers.
// Markdown and MDX share the frontmatter codec; the body is opaque either way.
func DefaultSerializers(strict bool) map[string]Serializer {
	md := NewMarkdownSerializer(strict)
	yml := NewYAMLSerializer(strict)
	return map[string]Serializer{
		".md":   md,
		".mdx":  md,
		".yaml": yml,
		".yml":  yml,
	}
}

// --- Markdown Serializer ---

// MarkdownSerializer handles Markdown/MDX files with optional YAML frontmatter.
type MarkdownSerializer struct {
	// Strict enables strict number parsing (as json.Number) to avoid precision loss.
	Strict bool
}

// NewMarkdownSerializer creates a new Markdown serializer.
func NewMarkdownSerializer(strict bool) *MarkdownSerializer {
	return &MarkdownSerializer{Strict: strict}
}

func (s *MarkdownSerializer) Parse(r io.Reader) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &core.Document{Metadata: make(core.Metadata)}

	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		doc.Content = string(data)
		return doc, nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("---"), 2)
	if len(parts) == 1 {
		return nil, errors.New("frontmatter started but no closing delimiter found")
	}

	yamlData := parts[0]
	contentData := parts[1]

	if err := yaml.Unmarshal(yamlData, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	doc.Content = strings.TrimPrefix(string(contentData), "\n")
	doc.Content = strings.TrimPrefix(doc.Content, "\r\n")

	if s.Strict {
		doc.Metadata = recursiveNormalize(doc.Metadata).(core.Metadata)
	}

	return doc, nil
}

func (s *MarkdownSerializer) Serialize(doc core.Document) ([]byte, error) {
	var buf bytes.Buffer
	if len(doc.Metadata) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc.Metadata); err != nil {
			return nil, err
		}
		encoder.Close()
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}

// --- YAML Serializer ---

// YAMLSerializer handles pure-metadata documents (e.g. site config fragments).
// The whole mapping becomes Metadata; a "content" key, if present, is lifted
// out as the document body.
type YAMLSerializer struct {
	Strict bool
}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer(strict bool) *YAMLSerializer {
	return &YAMLSerializer{Strict: strict}
}

func (s *YAMLSerializer) Parse(r io.Reader) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	doc := &core.Document{Metadata: make(core.Metadata)}
	if payload != nil {
		doc.Metadata = payload
	}

	if c, ok := payload["content"].(string); ok {
		doc.Content = c
		delete(doc.Metadata, "content")
	}

	if s.Strict {
		doc.Metadata = recursiveNormalize(doc.Metadata).(core.Metadata)
	}

	return doc, nil
}

func (s *YAMLSerializer) Serialize(doc core.Document) ([]byte, error) {
	payload := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		payload[k] = v
	}
	if doc.Content != "" {
		payload["content"] = doc.Content
	}
	return yaml.Marshal(payload)
}

// recursiveNormalize traverses the map/slice and converts numeric types to json.Number.
// This keeps large integers stable across parse/serialize cycles.
func recursiveNormalize(val any) any {
	switch v := val.(type) {
	case core.Metadata:
		m := make(core.Metadata)
		for k, item := range v {
			m[k] = recursiveNormalize(item)
		}
		return m
	case map[string]any:
		m := make(map[string]any)
		for k, item := range v {
			m[k] = recursiveNormalize(item)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = recursiveNormalize(item)
		}
		return l
	case int:
		return json.Number(fmt.Sprintf("%d", v))
	case int32:
		return json.Number(fmt.Sprintf("%d", v))
	case int64:
		return json.Number(fmt.Sprintf("%d", v))
	case float64:
		return json.Number(fmt.Sprintf("%v", v))
	default:
		return v
	}
}

// Package typed layers compile-time typed metadata over the raw
// document repository. It is meant for vaults whose posts carry a custom
// frontmatter schema beyond the standard fields.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmorell/inkwell/pkg/core"
)

// DocumentModel is a typed view of a document: Data holds the frontmatter
// unmarshalled into T.
type DocumentModel[T any] struct {
	ID      string
	Content string
	Data    T
	Saver   Saver[T]
}

// Saver decouples the model from the concrete repository so documents can
// save themselves.
type Saver[T any] interface {
	Save(ctx context.Context, doc *DocumentModel[T]) error
}

// Save persists the document through the attached saver.
func (d *DocumentModel[T]) Save(ctx context.Context) error {
	if d.Saver == nil {
		return fmt.Errorf("document is detached (missing Saver)")
	}
	return d.Saver.Save(ctx, d)
}

// Repository wraps a core.Repository with type-safe metadata access.
type Repository[T any] struct {
	repo core.Repository
}

func NewRepository[T any](repo core.Repository) *Repository[T] {
	return &Repository[T]{repo: repo}
}

// Save marshals Data through JSON into the metadata map and persists it.
func (r *Repository[T]) Save(ctx context.Context, doc *DocumentModel[T]) error {
	metadata, err := toMetadata(doc.Data)
	if err != nil {
		return err
	}

	if doc.Saver == nil {
		doc.Saver = r
	}

	return r.repo.Save(ctx, core.Document{
		ID:       doc.ID,
		Content:  doc.Content,
		Metadata: metadata,
	})
}

// Get retrieves a document and unmarshals its metadata into T.
func (r *Repository[T]) Get(ctx context.Context, id string) (*DocumentModel[T], error) {
	doc, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromCore(doc, Saver[T](r))
}

// List returns all documents converted to the typed model.
func (r *Repository[T]) List(ctx context.Context) ([]*DocumentModel[T], error) {
	docs, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*DocumentModel[T], 0, len(docs))
	for _, d := range docs {
		model, err := fromCore(d, Saver[T](r))
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", d.ID, err)
		}
		result = append(result, model)
	}
	return result, nil
}

// Delete removes a document by ID.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.repo.Delete(ctx, id)
}

// Watch relays repository change events, if the underlying adapter
// supports watching.
func (r *Repository[T]) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	watchable, ok := r.repo.(core.Watchable)
	if !ok {
		return nil, fmt.Errorf("repository does not support watching")
	}
	return watchable.Watch(ctx, pattern)
}

// WithTransaction runs fn inside a typed transaction, if the underlying
// adapter is transactional. The transaction commits when fn returns nil
// and rolls back otherwise.
func (r *Repository[T]) WithTransaction(ctx context.Context, fn func(tx *Transaction[T]) error) error {
	transactional, ok := r.repo.(core.Transactional)
	if !ok {
		return fmt.Errorf("repository does not support transactions")
	}

	coreTx, err := transactional.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(&Transaction[T]{tx: coreTx}); err != nil {
		if rbErr := coreTx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	reason := "batch transaction"
	if msg, ok := ctx.Value(core.ChangeReasonKey).(string); ok && msg != "" {
		reason = msg
	}
	return coreTx.Commit(ctx, reason)
}

// Transaction wraps a core.Transaction for typed operations.
type Transaction[T any] struct {
	tx core.Transaction
}

func (t *Transaction[T]) Save(ctx context.Context, doc *DocumentModel[T]) error {
	metadata, err := toMetadata(doc.Data)
	if err != nil {
		return err
	}
	if doc.Saver == nil {
		doc.Saver = t
	}
	return t.tx.Save(ctx, core.Document{
		ID:       doc.ID,
		Content:  doc.Content,
		Metadata: metadata,
	})
}

func (t *Transaction[T]) Get(ctx context.Context, id string) (*DocumentModel[T], error) {
	doc, err := t.tx.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromCore(doc, Saver[T](t))
}

func (t *Transaction[T]) Delete(ctx context.Context, id string) error {
	return t.tx.Delete(ctx, id)
}

// toMetadata converts T to the generic metadata map via JSON, so struct
// tags control the frontmatter keys.
func toMetadata[T any](data T) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to map: %w", err)
	}
	return metadata, nil
}

func fromCore[T any](doc core.Document, saver Saver[T]) (*DocumentModel[T], error) {
	raw, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata marshal failed: %w", err)
	}

	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}

	return &DocumentModel[T]{
		ID:      doc.ID,
		Content: doc.Content,
		Data:    data,
		Saver:   saver,
	}, nil
}

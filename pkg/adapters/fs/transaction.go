package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tmorell/inkwell/pkg/core"
)

// Transaction implements core.Transaction for the filesystem.
// Staged changes live in memory until Commit writes them in one batch
// under a single git lock (and a single commit).
type Transaction struct {
	repo    *Repository
	staged  map[string]core.Document // ID -> Document
	deleted map[string]bool          // ID -> bool
	mu      sync.Mutex
	closed  bool
}

// NewTransaction creates a new transaction.
func NewTransaction(repo *Repository) *Transaction {
	return &Transaction{
		repo:    repo,
		staged:  make(map[string]core.Document),
		deleted: make(map[string]bool),
	}
}

// Save stages a document for saving.
func (t *Transaction) Save(ctx context.Context, doc core.Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}

	t.staged[doc.ID] = doc
	delete(t.deleted, doc.ID)
	return nil
}

// Get retrieves a document, favoring staged changes.
func (t *Transaction) Get(ctx context.Context, id string) (core.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return core.Document{}, fmt.Errorf("transaction closed")
	}

	if t.deleted[id] {
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}

	if doc, ok := t.staged[id]; ok {
		return doc, nil
	}

	return t.repo.Get(ctx, id)
}

// List returns all documents, with staged changes applied on top of disk state.
func (t *Transaction) List(ctx context.Context) ([]core.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, fmt.Errorf("transaction closed")
	}

	onDisk, err := t.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]core.Document, len(onDisk)+len(t.staged))
	for _, doc := range onDisk {
		merged[doc.ID] = doc
	}
	for id, doc := range t.staged {
		merged[id] = doc
	}
	for id := range t.deleted {
		delete(merged, id)
	}

	docs := make([]core.Document, 0, len(merged))
	for _, doc := range merged {
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete stages a document for removal.
func (t *Transaction) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}

	delete(t.staged, id)
	t.deleted[id] = true
	return nil
}

// Commit applies all staged changes atomically: every file is written (or
// removed), then a single git commit records the batch.
func (t *Transaction) Commit(ctx context.Context, changeReason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction closed")
	}
	t.closed = true

	if len(t.staged) == 0 && len(t.deleted) == 0 {
		return nil
	}

	var unlock func()
	if !t.repo.config.Gitless {
		var err error
		unlock, err = t.repo.git.Lock()
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()
	}

	var touched []string

	for id, doc := range t.staged {
		filename, ext := t.repo.filenameFor(id)
		s, ok := t.repo.serializerFor(ext)
		if !ok {
			return fmt.Errorf("no serializer registered for %s", ext)
		}

		data, err := s.Serialize(doc)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", id, err)
		}

		fullPath := filepath.Join(t.repo.Path, filename)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}
		if err := writeFileAtomic(fullPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", id, err)
		}
		touched = append(touched, filename)
	}

	for id := range t.deleted {
		fullPath, _, err := t.repo.locate(id)
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(t.repo.Path, fullPath)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		t.repo.cache.Delete(relPath)

		if t.repo.config.Gitless {
			if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", id, err)
			}
		} else {
			if err := t.repo.git.Rm(relPath); err != nil {
				return fmt.Errorf("failed to git rm %s: %w", id, err)
			}
		}
	}

	if !t.repo.config.Gitless {
		if err := t.repo.git.Add(touched...); err != nil {
			return fmt.Errorf("failed to git add: %w", err)
		}
		if changeReason == "" {
			changeReason = "batch transaction"
		}
		if err := t.repo.git.Commit(changeReason); err != nil {
			return fmt.Errorf("failed to git commit: %w", err)
		}
	}

	return nil
}

// Rollback discards all staged changes.
func (t *Transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.staged = make(map[string]core.Document)
	t.deleted = make(map[string]bool)
	t.closed = true
	return nil
}

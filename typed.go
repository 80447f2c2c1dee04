package inkwell

import (
	"github.com/tmorell/inkwell/pkg/core"
	"github.com/tmorell/inkwell/pkg/typed"
)

// DocumentModel is a typed view of a raw document. T holds the frontmatter
// unmarshalled into a user-defined struct.
type DocumentModel[T any] = typed.DocumentModel[T]

// TypedRepository wraps a core.Repository with compile-time typed metadata.
type TypedRepository[T any] = typed.Repository[T]

// NewTyped creates a type-safe repository wrapper around repo.
func NewTyped[T any](repo core.Repository) *TypedRepository[T] {
	return typed.NewRepository[T](repo)
}

// OpenTyped opens the vault at path and wraps its repository with typed
// metadata access.
func OpenTyped[T any](path string, opts ...Option) (*TypedRepository[T], error) {
	repo, err := Init(path, opts...)
	if err != nil {
		return nil, err
	}
	return typed.NewRepository[T](repo), nil
}

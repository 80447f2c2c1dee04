package core

import "errors"

// Common errors.
var (
	ErrReadOnly = errors.New("repository is in read-only mode")

	// ErrNotFound indicates the requested document does not exist in the vault.
	ErrNotFound = errors.New("document not found")

	// Authoring errors. These surface at build or save time; there is no
	// recovery path beyond fixing the content file.
	ErrMissingField  = errors.New("missing required frontmatter field")
	ErrBadDate       = errors.New("malformed date")
	ErrUnknownLayout = errors.New("unknown layout")
)

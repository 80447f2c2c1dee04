package inkwell

import _ "embed"

// Version is the library version, kept in the VERSION file so release
// tooling can bump it without touching code.
//
//go:embed VERSION
var Version string

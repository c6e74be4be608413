// Package assets carries the default content bundle compiled into the
// skilldock binary: curated skill directories, agent definitions, and the
// bundle metadata file.
package assets

import "embed"

// Bundle is the embedded default bundle, laid out exactly like an
// on-disk bundle directory (skills/, agents/, bundle.toml).
//
//go:embed all:skills all:agents bundle.toml
var Bundle embed.FS

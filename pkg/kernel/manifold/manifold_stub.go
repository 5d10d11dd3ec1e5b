//go:build !manifold

// Package manifold binds the Manifold mesh boolean library. Without the
// manifold build tag only this stub is compiled and New fails.
package manifold

import (
	"errors"

	"github.com/chazu/bspcsg/pkg/kernel"
)

// Available reports whether the package was built against manifoldc.
const Available = false

// ErrNotBuilt is returned by New when the binary was built without the
// manifold tag.
var ErrNotBuilt = errors.New("manifold kernel not available: build with -tags=manifold")

// New always fails in this build.
func New() (kernel.Kernel, error) {
	return nil, ErrNotBuilt
}

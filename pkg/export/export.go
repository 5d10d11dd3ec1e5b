// Package export writes tessellated parts to mesh interchange formats:
// binary STL for printing and binary glTF for viewers that show per-part
// colours and materials.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/bspcsg/pkg/kernel"
)

// ErrUnsupportedFormat is returned by Save for an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Formats lists the file extensions Save understands.
var Formats = []string{".stl", ".glb"}

// Save writes meshes to path in the format named by its extension.
func Save(path string, meshes []*kernel.Mesh) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return SaveSTL(path, meshes)
	case ".glb":
		return SaveGLB(path, meshes)
	default:
		return fmt.Errorf("%w %q (want one of %s)", ErrUnsupportedFormat, ext, strings.Join(Formats, ", "))
	}
}

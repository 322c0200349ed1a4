//go:build !cgo

package features

import "context"

// StructuralAvailable reports whether tree-sitter parsing is compiled in.
// Returns false when CGO is disabled.
func StructuralAvailable() bool {
	return false
}

// structuralSkeleton always defers to the scan builder in non-CGO builds.
func structuralSkeleton(ctx context.Context, source []byte, lang Language) (skeleton, bool) {
	return skeleton{}, false
}

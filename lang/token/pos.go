package token

import gotoken "go/token"

// Position types are re-exported from the standard library rather than
// reimplemented: the scanner hands out Pos values from a FileSet and turns
// them back into line/column pairs for diagnostics exactly the way go/scanner
// expects.
type (
	Pos      = gotoken.Pos
	File     = gotoken.File
	FileSet  = gotoken.FileSet
	Position = gotoken.Position
)

// NoPos is the zero Pos, meaning "unknown position".
const NoPos = gotoken.NoPos

// NewFileSet creates a new, empty FileSet.
func NewFileSet() *FileSet { return gotoken.NewFileSet() }

package fsbuild

import (
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// WalkEntry is one filesystem entry yielded by a Walker.
type WalkEntry struct {
	Path string
	Info fs.FileInfo
}

// IsDir reports whether the entry is a directory. Symbolic links are never directories.
func (entry WalkEntry) IsDir() bool {
	return entry.Info != nil && entry.Info.IsDir()
}

// VisitFunc receives each walked entry. Returning skip for a directory prevents its
// descendants from being visited; returning an error stops the walk.
type VisitFunc func(entry WalkEntry) (skip bool, err error)

// Walker yields the entries under root, root first, in pre-order: every directory is
// yielded before anything it contains. Symbolic links are reported, not followed.
type Walker interface {
	Walk(root string, visit VisitFunc) error
}

// AferoWalker walks an afero filesystem in lexical pre-order.
type AferoWalker struct {
	Fs afero.Fs
}

// NewOsWalker returns a walker over the host filesystem.
func NewOsWalker() AferoWalker {
	return AferoWalker{Fs: afero.NewOsFs()}
}

// Walk implements Walker.
func (walker AferoWalker) Walk(root string, visit VisitFunc) error {
	fileSystem := walker.Fs
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return afero.Walk(fileSystem, root, func(path string, info fs.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		skip, visitError := visit(WalkEntry{Path: path, Info: info})
		if visitError != nil {
			return visitError
		}
		if skip && info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
}

var _ Walker = AferoWalker{}

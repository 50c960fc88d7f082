package tree

import "errors"

var (
	// ErrBorrowConflict reports overlapping access to one node: a shared view was requested
	// while an exclusive view is held, or an exclusive view while any view is held.
	// The caller may retry once the outstanding view is released.
	ErrBorrowConflict = errors.New("tree: node is already borrowed")

	// ErrDuplicateChild reports an insertion under a name that already exists.
	ErrDuplicateChild = errors.New("tree: duplicate child name")

	// ErrParentDropped reports a parent reference that no longer resolves to a live node.
	ErrParentDropped = errors.New("tree: parent node was dropped")

	// ErrSubtreeAttached reports an attempt to attach a subtree whose root already has a parent.
	ErrSubtreeAttached = errors.New("tree: subtree is already attached to a parent")

	// ErrCycle reports an attempt to attach a tree below one of its own descendants.
	ErrCycle = errors.New("tree: attaching subtree would create a cycle")

	// ErrNilTree reports an operation on the zero Tree.
	ErrNilTree = errors.New("tree: nil tree")

	// SkipSubtree can be returned from a Walk callback to skip the children of the current node.
	SkipSubtree = errors.New("skip this subtree")
)

const (
	duplicateChildFormat = "%w: %v"
	childLookupFormat    = "looking up child %v: %w"
)

// Package tree implements a generic named tree with parent and child navigation.
//
// Children are owned by their parent through the children table. The parent link is a
// weak pointer, so a handle to a child does not keep its ancestors alive: once every
// handle to the root is released and the root is collected, Parent on an orphaned child
// reports ErrParentDropped.
//
// Node internals are guarded by non-blocking borrow flags. Overlapping access, such as
// inserting into a node from inside Range over that same node, fails with
// ErrBorrowConflict instead of corrupting state. Trees are not safe for concurrent use.
package tree

import (
	"fmt"
	"weak"
)

type node[Name comparable, Data any] struct {
	structure borrowFlag
	data      *Cell[Data]
	parent    weak.Pointer[node[Name, Data]]
	hasParent bool
	children  map[Name]*node[Name, Data]
}

func newNode[Name comparable, Data any](data Data) *node[Name, Data] {
	return &node[Name, Data]{
		data:     newCell(data),
		children: make(map[Name]*node[Name, Data]),
	}
}

// resolveParent returns the parent node, nil for a root, or ErrParentDropped.
func (current *node[Name, Data]) resolveParent() (*node[Name, Data], error) {
	var parentNode *node[Name, Data]
	readError := current.structure.shared(func() error {
		if !current.hasParent {
			return nil
		}
		parentNode = current.parent.Value()
		if parentNode == nil {
			return ErrParentDropped
		}
		return nil
	})
	return parentNode, readError
}

// Tree is a handle to one node. Copying a Tree copies the handle, not the node: all
// copies observe and mutate the same node. The zero Tree refers to no node.
type Tree[Name comparable, Data any] struct {
	node *node[Name, Data]
}

// Child pairs a child name with a handle to the child.
type Child[Name comparable, Data any] struct {
	Name Name
	Tree Tree[Name, Data]
}

// New creates a root node holding data.
func New[Name comparable, Data any](data Data) Tree[Name, Data] {
	return Tree[Name, Data]{node: newNode[Name](data)}
}

// IsZero reports whether the handle refers to no node.
func (handle Tree[Name, Data]) IsZero() bool {
	return handle.node == nil
}

// Same reports whether both handles refer to the same node.
func (handle Tree[Name, Data]) Same(other Tree[Name, Data]) bool {
	return handle.node == other.node
}

// Data returns the cell shared by every handle to this node, or nil for the zero Tree.
func (handle Tree[Name, Data]) Data() *Cell[Data] {
	if handle.node == nil {
		return nil
	}
	return handle.node.data
}

// Insert creates a child named name holding data and returns a handle to it.
// It fails with ErrDuplicateChild when name is already taken.
func (handle Tree[Name, Data]) Insert(name Name, data Data) (Tree[Name, Data], error) {
	if handle.node == nil {
		return Tree[Name, Data]{}, ErrNilTree
	}
	child := newNode[Name](data)
	if attachError := handle.attach(name, child); attachError != nil {
		return Tree[Name, Data]{}, attachError
	}
	return Tree[Name, Data]{node: child}, nil
}

// InsertSubtree attaches the root of subtree as a child named name and returns the
// subtree handle, now parented by the receiver. The subtree must be a root and must not
// contain the receiver.
func (handle Tree[Name, Data]) InsertSubtree(name Name, subtree Tree[Name, Data]) (Tree[Name, Data], error) {
	if handle.node == nil || subtree.node == nil {
		return Tree[Name, Data]{}, ErrNilTree
	}
	var attached bool
	readError := subtree.node.structure.shared(func() error {
		attached = subtree.node.hasParent
		return nil
	})
	if readError != nil {
		return Tree[Name, Data]{}, readError
	}
	if attached {
		return Tree[Name, Data]{}, ErrSubtreeAttached
	}
	for ancestor := handle.node; ancestor != nil; {
		if ancestor == subtree.node {
			return Tree[Name, Data]{}, ErrCycle
		}
		next, resolveError := ancestor.resolveParent()
		if resolveError != nil {
			return Tree[Name, Data]{}, resolveError
		}
		ancestor = next
	}
	if attachError := handle.attach(name, subtree.node); attachError != nil {
		return Tree[Name, Data]{}, attachError
	}
	return subtree, nil
}

func (handle Tree[Name, Data]) attach(name Name, child *node[Name, Data]) error {
	parentNode := handle.node
	return parentNode.structure.exclusive(func() error {
		if _, exists := parentNode.children[name]; exists {
			return fmt.Errorf(duplicateChildFormat, ErrDuplicateChild, name)
		}
		linkError := child.structure.exclusive(func() error {
			child.parent = weak.Make(parentNode)
			child.hasParent = true
			return nil
		})
		if linkError != nil {
			return linkError
		}
		parentNode.children[name] = child
		return nil
	})
}

// Remove detaches the child named name. The detached child becomes the root of an
// independent tree; the returned handle is the only thing keeping it alive.
func (handle Tree[Name, Data]) Remove(name Name) (Tree[Name, Data], bool, error) {
	if handle.node == nil {
		return Tree[Name, Data]{}, false, ErrNilTree
	}
	parentNode := handle.node
	var detached *node[Name, Data]
	removeError := parentNode.structure.exclusive(func() error {
		child, exists := parentNode.children[name]
		if !exists {
			return nil
		}
		unlinkError := child.structure.exclusive(func() error {
			child.parent = weak.Pointer[node[Name, Data]]{}
			child.hasParent = false
			return nil
		})
		if unlinkError != nil {
			return unlinkError
		}
		delete(parentNode.children, name)
		detached = child
		return nil
	})
	if removeError != nil || detached == nil {
		return Tree[Name, Data]{}, false, removeError
	}
	return Tree[Name, Data]{node: detached}, true, nil
}

// Child returns the direct child named name.
func (handle Tree[Name, Data]) Child(name Name) (Tree[Name, Data], bool, error) {
	if handle.node == nil {
		return Tree[Name, Data]{}, false, ErrNilTree
	}
	var child *node[Name, Data]
	readError := handle.node.structure.shared(func() error {
		child = handle.node.children[name]
		return nil
	})
	if readError != nil || child == nil {
		return Tree[Name, Data]{}, false, readError
	}
	return Tree[Name, Data]{node: child}, true, nil
}

// Parent returns the parent handle; found is false for a root.
func (handle Tree[Name, Data]) Parent() (Tree[Name, Data], bool, error) {
	if handle.node == nil {
		return Tree[Name, Data]{}, false, ErrNilTree
	}
	parentNode, resolveError := handle.node.resolveParent()
	if resolveError != nil || parentNode == nil {
		return Tree[Name, Data]{}, false, resolveError
	}
	return Tree[Name, Data]{node: parentNode}, true, nil
}

// IsRoot reports whether the node has no parent.
func (handle Tree[Name, Data]) IsRoot() (bool, error) {
	if handle.node == nil {
		return false, ErrNilTree
	}
	var root bool
	readError := handle.node.structure.shared(func() error {
		root = !handle.node.hasParent
		return nil
	})
	return root, readError
}

// RecursiveGet descends from the receiver through path and returns the node it names.
//
// Segments are consumed from the end of the slice: the last element names a child of the
// receiver, the one before it a grandchild, and so on. For a node reached by
// Child(a), Child(b), Child(c) the path is []Name{c, b, a}. An empty path returns the
// receiver. path is not modified.
func (handle Tree[Name, Data]) RecursiveGet(path []Name) (Tree[Name, Data], bool, error) {
	current := handle
	for segmentIndex := len(path) - 1; segmentIndex >= 0; segmentIndex-- {
		next, found, lookupError := current.Child(path[segmentIndex])
		if lookupError != nil {
			return Tree[Name, Data]{}, false, fmt.Errorf(childLookupFormat, path[segmentIndex], lookupError)
		}
		if !found {
			return Tree[Name, Data]{}, false, nil
		}
		current = next
	}
	if current.node == nil {
		return Tree[Name, Data]{}, false, ErrNilTree
	}
	return current, true, nil
}

// Children returns the direct children in unspecified order.
func (handle Tree[Name, Data]) Children() ([]Child[Name, Data], error) {
	if handle.node == nil {
		return nil, ErrNilTree
	}
	var children []Child[Name, Data]
	readError := handle.node.structure.shared(func() error {
		children = make([]Child[Name, Data], 0, len(handle.node.children))
		for name, child := range handle.node.children {
			children = append(children, Child[Name, Data]{Name: name, Tree: Tree[Name, Data]{node: child}})
		}
		return nil
	})
	if readError != nil {
		return nil, readError
	}
	return children, nil
}

// Len returns the number of direct children.
func (handle Tree[Name, Data]) Len() (int, error) {
	if handle.node == nil {
		return 0, ErrNilTree
	}
	var count int
	readError := handle.node.structure.shared(func() error {
		count = len(handle.node.children)
		return nil
	})
	return count, readError
}

// Range calls visit for every direct child while holding a shared view of the node.
// Iteration stops at the first error, which is returned. Inserting into or removing from
// the receiver inside visit fails with ErrBorrowConflict.
func (handle Tree[Name, Data]) Range(visit func(name Name, child Tree[Name, Data]) error) error {
	if handle.node == nil {
		return ErrNilTree
	}
	return handle.node.structure.shared(func() error {
		for name, child := range handle.node.children {
			if visitError := visit(name, Tree[Name, Data]{node: child}); visitError != nil {
				return visitError
			}
		}
		return nil
	})
}

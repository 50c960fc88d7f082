package tree

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// SortedChildren returns the direct children ordered by the %v rendering of their names.
func (handle Tree[Name, Data]) SortedChildren() ([]Child[Name, Data], error) {
	children, childrenError := handle.Children()
	if childrenError != nil {
		return nil, childrenError
	}
	slices.SortFunc(children, func(left, right Child[Name, Data]) int {
		return cmp.Compare(fmt.Sprint(left.Name), fmt.Sprint(right.Name))
	})
	return children, nil
}

// Walk visits the receiver and its descendants in pre-order, children in SortedChildren
// order. path lists the names from the receiver down to the visited node (head-first) and
// is empty for the receiver itself. Returning SkipSubtree skips the node's children; any
// other error stops the walk and is returned.
func (handle Tree[Name, Data]) Walk(visit func(path []Name, current Tree[Name, Data]) error) error {
	if handle.node == nil {
		return ErrNilTree
	}
	walkError := handle.walk(nil, visit)
	if errors.Is(walkError, SkipSubtree) {
		return nil
	}
	return walkError
}

func (handle Tree[Name, Data]) walk(path []Name, visit func(path []Name, current Tree[Name, Data]) error) error {
	if visitError := visit(path, handle); visitError != nil {
		return visitError
	}
	children, childrenError := handle.SortedChildren()
	if childrenError != nil {
		return childrenError
	}
	for _, child := range children {
		childPath := append(slices.Clip(path), child.Name)
		childError := child.Tree.walk(childPath, visit)
		if childError != nil && !errors.Is(childError, SkipSubtree) {
			return childError
		}
	}
	return nil
}

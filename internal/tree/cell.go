package tree

import "sync/atomic"

// exclusiveBorrow marks a borrow flag held by a single exclusive view.
const exclusiveBorrow = -1

// borrowFlag counts outstanding views: 0 free, n > 0 shared, exclusiveBorrow exclusive.
// Acquisition never blocks; a conflicting request fails with ErrBorrowConflict.
type borrowFlag struct {
	state atomic.Int32
}

func (flag *borrowFlag) acquireShared() error {
	for {
		current := flag.state.Load()
		if current == exclusiveBorrow {
			return ErrBorrowConflict
		}
		if flag.state.CompareAndSwap(current, current+1) {
			return nil
		}
	}
}

func (flag *borrowFlag) releaseShared() {
	flag.state.Add(-1)
}

func (flag *borrowFlag) acquireExclusive() error {
	if !flag.state.CompareAndSwap(0, exclusiveBorrow) {
		return ErrBorrowConflict
	}
	return nil
}

func (flag *borrowFlag) releaseExclusive() {
	flag.state.Store(0)
}

// shared runs operation while holding a shared view.
func (flag *borrowFlag) shared(operation func() error) error {
	if acquireError := flag.acquireShared(); acquireError != nil {
		return acquireError
	}
	defer flag.releaseShared()
	return operation()
}

// exclusive runs operation while holding the only view.
func (flag *borrowFlag) exclusive(operation func() error) error {
	if acquireError := flag.acquireExclusive(); acquireError != nil {
		return acquireError
	}
	defer flag.releaseExclusive()
	return operation()
}

// Cell holds a node's data. Every Tree handle to the node shares the same Cell, so a
// mutation through one handle is visible through all of them.
//
// Access goes through scoped views: View grants shared access and Update exclusive
// access for the duration of the callback. Requesting an Update from inside a View of
// the same cell (or any view from inside an Update) fails with ErrBorrowConflict.
type Cell[T any] struct {
	flag  borrowFlag
	value T
}

func newCell[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// View calls inspect with the current value while holding a shared view.
// A nil cell, as returned by the zero Tree, fails with ErrNilTree.
func (cell *Cell[T]) View(inspect func(value T) error) error {
	if cell == nil {
		return ErrNilTree
	}
	return cell.flag.shared(func() error {
		return inspect(cell.value)
	})
}

// Update calls mutate with a pointer to the value while holding an exclusive view.
func (cell *Cell[T]) Update(mutate func(value *T) error) error {
	if cell == nil {
		return ErrNilTree
	}
	return cell.flag.exclusive(func() error {
		return mutate(&cell.value)
	})
}

// Get returns a copy of the value.
func (cell *Cell[T]) Get() (T, error) {
	var snapshot T
	viewError := cell.View(func(value T) error {
		snapshot = value
		return nil
	})
	return snapshot, viewError
}

// Set replaces the value.
func (cell *Cell[T]) Set(value T) error {
	return cell.Update(func(current *T) error {
		*current = value
		return nil
	})
}

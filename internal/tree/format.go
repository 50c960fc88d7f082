package tree

import (
	"fmt"
	"strings"
)

const (
	nilTreeRendering      = "()"
	borrowedRendering     = "<borrowed>"
	displayIndent         = "  "
	displayMarker         = "- "
	debugChildSeparator   = " -> "
	debugOpenParenthesis  = "("
	debugCloseParenthesis = ")"
)

// GoString renders the structure as (data name -> (child) name -> (child) ...) with
// children in SortedChildren order. It backs the %#v verb and is meant for tests and
// debugging only.
func (handle Tree[Name, Data]) GoString() string {
	var builder strings.Builder
	handle.writeDebug(&builder)
	return builder.String()
}

func (handle Tree[Name, Data]) writeDebug(builder *strings.Builder) {
	if handle.node == nil {
		builder.WriteString(nilTreeRendering)
		return
	}
	builder.WriteString(debugOpenParenthesis)
	writeData(builder, handle.node.data)
	children, childrenError := handle.SortedChildren()
	if childrenError != nil {
		builder.WriteString(" " + borrowedRendering)
	}
	for _, child := range children {
		fmt.Fprintf(builder, " %v%s", child.Name, debugChildSeparator)
		child.Tree.writeDebug(builder)
	}
	builder.WriteString(debugCloseParenthesis)
}

// String renders an indented outline, one "- data" line per node and two extra spaces
// of indent per level.
func (handle Tree[Name, Data]) String() string {
	if handle.node == nil {
		return nilTreeRendering
	}
	var builder strings.Builder
	walkError := handle.Walk(func(path []Name, current Tree[Name, Data]) error {
		builder.WriteString(strings.Repeat(displayIndent, len(path)))
		builder.WriteString(displayMarker)
		writeData(&builder, current.node.data)
		builder.WriteString("\n")
		return nil
	})
	if walkError != nil {
		builder.WriteString(borrowedRendering + "\n")
	}
	return builder.String()
}

func writeData[Data any](builder *strings.Builder, cell *Cell[Data]) {
	viewError := cell.View(func(value Data) error {
		fmt.Fprint(builder, value)
		return nil
	})
	if viewError != nil {
		builder.WriteString(borrowedRendering)
	}
}

package tree_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fstree/internal/tree"
)

func sampleTree(testingInstance *testing.T) tree.Tree[string, int] {
	testingInstance.Helper()
	root := tree.New[string](34)
	_, bobError := root.Insert("bob", 13)
	require.NoError(testingInstance, bobError)
	_, billError := root.Insert("bill", 19)
	require.NoError(testingInstance, billError)
	return root
}

func TestDebugRendering(testingInstance *testing.T) {
	root := sampleTree(testingInstance)
	rendered := fmt.Sprintf("%#v", root)

	for _, expectedFragment := range []string{"bob", "bill", "34", "13", "19"} {
		require.Contains(testingInstance, rendered, expectedFragment)
	}
	require.Equal(testingInstance, "(34 bill -> (19) bob -> (13))", rendered)
	require.Equal(testingInstance, "()", tree.Tree[string, int]{}.GoString())
}

func TestDisplayRendering(testingInstance *testing.T) {
	root := sampleTree(testingInstance)
	bill, _, lookupError := root.Child("bill")
	require.NoError(testingInstance, lookupError)
	_, insertError := bill.Insert("ben", 7)
	require.NoError(testingInstance, insertError)

	rendered := fmt.Sprint(root)
	require.Equal(testingInstance, "- 34\n  - 19\n    - 7\n  - 13\n", rendered)

	lines := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	require.Len(testingInstance, lines, 4)
	previousPrefix := 0
	for lineIndex, line := range lines[:3] {
		prefixLength := strings.Index(line, "- ")
		if lineIndex > 0 {
			require.Greater(testingInstance, prefixLength, previousPrefix)
		}
		previousPrefix = prefixLength
	}
}

func TestRenderingWhileBorrowed(testingInstance *testing.T) {
	root := sampleTree(testingInstance)
	updateError := root.Data().Update(func(*int) error {
		require.Contains(testingInstance, root.GoString(), "<borrowed>")
		require.Contains(testingInstance, root.String(), "<borrowed>")
		return nil
	})
	require.NoError(testingInstance, updateError)
	require.NotContains(testingInstance, root.String(), "<borrowed>")
}

package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fstree/internal/output"
	"github.com/temirov/fstree/internal/tree"
	"github.com/temirov/fstree/internal/types"
)

const textMimeTypeExpected = "text/plain; charset=utf-8"

// sampleTree builds /root with a.txt (12 bytes), img.bin (2048 bytes) and sub/b.txt (3 bytes).
func sampleTree(testingInstance *testing.T) output.EntryTree {
	testingInstance.Helper()
	root := tree.New[string](types.EntryData{Name: "root", Path: "/root", Type: types.NodeTypeDirectory})
	_, insertError := root.Insert("a.txt", types.EntryData{Name: "a.txt", Path: "/root/a.txt", Type: types.NodeTypeFile, SizeBytes: 12, MimeType: textMimeTypeExpected})
	require.NoError(testingInstance, insertError)
	_, insertError = root.Insert("img.bin", types.EntryData{Name: "img.bin", Path: "/root/img.bin", Type: types.NodeTypeBinary, SizeBytes: 2048, MimeType: "application/octet-stream"})
	require.NoError(testingInstance, insertError)
	subdirectory, insertError := root.Insert("sub", types.EntryData{Name: "sub", Path: "/root/sub", Type: types.NodeTypeDirectory})
	require.NoError(testingInstance, insertError)
	_, insertError = subdirectory.Insert("b.txt", types.EntryData{Name: "b.txt", Path: "/root/sub/b.txt", Type: types.NodeTypeFile, SizeBytes: 3, MimeType: textMimeTypeExpected})
	require.NoError(testingInstance, insertError)
	return root
}

// TestBuildOutputNode verifies ordering and directory summaries.
func TestBuildOutputNode(testingInstance *testing.T) {
	node, buildError := output.BuildOutputNode(sampleTree(testingInstance))
	require.NoError(testingInstance, buildError)
	require.Equal(testingInstance, 3, node.TotalFiles)
	require.Equal(testingInstance, int64(2063), node.SizeBytes)
	require.Equal(testingInstance, "2kb", node.TotalSize)
	require.Len(testingInstance, node.Children, 3)
	require.Equal(testingInstance, []string{"a.txt", "img.bin", "sub"}, []string{node.Children[0].Name, node.Children[1].Name, node.Children[2].Name})
	require.Equal(testingInstance, "12b", node.Children[0].Size)
	require.Equal(testingInstance, 1, node.Children[2].TotalFiles)
	require.Equal(testingInstance, "3b", node.Children[2].TotalSize)
}

// TestRenderRaw verifies the connector-drawn rendering with summaries.
func TestRenderRaw(testingInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testingInstance, output.Render(&buffer, types.FormatRaw, []output.EntryTree{sampleTree(testingInstance)}, true))
	expected := "Summary: 3 files, 2kb\n\n" +
		"\n--- Directory Tree: /root ---\n" +
		"/root\n" +
		"Summary: 3 files, 2kb\n" +
		"├── [File] a.txt\n" +
		"├── [Binary] img.bin (Mime Type: application/octet-stream)\n" +
		"└── sub\n" +
		"    Summary: 1 file, 3b\n" +
		"    └── [File] b.txt\n"
	require.Equal(testingInstance, expected, buffer.String())
}

// TestRenderOutlineAndDebug verifies the outline and structure dump renderings.
func TestRenderOutlineAndDebug(testingInstance *testing.T) {
	roots := []output.EntryTree{sampleTree(testingInstance)}

	var outline bytes.Buffer
	require.NoError(testingInstance, output.Render(&outline, types.FormatOutline, roots, false))
	require.Equal(testingInstance, "- root/\n  - a.txt\n  - img.bin\n  - sub/\n    - b.txt\n", outline.String())

	var debug bytes.Buffer
	require.NoError(testingInstance, output.Render(&debug, types.FormatDebug, roots, false))
	require.Equal(testingInstance, "(root/ a.txt -> (a.txt) img.bin -> (img.bin) sub -> (sub/ b.txt -> (b.txt)))\n", debug.String())
}

// TestRenderJSON verifies that one root renders as an object and several as an array.
func TestRenderJSON(testingInstance *testing.T) {
	node, buildError := output.BuildOutputNode(sampleTree(testingInstance))
	require.NoError(testingInstance, buildError)

	single, singleError := output.RenderJSON([]*types.TreeOutputNode{node})
	require.NoError(testingInstance, singleError)
	var decoded map[string]any
	require.NoError(testingInstance, json.Unmarshal([]byte(single), &decoded))
	require.Equal(testingInstance, "/root", decoded["path"])
	require.Equal(testingInstance, float64(3), decoded["totalFiles"])
	require.NotContains(testingInstance, decoded, "SizeBytes")

	multiple, multipleError := output.RenderJSON([]*types.TreeOutputNode{node, node})
	require.NoError(testingInstance, multipleError)
	var decodedArray []map[string]any
	require.NoError(testingInstance, json.Unmarshal([]byte(multiple), &decodedArray))
	require.Len(testingInstance, decodedArray, 2)

	empty, emptyError := output.RenderJSON(nil)
	require.NoError(testingInstance, emptyError)
	require.Equal(testingInstance, "[]", empty)
}

// TestRenderXML verifies the document element for one and several roots.
func TestRenderXML(testingInstance *testing.T) {
	node, buildError := output.BuildOutputNode(sampleTree(testingInstance))
	require.NoError(testingInstance, buildError)

	single, singleError := output.RenderXML([]*types.TreeOutputNode{node})
	require.NoError(testingInstance, singleError)
	require.True(testingInstance, strings.HasPrefix(single, "<?xml"))
	require.Contains(testingInstance, single, "<node>\n  <path>/root</path>")
	require.Contains(testingInstance, single, "<totalFiles>3</totalFiles>")

	multiple, multipleError := output.RenderXML([]*types.TreeOutputNode{node, node})
	require.NoError(testingInstance, multipleError)
	require.Contains(testingInstance, multiple, "<results>")
	require.Equal(testingInstance, 2, strings.Count(multiple, "<path>/root</path>"))
}

// TestRenderUnsupportedFormat verifies that unknown formats are rejected.
func TestRenderUnsupportedFormat(testingInstance *testing.T) {
	var buffer bytes.Buffer
	renderError := output.Render(&buffer, "yaml", []output.EntryTree{sampleTree(testingInstance)}, false)
	require.ErrorIs(testingInstance, renderError, output.ErrUnsupportedFormat)
	require.Empty(testingInstance, buffer.String())
}

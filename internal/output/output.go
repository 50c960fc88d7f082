// Package output renders built directory trees as text, JSON or XML.
package output

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/temirov/fstree/internal/tree"
	"github.com/temirov/fstree/internal/types"
	"github.com/temirov/fstree/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader      = xml.Header
	xmlRootElement = "results"

	mimeTypeLabel     = "Mime Type: "
	binaryTreeFormat  = "%s[Binary] %s (%s%s)\n"
	fileTreeFormat    = "%s[File] %s\n"
	symlinkTreeFormat = "%s[Link] %s\n"
	directoryHeader   = "\n--- Directory Tree: %s ---\n"

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	errorUnsupportedFormat = "%w: %q"
	errorConvertTreeFormat = "converting tree %s: %w"
)

// ErrUnsupportedFormat is returned by Render for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// EntryTree is a built directory tree keyed by entry name.
type EntryTree = tree.Tree[string, types.EntryData]

// Render writes roots to writer in the named format.
func Render(writer io.Writer, format string, roots []EntryTree, includeSummary bool) error {
	switch format {
	case types.FormatOutline:
		return RenderOutline(writer, roots)
	case types.FormatDebug:
		return RenderDebug(writer, roots)
	}

	nodes := make([]*types.TreeOutputNode, 0, len(roots))
	for _, root := range roots {
		node, convertError := BuildOutputNode(root)
		if convertError != nil {
			return convertError
		}
		nodes = append(nodes, node)
	}

	var rendered string
	var renderError error
	switch format {
	case types.FormatRaw:
		return RenderRaw(writer, nodes, includeSummary)
	case types.FormatJSON:
		rendered, renderError = RenderJSON(nodes)
	case types.FormatXML:
		rendered, renderError = RenderXML(nodes)
	default:
		return fmt.Errorf(errorUnsupportedFormat, ErrUnsupportedFormat, format)
	}
	if renderError != nil {
		return renderError
	}
	_, writeError := fmt.Fprintln(writer, rendered)
	return writeError
}

// RenderOutline writes each root as an indented "- name" outline.
func RenderOutline(writer io.Writer, roots []EntryTree) error {
	for _, root := range roots {
		if _, writeError := io.WriteString(writer, root.String()); writeError != nil {
			return writeError
		}
	}
	return nil
}

// RenderDebug writes the parenthesized structure dump of each root, one per line.
func RenderDebug(writer io.Writer, roots []EntryTree) error {
	for _, root := range roots {
		if _, writeError := fmt.Fprintf(writer, "%#v\n", root); writeError != nil {
			return writeError
		}
	}
	return nil
}

// BuildOutputNode converts root into an output hierarchy with children sorted by name.
// Directories carry the file count and total size of everything below them.
func BuildOutputNode(root EntryTree) (*types.TreeOutputNode, error) {
	data, dataError := root.Data().Get()
	if dataError != nil {
		return nil, dataError
	}
	node := &types.TreeOutputNode{
		Path:         data.Path,
		Name:         data.Name,
		Type:         data.Type,
		LastModified: data.LastModified,
		MimeType:     data.MimeType,
	}
	if !data.IsDirectory() {
		node.SizeBytes = data.SizeBytes
		if data.Type != types.NodeTypeSymlink {
			node.Size = utils.FormatFileSize(data.SizeBytes)
		}
		return node, nil
	}

	children, childrenError := root.SortedChildren()
	if childrenError != nil {
		return nil, fmt.Errorf(errorConvertTreeFormat, data.Path, childrenError)
	}
	for _, child := range children {
		childNode, childError := BuildOutputNode(child.Tree)
		if childError != nil {
			return nil, childError
		}
		node.Children = append(node.Children, childNode)
	}
	totalFiles, totalBytes := summarizeTree(node)
	applySummary(node, totalFiles, totalBytes)
	return node, nil
}

// applySummary stores aggregate counts and bytes on the node.
func applySummary(node *types.TreeOutputNode, totalFiles int, totalBytes int64) {
	node.TotalFiles = totalFiles
	node.SizeBytes = totalBytes
	node.TotalSize = utils.FormatFileSize(totalBytes)
}

func isFileNode(node *types.TreeOutputNode) bool {
	return node.Type == types.NodeTypeFile || node.Type == types.NodeTypeBinary
}

func summarizeTree(node *types.TreeOutputNode) (int, int64) {
	if node == nil {
		return 0, 0
	}
	if isFileNode(node) {
		return 1, node.SizeBytes
	}
	var totalFiles int
	var totalBytes int64
	for _, child := range node.Children {
		childFiles, childBytes := summarizeTree(child)
		totalFiles += childFiles
		totalBytes += childBytes
	}
	return totalFiles, totalBytes
}

// ComputeSummary aggregates the files below every node.
func ComputeSummary(nodes []*types.TreeOutputNode) *types.OutputSummary {
	var totalFiles int
	var totalBytes int64
	for _, node := range nodes {
		files, bytes := summarizeTree(node)
		totalFiles += files
		totalBytes += bytes
	}
	return &types.OutputSummary{TotalFiles: totalFiles, TotalSize: utils.FormatFileSize(totalBytes)}
}

// FormatSummaryLine formats an OutputSummary into the raw summary line.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{}
	}
	label := "files"
	if summary.TotalFiles == 1 {
		label = "file"
	}
	return fmt.Sprintf("Summary: %d %s, %s", summary.TotalFiles, label, summary.TotalSize)
}

// RenderJSON marshals a single node as an object and several nodes as an array.
func RenderJSON(nodes []*types.TreeOutputNode) (string, error) {
	if len(nodes) == 0 {
		return "[]", nil
	}
	var value any = nodes
	if len(nodes) == 1 {
		value = nodes[0]
	}
	encoded, jsonEncodeError := json.MarshalIndent(value, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

// RenderXML marshals a single node as the document element and several nodes below a
// results element.
func RenderXML(nodes []*types.TreeOutputNode) (string, error) {
	var value any
	if len(nodes) == 1 {
		value = nodes[0]
	} else {
		value = struct {
			XMLName xml.Name
			Nodes   []*types.TreeOutputNode `xml:"node"`
		}{XMLName: xml.Name{Local: xmlRootElement}, Nodes: nodes}
	}
	encoded, xmlMarshalError := xml.MarshalIndent(value, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

// RenderRaw writes each node as a connector-drawn tree, preceded by an overall summary
// line when includeSummary is set.
func RenderRaw(writer io.Writer, nodes []*types.TreeOutputNode, includeSummary bool) error {
	if includeSummary {
		if _, writeError := fmt.Fprintf(writer, "%s\n\n", FormatSummaryLine(ComputeSummary(nodes))); writeError != nil {
			return writeError
		}
	}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if node.Type == types.NodeTypeDirectory {
			if _, writeError := fmt.Fprintf(writer, directoryHeader, node.Path); writeError != nil {
				return writeError
			}
		}
		WriteTreeRaw(writer, node, includeSummary)
	}
	return nil
}

// WriteTreeRaw renders a directory tree to the provided writer.
func WriteTreeRaw(writer io.Writer, node *types.TreeOutputNode, includeSummary bool) {
	if node == nil {
		return
	}
	renderTreeNode(writer, node, "", includeSummary, true, true)
}

func directorySummaryLine(node *types.TreeOutputNode, includeSummary bool) string {
	if !includeSummary || node == nil || node.Type != types.NodeTypeDirectory {
		return ""
	}
	return FormatSummaryLine(&types.OutputSummary{TotalFiles: node.TotalFiles, TotalSize: node.TotalSize})
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderTreeNode(writer io.Writer, node *types.TreeOutputNode, prefix string, includeSummary bool, isRoot bool, isLast bool) {
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	label := node.Name
	if isRoot {
		label = node.Path
	}
	switch node.Type {
	case types.NodeTypeFile:
		fmt.Fprintf(writer, fileTreeFormat, linePrefix, label)
		return
	case types.NodeTypeBinary:
		fmt.Fprintf(writer, binaryTreeFormat, linePrefix, label, mimeTypeLabel, node.MimeType)
		return
	case types.NodeTypeSymlink:
		fmt.Fprintf(writer, symlinkTreeFormat, linePrefix, label)
		return
	}
	fmt.Fprintf(writer, "%s%s\n", linePrefix, label)
	summaryLine := directorySummaryLine(node, includeSummary)
	if summaryLine != "" {
		if isRoot {
			fmt.Fprintf(writer, "%s\n", summaryLine)
		} else {
			fmt.Fprintf(writer, "%s%s\n", childPrefix, summaryLine)
		}
	}
	for index, child := range node.Children {
		renderTreeNode(writer, child, childPrefix, includeSummary, false, index == len(node.Children)-1)
	}
}

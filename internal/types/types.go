// Package types defines the data structures shared by the fstree packages.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
	NodeTypeBinary    = "binary"
	NodeTypeSymlink   = "symlink"

	CommandTree = "tree"
	CommandInit = "init"

	FormatRaw     = "raw"
	FormatOutline = "outline"
	FormatDebug   = "debug"
	FormatJSON    = "json"
	FormatXML     = "xml"

	directoryDisplaySuffix = "/"
)

// EntryData annotates one filesystem entry in a built tree.
type EntryData struct {
	Name         string
	Path         string
	RelativePath string
	Type         string
	SizeBytes    int64
	LastModified string
	MimeType     string
}

// IsDirectory reports whether the entry is a directory.
func (entry EntryData) IsDirectory() bool {
	return entry.Type == NodeTypeDirectory
}

// String renders the entry name, with a trailing slash for directories.
func (entry EntryData) String() string {
	if entry.IsDirectory() {
		return entry.Name + directoryDisplaySuffix
	}
	return entry.Name
}

// TreeOutputNode represents a node of a directory tree in structured output.
type TreeOutputNode struct {
	XMLName      xml.Name          `json:"-" xml:"node"`
	Path         string            `json:"path" xml:"path"`
	Name         string            `json:"name" xml:"name"`
	Type         string            `json:"type" xml:"type"`
	Size         string            `json:"size,omitempty" xml:"size,omitempty"`
	SizeBytes    int64             `json:"-" xml:"-"`
	LastModified string            `json:"lastModified,omitempty" xml:"lastModified,omitempty"`
	MimeType     string            `json:"mimeType,omitempty" xml:"mimeType,omitempty"`
	Children     []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty"`
	TotalFiles   int               `json:"totalFiles,omitempty" xml:"totalFiles,omitempty"`
	TotalSize    string            `json:"totalSize,omitempty" xml:"totalSize,omitempty"`
}

// OutputSummary captures aggregate information about rendered trees.
type OutputSummary struct {
	TotalFiles int    `json:"totalFiles" xml:"totalFiles"`
	TotalSize  string `json:"totalSize" xml:"totalSize"`
}

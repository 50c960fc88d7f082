package commands

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/fstree/internal/fsbuild"
	"github.com/temirov/fstree/internal/tree"
	"github.com/temirov/fstree/internal/types"
	"github.com/temirov/fstree/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorBuildTreeFormat is used when building the tree fails.
	errorBuildTreeFormat = "building tree for %s: %w"
)

// EntryTree is a built directory tree keyed by entry name.
type EntryTree = tree.Tree[string, types.EntryData]

// GetTreeData builds the annotated tree for rootDirectoryPath. Entries matching the
// builder's ignore patterns are pruned together with their descendants.
func (treeBuilder *TreeBuilder) GetTreeData(rootDirectoryPath string) (EntryTree, error) {
	var emptyTree EntryTree
	absoluteRootDirPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return emptyTree, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	fileSystem := treeBuilder.fileSystem()
	builder := &fsbuild.Builder[types.EntryData]{
		Walker:          fsbuild.AferoWalker{Fs: fileSystem},
		Logger:          treeBuilder.logger(),
		ExcludePatterns: treeBuilder.IgnorePatterns,
		SortByDepth:     treeBuilder.SortByDepth,
	}
	root, constructError := builder.Construct(absoluteRootDirPath, DescribeEntry(fileSystem))
	if constructError != nil {
		return emptyTree, fmt.Errorf(errorBuildTreeFormat, rootDirectoryPath, constructError)
	}
	return root, nil
}

func (treeBuilder *TreeBuilder) fileSystem() afero.Fs {
	if treeBuilder.Fs == nil {
		return afero.NewOsFs()
	}
	return treeBuilder.Fs
}

func (treeBuilder *TreeBuilder) logger() *zap.Logger {
	if treeBuilder.Logger == nil {
		return zap.NewNop()
	}
	return treeBuilder.Logger
}

// DescribeEntry returns a data function annotating entries with their type, size,
// modification time and, for regular files, the sniffed MIME type.
func DescribeEntry(fileSystem afero.Fs) fsbuild.DataFunc[types.EntryData] {
	return func(entry fsbuild.Entry) (types.EntryData, error) {
		data := types.EntryData{
			Name:         entry.Name,
			Path:         entry.Path,
			RelativePath: entry.RelativePath,
			Type:         types.NodeTypeDirectory,
		}
		if entry.Info != nil {
			data.LastModified = utils.FormatTimestamp(entry.Info.ModTime())
		}
		switch {
		case entry.IsDir:
			return data, nil
		case entry.Info != nil && entry.Info.Mode()&fs.ModeSymlink != 0:
			data.Type = types.NodeTypeSymlink
			return data, nil
		}

		mimeType, binary := utils.SniffFile(fileSystem, entry.Path)
		data.MimeType = mimeType
		data.Type = types.NodeTypeFile
		if binary {
			data.Type = types.NodeTypeBinary
		}
		if entry.Info != nil {
			data.SizeBytes = entry.Info.Size()
		}
		return data, nil
	}
}

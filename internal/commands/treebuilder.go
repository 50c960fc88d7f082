// Package commands contains the core logic for data collection for each command.
package commands

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// TreeBuilder builds annotated directory trees using configured options.
type TreeBuilder struct {
	IgnorePatterns []string
	SortByDepth    bool
	// Fs is the filesystem walked and sniffed. Nil means the host filesystem.
	Fs     afero.Fs
	Logger *zap.Logger
}

// Package utils contains general helpers shared by the fstree packages.
package utils

import "path/filepath"

// File and directory names recognized by fstree.
const (
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".fstree.yaml"
	// GlobalConfigDirectoryName is the directory below the user's home holding global configuration.
	GlobalConfigDirectoryName = ".fstree"
	// GlobalConfigFileName is the name of the global configuration file.
	GlobalConfigFileName = "config.yaml"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; exists {
			continue
		}
		encounteredPatterns[pattern] = struct{}{}
		result = append(result, pattern)
	}
	return result
}

// RelativePathOrSelf returns the slash-separated path of fullPath relative to root, "."
// when both name the same directory, or the cleaned fullPath when no relative path exists.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot {
		return "."
	}
	relativePath, relErr := filepath.Rel(cleanRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

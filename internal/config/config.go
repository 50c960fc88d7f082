// Package config loads application configuration and turns ignore files into exclude patterns.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/fstree/internal/exclude"
	"github.com/temirov/fstree/internal/utils"
)

const (
	commentPrefix          = "#"
	negationPrefix         = "!"
	anchorPrefix           = "/"
	currentDirectoryPrefix = "./"
	anyDepthSegment        = "**"
	pathSeparator          = "/"
	rootRelativePath       = "."
	globEscape             = '\\'
	globMetacharacters     = "*?[]{}\\"
	errorLoadPattern       = "loading %s from %s: %w"
)

// IgnoreOptions selects which ignore sources contribute exclude patterns.
type IgnoreOptions struct {
	UseGitignore  bool
	UseIgnoreFile bool
	IncludeGit    bool
	// Recursive also reads ignore files in nested directories.
	Recursive bool
}

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns. Blank lines,
// comments and negated patterns are skipped. A missing file yields no patterns.
func LoadIgnoreFilePatterns(fileSystem afero.Fs, ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := fileSystem.Open(ignoreFilePath)
	if openFileError != nil {
		if errors.Is(openFileError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) || strings.HasPrefix(trimmedLine, negationPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadCombinedIgnorePatterns aggregates patterns from the ignore files of
// rootDirectoryPath, followed by exclusionPatterns. The .git directory is excluded unless
// options.IncludeGit is set. With options.Recursive, patterns from nested ignore files are
// scoped to their directory, and directories already excluded are not searched.
func LoadCombinedIgnorePatterns(fileSystem afero.Fs, rootDirectoryPath string, exclusionPatterns []string, options IgnoreOptions) ([]string, error) {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	var trailingPatterns []string
	if !options.IncludeGit {
		trailingPatterns = append(trailingPatterns, utils.GitDirectoryName)
	}
	for _, pattern := range exclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern != "" {
			trailingPatterns = append(trailingPatterns, trimmedPattern)
		}
	}

	var combinedPatterns []string
	readDirectory := func(directoryPath string) error {
		prefix := utils.RelativePathOrSelf(directoryPath, rootDirectoryPath)
		for _, fileName := range ignoreFileNames(options) {
			filePatterns, loadError := LoadIgnoreFilePatterns(fileSystem, filepath.Join(directoryPath, fileName))
			if loadError != nil {
				return fmt.Errorf(errorLoadPattern, fileName, directoryPath, loadError)
			}
			for _, pattern := range filePatterns {
				combinedPatterns = append(combinedPatterns, scopePattern(prefix, pattern))
			}
		}
		return nil
	}
	currentPatterns := func() []string {
		return append(slices.Clone(combinedPatterns), trailingPatterns...)
	}

	var readError error
	if options.Recursive {
		readError = walkKeptDirectories(fileSystem, rootDirectoryPath, currentPatterns, readDirectory)
	} else {
		readError = readDirectory(rootDirectoryPath)
	}
	if readError != nil {
		return nil, readError
	}
	return utils.DeduplicatePatterns(currentPatterns()), nil
}

func ignoreFileNames(options IgnoreOptions) []string {
	var names []string
	if options.UseIgnoreFile {
		names = append(names, utils.IgnoreFileName)
	}
	if options.UseGitignore {
		names = append(names, utils.GitIgnoreFileName)
	}
	return names
}

// walkKeptDirectories calls readDirectory for rootDirectoryPath and, in pre-order, for
// every directory below it that currentPatterns does not exclude when it is reached.
// Patterns only grow during the walk, so the matcher is recompiled when their count changes.
func walkKeptDirectories(fileSystem afero.Fs, rootDirectoryPath string, currentPatterns func() []string, readDirectory func(directoryPath string) error) error {
	var matcher *exclude.Matcher
	compiledCount := -1
	return afero.Walk(fileSystem, rootDirectoryPath, func(currentPath string, info fs.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !info.IsDir() {
			return nil
		}
		relativePath := utils.RelativePathOrSelf(currentPath, rootDirectoryPath)
		if relativePath != rootRelativePath {
			patterns := currentPatterns()
			if len(patterns) != compiledCount {
				// invalid patterns are reported when the tree is built
				matcher, _ = exclude.Compile(patterns)
				compiledCount = len(patterns)
			}
			if matcher.Excludes(relativePath) {
				return filepath.SkipDir
			}
		}
		return readDirectory(currentPath)
	})
}

// scopePattern rewrites a pattern read from the ignore file of the directory at prefix
// (relative to the root) so that it applies below that directory only. Anchored
// patterns and patterns containing a separator are relative to the directory; bare
// names match at any depth below it.
func scopePattern(prefix string, pattern string) string {
	trimmed := strings.TrimSuffix(pattern, pathSeparator)
	anchored := strings.HasPrefix(trimmed, anchorPrefix) || strings.Contains(trimmed, pathSeparator)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, currentDirectoryPrefix), anchorPrefix)
	if prefix == rootRelativePath || prefix == "" {
		if anchored {
			return anchorPrefix + trimmed
		}
		return trimmed
	}
	scopeDirectory := escapeGlobPath(filepath.ToSlash(prefix))
	if anchored {
		return path.Join(scopeDirectory, trimmed)
	}
	return path.Join(scopeDirectory, anyDepthSegment, trimmed)
}

// escapeGlobPath escapes glob metacharacters in every segment of a slash-separated path
// so that it matches only itself.
func escapeGlobPath(slashPath string) string {
	segments := strings.Split(slashPath, pathSeparator)
	for index, segment := range segments {
		var escaped strings.Builder
		for _, character := range segment {
			if strings.ContainsRune(globMetacharacters, character) {
				escaped.WriteByte(globEscape)
			}
			escaped.WriteRune(character)
		}
		segments[index] = escaped.String()
	}
	return strings.Join(segments, pathSeparator)
}

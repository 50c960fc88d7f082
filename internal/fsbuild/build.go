// Package fsbuild materializes a tree.Tree from a directory hierarchy in one pre-order walk.
package fsbuild

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/fstree/internal/exclude"
	"github.com/temirov/fstree/internal/tree"
	"github.com/temirov/fstree/internal/utils"
)

const (
	pathSegmentSeparator = "/"
	rootRelativePath     = "."
	parentRelativePath   = ".."

	invalidPatternMessage = "ignoring invalid exclude pattern"
	excludedEntryMessage  = "excluded"
	constructedMessage    = "constructed tree"

	errorNilDataFunction  = "data function is nil"
	errorMissingRoot      = "walk did not yield the root"
	errorRootRevisited    = "root yielded twice"
	errorParentMissing    = "parent %s is not in the tree"
	errorNonUTF8Name      = "name %q is not valid UTF-8"
	errorEmptyName        = "empty name"
	errorResolveAncestors = "resolving ancestors: %w"
)

// Entry describes the path a DataFunc is asked to annotate. The root entry has an empty
// RelativePath; every other entry has the slash-separated path below the root.
type Entry struct {
	Path         string
	RelativePath string
	Name         string
	IsDir        bool
	Info         fs.FileInfo
}

// DataFunc computes the data stored for one entry. An error aborts construction.
type DataFunc[Data any] func(entry Entry) (Data, error)

// Builder constructs trees with configurable collaborators. The zero Builder walks the
// host filesystem, logs nothing and excludes nothing.
type Builder[Data any] struct {
	Walker          Walker
	Logger          *zap.Logger
	ExcludePatterns []string
	// SortByDepth buffers every surviving entry and inserts them shallowest first, for
	// walkers that cannot promise pre-order.
	SortByDepth bool
}

// Construct builds a tree rooted at rootPath over the host filesystem. Invalid exclude
// patterns are reported on stderr and skipped.
func Construct[Data any](rootPath string, dataFunction DataFunc[Data], excludePatterns []string) (tree.Tree[string, Data], error) {
	logger, loggerError := utils.NewApplicationLogger()
	if loggerError != nil {
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()
	builder := &Builder[Data]{Logger: logger, ExcludePatterns: excludePatterns}
	return builder.Construct(rootPath, dataFunction)
}

// Construct walks rootPath once and inserts every entry not pruned by the exclude
// patterns. No partial tree is returned on failure.
func (builder *Builder[Data]) Construct(rootPath string, dataFunction DataFunc[Data]) (tree.Tree[string, Data], error) {
	var emptyTree tree.Tree[string, Data]
	if dataFunction == nil {
		return emptyTree, newBuildError(ErrData, rootPath, errors.New(errorNilDataFunction))
	}
	logger := builder.logger()
	matcher, compileError := exclude.Compile(builder.ExcludePatterns)
	for _, patternError := range multierr.Errors(compileError) {
		logger.Warn(invalidPatternMessage, zap.Error(patternError))
	}

	session := &buildSession[Data]{
		rootPath:     filepath.Clean(rootPath),
		dataFunction: dataFunction,
		matcher:      matcher,
		logger:       logger,
	}
	visit := session.visit
	if builder.SortByDepth {
		visit = session.record
	}

	if walkError := builder.walker().Walk(session.rootPath, visit); walkError != nil {
		var buildError *BuildError
		if errors.As(walkError, &buildError) {
			return emptyTree, buildError
		}
		return emptyTree, newBuildError(ErrWalk, session.rootPath, walkError)
	}
	if builder.SortByDepth {
		if flushError := session.flush(); flushError != nil {
			return emptyTree, flushError
		}
	}
	if session.root.IsZero() {
		return emptyTree, newBuildError(ErrWalk, session.rootPath, errors.New(errorMissingRoot))
	}
	logger.Debug(constructedMessage, zap.String("root", session.rootPath), zap.Int("entries", session.inserted))
	return session.root, nil
}

func (builder *Builder[Data]) logger() *zap.Logger {
	if builder.Logger == nil {
		return zap.NewNop()
	}
	return builder.Logger
}

func (builder *Builder[Data]) walker() Walker {
	if builder.Walker == nil {
		return NewOsWalker()
	}
	return builder.Walker
}

type pendingEntry struct {
	entry        WalkEntry
	relativePath string
	depth        int
}

type buildSession[Data any] struct {
	rootPath     string
	dataFunction DataFunc[Data]
	matcher      *exclude.Matcher
	logger       *zap.Logger
	root         tree.Tree[string, Data]
	inserted     int
	pending      []pendingEntry
}

// relativize returns the slash-separated path of entry below the root, "." for the root.
func (session *buildSession[Data]) relativize(entry WalkEntry) (string, error) {
	relativePath, relativeError := filepath.Rel(session.rootPath, entry.Path)
	if relativeError != nil {
		return "", newBuildError(ErrRelativePath, entry.Path, relativeError)
	}
	slashPath := filepath.ToSlash(relativePath)
	if slashPath == parentRelativePath || strings.HasPrefix(slashPath, parentRelativePath+pathSegmentSeparator) {
		return "", newBuildError(ErrRelativePath, entry.Path, nil)
	}
	return slashPath, nil
}

// visit inserts each entry as soon as it is walked, relying on pre-order.
func (session *buildSession[Data]) visit(entry WalkEntry) (bool, error) {
	relativePath, relativeError := session.relativize(entry)
	if relativeError != nil {
		return false, relativeError
	}
	if relativePath == rootRelativePath {
		return false, session.plantRoot(entry)
	}
	if session.matcher.Excludes(relativePath) {
		session.logger.Debug(excludedEntryMessage, zap.String("path", relativePath))
		return true, nil
	}
	return false, session.insert(entry, relativePath)
}

// record records each surviving entry for flush. Exclusion still prunes the walk.
func (session *buildSession[Data]) record(entry WalkEntry) (bool, error) {
	relativePath, relativeError := session.relativize(entry)
	if relativeError != nil {
		return false, relativeError
	}
	depth := 0
	if relativePath != rootRelativePath {
		if session.matcher.Excludes(relativePath) {
			session.logger.Debug(excludedEntryMessage, zap.String("path", relativePath))
			return true, nil
		}
		depth = strings.Count(relativePath, pathSegmentSeparator) + 1
	}
	session.pending = append(session.pending, pendingEntry{entry: entry, relativePath: relativePath, depth: depth})
	return false, nil
}

// flush inserts the recorded entries shallowest first.
func (session *buildSession[Data]) flush() error {
	slices.SortStableFunc(session.pending, func(left, right pendingEntry) int {
		return left.depth - right.depth
	})
	for _, pending := range session.pending {
		var insertError error
		if pending.relativePath == rootRelativePath {
			insertError = session.plantRoot(pending.entry)
		} else {
			insertError = session.insert(pending.entry, pending.relativePath)
		}
		if insertError != nil {
			return insertError
		}
	}
	session.pending = nil
	return nil
}

func (session *buildSession[Data]) plantRoot(entry WalkEntry) error {
	if !session.root.IsZero() {
		return newBuildError(ErrOutOfOrder, entry.Path, errors.New(errorRootRevisited))
	}
	data, dataError := session.dataFunction(Entry{
		Path:  entry.Path,
		Name:  filepath.Base(entry.Path),
		IsDir: entry.IsDir(),
		Info:  entry.Info,
	})
	if dataError != nil {
		return newBuildError(ErrData, entry.Path, dataError)
	}
	session.root = tree.New[string](data)
	return nil
}

func (session *buildSession[Data]) insert(entry WalkEntry, relativePath string) error {
	segments := strings.Split(relativePath, pathSegmentSeparator)
	name := segments[len(segments)-1]
	if name == "" {
		return newBuildError(ErrInvalidName, entry.Path, errors.New(errorEmptyName))
	}
	if !utf8.ValidString(name) {
		return newBuildError(ErrInvalidName, entry.Path, fmt.Errorf(errorNonUTF8Name, name))
	}
	if session.root.IsZero() {
		return newBuildError(ErrOutOfOrder, entry.Path, fmt.Errorf(errorParentMissing, session.rootPath))
	}

	ancestors := slices.Clone(segments[:len(segments)-1])
	slices.Reverse(ancestors)
	parent, found, resolveError := session.root.RecursiveGet(ancestors)
	if resolveError != nil {
		return newBuildError(ErrInsert, entry.Path, fmt.Errorf(errorResolveAncestors, resolveError))
	}
	if !found {
		parentPath := strings.Join(segments[:len(segments)-1], pathSegmentSeparator)
		return newBuildError(ErrOutOfOrder, entry.Path, fmt.Errorf(errorParentMissing, parentPath))
	}

	data, dataError := session.dataFunction(Entry{
		Path:         entry.Path,
		RelativePath: relativePath,
		Name:         name,
		IsDir:        entry.IsDir(),
		Info:         entry.Info,
	})
	if dataError != nil {
		return newBuildError(ErrData, entry.Path, dataError)
	}
	if _, insertError := parent.Insert(name, data); insertError != nil {
		return newBuildError(ErrInsert, entry.Path, insertError)
	}
	session.inserted++
	return nil
}

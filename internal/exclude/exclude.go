// Package exclude compiles glob patterns that prune paths from a directory walk.
//
// Patterns are matched against slash-separated paths relative to the walk root using
// doublestar semantics: "*" stays within a segment and "**" spans segments. A pattern
// without a slash matches the final segment at any depth, the way ignore files treat
// bare names; a leading "/" or "./" anchors such a pattern at the root instead. A
// trailing slash is accepted and ignored. An excluded path excludes all of
// its descendants.
package exclude

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
)

const (
	pathSegmentSeparator = "/"
	currentDirectoryMark = "./"
	invalidPatternFormat = "invalid exclude pattern %q: %v"
)

// PatternError describes a pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (patternError *PatternError) Error() string {
	return fmt.Sprintf(invalidPatternFormat, patternError.Pattern, patternError.Err)
}

func (patternError *PatternError) Unwrap() error {
	return patternError.Err
}

type compiledPattern struct {
	source       string
	expression   string
	matchesNames bool
}

// Matcher holds the patterns that compiled successfully.
type Matcher struct {
	patterns []compiledPattern
}

// Compile returns a matcher built from every valid pattern. Invalid patterns are left out
// and reported through the returned error, a multierr combination of *PatternError
// values. A non-nil error therefore never means the matcher is unusable.
func Compile(patterns []string) (*Matcher, error) {
	matcher := &Matcher{}
	var invalidPatterns error
	for _, pattern := range patterns {
		expression := normalizePattern(pattern)
		if expression == "" {
			continue
		}
		if !doublestar.ValidatePattern(expression) {
			invalidPatterns = multierr.Append(invalidPatterns, &PatternError{Pattern: pattern, Err: doublestar.ErrBadPattern})
			continue
		}
		trimmedPattern := strings.TrimSpace(pattern)
		anchored := strings.HasPrefix(trimmedPattern, pathSegmentSeparator) || strings.HasPrefix(trimmedPattern, currentDirectoryMark)
		matcher.patterns = append(matcher.patterns, compiledPattern{
			source:       pattern,
			expression:   expression,
			matchesNames: !anchored && !strings.Contains(expression, pathSegmentSeparator),
		})
	}
	return matcher, invalidPatterns
}

func normalizePattern(pattern string) string {
	normalized := strings.TrimSpace(pattern)
	normalized = strings.TrimPrefix(normalized, currentDirectoryMark)
	normalized = strings.TrimPrefix(normalized, pathSegmentSeparator)
	return strings.TrimSuffix(normalized, pathSegmentSeparator)
}

// Patterns returns the source text of the active patterns in compilation order.
func (matcher *Matcher) Patterns() []string {
	if matcher == nil {
		return nil
	}
	sources := make([]string, 0, len(matcher.patterns))
	for _, pattern := range matcher.patterns {
		sources = append(sources, pattern.source)
	}
	return sources
}

// Len returns the number of active patterns.
func (matcher *Matcher) Len() int {
	if matcher == nil {
		return 0
	}
	return len(matcher.patterns)
}

// Match reports whether relativePath itself matches an active pattern.
// The empty path and "." denote the walk root, which never matches.
func (matcher *Matcher) Match(relativePath string) bool {
	segments := splitPath(relativePath)
	if matcher == nil || len(segments) == 0 {
		return false
	}
	return matcher.matchSegments(segments)
}

// Excludes reports whether relativePath or any of its ancestors matches an active pattern.
func (matcher *Matcher) Excludes(relativePath string) bool {
	segments := splitPath(relativePath)
	if matcher == nil || len(segments) == 0 {
		return false
	}
	for depth := 1; depth <= len(segments); depth++ {
		if matcher.matchSegments(segments[:depth]) {
			return true
		}
	}
	return false
}

func (matcher *Matcher) matchSegments(segments []string) bool {
	joinedPath := strings.Join(segments, pathSegmentSeparator)
	finalSegment := segments[len(segments)-1]
	for _, pattern := range matcher.patterns {
		candidate := joinedPath
		if pattern.matchesNames {
			candidate = finalSegment
		}
		matched, matchError := doublestar.Match(pattern.expression, candidate)
		if matchError == nil && matched {
			return true
		}
	}
	return false
}

func splitPath(relativePath string) []string {
	var segments []string
	for _, segment := range strings.Split(relativePath, pathSegmentSeparator) {
		if segment == "" || segment == "." {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

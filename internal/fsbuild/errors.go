package fsbuild

import (
	"errors"
	"fmt"
)

// Kinds of fatal construction failures. A *BuildError carries exactly one of them.
var (
	ErrWalk         = errors.New("walking directory tree")
	ErrRelativePath = errors.New("path is not below the root")
	ErrInvalidName  = errors.New("path has no valid final segment")
	ErrOutOfOrder   = errors.New("entry visited before its parent")
	ErrData         = errors.New("computing entry data")
	ErrInsert       = errors.New("inserting entry")
)

const (
	buildErrorFormat        = "%v: %s"
	wrappedBuildErrorFormat = "%v: %s: %v"
)

// BuildError is the single error returned by a failed construction.
// errors.Is matches both Kind and the underlying cause.
type BuildError struct {
	Kind error
	Path string
	Err  error
}

func newBuildError(kind error, path string, cause error) *BuildError {
	return &BuildError{Kind: kind, Path: path, Err: cause}
}

func (buildError *BuildError) Error() string {
	if buildError.Err == nil {
		return fmt.Sprintf(buildErrorFormat, buildError.Kind, buildError.Path)
	}
	return fmt.Sprintf(wrappedBuildErrorFormat, buildError.Kind, buildError.Path, buildError.Err)
}

func (buildError *BuildError) Unwrap() []error {
	causes := make([]error, 0, 2)
	if buildError.Kind != nil {
		causes = append(causes, buildError.Kind)
	}
	if buildError.Err != nil {
		causes = append(causes, buildError.Err)
	}
	return causes
}

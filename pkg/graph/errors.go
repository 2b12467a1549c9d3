package graph

import (
	"errors"
	"fmt"
	"strings"
)

// IndexHint tells the operator how to produce the artifacts this package reads.
const IndexHint = "Please run indexing first: graphrag index --root <project root>"

var (
	// ErrMissingArtifact matches any *MissingArtifactError.
	ErrMissingArtifact = errors.New("missing graph artifact")
	// ErrCorruptArtifact matches any *CorruptArtifactError.
	ErrCorruptArtifact = errors.New("corrupt graph artifact")
	// ErrOutputDirNotFound is returned when the artifact directory itself is absent.
	ErrOutputDirNotFound = errors.New("graph output directory not found")
)

// MissingArtifactError lists every required artifact file absent from Dir.
type MissingArtifactError struct {
	Dir     string
	Missing []string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf(
		"Missing required output files: %s\n%s",
		strings.Join(e.Missing, ", "),
		IndexHint,
	)
}

func (e *MissingArtifactError) Is(target error) bool {
	return target == ErrMissingArtifact
}

// CorruptArtifactError wraps the parse failure of an artifact that exists on
// disk but cannot be read, usually an indexer version mismatch.
type CorruptArtifactError struct {
	Path string
	Err  error
}

func (e *CorruptArtifactError) Error() string {
	return fmt.Sprintf("failed to read artifact %s: %v", e.Path, e.Err)
}

func (e *CorruptArtifactError) Unwrap() error {
	return e.Err
}

func (e *CorruptArtifactError) Is(target error) bool {
	return target == ErrCorruptArtifact
}

// IsNotIndexed reports whether err means the graph has not been built yet,
// either because the directory or one of the required files is absent.
func IsNotIndexed(err error) bool {
	return errors.Is(err, ErrMissingArtifact) || errors.Is(err, ErrOutputDirNotFound)
}

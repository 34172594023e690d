package microdata

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a source table could not be used.
type ErrorKind string

const (
	// MissingSourceFile means no file exists for the year and file kind.
	MissingSourceFile ErrorKind = "missing_source_file"
	// MalformedFile means the file exists but could not be decoded as CSV.
	MalformedFile ErrorKind = "malformed_file"
	// SchemaMismatch means a required column is absent with no alternative.
	SchemaMismatch ErrorKind = "schema_mismatch"
)

// SourceError reports a per-year source failure. It never aborts a run; the
// caller degrades the year to zero records.
type SourceError struct {
	Kind    ErrorKind
	Year    int
	Path    string
	Columns []string
	Err     error
}

func (e *SourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "microdata: %s", e.Kind)
	if e.Year != 0 {
		fmt.Fprintf(&b, " year=%d", e.Year)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " path=%s", e.Path)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, " columns=%s", strings.Join(e.Columns, ","))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err (or any error in its chain) is a SourceError of
// the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first SourceError in the chain, or "".
func KindOf(err error) ErrorKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// Package document moves encoded project documents between the editor and
// wherever they are kept: a local directory, an S3 bucket, a git clone or a
// PostgreSQL table.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/gantt/internal/calendar"
)

// ErrIO marks a failure reported by a Sink or Source.
var ErrIO = errors.New("document i/o")

// ErrNotExist is returned by a Source when no document has the given name.
var ErrNotExist = errors.New("document does not exist")

// ErrInvalidName is returned by a store for a name that is not a single
// path element.
var ErrInvalidName = errors.New("invalid document name")

// validName rejects names that would resolve outside a store's directory or
// prefix.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return nil
}

// Sink stores a document's bytes under a name.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
}

// Source returns the bytes of a previously stored document.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// Store is both a Sink and a Source.
type Store interface {
	Sink
	Source
}

// Lister is implemented by stores that can enumerate their documents.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// IOError reports a failed save or load. Err is the error returned by the
// sink or source, unchanged.
type IOError struct {
	Op   string // "save" or "load"
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// SuggestedName returns the default file name for a project saved on today.
func SuggestedName(today calendar.Date) string {
	return "gantt-project-" + today.String() + ".json"
}

package load

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/fmgen/fmdapi"
)

// ErrLayoutNotFound is matched by every NotFoundError.
var ErrLayoutNotFound = errors.New("load: layout not found")

// Fetcher retrieves layout metadata.
type Fetcher interface {
	LayoutMetadata(ctx context.Context, layout string) (*fmdapi.LayoutMetadata, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, layout string) (*fmdapi.LayoutMetadata, error)

// LayoutMetadata implements Fetcher.
func (f FetcherFunc) LayoutMetadata(ctx context.Context, layout string) (*fmdapi.LayoutMetadata, error) {
	return f(ctx, layout)
}

// NotFoundError reports a layout the server does not know. The run
// recovers from it by skipping the layout.
type NotFoundError struct {
	Layout string
	Cause  error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("load: layout %q not found: %v", e.Layout, e.Cause)
}

// Unwrap returns the underlying error.
func (e *NotFoundError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrLayoutNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrLayoutNotFound }

// RemoteError is any other failure to fetch metadata. It aborts the run.
type RemoteError struct {
	Layout string
	Cause  error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("load: fetch layout %q: %v", e.Layout, e.Cause)
}

// Unwrap returns the underlying error.
func (e *RemoteError) Unwrap() error { return e.Cause }

// IsNotFound returns true if the error reports a missing layout.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrLayoutNotFound)
}

// Fetch retrieves the metadata of layout and classifies failures as
// *NotFoundError or *RemoteError.
func Fetch(ctx context.Context, f Fetcher, layout string) (*fmdapi.LayoutMetadata, error) {
	meta, err := f.LayoutMetadata(ctx, layout)
	switch {
	case err == nil && meta == nil:
		return nil, &RemoteError{Layout: layout, Cause: errors.New("empty metadata response")}
	case err == nil:
		return meta, nil
	case fmdapi.IsLayoutMissing(err) || errors.Is(err, ErrLayoutNotFound):
		return nil, &NotFoundError{Layout: layout, Cause: err}
	default:
		return nil, &RemoteError{Layout: layout, Cause: err}
	}
}

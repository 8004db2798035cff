package spider

import (
	"errors"
	"fmt"
)

var (
	ErrBlobNotFound = errors.New("object literal not found")
	ErrNoRule       = errors.New("rule not found")
)

// FetchError is returned by a Fetcher when the transport fails or the
// server answers with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status code %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError means a whole document could not be turned into records.
// Stage tells whether isolating the payload or decoding it failed.
type ParseError struct {
	URL   string
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (%s): %v", e.URL, e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError is returned by storages that cannot create or write their output.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Gap records a candidate element that lacked an expected field.
type Gap struct {
	Index int
	Field string
}

func (g Gap) String() string {
	return fmt.Sprintf("#%d missing %s", g.Index, g.Field)
}

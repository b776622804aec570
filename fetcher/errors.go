package fetcher

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure for retry decisions
type ErrorKind int

const (
	// Transient covers timeouts, 5xx and 429 responses - worth retrying
	Transient ErrorKind = iota
	// Permanent covers client errors like 404/403 - retrying cannot help
	Permanent
)

// FetchError describes a failed page fetch
type FetchError struct {
	URL        string
	StatusCode int
	Kind       ErrorKind
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err is a FetchError that should not be retried
func IsPermanent(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == Permanent
}

// classifyStatus maps an HTTP status code to an ErrorKind.
// 429 is rate limiting and 5xx is server trouble, both transient.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return Transient
	case status >= 500:
		return Transient
	case status >= 400:
		return Permanent
	default:
		return Transient
	}
}

package upstream

import (
	"fmt"

	"github.com/govbilling/billdash/internal/platform/httpx"
)

// NetworkError reports a call that never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream %s: network: %v", e.Op, e.Err)
}

// Unwrap exposes both the cause and the upstream sentinel.
func (e *NetworkError) Unwrap() []error {
	return []error{httpx.ErrUpstream, e.Err}
}

// ServerError reports a non-2xx response.
type ServerError struct {
	Op     string
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("upstream %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Unwrap maps the error onto the upstream sentinel.
func (e *ServerError) Unwrap() error {
	return httpx.ErrUpstream
}

// DataError reports a response whose body does not have the expected shape.
type DataError struct {
	Op  string
	Err error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("upstream %s: unexpected payload: %v", e.Op, e.Err)
}

// Unwrap exposes both the cause and the malformed-data sentinel.
func (e *DataError) Unwrap() []error {
	return []error{httpx.ErrUpstreamData, e.Err}
}

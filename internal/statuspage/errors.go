package statuspage

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse indicates the API answered with a body that could not
// be decoded.
var ErrInvalidResponse = errors.New("invalid response from statuspage")

// APIError is a non-2xx answer from the Statuspage API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("statuspage returned status %d: %s", e.StatusCode, e.Body)
}

// IsClientError reports whether the failure is a 4xx, meaning a retry with
// the same payload cannot succeed.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

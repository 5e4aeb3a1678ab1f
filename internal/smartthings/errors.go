package smartthings

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError describes a non-2xx response from the SmartThings API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("smartthings api returned status %d", e.Status)
	}
	return fmt.Sprintf("smartthings api returned status %d: %s", e.Status, e.Body)
}

// newAPIError builds an APIError from a response, capturing a bounded
// portion of the body for diagnostics.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &APIError{
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}

package provider

import "fmt"

// APIError represents a non-success response from a model API. The
// provider-supplied status code is embedded in the message so callers
// can log a meaningful failure without unpacking the type.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s API error %d: %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s API error %d", e.Provider, e.Status)
}

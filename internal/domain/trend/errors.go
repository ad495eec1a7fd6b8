// internal/domain/trend/errors.go

package trend

import (
	"fmt"
)

// ConfigurationError reports a required setting that is missing
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// ValidationError reports an unusable request field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError reports a failed call to the video platform
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MalformedDataError reports a platform field that could not be parsed
type MalformedDataError struct {
	ID    string
	Field string
	Value string
	Err   error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed %s %q for %s: %v", e.Field, e.Value, e.ID, e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

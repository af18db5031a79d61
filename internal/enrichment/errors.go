package enrichment

import "fmt"

// Geocoding statuses produced locally rather than by the Google API.
const (
	StatusNotConfigured = "NOT_CONFIGURED"
	StatusRequestFailed = "REQUEST_FAILED"
)

// GeocodeError reports a failed geocoding call. Status is the Google status
// string ("ZERO_RESULTS", "REQUEST_DENIED", ...) or one of the local statuses.
type GeocodeError struct {
	Err    error
	Status string
}

func (e *GeocodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocode failed (%s): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("geocode failed (%s)", e.Status)
}

func (e *GeocodeError) Unwrap() error {
	return e.Err
}

// Lookup failure reasons.
const (
	ReasonNotConfigured = "not_configured"
	ReasonRequest       = "request_failed"
	ReasonHTTPStatus    = "http_status"
	ReasonAPIStatus     = "api_status"
	ReasonNoResults     = "no_results"
	ReasonDecode        = "decode_failed"
)

// LookupError reports a failed property lookup.
type LookupError struct {
	Err        error
	Reason     string
	Message    string
	StatusCode int
}

func (e *LookupError) Error() string {
	msg := "property lookup failed: " + e.Reason
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

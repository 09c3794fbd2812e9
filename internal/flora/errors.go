package flora

import "fmt"

// ValidationError reports bad local input. No network call was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotAuthenticatedError reports a missing session token. The operation was
// rejected before any HTTP request was issued.
type NotAuthenticatedError struct {
	Operation string
}

func (e *NotAuthenticatedError) Error() string {
	return fmt.Sprintf("not authenticated: %s requires a session", e.Operation)
}

// AuthError reports a credential or account-lifecycle failure. Message is
// safe to show to the user; Detail carries the raw backend text and is for
// logs only.
type AuthError struct {
	Message string
	Detail  string
}

func (e *AuthError) Error() string { return e.Message }

// EndpointExhaustedError reports that every candidate path for an operation
// failed. Attempts records what happened per candidate, in probe order.
type EndpointExhaustedError struct {
	Method   string
	Attempts []Attempt
}

func (e *EndpointExhaustedError) Error() string {
	return fmt.Sprintf("%s: all %d candidate paths failed", e.Method, len(e.Attempts))
}

// DataFormatError reports a response body with an unexpected shape.
type DataFormatError struct {
	Operation string
	Expected  string
	Err       error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: expected %s: %v", e.Operation, e.Expected, e.Err)
	}
	return fmt.Sprintf("%s: expected %s", e.Operation, e.Expected)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// FetchError reports a failed read operation. Fetches are always safe to
// retry manually; callers surface a retry affordance instead of retrying
// automatically.
type FetchError struct {
	Operation string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Operation, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable marks this failure as safe to re-trigger.
func (e *FetchError) Retryable() bool { return true }

// SaveError reports a rejected collection save. Body carries the raw backend
// text for diagnostics. Status is 0 when the request never completed.
type SaveError struct {
	Status int
	Body   string
}

func (e *SaveError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("saving plant: %s", e.Body)
	}
	return fmt.Sprintf("saving plant: backend returned %d", e.Status)
}

// DeleteError reports a failed collection removal.
type DeleteError struct {
	PlantID string
	Err     error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("deleting plant %s: %v", e.PlantID, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// IdentificationError reports a rejected identification upload. Body carries
// the raw backend text; it is shown to the user as a best-effort string.
// Status is 0 when the request never completed.
type IdentificationError struct {
	Status int
	Body   string
}

func (e *IdentificationError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("identification failed: %s", e.Body)
	}
	return fmt.Sprintf("identification failed: backend returned %d: %s", e.Status, e.Body)
}

// WorkflowError reports an event applied in a state that does not accept it.
type WorkflowError struct {
	State State
	Event Event
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("event %s not valid in state %s", e.Event, e.State)
}

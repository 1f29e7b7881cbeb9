package sdk

import (
	"encoding/json"
	"fmt"
)

// Envelope is the uniform response shape returned by every VillageOrbit API
// endpoint. Transport failures are folded into the same shape so callers
// handle exactly one result type.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   *APIError       `json:"error,omitempty"`

	// status is the HTTP status code of the underlying response, used by the
	// retry pipeline to detect unauthorized responses. Zero when the request
	// never reached the server.
	status int
}

// StatusCode returns the HTTP status of the underlying response, or zero if
// the request failed before a response was received.
func (e *Envelope) StatusCode() int {
	return e.status
}

// DecodeData unmarshals the envelope's data payload into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope has no data")
	}
	return json.Unmarshal(e.Data, v)
}

// ErrorMessage returns a human-readable description of a failed response.
// It is always a plain string, even when the backend returned an
// inconsistent error shape.
func (e *Envelope) ErrorMessage() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Error != nil && e.Error.Code != "" {
		return e.Error.Code
	}
	return "request failed"
}

// Err converts a failed envelope into an error. Successful envelopes yield
// nil.
func (e *Envelope) Err() error {
	if e.Success {
		return nil
	}
	apiErr := &APIError{Message: e.ErrorMessage()}
	if e.Error != nil {
		apiErr.Code = e.Error.Code
	}
	return apiErr
}

// APIError carries the machine-readable code and human-readable message of a
// failed request.
type APIError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// UnmarshalJSON tolerates the error shapes seen in the wild: a bare string,
// a {code, message} object, or an object whose message is itself not a
// string. Whatever arrives, Message ends up human-readable.
func (e *APIError) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Message = s
		return nil
	}
	var raw struct {
		Code    string          `json:"code"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		e.Message = string(data)
		return nil
	}
	e.Code = raw.Code
	e.Message = coerceString(raw.Message)
	return nil
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

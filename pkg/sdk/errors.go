package sdk

// Error codes produced by the SDK itself. Domain-specific codes returned by
// the backend are passed through untouched.
const (
	// CodeNetworkError marks requests that never produced an HTTP response
	// (DNS failure, connection refused, timeout).
	CodeNetworkError = "NETWORK_ERROR"

	// CodeParseError marks responses whose body could not be decoded as the
	// expected envelope.
	CodeParseError = "PARSE_ERROR"

	// CodeUnauthorized marks an expired session: a refresh was attempted and
	// failed. Distinct from an ordinary 401 on a public endpoint.
	CodeUnauthorized = "UNAUTHORIZED"
)

func networkErrorEnvelope(err error) *Envelope {
	return &Envelope{
		Success: false,
		Error:   &APIError{Code: CodeNetworkError, Message: "network error: " + err.Error()},
	}
}

func parseErrorEnvelope(status int, err error) *Envelope {
	return &Envelope{
		Success: false,
		Error:   &APIError{Code: CodeParseError, Message: "unexpected response from server: " + err.Error()},
		status:  status,
	}
}

func sessionExpiredEnvelope() *Envelope {
	return &Envelope{
		Success: false,
		Error:   &APIError{Code: CodeUnauthorized, Message: "Session expired. Please log in again."},
		status:  401,
	}
}

package monday

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TransportError signals that the HTTP call itself could not complete
// (connection refused/reset, timeout, DNS failure).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("monday transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError signals a non-success HTTP status from the API endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("monday API returned status %d: %s", e.StatusCode, e.Body)
}

// ResponseParseError signals a response body that is not valid JSON.
type ResponseParseError struct {
	Err error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse monday API response: %v", e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// GraphQLErrorItem is one entry of the top-level errors list in a GraphQL
// response.
type GraphQLErrorItem struct {
	Message string `json:"message"`
}

// GraphQLError signals that the response carried a top-level errors list.
// Data holds whatever partial result the API returned alongside the errors.
type GraphQLError struct {
	Errors []GraphQLErrorItem
	Data   json.RawMessage
}

func (e *GraphQLError) Error() string {
	messages := make([]string, len(e.Errors))
	for i, item := range e.Errors {
		messages[i] = item.Message
	}
	return fmt.Sprintf("monday GraphQL error: %s", strings.Join(messages, "; "))
}

// Retryable reports whether the error looks like a transient complexity or
// rate-limit rejection rather than a permanent query failure.
func (e *GraphQLError) Retryable() bool {
	for _, item := range e.Errors {
		msg := strings.ToLower(item.Message)
		if strings.Contains(msg, "complexity") || strings.Contains(msg, "rate limit") {
			return true
		}
	}
	return false
}

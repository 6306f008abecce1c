package bamboo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Messages returned for well-known failure conditions.
const (
	MsgUnauthorized = "Authentication failed. Please check your API token."
	MsgForbidden    = "Access forbidden. You may not have permission to access this resource."
	MsgNotFound     = "Resource not found."
	MsgRateLimited  = "Rate limit exceeded. Please try again later."
	MsgTimeout      = "Request timeout. Please try again."
)

// Sentinel errors matched by *Error via errors.Is.
var (
	ErrUnauthorized = errors.New("bamboohr: unauthorized")
	ErrForbidden    = errors.New("bamboohr: forbidden")
	ErrNotFound     = errors.New("bamboohr: not found")
	ErrRateLimited  = errors.New("bamboohr: rate limited")
	ErrAPI          = errors.New("bamboohr: api error")
	ErrTimeout      = errors.New("bamboohr: timeout")
	ErrNetwork      = errors.New("bamboohr: network error")
)

// Kind identifies the condition an Error was classified from.
type Kind int

const (
	KindNetwork Kind = iota
	KindTimeout
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindAPI
)

// String returns a short name for the kind
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindAPI:
		return "api"
	default:
		return "network"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindRateLimited:
		return ErrRateLimited
	case KindAPI:
		return ErrAPI
	default:
		return ErrNetwork
	}
}

// Error is a classified BambooHR failure. Its Error() text is the
// human-readable message surfaced to tool callers; the transport failure,
// if any, is kept as the wrapped cause.
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// ErrorResponse is the error body BambooHR returns on failed requests.
// Either field may be absent.
type ErrorResponse struct {
	Message string        `json:"message,omitempty"`
	Errors  []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail is a single entry of ErrorResponse.Errors
type ErrorDetail struct {
	Error       string `json:"error"`
	Description string `json:"description,omitempty"`
}

// Detail returns the most specific message in the body: the top-level
// message first, then the first entry of errors. Empty when neither is set.
func (r *ErrorResponse) Detail() string {
	if r == nil {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	if len(r.Errors) > 0 && r.Errors[0].Error != "" {
		return r.Errors[0].Error
	}
	return ""
}

// parseErrorResponse decodes body field by field, returning nil when it is
// not a JSON object. A field of an unexpected type is treated as absent so it
// cannot hide the others.
func parseErrorResponse(body []byte) *ErrorResponse {
	var fields map[string]json.RawMessage
	if len(body) == 0 || json.Unmarshal(body, &fields) != nil || fields == nil {
		return nil
	}

	resp := &ErrorResponse{Message: rawString(fields["message"])}

	var entries []json.RawMessage
	if json.Unmarshal(fields["errors"], &entries) == nil {
		for _, entry := range entries {
			var detail map[string]json.RawMessage
			_ = json.Unmarshal(entry, &detail)
			resp.Errors = append(resp.Errors, ErrorDetail{
				Error:       rawString(detail["error"]),
				Description: rawString(detail["description"]),
			})
		}
	}
	return resp
}

// rawString returns raw as a string when it holds a JSON string, else "".
func rawString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// statusMessage is the transport-level description of a non-2xx status.
func statusMessage(statusCode int) string {
	return fmt.Sprintf("Request failed with status code %d", statusCode)
}

// Classify maps a failed call to a classified error. A zero statusCode means
// no response was received and cause describes the transport failure.
func Classify(statusCode int, body []byte, cause error) *Error {
	if statusCode == 0 {
		if cause == nil {
			cause = errors.New("no response received")
		}
		return ClassifyTransport(cause)
	}
	return ClassifyStatus(statusCode, body)
}

// ClassifyStatus maps a non-2xx response to a classified error.
func ClassifyStatus(statusCode int, body []byte) *Error {
	switch statusCode {
	case http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, StatusCode: statusCode, Message: MsgUnauthorized}
	case http.StatusForbidden:
		return &Error{Kind: KindForbidden, StatusCode: statusCode, Message: MsgForbidden}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, StatusCode: statusCode, Message: MsgNotFound}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, StatusCode: statusCode, Message: MsgRateLimited}
	}

	detail := parseErrorResponse(body).Detail()
	if detail == "" {
		detail = statusMessage(statusCode)
	}
	return &Error{
		Kind:       KindAPI,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("BambooHR API error (%d): %s", statusCode, detail),
	}
}

// ClassifyTransport maps a failure where no response was received.
func ClassifyTransport(err error) *Error {
	if IsTimeout(err) {
		return &Error{Kind: KindTimeout, Message: MsgTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: "Network error: " + err.Error(), Err: err}
}

// IsTimeout reports whether err is a client-side timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

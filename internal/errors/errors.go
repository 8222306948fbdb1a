package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// MalformedResponseError reports a response whose shape breaks the catalog's
// envelope contract. It is never retried.
type MalformedResponseError struct {
	URL    string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.URL, e.Reason)
}

// ProtocolError reports a document that decoded fine but does not match the
// structure a caller relies on (e.g. a variant with no known interface).
type ProtocolError struct {
	URL    string
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.URL == "" {
		return "protocol error: " + e.Reason
	}
	return fmt.Sprintf("protocol error at %s: %s", e.URL, e.Reason)
}

// MissingFieldError is returned when a resource has no field with the given name.
type MissingFieldError struct {
	Resource string
	Field    string
}

func (e *MissingFieldError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("missing field %q", e.Field)
	}
	return fmt.Sprintf("missing field %q in %s", e.Field, e.Resource)
}

// InvalidResourceError is returned for URLs outside the configured catalog base.
type InvalidResourceError struct {
	URL  string
	Base string
}

func (e *InvalidResourceError) Error() string {
	return fmt.Sprintf("invalid resource %s: not under catalog base %s", e.URL, e.Base)
}

// HTTPStatusError represents a non-success HTTP status from a remote API.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request to %s failed with status: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed with status: %d, body: %s", e.URL, e.StatusCode, e.Body)
}

// RPCError represents an {error: {code, message}} envelope from the wiki API.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wiki RPC %s error (code %d): %s", e.Method, e.Code, e.Message)
}

// NewRPCError creates a new RPCError.
func NewRPCError(method string, code int, message string) *RPCError {
	return &RPCError{
		Method:  method,
		Code:    code,
		Message: strings.TrimSpace(message),
	}
}

// IsMissingField reports whether err is (or wraps) a MissingFieldError.
func IsMissingField(err error) bool {
	var mf *MissingFieldError
	return errors.As(err, &mf)
}

// IsNetwork reports whether err came from the transport rather than the remote API.
func IsNetwork(err error) bool {
	var netErr net.Error
	var opErr *net.OpError
	return errors.As(err, &netErr) || errors.As(err, &opErr)
}

// IsFatal reports whether err must abort a batch run. Every error is fatal
// except MissingFieldError, which report code downgrades to an annotation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !IsMissingField(err)
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	var (
		malformed *MalformedResponseError
		protocol  *ProtocolError
		missing   *MissingFieldError
		invalid   *InvalidResourceError
		status    *HTTPStatusError
		rpc       *RPCError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &malformed):
		return "malformed_response"
	case errors.As(err, &protocol):
		return "protocol"
	case errors.As(err, &missing):
		return "missing_field"
	case errors.As(err, &invalid):
		return "invalid_resource"
	case errors.As(err, &status):
		return "http_status"
	case errors.As(err, &rpc):
		return "rpc"
	case IsNetwork(err):
		return "network"
	default:
		return "other"
	}
}

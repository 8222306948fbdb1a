package errors

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "none"},
		{name: "malformed", err: &MalformedResponseError{URL: "u", Reason: "r"}, want: "malformed_response"},
		{name: "wrapped protocol", err: fmt.Errorf("walk: %w", &ProtocolError{Reason: "r"}), want: "protocol"},
		{name: "missing field", err: &MissingFieldError{Field: "name"}, want: "missing_field"},
		{name: "invalid resource", err: &InvalidResourceError{URL: "http://x", Base: "http://y/"}, want: "invalid_resource"},
		{name: "http status", err: &HTTPStatusError{StatusCode: 502, URL: "u"}, want: "http_status"},
		{name: "rpc", err: NewRPCError("getPage", 500, "boom"), want: "rpc"},
		{name: "network", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: "network"},
		{name: "other", err: errors.New("plain"), want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(fmt.Errorf("x: %w", &MissingFieldError{Field: "a"})))
	assert.True(t, IsFatal(NewRPCError("storePage", 1, "denied")))
	assert.True(t, IsFatal(&MalformedResponseError{URL: "u", Reason: "two keys"}))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `missing field "name" in http://c/services/1`,
		(&MissingFieldError{Resource: "http://c/services/1", Field: "name"}).Error())
	assert.Equal(t, "wiki RPC getPage error (code 500): no such page",
		NewRPCError("getPage", 500, " no such page\n").Error())
	assert.Equal(t, "request to http://x failed with status: 404",
		(&HTTPStatusError{StatusCode: 404, URL: "http://x"}).Error())
	assert.Contains(t, (&ProtocolError{Reason: "bad"}).Error(), "protocol error: bad")
}

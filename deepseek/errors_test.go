package deepseek

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("send: %w", &Error{Kind: KindServer, Status: 503})

	assert.True(t, errors.Is(err, ErrServer))
	assert.False(t, errors.Is(err, ErrAPI))
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestError_UnwrapCause(t *testing.T) {
	err := networkError(context.DeadlineExceeded)

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRateLimited, KindOf(fmt.Errorf("wrapped: %w", &Error{Kind: KindRateLimited})))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestError_Retryable(t *testing.T) {
	retryable := map[Kind]bool{
		KindMissingCredential:   false,
		KindNetwork:             true,
		KindSerialization:       false,
		KindUnauthorized:        false,
		KindForbidden:           false,
		KindInsufficientBalance: false,
		KindRateLimited:         true,
		KindServer:              true,
		KindAPI:                 false,
	}

	for kind, want := range retryable {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, want, (&Error{Kind: kind}).Retryable())
		})
	}
}

func TestError_Messages(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindMissingCredential}, "missing API key (set DEEPSEEK_API_KEY)"},
		{&Error{Kind: KindNetwork, Err: errors.New("connection reset")}, "http error: connection reset"},
		{&Error{Kind: KindSerialization, Err: errors.New("unexpected EOF")}, "serialization error: unexpected EOF"},
		{&Error{Kind: KindServer, Status: 502}, "server error (status 502)"},
		{&Error{Kind: KindAPI, Status: 404, Message: "Not Found"}, "api error 404: Not Found"},
		{&Error{Kind: KindRateLimited, Status: 429}, "rate limited"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKind_StringIsDistinct(t *testing.T) {
	seen := make(map[string]Kind)
	for k := KindMissingCredential; k <= KindAPI; k++ {
		name := k.String()
		if prev, ok := seen[name]; ok {
			t.Fatalf("kinds %d and %d share name %q", prev, k, name)
		}
		seen[name] = k
	}
	assert.Len(t, seen, 9)
}

package deepseek

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse_Success(t *testing.T) {
	body := []byte(`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"Hej!"}}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`)

	resp, err := DecodeResponse(http.StatusOK, body)
	require.NoError(t, err)

	assert.Equal(t, "x", resp.ID)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hej!", resp.Content())
	assert.Equal(t, &Usage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7}, resp.Usage)
}

func TestDecodeResponse_MalformedSuccessBody(t *testing.T) {
	bodies := []string{
		`{"id":"x","choices":[`,
		`not json`,
		``,
		`null`,
		`{"id":"x","choices":"nope"}`,
		`{"id":"x","choices":[],"usage":{"prompt_tokens":-5,"completion_tokens":1,"total_tokens":-4}}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			resp, err := DecodeResponse(http.StatusOK, []byte(body))
			assert.Nil(t, resp)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, KindSerialization, apiErr.Kind)
			assert.NotNil(t, apiErr.Err)
		})
	}
}

func TestDecodeResponse_Classification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   Kind
		wantStatus int
	}{
		{"401", 401, `{"error":{"message":"Authentication Fails"}}`, KindUnauthorized, 401},
		{"403", 403, `forbidden`, KindForbidden, 403},
		{"402 balance", 402, `{"error":{"message":"Insufficient Balance"}}`, KindInsufficientBalance, 402},
		{"402 balance raw body", 402, `Insufficient Balance on account`, KindInsufficientBalance, 402},
		{"402 other", 402, `{"error":{"message":"Payment required"}}`, KindAPI, 402},
		{"429", 429, `{"error":{"message":"slow down"}}`, KindRateLimited, 429},
		{"500", 500, `oops`, KindServer, 500},
		{"503", 503, ``, KindServer, 503},
		{"599", 599, `{}`, KindServer, 599},
		{"404", 404, `{"error":{"message":"Not Found"}}`, KindAPI, 404},
		{"400", 400, `{"error":{"message":"bad"}}`, KindAPI, 400},
		{"422", 422, `garbage`, KindAPI, 422},
		{"3xx", 302, ``, KindAPI, 302},
		{"600", 600, ``, KindAPI, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse(tt.status, []byte(tt.body))
			assert.Nil(t, resp)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
		})
	}
}

func TestDecodeResponse_APIMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"envelope message", `{"error":{"message":"model not found","type":"invalid_request_error"}}`, "model not found"},
		{"envelope without message", `{"error":{"type":"invalid_request_error"}}`, `{"error":{"type":"invalid_request_error"}}`},
		{"no envelope", `{"detail":"nope"}`, `{"detail":"nope"}`},
		{"null error", `{"error":null}`, `{"error":null}`},
		{"plain text", `Not Found`, `Not Found`},
		{"empty", ``, ``},
		{"message wrong type", `{"error":{"message":42}}`, `{"error":{"message":42}}`},
		{"empty message", `{"error":{"message":""}}`, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse(http.StatusNotFound, []byte(tt.body))

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, KindAPI, apiErr.Kind)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestDecodeResponse_EnvelopeTypeAndCode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantType string
		wantCode string
	}{
		{"string code", `{"error":{"message":"m","type":"invalid_request_error","code":"invalid_model"}}`, "invalid_request_error", "invalid_model"},
		{"numeric code", `{"error":{"message":"m","code":400}}`, "", "400"},
		{"null code", `{"error":{"message":"m","code":null}}`, "", ""},
		{"no code", `{"error":{}}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse(http.StatusBadRequest, []byte(tt.body))

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestClassify_BalanceMarkerIsCaseSensitive(t *testing.T) {
	assert.Equal(t, KindAPI, classify(402, "insufficient balance").Kind)
	assert.Equal(t, KindInsufficientBalance, classify(402, "Error: Insufficient Balance").Kind)
	// the marker only matters for 402
	assert.Equal(t, KindAPI, classify(400, "Insufficient Balance").Kind)
}

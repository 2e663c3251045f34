package deepseek

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// insufficientBalanceMarker is matched against the free-text message of a 402.
// The service does not document a structured code for this case, so the
// wording is load-bearing and will break if upstream rephrases it.
const insufficientBalanceMarker = "Insufficient Balance"

// DecodeResponse turns a raw status code and body into a response or a
// classified *Error. It holds no state and never panics on malformed input.
func DecodeResponse(status int, body []byte) (*ChatResponse, error) {
	if status >= 200 && status < 300 {
		var resp ChatResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, serializationError(err)
		}
		return &resp, nil
	}

	apiErr := classify(status, extractMessage(body))
	if env, ok := parseEnvelope(body); ok {
		if env.Type != nil {
			apiErr.Type = *env.Type
		}
		apiErr.Code = codeText(env.Code)
	}
	return nil, apiErr
}

func classify(status int, message string) *Error {
	e := &Error{Status: status, Message: message}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusPaymentRequired && strings.Contains(message, insufficientBalanceMarker):
		e.Kind = KindInsufficientBalance
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status >= 500 && status <= 599:
		e.Kind = KindServer
	default:
		e.Kind = KindAPI
	}
	return e
}

// extractMessage prefers error.message from the envelope and falls back to
// the raw body verbatim.
func extractMessage(body []byte) string {
	if env, ok := parseEnvelope(body); ok && env.Message != nil {
		return *env.Message
	}
	return string(body)
}

func parseEnvelope(body []byte) (*apiErrorBody, bool) {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return nil, false
	}
	return env.Error, true
}

// codeText accepts both "code": "invalid_key" and "code": 401.
func codeText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

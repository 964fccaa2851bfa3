package propguard

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// ERROR TAXONOMY & RESPONSE ENVELOPE
// ============================================================================

// ErrorCode is the closed set of failure classes surfaced by guarded
// operations. Operations never return a Go error across the public boundary;
// every failure lands in Response.Error with one of these codes.
type ErrorCode string

const (
	CodeAuthenticationRequired ErrorCode = "authentication_required"
	CodeSessionExpired         ErrorCode = "session_expired"
	CodeAccessDenied           ErrorCode = "access_denied"
	CodeNetworkError           ErrorCode = "network_error"
	CodeQueryError             ErrorCode = "query_error"
	CodeNotFound               ErrorCode = "not_found"
)

// Error is the typed error carried by the response envelope.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Retryable reports whether the caller may safely retry the operation.
func (e *Error) Retryable() bool { return e.Code == CodeNetworkError }

// Response is the uniform envelope returned by every guarded operation.
type Response[T any] struct {
	Data  T      `json:"data"`
	Error *Error `json:"error"`
	Count int    `json:"count,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Response[T]) OK() bool { return r.Error == nil }

func ok[T any](data T) Response[T] {
	return Response[T]{Data: data}
}

func okCount[T any](data T, count int) Response[T] {
	return Response[T]{Data: data, Count: count}
}

func fail[T any](code ErrorCode, msg string) Response[T] {
	return Response[T]{Error: &Error{Code: code, Message: msg}}
}

func failErr[T any](e *Error) Response[T] {
	return Response[T]{Error: e}
}

// Sentinel errors returned by stores. Stores translate driver-specific
// conditions into these so the guard layer stays storage-agnostic.
var (
	ErrNotFound  = errors.New("row not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Storage error text matching known session failures. Any storage error
// containing one of these forces a session clear and maps to SessionExpired.
var sessionErrorPatterns = []string{
	"JWT expired",
	"Invalid Refresh Token",
	"refresh_token_not_found",
	"invalid_grant",
}

var networkErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
}

func isSessionError(err error) bool {
	msg := err.Error()
	for _, p := range sessionErrorPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func isNetworkError(err error) bool {
	msg := err.Error()
	for _, p := range networkErrorPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// normalizeStorageError maps a backing-store failure to a typed Error and,
// for session failures, clears the client session so the caller is forced to
// re-authenticate.
func (g *Guard) normalizeStorageError(ctx context.Context, err error) *Error {
	switch {
	case errors.Is(err, ErrNotFound):
		return &Error{Code: CodeNotFound, Message: "requested record was not found"}
	case isSessionError(err):
		if cerr := g.sessions.ClearSession(ctx); cerr != nil {
			g.log.Error("session clear failed", "error", cerr.Error())
		}
		return &Error{
			Code:    CodeSessionExpired,
			Message: "Session expired. Please sign in again.",
			Details: "AUTH_ERROR",
		}
	case isNetworkError(err):
		return &Error{Code: CodeNetworkError, Message: err.Error(), Hint: "retry the request"}
	default:
		return &Error{Code: CodeQueryError, Message: err.Error()}
	}
}

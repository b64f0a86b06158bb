package apperrors

import "net/http"

// Code is a stable, machine-readable error code. Codes are part of the wire
// contract and must not change once published.
type Code string

const (
	CodeUnknown                Code = "UNKNOWN"
	CodeInvalidFormat          Code = "INVALID_FORMAT"
	CodeReservedUsername       Code = "RESERVED_USERNAME"
	CodeUsernameTaken          Code = "USERNAME_TAKEN"
	CodeKeyAlreadyRegistered   Code = "KEY_ALREADY_REGISTERED"
	CodeTimestampOutOfRange    Code = "TIMESTAMP_OUT_OF_RANGE"
	CodeReplayDetected         Code = "REPLAY_DETECTED"
	CodeInvalidSignature       Code = "INVALID_SIGNATURE"
	CodeKeyNotActive           Code = "KEY_NOT_ACTIVE"
	CodeAccountMismatch        Code = "ACCOUNT_MISMATCH"
	CodeKeyLimitExceeded       Code = "KEY_LIMIT_EXCEEDED"
	CodeLastActiveKeyProtected Code = "LAST_ACTIVE_KEY_PROTECTED"
	CodeNotFound               Code = "NOT_FOUND"
	CodeStoreUnavailable       Code = "STORE_UNAVAILABLE"
	CodeInternal               Code = "INTERNAL"
)

// HTTPStatus maps a code to its HTTP response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidFormat, CodeKeyLimitExceeded, CodeLastActiveKeyProtected:
		return http.StatusBadRequest
	case CodeReservedUsername, CodeUsernameTaken, CodeKeyAlreadyRegistered:
		return http.StatusConflict
	case CodeTimestampOutOfRange, CodeReplayDetected, CodeInvalidSignature, CodeKeyNotActive:
		return http.StatusUnauthorized
	case CodeAccountMismatch:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a request failing with this code may be retried.
// Retries must use a freshly generated nonce; a replayed nonce is rejected.
func (c Code) Retryable() bool {
	return c == CodeStoreUnavailable
}

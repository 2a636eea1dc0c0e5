package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies provider failures so the sync loop can decide whether to
// keep hammering a provider. Classification comes from the HTTP status, never
// from message text.
type Kind string

const (
	// KindRateLimited: provider quota exhausted (429). Stop the batch.
	KindRateLimited Kind = "rate_limited"
	// KindAuthFailed: missing or rejected credentials (401, 403).
	KindAuthFailed Kind = "auth_failed"
	// KindBadRequest: the request itself is malformed (400), usually an
	// unknown symbol. Retrying will not help.
	KindBadRequest Kind = "bad_request"
	// KindTransient: server-side or network trouble worth retrying later.
	KindTransient Kind = "transient"
	KindUnknown   Kind = "unknown"
)

// Fatal reports whether continuing the current batch against this provider
// is pointless.
func (k Kind) Fatal() bool {
	switch k {
	case KindRateLimited, KindAuthFailed, KindBadRequest:
		return true
	}
	return false
}

// Error is a classified provider failure.
type Error struct {
	Provider string
	Symbol   string
	Status   int
	Kind     Kind
	Body     string
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: HTTP %d (%s): %s", e.Provider, e.Symbol, e.Status, e.Kind, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Symbol, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Symbol, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain. Errors that are not
// provider failures report KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// KindFromStatus maps an HTTP status to a failure kind.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthFailed
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

func statusError(provider, symbol string, status int, body []byte) *Error {
	const maxBody = 256
	msg := string(body)
	if len(msg) > maxBody {
		msg = msg[:maxBody]
	}
	return &Error{Provider: provider, Symbol: symbol, Status: status, Kind: KindFromStatus(status), Body: msg}
}

func transportError(provider, symbol string, err error) *Error {
	return &Error{Provider: provider, Symbol: symbol, Kind: KindTransient, Err: err}
}

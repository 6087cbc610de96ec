// Package apperror defines the closed set of error kinds returned by the
// core operations.  Core code never speaks HTTP; the boundary layer uses
// HTTPStatus and Body to translate an Error into a response.
package apperror

import (
    "errors"
    "fmt"
    "net/http"
)

// Kind is a stable, machine readable error category.
type Kind string

const (
    KindValidation     Kind = "validation_error"
    KindNotFound       Kind = "not_found"
    KindConflict       Kind = "conflict"
    KindAuthentication Kind = "authentication_error"
    KindAuthorization  Kind = "authorization_error"
    KindRateLimited    Kind = "rate_limited"
    KindInternal       Kind = "internal_error"
)

// Error carries a Kind, a human readable detail and, optionally, the
// underlying cause and extra response fields (e.g. conflicting seats).
type Error struct {
    Kind   Kind
    Detail string
    Fields map[string]any
    Err    error
}

func (e *Error) Error() string {
    if e.Err != nil {
        return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
    }
    return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// With attaches an extra response field and returns the receiver.
func (e *Error) With(key string, value any) *Error {
    if e.Fields == nil {
        e.Fields = make(map[string]any)
    }
    e.Fields[key] = value
    return e
}

func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }

func NotFound(detail string) *Error { return &Error{Kind: KindNotFound, Detail: detail} }

func Conflict(detail string) *Error { return &Error{Kind: KindConflict, Detail: detail} }

func Authentication(detail string) *Error { return &Error{Kind: KindAuthentication, Detail: detail} }

func Authorization(detail string) *Error { return &Error{Kind: KindAuthorization, Detail: detail} }

// RateLimited reports an exhausted request budget; retryAfter is in seconds.
func RateLimited(retryAfter int) *Error {
    return (&Error{Kind: KindRateLimited, Detail: "rate limit exceeded"}).With("retry_after", retryAfter)
}

// Internal wraps an unexpected failure.  The cause is kept for logging
// but never rendered to clients.
func Internal(detail string, err error) *Error {
    return &Error{Kind: KindInternal, Detail: detail, Err: err}
}

// KindOf classifies err.  Errors that are not *Error are internal.
func KindOf(err error) Kind {
    if err == nil {
        return ""
    }
    var ae *Error
    if errors.As(err, &ae) {
        return ae.Kind
    }
    return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
    return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its transport status code.
func HTTPStatus(kind Kind) int {
    switch kind {
    case KindValidation:
        return http.StatusBadRequest
    case KindNotFound:
        return http.StatusNotFound
    case KindConflict:
        return http.StatusConflict
    case KindAuthentication:
        return http.StatusUnauthorized
    case KindAuthorization:
        return http.StatusForbidden
    case KindRateLimited:
        return http.StatusTooManyRequests
    default:
        return http.StatusInternalServerError
    }
}

// Body renders err as a response payload: {"error": kind, "detail": ...}
// plus any attached fields.  Internal causes are never included.
func Body(err error) map[string]any {
    var ae *Error
    if !errors.As(err, &ae) {
        return map[string]any{"error": KindInternal, "detail": "internal server error"}
    }
    detail := ae.Detail
    if ae.Kind == KindInternal {
        detail = "internal server error"
    }
    out := map[string]any{"error": ae.Kind, "detail": detail}
    for k, v := range ae.Fields {
        if _, reserved := out[k]; !reserved {
            out[k] = v
        }
    }
    return out
}

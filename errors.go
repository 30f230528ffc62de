package jobboard

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrUnableToDecodeSession unable to decode JWT claims from a session token
var ErrUnableToDecodeSession = errors.New("unable to decode session")

const (
	textCodeUnauthenticated    = "UNAUTHENTICATED"
	textCodeForbidden          = "FORBIDDEN"
	textCodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	textCodeTransitionConflict = "TRANSITION_CONFLICT"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenMalformed     = "TOKEN_MALFORMED"
)

// ErrUnauthenticated is returned when no valid identity backs the request.
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(textCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when the identity is known but lacks the rights
// to act on the resource.
var ErrForbidden = goerrors.New("operation not permitted", goerrors.CategoryAuthz).
	WithTextCode(textCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrInvalidTransition is returned when a requested status change is not
// allowed from the resource's stored status. Metadata carries the permitted
// target set, empty for terminal statuses.
var ErrInvalidTransition = goerrors.New("invalid status transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrConflict is returned when the guarded status write finds the record
// changed since it was read.
var ErrConflict = goerrors.New("resource changed concurrently", goerrors.CategoryConflict).
	WithTextCode(textCodeTransitionConflict).
	WithCode(goerrors.CodeConflict)

// ErrTokenExpired is returned for sessions past their expiration
var ErrTokenExpired = goerrors.New("session token expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens we cannot parse
var ErrTokenMalformed = goerrors.New("session token malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

func hasTextCode(err error, textCode string) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCode
}

// IsUnauthenticated checks for missing or invalid session errors
func IsUnauthenticated(err error) bool {
	return hasTextCode(err, textCodeUnauthenticated) ||
		hasTextCode(err, textCodeTokenExpired) ||
		hasTextCode(err, textCodeTokenMalformed)
}

// IsForbidden checks for authorization failures
func IsForbidden(err error) bool {
	return hasTextCode(err, textCodeForbidden)
}

// IsInvalidTransition checks for status graph violations
func IsInvalidTransition(err error) bool {
	return hasTextCode(err, textCodeInvalidTransition)
}

// IsConflict checks for concurrent modification failures
func IsConflict(err error) bool {
	return hasTextCode(err, textCodeTransitionConflict)
}

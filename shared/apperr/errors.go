// Package apperr defines the typed error kinds returned by the auth core and
// the resource handlers, and the tables that map them to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP adapters.
type Kind int

const (
	Internal Kind = iota
	InvalidCredentials
	UserNotFound
	UserInactive
	MissingToken
	TokenInvalid
	TokenExpired
	WrongTokenType
	TokenRevoked
	AlreadyRevoked
	UsernameTaken
	Validation
	NotFound
	UnsupportedLanguage
	TranslationFailed
)

var kindNames = map[Kind]string{
	Internal:            "internal",
	InvalidCredentials:  "invalid_credentials",
	UserNotFound:        "user_not_found",
	UserInactive:        "user_inactive",
	MissingToken:        "missing_token",
	TokenInvalid:        "token_invalid",
	TokenExpired:        "token_expired",
	WrongTokenType:      "wrong_token_type",
	TokenRevoked:        "token_revoked",
	AlreadyRevoked:      "already_revoked",
	UsernameTaken:       "username_taken",
	Validation:          "validation",
	NotFound:            "not_found",
	UnsupportedLanguage: "unsupported_language",
	TranslationFailed:   "translation_failed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// GenericMessage is the only text a client ever sees for an internal error.
const GenericMessage = "An unexpected error occurred."

// Error is a classified application error. Message is safe to show to clients;
// Cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by kind, so errors.Is(err, apperr.E(apperr.TokenExpired)) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind with an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// E returns a bare Error usable as an errors.Is target.
func E(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf reports the kind of err; untyped errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal && e.Message != "" {
		return e.Message
	}
	return GenericMessage
}

// StatusTable maps kinds to HTTP status codes for one API surface.
type StatusTable map[Kind]int

// Status looks up the status for err; anything not in the table is a 500.
func (t StatusTable) Status(err error) int {
	if status, ok := t[KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Response returns the status and the client-safe message for err.
func (t StatusTable) Response(err error) (int, string) {
	status := t.Status(err)
	if status == http.StatusInternalServerError {
		return status, GenericMessage
	}
	return status, MessageOf(err)
}

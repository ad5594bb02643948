// Package apperr is the error taxonomy shared by the lead pipeline. Services
// return *Error values; httpkit.HandleError turns them into responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind selects the HTTP status family.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindForbidden
	KindUnauthorized
	KindBadRequest
	KindInternal
)

var kindStatus = map[Kind]int{
	KindNotFound:     http.StatusNotFound,
	KindValidation:   http.StatusBadRequest,
	KindForbidden:    http.StatusForbidden,
	KindUnauthorized: http.StatusUnauthorized,
	KindBadRequest:   http.StatusBadRequest,
	KindInternal:     http.StatusInternalServerError,
}

// Code is the machine-readable identifier clients switch on. Values are stable.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeUnknownAction       Code = "UNKNOWN_ACTION"
	CodeUnknownProvider     Code = "UNKNOWN_PROVIDER"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeTenantNotFound      Code = "TENANT_NOT_FOUND"
	CodePartialAccessDenied Code = "PARTIAL_ACCESS_DENIED"
	CodePersistenceFailure  Code = "PERSISTENCE_FAILURE"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInternal            Code = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Op      string
	Err     error
	Details any
}

// Error renders "op: message: cause", omitting empty parts.
func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, e.Message)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus falls back to 400 for KindUnknown.
func (e *Error) HTTPStatus() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return http.StatusBadRequest
}

func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code Code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Validation carries per-field details, usually validator.FieldErrors.
func Validation(message string, details any) *Error {
	return New(KindValidation, CodeValidation, message).WithDetails(details)
}

func UnknownAction(action string) *Error {
	return New(KindBadRequest, CodeUnknownAction, fmt.Sprintf("unknown action %q", action))
}

func UnknownProvider(provider string) *Error {
	return New(KindValidation, CodeUnknownProvider, fmt.Sprintf("unknown provider %q", provider))
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, CodeUnauthorized, message)
}

// TenantNotFound means the caller has no profile row, so no tenant.
func TenantNotFound() *Error {
	return New(KindNotFound, CodeTenantNotFound, "tenant profile not found")
}

// PartialAccessDenied is returned when fewer leads resolve in tenant scope than were requested.
// The details never say which ids were missing.
func PartialAccessDenied(requested, found int) *Error {
	return New(KindNotFound, CodePartialAccessDenied, "one or more leads not found").
		WithDetails(map[string]int{"requested": requested, "found": found})
}

func Persistence(message string, err error) *Error {
	return Wrap(KindInternal, CodePersistenceFailure, message, err)
}

func NotFound(message string) *Error {
	return New(KindNotFound, CodeNotFound, message)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, CodeInternal, message, err)
}

func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// GetKind is KindUnknown for errors outside the taxonomy.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// GetCode is "" for errors outside the taxonomy.
func GetCode(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

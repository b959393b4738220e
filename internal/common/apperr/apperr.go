package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error so callers can distinguish "who are you" from
// "you may not" from "it does not exist".
type Kind int

const (
	KindUnknown Kind = iota
	KindNotAuthenticated
	KindPermissionDenied
	KindNotFound
	KindValidation
	KindExternalService
	KindSignatureInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "NOT_AUTHENTICATED"
	case KindPermissionDenied:
		return "PERMISSION_DENIED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindExternalService:
		return "EXTERNAL_SERVICE_ERROR"
	case KindSignatureInvalid:
		return "SIGNATURE_INVALID"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error carries the kind plus optional permission context for diagnostics.
type Error struct {
	Kind   Kind
	Msg    string
	Module string
	Action string
	Field  string
	Scope  string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func NotAuthenticated(msg string) *Error {
	return &Error{Kind: KindNotAuthenticated, Msg: msg}
}

func PermissionDenied(module, action, msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Module: module, Action: action, Msg: msg}
}

// FieldDenied is PermissionDenied for a field-level rejection.
func FieldDenied(module, action, field string) *Error {
	return &Error{
		Kind:   KindPermissionDenied,
		Module: module,
		Action: action,
		Field:  field,
		Msg:    fmt.Sprintf("field %q is restricted", field),
	}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func ExternalService(msg string, err error) *Error {
	return &Error{Kind: KindExternalService, Msg: msg, Err: err}
}

func SignatureInvalid(msg string) *Error {
	return &Error{Kind: KindSignatureInvalid, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf walks the error chain and returns the first tagged kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusCode maps an error kind to the HTTP status the API responds with.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotAuthenticated, KindSignatureInvalid:
		return fiber.StatusUnauthorized
	case KindPermissionDenied:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation:
		return fiber.StatusBadRequest
	case KindExternalService:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Body builds the JSON error payload, including permission context when set.
func Body(err error) fiber.Map {
	body := fiber.Map{"error": err.Error(), "code": KindOf(err).String()}
	var e *Error
	if errors.As(err, &e) {
		if e.Module != "" {
			body["module"] = e.Module
		}
		if e.Action != "" {
			body["action"] = e.Action
		}
		if e.Field != "" {
			body["field"] = e.Field
		}
		if e.Scope != "" {
			body["scope"] = e.Scope
		}
	}
	return body
}

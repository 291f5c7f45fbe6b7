package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind - İş kuralı hatalarının sınıflandırması. Servis katmanı bu
// türleri döner, HTTP statüsüne çeviri tek yerde (ToFiber) yapılır.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindForbidden       Kind = "forbidden"
	KindInvalidInput    Kind = "invalid_input"
	KindUnauthenticated Kind = "unauthenticated"
	KindInternal        Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error // Opsiyonel: loglanacak asıl hata, istemciye dönmez
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// IsKind - Hata verilen türde mi
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ToFiber - Servis hatasını HTTP statüsüne çevirir
func ToFiber(e *Error) *fiber.Error {
	switch e.Kind {
	case KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, e.Message)
	case KindConflict:
		return fiber.NewError(fiber.StatusConflict, e.Message)
	case KindForbidden:
		return fiber.NewError(fiber.StatusForbidden, e.Message)
	case KindInvalidInput:
		return fiber.NewError(fiber.StatusBadRequest, e.Message)
	case KindUnauthenticated:
		return fiber.NewError(fiber.StatusUnauthorized, e.Message)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, e.Message)
	}
}

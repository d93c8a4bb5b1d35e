package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across the store, use cases and the bot surface.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalid           ErrorCode = "INVALID"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidPosition   ErrorCode = "INVALID_POSITION"
	ErrCodeExternal          ErrorCode = "EXTERNAL"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Message is safe to show to a Discord user.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinel errors by code and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Invalidf builds a validation error with a formatted message.
func Invalidf(format string, args ...any) *Error {
	return NewError(ErrCodeInvalid, fmt.Sprintf(format, args...))
}

// Common domain errors.
var (
	ErrCurrencyNotFound     = NewError(ErrCodeNotFound, "currency does not exist")
	ErrCurrencyExists       = NewError(ErrCodeConflict, "a currency with this name already exists")
	ErrCurrencyInUse        = NewError(ErrCodeConflict, "currency is still used by a shop")
	ErrShopNotFound         = NewError(ErrCodeNotFound, "shop does not exist")
	ErrShopExists           = NewError(ErrCodeConflict, "a shop with this name already exists")
	ErrProductNotFound      = NewError(ErrCodeNotFound, "product does not exist")
	ErrProductExists        = NewError(ErrCodeConflict, "a product with this name already exists in this shop")
	ErrDiscountCodeNotFound = NewError(ErrCodeNotFound, "discount code does not exist")
	ErrAccountNotFound      = NewError(ErrCodeNotFound, "account does not exist")
	ErrSettingNotFound      = NewError(ErrCodeNotFound, "setting does not exist")
	ErrSettingType          = NewError(ErrCodeInvalid, "value does not match the setting type")
	ErrInvalidPosition      = NewError(ErrCodeInvalidPosition, "position is out of range")
	ErrInsufficientFunds    = NewError(ErrCodeInsufficientFunds, "you don't have enough money to buy this product")
	ErrShopReserved         = NewError(ErrCodeForbidden, "this shop is reserved to a role you don't have")
	ErrGrantFailed          = NewError(ErrCodeExternal, "payment was taken but the reward could not be delivered, contact an admin")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// UserFacing reports whether err carries a message meant for the end user.
func UserFacing(err error) (string, bool) {
	var dErr *Error
	if !errors.As(err, &dErr) || dErr.Code == ErrCodeInternal {
		return "", false
	}
	return dErr.Message, true
}

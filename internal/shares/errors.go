package shares

import "errors"

var (
	ErrNotFound      = errors.New("artifact not found")
	ErrExpired       = errors.New("artifact expired")
	ErrInvalidInput  = errors.New("invalid input")
	ErrCorruptRecord = errors.New("corrupt metadata record")
	ErrStorageWrite  = errors.New("storage write failed")
)

const (
	ErrorCodeValidation = "validation_error"
	ErrorCodeNotFound   = "not_found"
	ErrorCodeExpired    = "expired"
	ErrorCodeTooLarge   = "payload_too_large"
	ErrorCodeStorage    = "storage_error"
	ErrorCodeInternal   = "internal_error"
)

package notes

import "errors"

var (
	ErrNotFound      = errors.New("note not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrCorruptRecord = errors.New("corrupt note record")
)

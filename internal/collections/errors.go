package collections

import "errors"

var (
	ErrNotFound      = errors.New("collection not found")
	ErrNotMember     = errors.New("file not in collection")
	ErrInvalidInput  = errors.New("invalid input")
	ErrCorruptRecord = errors.New("corrupt collection record")
)

package models

import "errors"

var (
	ErrAlreadyRunning    = errors.New("generation already in progress")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrMalformedOutput   = errors.New("model output does not match the expected shape")
	ErrProvider          = errors.New("provider request failed")
	ErrStorage           = errors.New("storage upload failed")
	ErrNotFound          = errors.New("not found")
)

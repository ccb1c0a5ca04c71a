package model

import "errors"

var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrNotFound          = errors.New("not found")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrPersistence       = errors.New("persistence error")
)

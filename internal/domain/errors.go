package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrNoData          = errors.New("no data")
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrDatasetRead     = errors.New("dataset read error")
	ErrModelNotFound   = errors.New("model not found")
	ErrSchemaMismatch  = errors.New("feature schema mismatch")
)

package services

import "errors"

var (
	ErrMalformedPeakData  = errors.New("malformed peak data")
	ErrPeakLengthMismatch = errors.New("intensity and m/z arrays differ in length")
	ErrSpectrumNotFound   = errors.New("spectrum not found")
	ErrInvalidTableName   = errors.New("invalid table name")
	ErrUnknownTable       = errors.New("unknown table")
	ErrUploadNotFound     = errors.New("upload not found")
	ErrInvalidThreshold   = errors.New(`threshold filter must be "passing" or "all"`)
)

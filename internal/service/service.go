package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("not logged in")

	ErrValidation      = errors.New("validation failed")
	ErrInvalidCategory = errors.New("invalid category")
	ErrUploadFailed    = errors.New("upload failed")
	ErrStorage         = errors.New("storage failure")
	ErrRecord          = errors.New("record failure")
	ErrVideoNotFound   = errors.New("video not found")
	ErrURLGeneration   = errors.New("url generation failed")

	ErrTimeout = errors.New("timeout")
)

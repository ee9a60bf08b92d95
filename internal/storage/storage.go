package storage

import "errors"

var (
	ErrVideoExists      = errors.New("video exists")
	ErrVideoNotFound    = errors.New("video not found")
	ErrBlobExists       = errors.New("blob exists")
	ErrBlobNotFound     = errors.New("blob not found")
	ErrContextCancelled = errors.New("context cancelled")
)

package staff

import "errors"

var (
	ErrNotFound     = errors.New("staff not found")
	ErrInvalidInput = errors.New("invalid staff input")
)

package core

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of the rejection taxonomy. Every error a
// caller can trigger with bad input wraps it, so boundaries map the whole
// family to a 4xx with a single errors.Is check.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrEmptyContent        = fmt.Errorf("%w: content is empty", ErrInvalidInput)
	ErrContentTooShort     = fmt.Errorf("%w: content below minimum length", ErrInvalidInput)
	ErrContentTooLong      = fmt.Errorf("%w: content exceeds maximum length", ErrInvalidInput)
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrInvalidInput)
	ErrFileTooLarge        = fmt.Errorf("%w: file exceeds size limit", ErrInvalidInput)
	ErrUnreadableFile      = fmt.Errorf("%w: no readable content found in file", ErrInvalidInput)
)

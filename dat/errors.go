package dat

import (
	"github.com/pkg/errors"
)

// Errors returned (wrapped) by the decoders. Use errors.Cause to compare.
var (
	// ErrTruncated means the data ended while a fixed-size value was required.
	ErrTruncated = errors.New("truncated data")
	// ErrMalformedAttributeBlock means a legacy attribute block was not
	// terminated within 255 attributes.
	ErrMalformedAttributeBlock = errors.New("attribute block not terminated")
	// ErrOversizedFrameGroup means a frame group declared more than 4096
	// sprites.
	ErrOversizedFrameGroup = errors.New("frame group has too many sprites")
	// ErrInvalidTag means a wire-format field had an unexpected wire type. It
	// only stops the message being decoded and never fails a load.
	ErrInvalidTag = errors.New("invalid wire tag")
)

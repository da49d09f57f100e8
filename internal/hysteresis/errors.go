package hysteresis

import (
	"errors"

	"mask-hysteresis/internal/format"
)

var (
	// ErrInvalidArgument is returned for a bad plane selection.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrUnsupportedFormat = format.ErrUnsupportedFormat
	ErrFormatMismatch    = format.ErrFormatMismatch
)

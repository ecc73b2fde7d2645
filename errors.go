package inkpad

import "errors"

var (
	// ErrInvalidDimensions is returned when a canvas or brush is created
	// with a non-positive width or height.
	ErrInvalidDimensions = errors.New("inkpad: invalid dimensions")

	// ErrNilCanvas is returned when an operation needs a canvas that was
	// never configured.
	ErrNilCanvas = errors.New("inkpad: canvas not configured")

	// ErrNoComputeSupport reports that the compute path was requested but
	// the surface cannot be written in parallel or no accelerator is set.
	ErrNoComputeSupport = errors.New("inkpad: compute path unavailable")

	// ErrFallbackToFragment is returned by a StampAccelerator that cannot
	// handle a batch. The compositor switches to a fragment path for the
	// rest of the session and renders the batch there.
	ErrFallbackToFragment = errors.New("inkpad: falling back to fragment path")

	// ErrClosed is returned by operations on a closed Painter.
	ErrClosed = errors.New("inkpad: painter closed")
)

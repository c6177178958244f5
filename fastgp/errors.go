package fastgp

import (
	"errors"

	"github.com/lucasmaystre/gofastgp/kern"
)

var (
	ErrInvalidShape  = errors.New("invalid shape")
	ErrNotPowerOfTwo = errors.New("sample count must be zero or a power of two")
	ErrTaskIndex     = errors.New("task index out of range")
	ErrConfidence    = errors.New("confidence must lie in (0, 1)")
	ErrNonPositive   = errors.New("value must be positive")
	ErrNoData        = errors.New("no observations")
	ErrHorizon       = errors.New("sample counts cannot decrease")
	ErrDimension     = errors.New("point dimension mismatch")
	ErrAlpha         = kern.ErrAlpha
	ErrFamily        = errors.New("unknown sequence family")

	// Contract violations, raised with panic.
	ErrStaleLevel    = errors.New("old eigenvalues are not retained after updating")
	ErrDebugMismatch = errors.New("fast computation disagrees with dense reference")
)

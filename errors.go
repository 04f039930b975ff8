package omfile

import "github.com/open-meteo/om-file-format/internal/container"

// Error kinds surfaced by the package. Callers compare with errors.Is;
// wrapped errors (via fmt.Errorf("%w", ...)) preserve comparability.
// These are aliased from internal/container, which owns the canonical
// sentinels, so errors.Is works identically whether the failure
// originated in the container layer or was raised directly here.
var (
	// ErrInvalidCompressionType is returned when a variable record names a
	// compression byte this implementation does not recognize.
	ErrInvalidCompressionType = container.ErrInvalidCompressionType

	// ErrInvalidDataType is returned when a variable record names a
	// data_type byte this implementation does not recognize.
	ErrInvalidDataType = container.ErrInvalidDataType

	// ErrOutOfBoundRead is returned when a scalar payload is shorter than
	// its type's width, or when a LUT's groups do not fit its stored
	// size. A backend read past EOF surfaces as an *IoError, a requested
	// sub-cube outside a variable's dimensions as ErrInvalidArgument, and
	// a chunk that does not decode from its LUT slot as
	// ErrDeflatedSizeMismatch, not as this error.
	ErrOutOfBoundRead = container.ErrOutOfBoundRead

	// ErrNotAnOmFile is returned when neither the v3 trailer nor the
	// legacy header validate.
	ErrNotAnOmFile = container.ErrNotAnOmFile

	// ErrDeflatedSizeMismatch is returned when an entropy coder cannot
	// decode the expected number of values from the bytes its LUT entry
	// covers (too few bytes, or a malformed block). Bytes left over after
	// the last block are not detected.
	ErrDeflatedSizeMismatch = container.ErrDeflatedSizeMismatch

	// ErrInvalidArgument covers decoder/encoder init-time validation
	// failures: rank mismatch, out-of-range offset/count, and similar
	// caller errors caught before any I/O is attempted.
	ErrInvalidArgument = container.ErrInvalidArgument
)

// IoError wraps an error returned by a Backend. It is never retried
// internally; it is surfaced to the caller unchanged in meaning.
type IoError struct {
	Err error
}

func (e *IoError) Error() string { return "omfile: io error: " + e.Err.Error() }
func (e *IoError) Unwrap() error { return e.Err }

func wrapIo(err error) error {
	if err == nil {
		return nil
	}
	return &IoError{Err: err}
}

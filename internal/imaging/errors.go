package imaging

import "errors"

// Sentinel errors for the engine's failure classes. Every error returned by
// this package wraps exactly one of them, so callers classify with errors.Is
// or Kind.
var (
	// ErrUnsupportedFormat means the buffer carries no recognized container signature.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrCorruptImage means the container was recognized but its byte stream is
	// structurally invalid (truncated blocks, bad lengths, codec failures).
	ErrCorruptImage = errors.New("corrupt image data")

	// ErrOutOfBounds means a requested geometry does not fit the image.
	ErrOutOfBounds = errors.New("region out of bounds")

	// ErrEncode means valid frame data could not be serialized to the target format.
	ErrEncode = errors.New("encode failed")

	// ErrNotAnimated is returned by operations that need more than one frame.
	ErrNotAnimated = errors.New("image is not animated")

	// ErrTooLarge means an input exceeds a configured size or pixel limit.
	// Only the input guards (ReadFile, CheckLimits) return it.
	ErrTooLarge = errors.New("input too large")
)

// Error kind identifiers surfaced across the transfer boundary.
const (
	KindUnsupportedFormat = "UnsupportedFormat"
	KindCorruptImage      = "CorruptImage"
	KindOutOfBounds       = "OutOfBounds"
	KindEncodeError       = "EncodeError"
	KindIOError           = "IOError"
	KindTooLarge          = "TooLarge"
)

// Kind maps an engine error to its boundary identifier. Errors that do not
// wrap an engine sentinel are reported as IOError, which is the only other
// failure class an engine call can produce (reading the input).
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrNotAnimated):
		return KindUnsupportedFormat
	case errors.Is(err, ErrCorruptImage):
		return KindCorruptImage
	case errors.Is(err, ErrOutOfBounds):
		return KindOutOfBounds
	case errors.Is(err, ErrEncode):
		return KindEncodeError
	case errors.Is(err, ErrTooLarge):
		return KindTooLarge
	default:
		return KindIOError
	}
}

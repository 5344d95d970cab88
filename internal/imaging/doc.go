// Package imaging is the decode, inspect, crop and encode engine.
//
// A request flows through the package in one direction:
//
//	Identify -> Decode -> Summarize
//	Identify -> Decode -> Crop -> Encode
//
// Identify classifies a buffer by its header signature. Decode turns the
// buffer into a Sequence of fully composited frames. Summarize reports
// dimensions, frame count and average delay. Crop reduces every frame to a
// rectangle, and Encode writes the frames back in the source container.
// The pipeline functions (Inspect, CropImage, Convert, ...) chain these steps
// for callers that hold only bytes.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - A Rect covers [Left, Left+Width) x [Top, Top+Height)
//
// # Formats
//
// PNG, JPEG, BMP and TIFF hold one frame. GIF and WebP may hold an animation;
// every frame then carries its own delay, and a zero or missing delay decodes
// as DefaultFrameDelay. Encoding never changes the container implicitly:
// only Convert writes a format other than the source's.
//
// # Untrusted Input
//
// Buffers are treated as attacker-controlled. Before a GIF or WebP codec runs,
// its block or chunk structure is walked with a bounds-checked cursor, so a
// forged length fails with ErrCorruptImage instead of reading past the end.
// Codec panics are recovered into the same error. Callers bound memory with
// ReadFile and CheckLimits before decoding.
//
// # Thread Safety
//
// The package holds no state between calls. Every Sequence is owned by the
// request that decoded it, and all operations may run concurrently.
//
// # Error Handling
//
// Every failure wraps one sentinel (ErrUnsupportedFormat, ErrCorruptImage,
// ErrOutOfBounds, ErrEncode, ErrNotAnimated, ErrTooLarge). Kind maps an error
// to the identifier reported to clients.
package imaging

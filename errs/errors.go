// Package errs defines the sentinel errors shared across the gitvid packages.
//
// Every failure surfaced by the codec, store adapter, and playback pipeline
// wraps one of these sentinels, so callers can classify errors with
// errors.Is regardless of how much context was layered on with fmt.Errorf.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord indicates a structurally invalid frame record:
	// truncated buffer, bad magic, dimension mismatch, or a payload shorter
	// than the header claims.
	ErrMalformedRecord = errors.New("malformed frame record")

	// ErrInvalidMagicNumber indicates the record does not start with the
	// "GVCF" magic number. A subset of ErrMalformedRecord.
	ErrInvalidMagicNumber = fmt.Errorf("%w: invalid magic number", ErrMalformedRecord)

	// ErrInvalidGeometry indicates a frame whose width, height, or channel
	// count does not match the stream geometry. A subset of
	// ErrMalformedRecord.
	ErrInvalidGeometry = fmt.Errorf("%w: frame geometry does not match stream", ErrMalformedRecord)

	// ErrInvalidMode indicates a reserved compression mode byte in a record
	// header or an unknown RLE segment tag in a delta payload. A subset of
	// ErrMalformedRecord.
	ErrInvalidMode = fmt.Errorf("%w: invalid compression mode", ErrMalformedRecord)

	// ErrIntegrityCheck indicates the payload CRC-32 does not match the
	// checksum recorded in the header, or a decoded payload has the wrong
	// length. Classified under ErrMalformedRecord for callers that only care
	// about structural validity.
	ErrIntegrityCheck = fmt.Errorf("%w: payload integrity check failed", ErrMalformedRecord)

	// ErrCompression indicates the entropy codec rejected its input.
	ErrCompression = errors.New("entropy codec failure")

	// ErrStore indicates a failure in the underlying object store.
	ErrStore = errors.New("object store failure")

	// ErrFrameNotFound indicates a commit whose tree has no frame.bin entry.
	ErrFrameNotFound = errors.New("commit has no frame.bin entry")

	// ErrDisplay indicates the display sink failed to present a frame.
	ErrDisplay = errors.New("display sink failure")

	// ErrStopped indicates the pipeline observed the stop signal while
	// blocked on the ring buffer.
	ErrStopped = errors.New("playback stopped")
)

package idscodec

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolMisuse indicates the caller violated the scope-nesting or
	// index contract of a session. It is a programmer error and never retried.
	ErrProtocolMisuse = errors.New("idscodec: protocol misuse")

	// ErrEndiannessMismatch indicates the buffer was written on a platform with
	// a different byte order. The codec never byte-swaps.
	ErrEndiannessMismatch = errors.New("idscodec: endianness mismatch")

	// ErrUnknownProtocol indicates the leading version byte is not one this
	// package understands.
	ErrUnknownProtocol = errors.New("idscodec: unknown protocol version")

	// ErrNoBuilder indicates ExportBuffer was called without a finished operation.
	ErrNoBuilder = errors.New("idscodec: no finished buffer to export")

	// ErrTruncatedData indicates the buffer ended before an element was complete.
	ErrTruncatedData = errors.New("idscodec: truncated data")

	// ErrMalformed indicates the buffer is structurally invalid (bad tag,
	// unexpected element kind, lengths that do not add up).
	ErrMalformed = errors.New("idscodec: malformed data")

	// ErrNilIO indicates a nil io.Reader/io.Writer was passed in.
	ErrNilIO = errors.New("idscodec: nil io.Reader/io.Writer")

	// ErrInvalidSeek indicates a seek was attempted to invalid position.
	ErrInvalidSeek = errors.New("idscodec: seek to a invalid position")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = errors.New("idscodec: unsupported whence")

	// ErrInvalidRead indicates that an io.Reader returned an invalid (negative or outbound) count from Read.
	ErrInvalidRead = errors.New("idscodec: reader returned invalid count from Read")

	// ErrTrailingData is returned when non-zero bytes follow a fixed-size payload.
	ErrTrailingData = errors.New("idscodec: non-zero trailing data found after decoding")
)

// MisuseError describes which operation was called out of order and why.
type MisuseError struct {
	Op     string
	Reason string
}

func misusef(op, format string, args ...any) error {
	return &MisuseError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrProtocolMisuse, e.Op, e.Reason)
}

func (e *MisuseError) Unwrap() error { return ErrProtocolMisuse }

// EndiannessError reports the marker value that was expected and the one found.
type EndiannessError struct {
	Expected uint32
	Found    uint32
}

func (e *EndiannessError) Error() string {
	return fmt.Sprintf("%v: expected marker 0x%08x, found 0x%08x", ErrEndiannessMismatch, e.Expected, e.Found)
}

func (e *EndiannessError) Unwrap() error { return ErrEndiannessMismatch }

// VersionError reports an unsupported leading version byte.
type VersionError struct {
	Found byte
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%v: expected %d, found %d", ErrUnknownProtocol, Version, e.Found)
}

func (e *VersionError) Unwrap() error { return ErrUnknownProtocol }

// DataError points at the offset in the buffer where decoding failed.
type DataError struct {
	Off int
	Msg string
	Err error
}

func dataErrf(off int, err error, format string, args ...any) error {
	return &DataError{Off: off, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s at offset %d", e.Err, e.Msg, e.Off)
	}
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Off)
}

func (e *DataError) Unwrap() error { return e.Err }

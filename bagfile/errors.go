// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"github.com/pkg/errors"
)

// Sentinel errors for the fatal-to-load and fatal-to-chunk error kinds
// described in the bag file error handling design. Callers should compare
// against these using errors.Cause, since every returned error is wrapped
// with additional context via github.com/pkg/errors.
var (
	// ErrInvalidMagic indicates that the file does not begin with the
	// "#ROSBAG V2.0\n" magic string.
	ErrInvalidMagic = errors.New("bagfile: invalid magic header")

	// ErrTruncatedHeader indicates that the file is too short to contain a
	// valid header record.
	ErrTruncatedHeader = errors.New("bagfile: truncated header")

	// ErrHeaderTooLarge indicates that the header record's declared length
	// would overflow the padded header region.
	ErrHeaderTooLarge = errors.New("bagfile: header too large")

	// ErrMissingEquals indicates that a record header field entry did not
	// contain a "=" separator.
	ErrMissingEquals = errors.New("bagfile: record field missing '='")

	// ErrDecompressionFailure indicates that a registered decompressor
	// could not produce the chunk's declared uncompressed size.
	ErrDecompressionFailure = errors.New("bagfile: decompression failure")

	// ErrSchemaParseError indicates the schema compiler could not parse a
	// connection's message-definition text.
	ErrSchemaParseError = errors.New("bagfile: schema parse error")

	// ErrMessageDecodeError indicates a single message failed to decode
	// against its connection's compiled schema.
	ErrMessageDecodeError = errors.New("bagfile: message decode error")
)

// ErrUnsupportedCompression indicates an unrecognized compression tag was
// encountered in a chunk record.
type ErrUnsupportedCompression struct {
	Tag string
}

func (e *ErrUnsupportedCompression) Error() string {
	return "bagfile: unsupported compression: " + e.Tag
}

// ErrUnknownType indicates a field referenced a nested message type with
// no corresponding definition in the schema.
type ErrUnknownType struct {
	Name string
}

func (e *ErrUnknownType) Error() string {
	return "bagfile: unknown message type: " + e.Name
}

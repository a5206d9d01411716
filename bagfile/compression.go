// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// decompressor maps a compression tag to a (compressed, uncompressedSize)
// -> decompressed function.
type decompressor func(compressed []byte, uncompressedSize int) ([]byte, error)

var decompressors = map[string]decompressor{
	"none": decompressNone,
	"lz4":  decompressLZ4,
}

// decompress dispatches to the registered decompressor for tag. An
// unregistered tag (any codec besides "none"/"lz4", which is all this
// format version supports) is reported as ErrUnsupportedCompression.
func decompress(tag string, compressed []byte, uncompressedSize int) ([]byte, error) {
	fn, ok := decompressors[tag]
	if !ok {
		return nil, &ErrUnsupportedCompression{Tag: tag}
	}
	out, err := fn(compressed, uncompressedSize)
	if err != nil {
		return nil, errors.Wrapf(ErrDecompressionFailure, "%s: %s", tag, err)
	}
	return out, nil
}

func decompressNone(compressed []byte, uncompressedSize int) ([]byte, error) {
	return compressed, nil
}

// decompressLZ4 runs the LZ4 block-format algorithm, as used by rosbag's
// "lz4" chunk compression (one contiguous block, not the LZ4 frame
// format).
func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	out := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(compressed, out)
	if err != nil {
		return nil, err
	}
	if n != uncompressedSize {
		return nil, errors.Errorf("lz4: decompressed %d bytes, expected %d", n, uncompressedSize)
	}
	return out, nil
}

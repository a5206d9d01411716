// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("decompress", func() {
	It("passes compressed bytes through unchanged for 'none'", func() {
		data := []byte{0x01, 0x02, 0x03}
		out, err := decompress("none", data, len(data))
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal(data))
	})

	It("reports ErrUnsupportedCompression for an unknown tag", func() {
		_, err := decompress("zstd", nil, 0)
		Expect(err).To(HaveOccurred())

		var unsupported *ErrUnsupportedCompression
		Expect(errors.As(err, &unsupported)).To(BeTrue())
		Expect(unsupported.Tag).To(Equal("zstd"))
	})

	It("reports ErrDecompressionFailure when lz4 data is malformed", func() {
		_, err := decompress("lz4", []byte{0xFF, 0xFF, 0xFF}, 1024)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, ErrDecompressionFailure)).To(BeTrue())
	})
})

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func lengthPrefixed(entries ...string) []byte {
	var buf []byte
	for _, e := range entries {
		var lenBytes [4]byte
		binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(e)))
		buf = append(buf, lenBytes[:]...)
		buf = append(buf, e...)
	}
	return buf
}

var _ = Describe("extractFields", func() {
	It("parses length-prefixed name=value entries", func() {
		buf := lengthPrefixed("a=hello", "b=xy ")

		fields, err := extractFields(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(fields.String("a")).To(Equal("hello"))
		Expect(fields.String("b")).To(Equal("xy "))
	})

	It("round-trips for any valid fields blob", func() {
		buf := lengthPrefixed("foo=bar", "baz=qux123", "empty=")

		fields, err := extractFields(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(fields.String("foo")).To(Equal("bar"))
		Expect(fields.String("baz")).To(Equal("qux123"))
		Expect(fields.String("empty")).To(Equal(""))
	})

	It("rejects an entry without '='", func() {
		buf := lengthPrefixed("noequals")

		_, err := extractFields(buf)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a truncated length prefix", func() {
		_, err := extractFields([]byte{0x01, 0x00})
		Expect(err).To(HaveOccurred())
	})

	It("returns an empty set for an empty blob", func() {
		fields, err := extractFields(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(fields).To(BeEmpty())
	})
})

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/mjpitz/rosbag/support/byteslicereader"
)

var _ = Describe("decodeScalar", func() {
	schema := &MsgSchema{}

	var entries = []TableEntry{
		Entry("bool true", "bool", []byte{0x01}, true),
		Entry("bool false", "bool", []byte{0x00}, false),
		Entry("int8", "int8", []byte{0xFF}, int8(-1)),
		Entry("byte alias", "byte", []byte{0xFF}, int8(-1)),
		Entry("uint8", "uint8", []byte{0x2A}, uint8(42)),
		Entry("char alias", "char", []byte{0x2A}, uint8(42)),
		Entry("int16", "int16", []byte{0xFF, 0xFF}, int16(-1)),
		Entry("uint16", "uint16", []byte{0x34, 0x12}, uint16(0x1234)),
		Entry("int32", "int32", []byte{0xFF, 0xFF, 0xFF, 0xFF}, int32(-1)),
		Entry("uint32", "uint32", []byte{0x78, 0x56, 0x34, 0x12}, uint32(0x12345678)),
		Entry("int64", "int64", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, int64(-1)),
		Entry("uint64", "uint64", []byte{1, 0, 0, 0, 0, 0, 0, 0}, uint64(1)),
		Entry("time", "time", []byte{1, 0, 0, 0, 2, 0, 0, 0}, Time{Sec: 1, Nsec: 2}),
		Entry("duration alias", "duration", []byte{1, 0, 0, 0, 2, 0, 0, 0}, Time{Sec: 1, Nsec: 2}),
	}

	DescribeTable("decodes a single scalar value",
		func(keyType string, wire []byte, expected interface{}) {
			r := &byteslicereader.R{Buffer: wire}
			v, omit, err := decodeScalar(schema, keyType, r)
			Expect(err).ToNot(HaveOccurred())
			Expect(omit).To(BeFalse())
			Expect(v).To(Equal(expected))
		}, entries...)

	It("decodes a length-prefixed string", func() {
		wire := append(u32(5), []byte("hello")...)
		r := &byteslicereader.R{Buffer: wire}
		v, omit, err := decodeScalar(schema, "string", r)
		Expect(err).ToNot(HaveOccurred())
		Expect(omit).To(BeFalse())
		Expect(v).To(Equal("hello"))
	})

	It("omits json-typed fields without consuming bytes", func() {
		r := &byteslicereader.R{Buffer: []byte{0xDE, 0xAD}}
		v, omit, err := decodeScalar(schema, "json", r)
		Expect(err).ToNot(HaveOccurred())
		Expect(omit).To(BeTrue())
		Expect(v).To(BeNil())
		Expect(r.Remaining()).To(Equal(2))
	})

	It("rejects an unknown nested type", func() {
		_, _, err := decodeScalar(schema, "unknown/Type", r())
		var unknown *ErrUnknownType
		Expect(errors.As(err, &unknown)).To(BeTrue())
	})
})

func r() *byteslicereader.R { return &byteslicereader.R{} }

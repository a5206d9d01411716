// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/mjpitz/rosbag/support/byteslicereader"
)

var _ = Describe("Schema compiler and message decoder", func() {
	decode := func(definition string, data []byte) (map[string]interface{}, *byteslicereader.R) {
		schema, err := CompileSchema(definition)
		Expect(err).ToNot(HaveOccurred())

		r := &byteslicereader.R{Buffer: data}
		msg, err := DecodeMessage(schema, r)
		Expect(err).ToNot(HaveOccurred())
		return msg, r
	}

	It("decodes a fixed-length array", func() {
		msg, r := decode("uint8[3] rgb", []byte{0x10, 0x20, 0x30})

		Expect(msg["rgb"]).To(Equal([]interface{}{uint8(0x10), uint8(0x20), uint8(0x30)}))
		Expect(r.Remaining()).To(Equal(0))
	})

	It("decodes a variable-length array", func() {
		data := []byte{
			0x02, 0, 0, 0, // array length = 2
			0x01, 0, 0, 0, 'a', // "a"
			0x02, 0, 0, 0, 'b', 'c', // "bc"
		}
		msg, _ := decode("string[] names", data)

		Expect(msg["names"]).To(Equal([]interface{}{"a", "bc"}))
	})

	It("yields a constant field's value without consuming bytes", func() {
		msg, r := decode("uint8 MAX=255", []byte{0xFF})

		Expect(msg["MAX"]).To(Equal("255"))
		Expect(r.Remaining()).To(Equal(1))
	})

	It("decodes a nested type", func() {
		definition := "Header h\nuint8 v\n" +
			"================================================================================\n" +
			"MSG: Header\nuint32 seq\ntime stamp\n"
		data := []byte{
			0x07, 0, 0, 0, // seq = 7
			0x01, 0, 0, 0, 0, 0, 0, 0, // stamp = {1, 0}
			0x09, // v = 9
		}
		msg, _ := decode(definition, data)

		Expect(msg["h"]).To(Equal(map[string]interface{}{
			"seq":   uint32(7),
			"stamp": Time{Sec: 1, Nsec: 0},
		}))
		Expect(msg["v"]).To(Equal(uint8(9)))
	})

	It("returns ErrUnknownType for a field referencing an undefined nested type", func() {
		schema, err := CompileSchema("Missing m")
		Expect(err).ToNot(HaveOccurred())

		_, err = DecodeMessage(schema, &byteslicereader.R{Buffer: nil})
		Expect(err).To(HaveOccurred())

		var unknown *ErrUnknownType
		Expect(errors.As(err, &unknown)).To(BeTrue())
	})

	It("compiles a nested decoder once and reuses it across messages", func() {
		definition := "Header h\n" +
			"================================================================================\n" +
			"MSG: Header\nuint32 seq\n"
		schema, err := CompileSchema(definition)
		Expect(err).ToNot(HaveOccurred())

		msg1, err := DecodeMessage(schema, &byteslicereader.R{Buffer: []byte{0x01, 0, 0, 0}})
		Expect(err).ToNot(HaveOccurred())
		msg2, err := DecodeMessage(schema, &byteslicereader.R{Buffer: []byte{0x02, 0, 0, 0}})
		Expect(err).ToNot(HaveOccurred())

		Expect(msg1["h"]).To(Equal(map[string]interface{}{"seq": uint32(1)}))
		Expect(msg2["h"]).To(Equal(map[string]interface{}{"seq": uint32(2)}))
		Expect(schema.compiled).To(HaveLen(1))
		Expect(schema.compiled).To(HaveKey("header"))
	})
})

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ShallowRecord is a parsed record envelope whose header fields have been
// extracted but whose data payload is left as a raw, uncopied slice.
//
// RecordOffset is expressed in the logical file coordinate space (the
// offset this record occupies in the whole bag file), not in the local
// buffer that was parsed; a caller slicing out a sub-region of the file
// before calling shallowRead must pass the absolute offset so that
// RecordOffset (and therefore DataOffset) remain meaningful file
// coordinates.
type ShallowRecord struct {
	RecordOffset int64
	RecordLength int64
	DataOffset   int64
	Header       RecordFields
	Data         []byte
}

// shallowRead parses a single record envelope
// ("hlen:u32 | header[hlen] | dlen:u32 | data[dlen]") from the front of
// buf. initialOffset is the absolute file offset of buf[0].
func shallowRead(buf []byte, initialOffset int64) (*ShallowRecord, error) {
	if len(buf) < 4 {
		return nil, errors.Wrap(ErrTruncatedHeader, "record header length")
	}
	hlen := binary.LittleEndian.Uint32(buf[:4])
	buf = buf[4:]

	if uint32(len(buf)) < hlen {
		return nil, errors.Wrap(ErrTruncatedHeader, "record header body")
	}
	headerBytes := buf[:hlen]
	buf = buf[hlen:]

	header, err := extractFields(headerBytes)
	if err != nil {
		return nil, errors.Wrap(err, "record header fields")
	}

	if len(buf) < 4 {
		return nil, errors.Wrap(ErrTruncatedHeader, "record data length")
	}
	dlen := binary.LittleEndian.Uint32(buf[:4])
	buf = buf[4:]

	if uint32(len(buf)) < dlen {
		return nil, errors.Wrap(ErrTruncatedHeader, "record data body")
	}
	data := buf[:dlen]

	recordLength := int64(4) + int64(hlen) + int64(4) + int64(dlen)
	return &ShallowRecord{
		RecordOffset: initialOffset,
		RecordLength: recordLength,
		DataOffset:   initialOffset + 4 + int64(hlen) + 4,
		Header:       header,
		Data:         data,
	}, nil
}

// retrieveRecords reads count consecutive records from buf, starting at
// the logical offset startingOffset, invoking parse on each record's
// ShallowRecord to produce a typed value.
//
// The returned slice always has length count; the bytes consumed from buf
// equal the sum of each record's RecordLength. nextOffset is the absolute
// file offset immediately following the last record read, letting a
// caller chain a second retrieveRecords call onto the same buffer.
func retrieveRecords[T any](buf []byte, count int, startingOffset int64, parse func(*ShallowRecord) (T, error)) (out []T, nextOffset int64, err error) {
	out = make([]T, count)
	offset := startingOffset

	for i := 0; i < count; i++ {
		localOffset := offset - startingOffset
		if localOffset < 0 || localOffset > int64(len(buf)) {
			return nil, 0, errors.Wrapf(ErrTruncatedHeader, "record %d/%d out of range", i, count)
		}

		sr, err := shallowRead(buf[localOffset:], offset)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "record %d/%d", i, count)
		}

		v, err := parse(sr)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "parsing record %d/%d", i, count)
		}

		out[i] = v
		offset += sr.RecordLength
	}

	return out, offset, nil
}

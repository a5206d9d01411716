// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// IndexDataMsg is one message pointer from a chunk's embedded index: a
// timestamp plus an offset into the decompressed chunk data region.
type IndexDataMsg struct {
	ReceivedTime  Time
	MsgDataOffset uint32
}

// indexDataTriple is the fixed 12-byte wire layout of one IndexDataMsg:
// an 8-byte time followed by a little-endian uint32 offset.
type indexDataTriple struct {
	Sec           uint32 `struc:",little"`
	Nsec          uint32 `struc:",little"`
	MsgDataOffset uint32 `struc:",little"`
}

// parseIndexDataRecord parses sr as an index-data record embedded within
// a chunk: header carries "ver", "conn", "count"; data is "count"
// (received_time:8, msg_offset:u32) triples. It returns the connection ID
// and the decoded pointers for that connection.
func parseIndexDataRecord(sr *ShallowRecord) (conn uint32, msgs []IndexDataMsg, err error) {
	connBytes, ok := sr.Header["conn"]
	if !ok || len(connBytes) < 4 {
		return 0, nil, errors.Wrap(ErrMissingEquals, "index-data missing 'conn'")
	}
	countBytes, ok := sr.Header["count"]
	if !ok || len(countBytes) < 4 {
		return 0, nil, errors.Wrap(ErrMissingEquals, "index-data missing 'count'")
	}

	conn = binary.LittleEndian.Uint32(connBytes)
	count := binary.LittleEndian.Uint32(countBytes)

	msgs = make([]IndexDataMsg, count)
	data := sr.Data
	for i := uint32(0); i < count; i++ {
		if len(data) < 12 {
			return 0, nil, errors.Wrap(ErrTruncatedHeader, "index-data triple")
		}
		var triple indexDataTriple
		if err := struc.Unpack(bytes.NewReader(data[:12]), &triple); err != nil {
			return 0, nil, errors.Wrap(err, "decoding index-data triple")
		}
		msgs[i] = IndexDataMsg{
			ReceivedTime:  Time{Sec: triple.Sec, Nsec: triple.Nsec},
			MsgDataOffset: triple.MsgDataOffset,
		}
		data = data[12:]
	}

	return conn, msgs, nil
}

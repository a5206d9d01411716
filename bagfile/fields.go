// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// RecordFields is the set of "name=value" header entries extracted from a
// record header or a connection data blob. Values are the raw bytes
// following the first "=" in each entry; it is the caller's job to
// interpret them (ASCII string, little-endian integer, etc).
type RecordFields map[string][]byte

// String returns the value for name as a string, or "" if absent.
func (f RecordFields) String(name string) string {
	if v, ok := f[name]; ok {
		return string(v)
	}
	return ""
}

// extractFields parses buf as a concatenation of
// "len:u32 | name '=' value-bytes" entries, as used by both record
// headers and the connection record's data blob.
func extractFields(buf []byte) (RecordFields, error) {
	fields := make(RecordFields)

	for len(buf) > 0 {
		if len(buf) < 4 {
			return nil, errors.Wrap(ErrTruncatedHeader, "field length prefix")
		}
		entryLen := binary.LittleEndian.Uint32(buf[:4])
		buf = buf[4:]

		if uint32(len(buf)) < entryLen {
			return nil, errors.Wrap(ErrTruncatedHeader, "field entry")
		}
		entry := buf[:entryLen]
		buf = buf[entryLen:]

		eq := bytes.IndexByte(entry, '=')
		if eq < 0 {
			return nil, errors.Wrapf(ErrMissingEquals, "entry %q", entry)
		}

		name := string(entry[:eq])
		value := entry[eq+1:]
		fields[name] = value
	}

	return fields, nil
}

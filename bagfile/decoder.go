// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"github.com/pkg/errors"

	"github.com/mjpitz/rosbag/support/byteslicereader"
)

// nestedDecoder decodes one occurrence of a nested type's field list
// against a cursor, returning its fields as a map.
//
// nestedDecoder closures are pure over the cursor: they allocate a fresh
// result map on every call and share no mutable state across concurrent
// invocations, unlike the mutable instance-level accumulator the ROS bag
// playback tooling this format originated from is known to use (which
// breaks on nested/recursive decoding).
type nestedDecoder func(r *byteslicereader.R) (map[string]interface{}, error)

// compileNestedDecoder returns the memoized decoder closure for the
// nested type named typeName within schema, compiling and caching it on
// first use. The map is guarded by schema's mutex with a brief
// check-then-insert critical section; the returned closure itself is
// invoked outside the lock.
func compileNestedDecoder(schema *MsgSchema, typeName string) (nestedDecoder, error) {
	schema.mu.Lock()
	if fn, ok := schema.compiled[typeName]; ok {
		schema.mu.Unlock()
		return fn, nil
	}

	field, ok := schema.NestedTypes[typeName]
	if !ok {
		schema.mu.Unlock()
		return nil, &ErrUnknownType{Name: typeName}
	}

	fn := func(r *byteslicereader.R) (map[string]interface{}, error) {
		return decodeFields(schema, field.NestedKeys, r)
	}

	if schema.compiled == nil {
		schema.compiled = make(map[string]nestedDecoder)
	}
	schema.compiled[typeName] = fn
	schema.mu.Unlock()

	return fn, nil
}

// DecodeMessage decodes a message payload against schema's top-level
// field list, reading from r.
func DecodeMessage(schema *MsgSchema, r *byteslicereader.R) (map[string]interface{}, error) {
	return decodeFields(schema, schema.TopLevelKeys, r)
}

func decodeFields(schema *MsgSchema, fields []*MsgField, r *byteslicereader.R) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		v, omit, err := decodeField(schema, f, r)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", f.Key)
		}
		if !omit {
			out[f.Key] = v
		}
	}
	return out, nil
}

func decodeField(schema *MsgSchema, f *MsgField, r *byteslicereader.R) (value interface{}, omit bool, err error) {
	if f.ConstantValue != nil {
		return *f.ConstantValue, false, nil
	}

	if f.IsArray {
		length := 0
		if f.ArrayLength != nil {
			length = *f.ArrayLength
		} else {
			n, err := r.ReadUint32LE()
			if err != nil {
				return nil, false, errors.Wrap(err, "array length")
			}
			length = int(n)
		}

		elem := &MsgField{Key: f.Key, KeyType: f.KeyType}
		arr := make([]interface{}, 0, length)
		for i := 0; i < length; i++ {
			v, omit, err := decodeField(schema, elem, r)
			if err != nil {
				return nil, false, errors.Wrapf(err, "element %d", i)
			}
			if !omit {
				arr = append(arr, v)
			}
		}
		return arr, false, nil
	}

	return decodeScalar(schema, f.KeyType, r)
}

func decodeScalar(schema *MsgSchema, keyType string, r *byteslicereader.R) (interface{}, bool, error) {
	switch keyType {
	case "bool":
		b, err := r.ReadByte()
		return b != 0, false, err

	case "int8", "byte":
		b, err := r.ReadByte()
		return int8(b), false, err

	case "uint8", "char":
		b, err := r.ReadByte()
		return uint8(b), false, err

	case "int16":
		v, err := r.ReadUint16LE()
		return int16(v), false, err

	case "uint16":
		v, err := r.ReadUint16LE()
		return v, false, err

	case "int32":
		v, err := r.ReadUint32LE()
		return int32(v), false, err

	case "uint32":
		v, err := r.ReadUint32LE()
		return v, false, err

	case "int64":
		v, err := r.ReadUint64LE()
		return int64(v), false, err

	case "uint64":
		v, err := r.ReadUint64LE()
		return v, false, err

	case "float32":
		v, err := r.ReadFloat32LE()
		return v, false, err

	case "float64":
		v, err := r.ReadFloat64LE()
		return v, false, err

	case "string":
		n, err := r.ReadUint32LE()
		if err != nil {
			return nil, false, errors.Wrap(err, "string length")
		}
		b, err := r.Next(int(n))
		if err != nil && len(b) < int(n) {
			return nil, false, errors.Wrap(err, "string bytes")
		}
		return string(b), false, nil

	case "time", "duration":
		b, err := r.Next(8)
		if err != nil && len(b) < 8 {
			return nil, false, errors.Wrap(err, "time bytes")
		}
		t, err := readTime(b)
		return t, false, err

	case "json":
		// No-op: json-typed fields are never decoded or consumed.
		return nil, true, nil

	default:
		fn, err := compileNestedDecoder(schema, keyType)
		if err != nil {
			return nil, false, err
		}
		v, err := fn(r)
		return v, false, err
	}
}

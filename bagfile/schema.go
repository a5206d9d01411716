// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// arrayTypeRE matches an array key_type like "uint8[3]" or "string[]",
// capturing the element type and an optional fixed length.
var arrayTypeRE = regexp.MustCompile(`^(.+)\[(\d*)\]$`)

// MsgField is one node of a compiled schema tree: either a top-level
// field of a connection's message, or one field within a nested type's
// body.
type MsgField struct {
	// Key is the field name (or, while the node is a pending nested-type
	// marker under construction, the type name following "MSG:").
	Key string
	// KeyType is the field's (lowercased, slash-reduced) primitive or
	// nested-type tag.
	KeyType string

	IsArray bool
	// ArrayLength is the fixed array length, or nil if the length is
	// unbounded and must be read from the stream at decode time.
	ArrayLength *int

	// ConstantValue, if non-nil, makes this a constant field: its value is
	// returned as-is without consuming any bytes.
	ConstantValue *string

	// NestedKeys holds this node's field list when it is a nested-type
	// definition (a pending_nested marker finalized into nested_types).
	NestedKeys []*MsgField
}

// MsgSchema is the compiled representation of a message-definition text:
// the message's own top-level fields, plus a map of nested type
// definitions referenced (directly or transitively) by those fields.
type MsgSchema struct {
	TopLevelKeys []*MsgField
	NestedTypes  map[string]*MsgField

	// mu guards compiled, the memoization table for nested-type decoder
	// closures built on demand by compileNestedDecoder.
	mu       sync.Mutex
	compiled map[string]nestedDecoder
}

// CompileSchema parses a ROS message-definition text into a MsgSchema.
//
// The text is one field per line for the top-level type; nested complex
// types referenced by those fields are appended to the same string, each
// introduced by a line whose first whitespace-separated token is "MSG:".
// Lines starting with "#" or "==", and blank lines, are ignored.
func CompileSchema(definition string) (*MsgSchema, error) {
	var pending *MsgField
	var topLevel []*MsgField
	nested := make(map[string]*MsgField)

	finalizePending := func() {
		if pending != nil && pending.Key != "" {
			name := reduceTypeName(pending.Key)
			pending.KeyType = name
			nested[name] = pending
		}
	}

	for _, raw := range strings.Split(definition, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "==") {
			continue
		}

		tokens := strings.Fields(trimmed)
		if len(tokens) == 0 {
			continue
		}

		if strings.ToLower(tokens[0]) == "msg:" {
			finalizePending()

			typeName := ""
			if len(tokens) > 1 {
				typeName = tokens[1]
			}
			pending = &MsgField{Key: typeName}
			continue
		}

		field, err := parseFieldLine(tokens)
		if err != nil {
			return nil, errors.Wrapf(ErrSchemaParseError, "line %q: %s", trimmed, err)
		}

		if pending != nil && pending.Key != "" {
			pending.NestedKeys = append(pending.NestedKeys, field)
		} else {
			topLevel = append(topLevel, field)
		}
	}
	finalizePending()

	return &MsgSchema{TopLevelKeys: topLevel, NestedTypes: nested}, nil
}

// parseFieldLine parses one retained, whitespace-tokenized schema line
// into a MsgField.
func parseFieldLine(tokens []string) (*MsgField, error) {
	if len(tokens) < 2 {
		return nil, errors.Errorf("expected at least a type and a key, got %q", tokens)
	}

	keyType := tokens[0]
	key := tokens[1]
	rest := tokens[2:]

	var isArray bool
	var arrayLength *int
	if m := arrayTypeRE.FindStringSubmatch(keyType); m != nil {
		keyType = m[1]
		isArray = true
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, errors.Wrapf(err, "invalid array length %q", m[2])
			}
			arrayLength = &n
		}
	}

	var constantValue *string
	if idx := strings.IndexByte(key, '='); idx >= 0 {
		cv := key[idx+1:]
		key = key[:idx]
		constantValue = &cv
	} else if len(rest) == 2 && rest[0] == "=" {
		cv := rest[1]
		constantValue = &cv
	}

	return &MsgField{
		Key:           key,
		KeyType:       reduceTypeName(keyType),
		IsArray:       isArray,
		ArrayLength:   arrayLength,
		ConstantValue: constantValue,
	}, nil
}

// reduceTypeName reduces a possibly package-qualified type name
// ("pkg/Type") to its last slash segment, lowercased.
func reduceTypeName(s string) string {
	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.ToLower(s)
}

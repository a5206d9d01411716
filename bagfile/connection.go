// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Connection describes a single logical stream within a bag: one topic,
// one message type, one md5sum, one message-definition text.
type Connection struct {
	Conn              uint32
	Topic             string
	MessageType       string
	MD5Sum            string
	MessageDefinition string
}

// parseConnectionRecord parses sr as a connection record: header carries
// "conn" and "topic"; the data payload is itself a fields blob carrying
// "type", "md5sum" and "message_definition" (all optional, defaulting to
// "").
func parseConnectionRecord(sr *ShallowRecord) (*Connection, error) {
	connBytes, ok := sr.Header["conn"]
	if !ok || len(connBytes) < 4 {
		return nil, errors.Wrap(ErrMissingEquals, "connection record missing 'conn'")
	}

	data, err := extractFields(sr.Data)
	if err != nil {
		return nil, errors.Wrap(err, "connection data fields")
	}

	return &Connection{
		Conn:              binary.LittleEndian.Uint32(connBytes),
		Topic:             sr.Header.String("topic"),
		MessageType:       data.String("type"),
		MD5Sum:            data.String("md5sum"),
		MessageDefinition: data.String("message_definition"),
	}, nil
}

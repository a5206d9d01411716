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

// connCount is one (conn, message count) pair from a chunk-info record's
// data payload: a fixed 8-byte layout, decoded with struc like the
// IndexDataMsg pointer triples.
type connCount struct {
	Conn  uint32 `struc:",little"`
	Count uint32 `struc:",little"`
}

// ChunkInfo describes one chunk's time range, position and per-connection
// message counts. Idx and NextChunkPosition are assigned during the bag
// inspector's post-processing pass, after chunk-infos are sorted by
// StartTime.
type ChunkInfo struct {
	Version       uint32
	ChunkPosition uint64
	StartTime     Time
	EndTime       Time
	Count         uint32
	PerConnCounts map[uint32]uint32

	// Idx is this chunk's position in the time-sorted chunk index.
	Idx int
	// NextChunkPosition is the ChunkPosition of the next chunk in sort
	// order, or the file length for the last chunk.
	NextChunkPosition uint64
}

// parseChunkInfoRecord parses sr as a chunk-info record: header carries
// "ver", "chunk_pos", "start_time", "end_time", "count"; data is "count"
// (conn, msg_count) pairs.
func parseChunkInfoRecord(sr *ShallowRecord) (*ChunkInfo, error) {
	verBytes, ok := sr.Header["ver"]
	if !ok || len(verBytes) < 4 {
		return nil, errors.Wrap(ErrMissingEquals, "chunk-info missing 'ver'")
	}
	posBytes, ok := sr.Header["chunk_pos"]
	if !ok || len(posBytes) < 8 {
		return nil, errors.Wrap(ErrMissingEquals, "chunk-info missing 'chunk_pos'")
	}
	startBytes, ok := sr.Header["start_time"]
	if !ok {
		return nil, errors.Wrap(ErrMissingEquals, "chunk-info missing 'start_time'")
	}
	endBytes, ok := sr.Header["end_time"]
	if !ok {
		return nil, errors.Wrap(ErrMissingEquals, "chunk-info missing 'end_time'")
	}
	countBytes, ok := sr.Header["count"]
	if !ok || len(countBytes) < 4 {
		return nil, errors.Wrap(ErrMissingEquals, "chunk-info missing 'count'")
	}

	startTime, err := readTime(startBytes)
	if err != nil {
		return nil, errors.Wrap(err, "chunk-info start_time")
	}
	endTime, err := readTime(endBytes)
	if err != nil {
		return nil, errors.Wrap(err, "chunk-info end_time")
	}

	count := binary.LittleEndian.Uint32(countBytes)

	perConn := make(map[uint32]uint32, count)
	data := sr.Data
	for i := uint32(0); i < count; i++ {
		if len(data) < 8 {
			return nil, errors.Wrap(ErrTruncatedHeader, "chunk-info conn-count pair")
		}
		var pair connCount
		if err := struc.Unpack(bytes.NewReader(data[:8]), &pair); err != nil {
			return nil, errors.Wrap(err, "decoding chunk-info conn-count pair")
		}
		perConn[pair.Conn] = pair.Count
		data = data[8:]
	}

	return &ChunkInfo{
		Version:       binary.LittleEndian.Uint32(verBytes),
		ChunkPosition: binary.LittleEndian.Uint64(posBytes),
		StartTime:     startTime,
		EndTime:       endTime,
		Count:         count,
		PerConnCounts: perConn,
	}, nil
}

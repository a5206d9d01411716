// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"context"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"

	"github.com/mjpitz/rosbag/support/bufferpool"
)

// magic is the fixed byte sequence every ROS bag v2.0 file begins with.
const magic = "#ROSBAG V2.0\n"

// headerPadding is the size of the leading region (magic plus the
// BAG_HEADER record, data-padded to fill the rest) that Inspect reads in
// a single call before deciding where the trailing index region starts.
const headerPadding = 4096

// headerPool recycles the fixed-size buffer Inspect copies the header
// region into, so a caller that reloads bags repeatedly (such as a
// player switching files) doesn't pay a fresh 4KB allocation each time.
var headerPool = bufferpool.NewPool(headerPadding)

// BagMetadata is the fully-parsed result of inspecting a bag file: its
// connections, its time-sorted chunk index, the bag's overall time range,
// and a supplemented total per-connection message count rolled up across
// every chunk.
type BagMetadata struct {
	Connections map[uint32]*Connection
	ChunksInfo  []*ChunkInfo

	StartTime Time
	EndTime   Time

	// TotalMessageCounts sums ChunkInfo.PerConnCounts across every chunk,
	// keyed by connection id. It is not present on the wire; it is
	// computed once here so callers (such as a bag-info CLI) don't have
	// to walk every chunk themselves.
	TotalMessageCounts map[uint32]uint64
}

// Inspect reads src's header and trailing index region and returns the
// bag's metadata. It never reads chunk payloads; decoding messages is the
// chunk decoder's job.
//
// A bag with zero chunks is valid: ChunksInfo is empty and StartTime/
// EndTime are both the zero Time. This is a deliberate choice over
// rejecting empty bags outright, since an empty bag is a legitimate
// (if useless) recording, not a corrupt one.
func Inspect(ctx context.Context, src Source) (*BagMetadata, error) {
	fileLength, err := src.Length(ctx)
	if err != nil {
		loadErrors.WithLabelValues("length").Inc()
		return nil, errors.Wrap(err, "reading bag length")
	}

	headerLen := int64(headerPadding)
	if fileLength < headerLen {
		headerLen = fileLength
	}

	raw, err := src.ReadAt(ctx, 0, headerLen)
	if err != nil {
		loadErrors.WithLabelValues("read_header").Inc()
		return nil, errors.Wrap(err, "reading bag header region")
	}

	hdr := headerPool.Get()
	defer hdr.Release()
	copy(hdr.Bytes(), raw)
	hdr.Truncate(len(raw))
	buf := hdr.Bytes()

	if len(buf) < len(magic) || string(buf[:len(magic)]) != magic {
		loadErrors.WithLabelValues("magic").Inc()
		return nil, ErrInvalidMagic
	}

	if len(buf) < len(magic)+4 {
		loadErrors.WithLabelValues("header_record").Inc()
		return nil, errors.Wrap(ErrTruncatedHeader, "BAG_HEADER record length prefix")
	}
	declaredHeaderLen := binary.LittleEndian.Uint32(buf[len(magic) : len(magic)+4])
	if int64(len(magic))+8+int64(declaredHeaderLen) > int64(len(buf)) {
		loadErrors.WithLabelValues("header_too_large").Inc()
		return nil, errors.Wrapf(ErrHeaderTooLarge, "BAG_HEADER declares header_length %d, overflowing the %d-byte padded header region", declaredHeaderLen, len(buf))
	}

	headerRecord, err := shallowRead(buf[len(magic):], int64(len(magic)))
	if err != nil {
		loadErrors.WithLabelValues("header_record").Inc()
		return nil, errors.Wrap(err, "parsing BAG_HEADER record")
	}

	indexPosBytes, ok := headerRecord.Header["index_pos"]
	if !ok || len(indexPosBytes) < 8 {
		loadErrors.WithLabelValues("index_pos").Inc()
		return nil, errors.Wrap(ErrMissingEquals, "BAG_HEADER missing 'index_pos'")
	}
	connCountBytes, ok := headerRecord.Header["conn_count"]
	if !ok || len(connCountBytes) < 4 {
		loadErrors.WithLabelValues("conn_count").Inc()
		return nil, errors.Wrap(ErrMissingEquals, "BAG_HEADER missing 'conn_count'")
	}
	chunkCountBytes, ok := headerRecord.Header["chunk_count"]
	if !ok || len(chunkCountBytes) < 4 {
		loadErrors.WithLabelValues("chunk_count").Inc()
		return nil, errors.Wrap(ErrMissingEquals, "BAG_HEADER missing 'chunk_count'")
	}

	indexPos := int64(binary.LittleEndian.Uint64(indexPosBytes))
	connCount := int(binary.LittleEndian.Uint32(connCountBytes))
	chunkCount := int(binary.LittleEndian.Uint32(chunkCountBytes))

	if indexPos < 0 || indexPos > fileLength {
		loadErrors.WithLabelValues("index_pos_range").Inc()
		return nil, errors.Wrapf(ErrHeaderTooLarge, "index_pos %d exceeds file length %d", indexPos, fileLength)
	}

	indexBuf, err := src.ReadAt(ctx, indexPos, fileLength-indexPos)
	if err != nil {
		loadErrors.WithLabelValues("read_index").Inc()
		return nil, errors.Wrap(err, "reading bag index region")
	}

	connRecords, afterConns, err := retrieveRecords(indexBuf, connCount, indexPos, parseConnectionRecord)
	if err != nil {
		loadErrors.WithLabelValues("connections").Inc()
		return nil, errors.Wrap(err, "parsing connection records")
	}

	connections := make(map[uint32]*Connection, len(connRecords))
	for _, c := range connRecords {
		connections[c.Conn] = c
	}

	chunkInfoBuf := indexBuf[afterConns-indexPos:]
	chunksInfo, _, err := retrieveRecords(chunkInfoBuf, chunkCount, afterConns, parseChunkInfoRecord)
	if err != nil {
		loadErrors.WithLabelValues("chunk_infos").Inc()
		return nil, errors.Wrap(err, "parsing chunk-info records")
	}

	sort.SliceStable(chunksInfo, func(i, j int) bool {
		return Compare(chunksInfo[i].StartTime, chunksInfo[j].StartTime) < 0
	})

	totals := make(map[uint32]uint64)
	for i, ci := range chunksInfo {
		ci.Idx = i
		if i+1 < len(chunksInfo) {
			ci.NextChunkPosition = chunksInfo[i+1].ChunkPosition
		} else {
			ci.NextChunkPosition = uint64(fileLength)
		}
		for conn, count := range ci.PerConnCounts {
			totals[conn] += uint64(count)
		}
	}

	meta := &BagMetadata{
		Connections:        connections,
		ChunksInfo:         chunksInfo,
		TotalMessageCounts: totals,
	}
	if len(chunksInfo) > 0 {
		meta.StartTime = chunksInfo[0].StartTime
		meta.EndTime = chunksInfo[len(chunksInfo)-1].EndTime
	}

	return meta, nil
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"context"
	"encoding/binary"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/mjpitz/rosbag/support/byteslicereader"
	"github.com/mjpitz/rosbag/support/fmtutil"
	"github.com/mjpitz/rosbag/support/logging"
)

// indexPointer is one flattened, sortable message location within a
// decompressed chunk: which connection it belongs to, when it was
// received, and where its record starts.
type indexPointer struct {
	conn         uint32
	receivedTime Time
	dataOffset   uint32
}

// ChunkDecoder fetches, decompresses and decodes chunks on demand,
// caching the result so repeated access to the same chunk (typical
// during playback, since the window advances roughly monotonically and
// a seek may re-enter a chunk) does not re-pay the decompression and
// per-message decode cost.
//
// A ChunkDecoder's schema cache is interned by message_type: CompileSchema
// runs at most once per distinct message type for the lifetime of the
// ChunkDecoder, even if multiple connections share that type.
type ChunkDecoder struct {
	Source Source
	Log    logging.L

	connections map[uint32]*Connection
	cache       *ChunkCache

	schemaMu sync.Mutex
	schemas  map[string]*MsgSchema
}

// NewChunkDecoder returns a ChunkDecoder serving chunks described by
// meta's connections, backed by src for reads and caching decoded
// chunks in cache.
func NewChunkDecoder(src Source, meta *BagMetadata, cache *ChunkCache) *ChunkDecoder {
	return &ChunkDecoder{
		Source:      src,
		Log:         logging.Nop,
		connections: meta.Connections,
		cache:       cache,
		schemas:     make(map[string]*MsgSchema),
	}
}

// DecodeChunk returns the decoded, time-sorted messages for the chunk
// described by ci, serving them from cache when possible. ctx may be
// cancelled to abort an in-flight fetch before it completes; a
// cancellation that lands after the cache lookup but before the fetch
// completes returns ctx.Err() without populating the cache.
func (d *ChunkDecoder) DecodeChunk(ctx context.Context, ci *ChunkInfo) ([]RosbagMessage, error) {
	if entry, ok := d.cache.Get(ci.ChunkPosition); ok {
		return entry.Messages, nil
	}

	if err := ctx.Err(); err != nil {
		chunkReadsCancelled.Inc()
		return nil, err
	}

	length := int64(ci.NextChunkPosition) - int64(ci.ChunkPosition)
	region, err := d.Source.ReadAt(ctx, int64(ci.ChunkPosition), length)
	if err != nil {
		chunkReadErrors.Inc()
		return nil, errors.Wrapf(err, "reading chunk at %d", ci.ChunkPosition)
	}

	if err := ctx.Err(); err != nil {
		chunkReadsCancelled.Inc()
		return nil, err
	}

	chunkRecord, err := shallowRead(region, int64(ci.ChunkPosition))
	if err != nil {
		chunkReadErrors.Inc()
		return nil, errors.Wrap(err, "parsing chunk record")
	}

	compression := chunkRecord.Header.String("compression")
	sizeBytes, ok := chunkRecord.Header["size"]
	if !ok || len(sizeBytes) < 4 {
		chunkReadErrors.Inc()
		return nil, errors.Wrap(ErrMissingEquals, "chunk record missing 'size'")
	}
	uncompressedSize := int(binary.LittleEndian.Uint32(sizeBytes))

	decompressed, err := decompress(compression, chunkRecord.Data, uncompressedSize)
	if err != nil {
		chunkReadErrors.Inc()
		return nil, err
	}

	pointers, err := d.readChunkIndex(region[chunkRecord.RecordLength:], int64(ci.ChunkPosition)+chunkRecord.RecordLength, ci.Count)
	if err != nil {
		chunkReadErrors.Inc()
		return nil, errors.Wrap(err, "parsing chunk index")
	}

	sort.SliceStable(pointers, func(i, j int) bool {
		return Compare(pointers[i].receivedTime, pointers[j].receivedTime) < 0
	})

	messages := make([]RosbagMessage, 0, len(pointers))
	for _, p := range pointers {
		if err := ctx.Err(); err != nil {
			chunkReadsCancelled.Inc()
			return nil, err
		}

		msg, ok, err := d.decodeOne(decompressed, p)
		if err != nil {
			messageDecodeErrors.Inc()
			d.Log.Warnf("bagfile: skipping message on conn %d at offset %d: %s", p.conn, p.dataOffset, err)
			continue
		}
		if ok {
			messages = append(messages, msg)
		}
	}

	entry := ChunkCacheEntry{
		Messages:  messages,
		SizeBytes: int64(ci.NextChunkPosition) - int64(ci.ChunkPosition),
	}
	d.cache.Put(ci.ChunkPosition, entry)

	return messages, nil
}

// readChunkIndex parses the count index-data records following a chunk
// record (one per connection represented in the chunk), flattening them
// into a single unsorted slice of pointers into the decompressed chunk
// data. Bytes after the last of them (for the final chunk, the bag's
// trailing index region) are not read.
func (d *ChunkDecoder) readChunkIndex(buf []byte, offset int64, count uint32) ([]indexPointer, error) {
	var pointers []indexPointer

	for i := uint32(0); i < count; i++ {
		sr, err := shallowRead(buf, offset)
		if err != nil {
			return nil, err
		}

		conn, msgs, err := parseIndexDataRecord(sr)
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			pointers = append(pointers, indexPointer{
				conn:         conn,
				receivedTime: m.ReceivedTime,
				dataOffset:   m.MsgDataOffset,
			})
		}

		buf = buf[sr.RecordLength:]
		offset += sr.RecordLength
	}

	return pointers, nil
}

// decodeOne decodes the single message record found at p.dataOffset
// within decompressed, returning ok=false (without error) if p names a
// connection absent from this ChunkDecoder's metadata, which can happen
// if a bag's index references a connection record that was itself
// dropped or filtered.
func (d *ChunkDecoder) decodeOne(decompressed []byte, p indexPointer) (RosbagMessage, bool, error) {
	conn, ok := d.connections[p.conn]
	if !ok {
		return RosbagMessage{}, false, nil
	}

	sr, err := shallowRead(decompressed[p.dataOffset:], int64(p.dataOffset))
	if err != nil {
		return RosbagMessage{}, false, errors.Wrap(err, "parsing message record")
	}

	schema, err := d.schemaFor(conn)
	if err != nil {
		return RosbagMessage{}, false, err
	}

	data, err := DecodeMessage(schema, &byteslicereader.R{Buffer: sr.Data})
	if err != nil {
		d.Log.Debugf("bagfile: conn %d payload: %s", p.conn, fmtutil.HexSlice(sr.Data))
		return RosbagMessage{}, false, errors.Wrap(ErrMessageDecodeError, err.Error())
	}

	return RosbagMessage{
		Topic: conn.Topic,
		Time:  p.receivedTime,
		Data:  data,
	}, true, nil
}

// schemaFor returns the memoized compiled schema for conn, compiling it
// on first use. Schemas are interned by message_type, not connection id,
// so every connection carrying the same message type shares one
// compiled schema.
func (d *ChunkDecoder) schemaFor(conn *Connection) (*MsgSchema, error) {
	d.schemaMu.Lock()
	defer d.schemaMu.Unlock()

	if s, ok := d.schemas[conn.MessageType]; ok {
		return s, nil
	}

	schema, err := CompileSchema(conn.MessageDefinition)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling schema for connection %d (%s)", conn.Conn, conn.MessageType)
	}
	schemaCompiles.Inc()

	d.schemas[conn.MessageType] = schema
	return schema, nil
}

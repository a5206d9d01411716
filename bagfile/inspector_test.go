// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"context"
	"encoding/binary"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// memSource is an in-memory Source used to assemble synthetic bag files
// for testing, without touching the filesystem.
type memSource struct {
	buf []byte
}

func (m *memSource) Length(ctx context.Context) (int64, error) { return int64(len(m.buf)), nil }

func (m *memSource) ReadAt(ctx context.Context, offset, length int64) ([]byte, error) {
	return m.buf[offset : offset+length], nil
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func timeBytes(t Time) []byte {
	return append(u32(t.Sec), u32(t.Nsec)...)
}

// fieldEntry encodes one "len:u32 | name=value" header/data field entry.
func fieldEntry(name string, value []byte) []byte {
	body := append([]byte(name+"="), value...)
	return append(u32(uint32(len(body))), body...)
}

func fieldsBlob(entries ...[]byte) []byte {
	var out []byte
	for _, e := range entries {
		out = append(out, e...)
	}
	return out
}

// recordBytes encodes a full record envelope: "hlen | header | dlen | data".
func recordBytes(header []byte, data []byte) []byte {
	out := append(u32(uint32(len(header))), header...)
	out = append(out, u32(uint32(len(data)))...)
	out = append(out, data...)
	return out
}

// bagBuilder assembles a minimal, valid ROS bag v2.0 byte stream for
// tests: a BAG_HEADER record followed immediately (no real padding) by
// connection records and chunk-info records.
type bagBuilder struct {
	connections []byte
	connCount   uint32
	chunkInfos  []byte
	chunkCount  uint32
}

func (b *bagBuilder) addConnection(conn uint32, topic, msgType, md5sum, msgDef string) {
	header := fieldsBlob(fieldEntry("conn", u32(conn)), fieldEntry("topic", []byte(topic)))
	data := fieldsBlob(
		fieldEntry("type", []byte(msgType)),
		fieldEntry("md5sum", []byte(md5sum)),
		fieldEntry("message_definition", []byte(msgDef)),
	)
	b.connections = append(b.connections, recordBytes(header, data)...)
	b.connCount++
}

func (b *bagBuilder) addChunkInfo(chunkPos uint64, start, end Time, perConn map[uint32]uint32) {
	var count uint32
	var data []byte
	for conn, n := range perConn {
		data = append(data, u32(conn)...)
		data = append(data, u32(n)...)
		count++
	}
	header := fieldsBlob(
		fieldEntry("ver", u32(1)),
		fieldEntry("chunk_pos", u64(chunkPos)),
		fieldEntry("start_time", timeBytes(start)),
		fieldEntry("end_time", timeBytes(end)),
		fieldEntry("count", u32(count)),
	)
	b.chunkInfos = append(b.chunkInfos, recordBytes(header, data)...)
	b.chunkCount++
}

// build returns the complete file bytes and a Source backed by them.
func (b *bagBuilder) build() *memSource {
	// index_pos is fixed-width, so encoding it with a placeholder first
	// determines the header record's length (and therefore the true
	// index_pos) without a chicken-and-egg problem.
	headerRecordLen := len(recordBytes(fieldsBlob(
		fieldEntry("index_pos", u64(0)),
		fieldEntry("conn_count", u32(b.connCount)),
		fieldEntry("chunk_count", u32(b.chunkCount)),
	), nil))
	indexPos := uint64(len(magic) + headerRecordLen)

	headerRecord := recordBytes(fieldsBlob(
		fieldEntry("index_pos", u64(indexPos)),
		fieldEntry("conn_count", u32(b.connCount)),
		fieldEntry("chunk_count", u32(b.chunkCount)),
	), nil)

	out := append([]byte(magic), headerRecord...)
	out = append(out, b.connections...)
	out = append(out, b.chunkInfos...)

	return &memSource{buf: out}
}

var _ = Describe("Inspect", func() {
	It("rejects a corrupted magic header", func() {
		src := &memSource{buf: []byte("$ROSBAG V2.0\n")}
		_, err := Inspect(context.Background(), src)
		Expect(err).To(Equal(ErrInvalidMagic))
	})

	It("rejects a truncated header", func() {
		src := &memSource{buf: []byte("#ROSBAG")}
		_, err := Inspect(context.Background(), src)
		Expect(err).To(HaveOccurred())
	})

	It("accepts an empty bag (zero chunks) with start_time == end_time", func() {
		b := &bagBuilder{}
		b.addConnection(0, "/topic", "std_msgs/Empty", "abc", "")

		meta, err := Inspect(context.Background(), b.build())
		Expect(err).ToNot(HaveOccurred())
		Expect(meta.ChunksInfo).To(BeEmpty())
		Expect(meta.StartTime).To(Equal(meta.EndTime))
	})

	It("loads connections and a time-sorted chunk index", func() {
		b := &bagBuilder{}
		b.addConnection(0, "/a", "std_msgs/Empty", "abc", "")
		b.addConnection(1, "/b", "std_msgs/Empty", "abc", "")

		// Added out of time order; Inspect must sort by StartTime.
		b.addChunkInfo(100, Time{Sec: 10}, Time{Sec: 11}, map[uint32]uint32{0: 3})
		b.addChunkInfo(0, Time{Sec: 1}, Time{Sec: 2}, map[uint32]uint32{0: 2, 1: 5})

		src := b.build()
		meta, err := Inspect(context.Background(), src)
		Expect(err).ToNot(HaveOccurred())

		Expect(meta.Connections).To(HaveLen(2))
		Expect(meta.ChunksInfo).To(HaveLen(2))

		Expect(meta.ChunksInfo[0].ChunkPosition).To(Equal(uint64(0)))
		Expect(meta.ChunksInfo[1].ChunkPosition).To(Equal(uint64(100)))

		Expect(meta.ChunksInfo[0].Idx).To(Equal(0))
		Expect(meta.ChunksInfo[1].Idx).To(Equal(1))

		Expect(meta.ChunksInfo[0].NextChunkPosition).To(Equal(uint64(100)))
		Expect(meta.ChunksInfo[1].NextChunkPosition).To(Equal(uint64(len(src.buf))))

		Expect(meta.StartTime).To(Equal(Time{Sec: 1}))
		Expect(meta.EndTime).To(Equal(Time{Sec: 11}))

		Expect(meta.TotalMessageCounts[0]).To(Equal(uint64(5)))
		Expect(meta.TotalMessageCounts[1]).To(Equal(uint64(5)))
	})

	It("accepts a chunk with count=0", func() {
		b := &bagBuilder{}
		b.addConnection(0, "/a", "std_msgs/Empty", "abc", "")
		b.addChunkInfo(0, Time{Sec: 1}, Time{Sec: 1}, map[uint32]uint32{})

		meta, err := Inspect(context.Background(), b.build())
		Expect(err).ToNot(HaveOccurred())
		Expect(meta.ChunksInfo).To(HaveLen(1))
		Expect(meta.ChunksInfo[0].Count).To(Equal(uint32(0)))
	})
})

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/mjpitz/rosbag/bagfile"
)

var _ = Describe("chunksOverlapping", func() {
	meta := &bagfile.BagMetadata{
		ChunksInfo: []*bagfile.ChunkInfo{
			{Idx: 0, ChunkPosition: 0, StartTime: bagfile.Time{Sec: 0}, EndTime: bagfile.Time{Sec: 10}},
			{Idx: 1, ChunkPosition: 100, StartTime: bagfile.Time{Sec: 10}, EndTime: bagfile.Time{Sec: 20}},
			{Idx: 2, ChunkPosition: 200, StartTime: bagfile.Time{Sec: 30}, EndTime: bagfile.Time{Sec: 40}},
		},
	}

	It("selects chunks overlapping the window, in chunk-sort order", func() {
		got := chunksOverlapping(meta, bagfile.Time{Sec: 5}, bagfile.Time{Sec: 15})
		Expect(got).To(HaveLen(2))
		Expect(got[0].Idx).To(Equal(0))
		Expect(got[1].Idx).To(Equal(1))
	})

	It("excludes chunks entirely outside the window", func() {
		got := chunksOverlapping(meta, bagfile.Time{Sec: 50}, bagfile.Time{Sec: 60})
		Expect(got).To(BeEmpty())
	})

	It("returns nil for nil metadata", func() {
		Expect(chunksOverlapping(nil, bagfile.Time{}, bagfile.Time{Sec: 1})).To(BeNil())
	})
})

var _ = Describe("runPrefetch", func() {
	It("returns immediately for an empty chunk list", func() {
		runPrefetch(context.Background(), nil, nil)
	})

	It("stops enqueuing once its context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		chunks := []*bagfile.ChunkInfo{
			{ChunkPosition: 0, NextChunkPosition: 8},
			{ChunkPosition: 8, NextChunkPosition: 16},
		}
		src := &blockingSource{buf: make([]byte, 16)}
		meta := &bagfile.BagMetadata{Connections: map[uint32]*bagfile.Connection{}}
		cache := bagfile.NewChunkCache(0)
		decoder := bagfile.NewChunkDecoder(src, meta, cache)

		done := make(chan struct{})
		go func() {
			runPrefetch(ctx, decoder, chunks)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			Fail("runPrefetch did not return promptly after cancellation")
		}
	})
})

// blockingSource is a bagfile.Source whose ReadAt returns no data and
// ctx's error (an error only once ctx is cancelled), used only to
// exercise runPrefetch's cancellation path without needing a valid bag
// file.
type blockingSource struct{ buf []byte }

func (b *blockingSource) Length(ctx context.Context) (int64, error) { return int64(len(b.buf)), nil }
func (b *blockingSource) ReadAt(ctx context.Context, offset, length int64) ([]byte, error) {
	return nil, ctx.Err()
}

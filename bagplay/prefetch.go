// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

import (
	"context"
	"sync"

	"github.com/mjpitz/rosbag/bagfile"
)

// prefetchConcurrency is the bounded number of chunk reads a single
// prefetch run executes concurrently.
const prefetchConcurrency = 2

// runPrefetch decodes each chunk in chunks through decoder, bounded to
// prefetchConcurrency concurrent reads. A cancelled ctx aborts both
// queued chunks (never started) and in-flight ones (DecodeChunk checks
// ctx at its own suspension points); chunks that complete before
// cancellation remain in the cache.
func runPrefetch(ctx context.Context, decoder *bagfile.ChunkDecoder, chunks []*bagfile.ChunkInfo) {
	if decoder == nil || len(chunks) == 0 {
		return
	}

	sem := make(chan struct{}, prefetchConcurrency)
	var wg sync.WaitGroup

	for _, ci := range chunks {
		select {
		case <-ctx.Done():
			prefetchCancelled.Inc()
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(ci *bagfile.ChunkInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := decoder.DecodeChunk(ctx, ci); err != nil && ctx.Err() == nil {
				prefetchErrors.Inc()
			}
		}(ci)
	}

	wg.Wait()
}

// chunksOverlapping returns meta's chunks whose [StartTime, EndTime]
// range overlaps [windowStart, windowEnd], in meta's chunk-sort order.
func chunksOverlapping(meta *bagfile.BagMetadata, windowStart, windowEnd bagfile.Time) []*bagfile.ChunkInfo {
	if meta == nil {
		return nil
	}

	var out []*bagfile.ChunkInfo
	for _, ci := range meta.ChunksInfo {
		if bagfile.Compare(ci.EndTime, windowStart) < 0 {
			continue
		}
		if bagfile.Compare(ci.StartTime, windowEnd) > 0 {
			continue
		}
		out = append(out, ci)
	}
	return out
}

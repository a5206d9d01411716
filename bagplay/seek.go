// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

import (
	"context"

	"github.com/mjpitz/rosbag/bagfile"
)

// prefetchGeneration identifies one triggered prefetch run. Holding the
// current generation lets triggerPrefetch cancel a still-running one
// before starting the next, giving seek its exhaust-map semantics: a
// newer seek's prefetch replaces an older, not-yet-finished one rather
// than racing it for cache slots. id is a monotonically increasing
// counter, used only to make log lines for successive generations
// distinguishable.
type prefetchGeneration struct {
	id     uint64
	cancel context.CancelFunc
}

// triggerPrefetch cancels the in-flight prefetch generation, if any, and
// starts a new one anchored at t. The new generation runs in its own
// goroutine so the orchestrator's command loop is never blocked on
// chunk I/O; p.prefetch is only ever read and written from that loop,
// so no additional synchronization is needed here.
func (p *Player) triggerPrefetch(t bagfile.Time) {
	if p.prefetch != nil {
		p.prefetch.cancel()
	}

	ctx, cancel := context.WithCancel(p.ctx)
	p.nextPrefetchGen++
	gen := &prefetchGeneration{id: p.nextPrefetchGen, cancel: cancel}
	p.prefetch = gen

	windowEnd := t
	if p.metadata != nil {
		candidate := bagfile.Add(t, p.options.PrefetchSeconds)
		if bagfile.Compare(candidate, p.metadata.EndTime) < 0 {
			windowEnd = candidate
		} else {
			windowEnd = p.metadata.EndTime
		}
	}

	chunks := chunksOverlapping(p.metadata, t, windowEnd)
	prefetchQueueDepth.Set(float64(len(chunks)))

	decoder := p.decoder
	p.Log.Debugf("bagplay: prefetch generation %d anchored at {%d,%d}, %d chunks", gen.id, t.Sec, t.Nsec, len(chunks))

	go func() {
		defer cancel()
		runPrefetch(ctx, decoder, chunks)
	}()
}

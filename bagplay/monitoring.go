// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	playerPlayingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rosbag_bagplay_playing",
		Help: "1 if a Player is currently playing, 0 if paused or idle.",
	})

	playerTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagplay_ticks_total",
		Help: "Count of playback clock ticks processed.",
	})

	playerSeeks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagplay_seeks_total",
		Help: "Count of seek requests processed.",
	})

	playerLoops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagplay_loops_total",
		Help: "Count of loop-at-end transitions.",
	})

	playerMessagesEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagplay_messages_emitted_total",
		Help: "Count of decoded messages emitted in tick/seek-preview batches.",
	})

	prefetchQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rosbag_bagplay_prefetch_queue_depth",
		Help: "Number of chunks selected by the most recently triggered prefetch.",
	})

	prefetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagplay_prefetch_errors_total",
		Help: "Count of chunk reads that failed during prefetch.",
	})

	prefetchCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagplay_prefetch_cancelled_total",
		Help: "Count of prefetch runs aborted before completion by a newer seek or destroy.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		playerPlayingGauge,
		playerTicks,
		playerSeeks,
		playerLoops,
		playerMessagesEmitted,
		prefetchQueueDepth,
		prefetchErrors,
		prefetchCancelled,
	)
}

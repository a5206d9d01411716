// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loadErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rosbag_bagfile_load_errors_total",
		Help: "Count of fatal errors encountered while loading a bag file, by kind.",
	}, []string{"kind"})

	schemaCompiles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagfile_schema_compiles_total",
		Help: "Count of message-definition schemas compiled.",
	})

	messageDecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagfile_message_decode_errors_total",
		Help: "Count of individual messages that failed to decode and were skipped.",
	})

	chunkCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagfile_chunk_cache_hits_total",
		Help: "Count of chunk reads served from cache.",
	})

	chunkCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagfile_chunk_cache_misses_total",
		Help: "Count of chunk reads that required fetching and decoding.",
	})

	chunkCacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagfile_chunk_cache_evictions_total",
		Help: "Count of cache entries evicted to stay within the byte budget.",
	})

	chunkCacheBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rosbag_bagfile_chunk_cache_bytes",
		Help: "Current number of bytes billed against the chunk cache budget.",
	})

	chunkReadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagfile_chunk_read_errors_total",
		Help: "Count of chunk reads that failed (decompression or index parse failure).",
	})

	chunkReadsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rosbag_bagfile_chunk_reads_cancelled_total",
		Help: "Count of chunk reads aborted via cancellation before completion.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		loadErrors,
		schemaCompiles,
		messageDecodeErrors,
		chunkCacheHits,
		chunkCacheMisses,
		chunkCacheEvictions,
		chunkCacheBytes,
		chunkReadErrors,
		chunkReadsCancelled,
	)
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// rosbag-info inspects a ROS bag v2.0 file's connections and chunk
// index, and can optionally play it back to the console at a chosen
// speed.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/mjpitz/rosbag/bagfile"
	"github.com/mjpitz/rosbag/bagplay"
	"github.com/mjpitz/rosbag/support/flagutil"
	"github.com/mjpitz/rosbag/support/logging"
)

var (
	play        = pflag.Bool("play", false, "play the bag back to the console instead of just printing its index")
	speed       = flagutil.Speed(bagplay.DefaultPlaybackSpeed)
	prefetch    = pflag.Float64("prefetch", bagplay.DefaultPrefetchSeconds, "prefetch window, in bag-time seconds")
	loop        = pflag.Bool("loop", bagplay.DefaultLoop, "loop playback at end-of-bag")
	cacheBytes  = pflag.Int64("cache-bytes", 0, "chunk cache byte budget (0 uses the package default)")
	metricsAddr = pflag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090) during playback")
	verbose     = pflag.Bool("v", false, "enable debug logging")
)

func main() {
	pflag.Var(&speed, "speed", "playback speed multiplier")
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rosbag-info [flags] <bag-file>")
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := logging.Zerolog{Logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()}

	registry := prometheus.NewRegistry()
	bagfile.RegisterMonitoring(registry)
	bagplay.RegisterMonitoring(registry)

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Errorf("metrics server exited: %s", err)
			}
		}()
		log.Infof("serving metrics on %s", *metricsAddr)
	}

	src, err := bagfile.NewFileSource(pflag.Arg(0))
	if err != nil {
		log.Errorf("opening bag file: %s", err)
		os.Exit(1)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt)
	go func() {
		<-sigC
		cancel()
	}()

	if *play {
		if err := runPlayback(ctx, log, src); err != nil {
			log.Errorf("playback: %s", err)
			os.Exit(1)
		}
		return
	}

	if err := printInfo(ctx, src); err != nil {
		log.Errorf("inspecting bag: %s", err)
		os.Exit(1)
	}
}

func printInfo(ctx context.Context, src bagfile.Source) error {
	meta, err := bagfile.Inspect(ctx, src)
	if err != nil {
		return err
	}

	fmt.Printf("chunks:      %d\n", len(meta.ChunksInfo))
	fmt.Printf("connections: %d\n", len(meta.Connections))
	fmt.Printf("duration:    %s\n", bagDuration(meta))
	fmt.Println()
	fmt.Println("topics:")

	for _, conn := range sortedConnections(meta.Connections) {
		fmt.Printf("  %-30s %-30s %8d msgs\n", conn.Topic, conn.MessageType, meta.TotalMessageCounts[conn.Conn])
	}

	return nil
}

func bagDuration(meta *bagfile.BagMetadata) time.Duration {
	startNs := int64(meta.StartTime.Sec)*1e9 + int64(meta.StartTime.Nsec)
	endNs := int64(meta.EndTime.Sec)*1e9 + int64(meta.EndTime.Nsec)
	return time.Duration(endNs - startNs)
}

func sortedConnections(conns map[uint32]*bagfile.Connection) []*bagfile.Connection {
	out := make([]*bagfile.Connection, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Topic > out[j].Topic; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// runPlayback drives a bagplay.Player against src, printing each emitted
// message batch to stdout until the process is interrupted. When not
// looping, playback pauses at end-of-bag and runPlayback keeps waiting;
// it does not return on its own.
func runPlayback(ctx context.Context, log logging.L, src bagfile.Source) error {
	p := bagplay.NewPlayer(log)
	p.CacheBudgetBytes = *cacheBytes
	defer p.Destroy()

	if err := p.LoadFile(ctx, src); err != nil {
		return err
	}

	p.UpdateOptions(bagplay.OptionsPatch{
		PlaybackSpeed:   floatPtr(speed.Value()),
		PrefetchSeconds: prefetch,
		Loop:            loop,
	})

	msgC, unsub := p.SubscribeMessages()
	defer unsub()

	p.Play()
	log.Infof("playing %s at %gx", pflag.Arg(0), speed.Value())

	for {
		select {
		case <-ctx.Done():
			return nil

		case batch := <-msgC:
			for _, m := range batch {
				fmt.Printf("[%d.%09d] %s\n", m.Time.Sec, m.Time.Nsec, m.Topic)
			}
		}
	}
}

func floatPtr(v float64) *float64 { return &v }

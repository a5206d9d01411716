// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

// Default option values.
//
// prefetch_seconds has a documented/implemented inconsistency in the
// system this package's design is drawn from: its public interface
// claims a default of 30 seconds, but the constructor that actually
// runs uses 10. This package treats 10 as authoritative, since that is
// the value playback actually used.
const (
	DefaultPrefetchSeconds = 10.0
	DefaultPlaybackSpeed   = 1.0
	DefaultLoop            = true
)

// Options holds the playback orchestrator's tunables.
type Options struct {
	// PrefetchSeconds is how far ahead of current_bag_time the
	// orchestrator keeps chunks decoded and cached.
	PrefetchSeconds float64
	// PlaybackSpeed scales elapsed wall-clock time into bag-clock time;
	// 1.0 is real-time, 2.0 is double speed, 0.5 is half speed.
	PlaybackSpeed float64
	// Loop, when true, restarts playback at start_time once
	// current_bag_time reaches end_time instead of pausing.
	Loop bool
}

// DefaultOptions returns the default Options.
func DefaultOptions() Options {
	return Options{
		PrefetchSeconds: DefaultPrefetchSeconds,
		PlaybackSpeed:   DefaultPlaybackSpeed,
		Loop:            DefaultLoop,
	}
}

// OptionsPatch is a partial update to Options: a nil field leaves the
// corresponding Options field unchanged.
type OptionsPatch struct {
	PrefetchSeconds *float64
	PlaybackSpeed   *float64
	Loop            *bool
}

// Apply returns o with every non-nil field of p merged in.
func (o Options) Apply(p OptionsPatch) Options {
	if p.PrefetchSeconds != nil {
		o.PrefetchSeconds = *p.PrefetchSeconds
	}
	if p.PlaybackSpeed != nil {
		o.PlaybackSpeed = *p.PlaybackSpeed
	}
	if p.Loop != nil {
		o.Loop = *p.Loop
	}
	return o
}

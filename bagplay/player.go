// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

import (
	"context"
	"time"

	"github.com/mjpitz/rosbag/bagfile"
	"github.com/mjpitz/rosbag/support/logging"
)

// tickInterval is the playback clock's tick cadence.
const tickInterval = 33 * time.Millisecond

// previousWindowSeconds is the fixed, unscaled lookback used to compute
// previous_bag_time each tick. It intentionally is not multiplied by
// playback_speed: at non-unit speeds the window length then no longer
// matches the clock's actual per-tick advance, which can duplicate or
// skip messages near the window edges. This reproduces a known
// characteristic of the system this design is drawn from rather than
// silently correcting it; a corrected variant would use
// previousWindowSeconds*playback_speed instead.
const previousWindowSeconds = 0.033

// defaultCacheBudgetBytes mirrors bagfile's own default so a Player
// constructed with NewPlayer gets a reasonably sized cache without the
// caller needing to know bagfile's internals.
const defaultCacheBudgetBytes = 50 * 1024 * 1024

// Player is the playback orchestrator: it owns a single goroutine that
// is the sole writer of current_bag_time, options and is_playing, and
// serializes every state transition through a command channel. Every
// exported method is safe to call from any goroutine.
type Player struct {
	Log logging.L

	// CacheBudgetBytes sets the ChunkCache byte budget used by
	// subsequently loaded files. Zero uses defaultCacheBudgetBytes. Must
	// be set before the first LoadFile call to take effect.
	CacheBudgetBytes int64

	ctx      context.Context
	cancel   context.CancelFunc
	doneC    chan struct{}
	commandC chan command

	// Fields below this point are owned exclusively by run(); nothing
	// else may read or write them.
	metadata        *bagfile.BagMetadata
	decoder         *bagfile.ChunkDecoder
	cache           *bagfile.ChunkCache
	options         Options
	currentBagTime  bagfile.Time
	isPlaying       bool
	wallStart       time.Time
	bagAnchor       bagfile.Time
	lastPrefetchSec float64
	prefetch        *prefetchGeneration
	nextPrefetchGen uint64

	subs *subscribers
}

// NewPlayer returns a Player with default options, ready to accept
// LoadFile. Its command-processing goroutine runs until Destroy is
// called.
func NewPlayer(log logging.L) *Player {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Player{
		Log:      logging.Must(log),
		ctx:      ctx,
		cancel:   cancel,
		doneC:    make(chan struct{}),
		commandC: make(chan command),
		options:  DefaultOptions(),
		cache:    bagfile.NewChunkCache(defaultCacheBudgetBytes),
		subs:     newSubscribers(),
	}

	go p.run()
	return p
}

// command is the sealed set of messages processed by Player.run.
type command interface{ isCommand() }

type cmdPlay struct{}
type cmdPause struct{}
type cmdSeek struct{ time bagfile.Time }
type cmdUpdateOptions struct{ patch OptionsPatch }
type cmdLoadFile struct {
	ctx    context.Context
	src    bagfile.Source
	resultC chan<- error
}
type cmdDestroy struct{}
type cmdSnapshot struct{ resultC chan<- State }

func (cmdPlay) isCommand()          {}
func (cmdPause) isCommand()         {}
func (cmdSeek) isCommand()          {}
func (cmdUpdateOptions) isCommand() {}
func (cmdLoadFile) isCommand()      {}
func (cmdDestroy) isCommand()       {}
func (cmdSnapshot) isCommand()      {}

// sendCommand issues cmd to the run loop, dropping it silently if the
// Player has been destroyed.
func (p *Player) sendCommand(cmd command) {
	select {
	case p.commandC <- cmd:
	case <-p.doneC:
	}
}

// LoadFile rebinds the active bag file, resetting all playback state.
// It blocks until the file's header and index have been read.
func (p *Player) LoadFile(ctx context.Context, src bagfile.Source) error {
	resultC := make(chan error, 1)
	p.sendCommand(cmdLoadFile{ctx: ctx, src: src, resultC: resultC})

	select {
	case err := <-resultC:
		return err
	case <-p.doneC:
		return context.Canceled
	}
}

// Play resumes (or starts) playback from current_bag_time.
func (p *Player) Play() { p.sendCommand(cmdPlay{}) }

// Pause halts the playback clock in place.
func (p *Player) Pause() { p.sendCommand(cmdPause{}) }

// Seek snaps current_bag_time to t, triggers a prefetch around it, and
// either resumes playback (if it was active) or emits a preview batch
// of already-cached messages just before t.
func (p *Player) Seek(t bagfile.Time) { p.sendCommand(cmdSeek{time: t}) }

// UpdateOptions merges patch onto the current options; it takes effect
// starting with the next tick.
func (p *Player) UpdateOptions(patch OptionsPatch) { p.sendCommand(cmdUpdateOptions{patch: patch}) }

// Snapshot returns the current combined state. Unlike SubscribeState,
// it does not require maintaining an open subscription.
func (p *Player) Snapshot() State {
	resultC := make(chan State, 1)
	p.sendCommand(cmdSnapshot{resultC: resultC})

	select {
	case s := <-resultC:
		return s
	case <-p.doneC:
		return State{}
	}
}

// Destroy permanently stops the Player: it pauses, cancels any
// in-flight prefetch, clears state, and terminates the command loop.
// Every method remains safe to call afterward; they become no-ops.
func (p *Player) Destroy() {
	p.sendCommand(cmdDestroy{})
	<-p.doneC
}

// SubscribeState returns a channel receiving the latest State on every
// change, and an unsubscribe function. The channel is buffered for one
// value and always holds the most recent publish, never a backlog.
func (p *Player) SubscribeState() (<-chan State, func()) { return p.subs.subscribeState() }

// SubscribeMessages returns a channel receiving each tick's or seek
// preview's decoded message batch, and an unsubscribe function.
func (p *Player) SubscribeMessages() (<-chan []bagfile.RosbagMessage, func()) {
	return p.subs.subscribeMessages()
}

// SubscribeMetadata returns a channel receiving the BagMetadata for
// each loaded file, and an unsubscribe function.
func (p *Player) SubscribeMetadata() (<-chan *bagfile.BagMetadata, func()) {
	return p.subs.subscribeMetadata()
}

// run is the Player's single owning goroutine: a tick timer and the
// command channel are the only suspension points, matching the
// single-threaded cooperative event loop the orchestrator is specified
// to behave as.
func (p *Player) run() {
	defer close(p.doneC)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return

		case cmd := <-p.commandC:
			if _, isDestroy := cmd.(cmdDestroy); isDestroy {
				p.handleDestroy()
				return
			}
			p.handleCommand(cmd)

		case <-ticker.C:
			if p.isPlaying {
				playerTicks.Inc()
				p.tick()
			}
		}
	}
}

func (p *Player) handleCommand(cmd command) {
	switch c := cmd.(type) {
	case cmdPlay:
		if !p.isPlaying {
			p.isPlaying = true
			p.wallStart = time.Now()
			p.bagAnchor = p.currentBagTime
			playerPlayingGauge.Set(1)
			p.publishState()
		}

	case cmdPause:
		if p.isPlaying {
			p.isPlaying = false
			playerPlayingGauge.Set(0)
			p.publishState()
		}

	case cmdSeek:
		playerSeeks.Inc()
		p.handleSeek(c.time)

	case cmdUpdateOptions:
		p.options = p.options.Apply(c.patch)
		p.publishState()

	case cmdLoadFile:
		p.handleLoadFile(c.ctx, c.src, c.resultC)

	case cmdSnapshot:
		c.resultC <- p.snapshot()
	}
}

func (p *Player) handleLoadFile(ctx context.Context, src bagfile.Source, resultC chan<- error) {
	p.resetPlaybackState()

	meta, err := bagfile.Inspect(ctx, src)
	if err != nil {
		resultC <- err
		return
	}

	budget := p.CacheBudgetBytes
	p.cache = bagfile.NewChunkCache(budget)
	p.decoder = bagfile.NewChunkDecoder(src, meta, p.cache)
	p.metadata = meta
	p.currentBagTime = meta.StartTime

	p.subs.publishMetadata(meta)
	p.triggerPrefetch(meta.StartTime)
	p.publishState()

	resultC <- nil
}

func (p *Player) handleSeek(t bagfile.Time) {
	wasPlaying := p.isPlaying
	p.isPlaying = false
	p.currentBagTime = t

	p.triggerPrefetch(t)

	if wasPlaying {
		p.isPlaying = true
		p.wallStart = time.Now()
		p.bagAnchor = t
		p.publishState()
		return
	}

	p.publishState()

	preview := p.gatherWindow(bagfile.Add(t, -previousWindowSeconds), t)
	if len(preview) > 0 {
		p.subs.publishMessages(preview)
		playerMessagesEmitted.Add(float64(len(preview)))
	}
}

func (p *Player) handleDestroy() {
	p.resetPlaybackState()
	p.cancel()
}

// resetPlaybackState implements the reset semantics shared by LoadFile
// and Destroy: pause, cancel prefetch, clear current_bag_time, clear
// cache, clear schemas (the latter implied by discarding the decoder,
// whose schema cache dies with it).
func (p *Player) resetPlaybackState() {
	p.isPlaying = false
	playerPlayingGauge.Set(0)

	if p.prefetch != nil {
		p.prefetch.cancel()
		p.prefetch = nil
	}

	p.metadata = nil
	p.decoder = nil
	p.cache = bagfile.NewChunkCache(p.CacheBudgetBytes)
	p.currentBagTime = bagfile.Time{}
	p.lastPrefetchSec = 0
}

func (p *Player) snapshot() State {
	return State{
		CurrentBagTime: p.currentBagTime,
		Metadata:       p.metadata,
		Options:        p.options,
		IsPlaying:      p.isPlaying,
	}
}

// tick runs once per 33ms timer tick while playing. It sets
// new_bag_time to bagAnchor plus elapsed wall-clock seconds times
// playback_speed, and previous_bag_time to bagAnchor plus elapsed minus
// previousWindowSeconds; that window is deliberately unscaled by
// playback_speed.
func (p *Player) tick() {
	elapsed := time.Since(p.wallStart).Seconds()
	newBagTime := bagfile.Add(p.bagAnchor, elapsed*p.options.PlaybackSpeed)
	previousBagTime := bagfile.Add(p.bagAnchor, elapsed-previousWindowSeconds)

	if p.metadata != nil && bagfile.Compare(newBagTime, p.metadata.EndTime) >= 0 {
		if p.options.Loop {
			playerLoops.Inc()
			p.currentBagTime = p.metadata.StartTime
			p.bagAnchor = p.metadata.StartTime
			p.wallStart = time.Now()
			p.triggerPrefetch(p.metadata.StartTime)
			p.publishState()
			return
		}

		p.isPlaying = false
		playerPlayingGauge.Set(0)
		p.currentBagTime = p.metadata.StartTime
		p.publishState()
		return
	}

	p.currentBagTime = newBagTime
	p.publishState()

	messages := p.gatherWindow(previousBagTime, newBagTime)
	if len(messages) > 0 {
		p.subs.publishMessages(messages)
		playerMessagesEmitted.Add(float64(len(messages)))
	}

	newTimeSec := float64(newBagTime.Sec) + float64(newBagTime.Nsec)/1e9
	if newTimeSec-p.lastPrefetchSec > p.options.PrefetchSeconds/2 {
		p.triggerPrefetch(newBagTime)
		p.lastPrefetchSec = newTimeSec
	}
}

// gatherWindow returns the cached messages across every chunk whose
// time range overlaps [start, end], in chunk-sort order, filtered to
// exactly that inclusive window. Chunks not yet in cache are skipped
// silently rather than triggering a synchronous fetch.
func (p *Player) gatherWindow(start, end bagfile.Time) []bagfile.RosbagMessage {
	if p.metadata == nil {
		return nil
	}

	var out []bagfile.RosbagMessage
	for _, ci := range chunksOverlapping(p.metadata, start, end) {
		entry, ok := p.cache.Get(ci.ChunkPosition)
		if !ok {
			continue
		}
		for _, m := range entry.Messages {
			if bagfile.Compare(m.Time, start) >= 0 && bagfile.Compare(m.Time, end) <= 0 {
				out = append(out, m)
			}
		}
	}
	return out
}

func (p *Player) publishState() {
	p.subs.publishState(p.snapshot())
}

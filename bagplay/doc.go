// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bagplay implements the playback orchestrator: a virtual
// bag-clock mapped onto wall-clock time, a prefetch window that keeps
// chunks decoded ahead of the clock, and seek/pause/resume/loop
// controls layered over a bagfile.ChunkDecoder and bagfile.ChunkCache.
//
// A Player owns a single goroutine that is the sole writer of its
// playback state (current bag time, options, play/pause); every public
// method communicates with that goroutine over a command channel.
// Callers observe state, decoded message batches and metadata through
// subscription channels rather than by reading fields directly.
package bagplay

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

import (
	"sync"

	"github.com/mjpitz/rosbag/bagfile"
)

// subscribers fans out State, message-batch and BagMetadata publishes
// to any number of subscriber channels. Each subscriber channel is
// buffered for exactly one value: a publish that finds the channel full
// drains the stale value and replaces it, so a slow subscriber always
// sees the latest state rather than an ever-growing backlog.
type subscribers struct {
	mu        sync.Mutex
	state     []chan State
	messages  []chan []bagfile.RosbagMessage
	metadata  []chan *bagfile.BagMetadata
}

func newSubscribers() *subscribers {
	return &subscribers{}
}

func (s *subscribers) subscribeState() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.mu.Lock()
	s.state = append(s.state, ch)
	s.mu.Unlock()
	return ch, func() { s.unsubscribeState(ch) }
}

func (s *subscribers) unsubscribeState(ch chan State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.state {
		if c == ch {
			s.state = append(s.state[:i], s.state[i+1:]...)
			return
		}
	}
}

func (s *subscribers) publishState(v State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.state {
		replaceLatest(ch, v)
	}
}

func (s *subscribers) subscribeMessages() (<-chan []bagfile.RosbagMessage, func()) {
	ch := make(chan []bagfile.RosbagMessage, 1)
	s.mu.Lock()
	s.messages = append(s.messages, ch)
	s.mu.Unlock()
	return ch, func() { s.unsubscribeMessages(ch) }
}

func (s *subscribers) unsubscribeMessages(ch chan []bagfile.RosbagMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.messages {
		if c == ch {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

func (s *subscribers) publishMessages(v []bagfile.RosbagMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.messages {
		replaceLatest(ch, v)
	}
}

func (s *subscribers) subscribeMetadata() (<-chan *bagfile.BagMetadata, func()) {
	ch := make(chan *bagfile.BagMetadata, 1)
	s.mu.Lock()
	s.metadata = append(s.metadata, ch)
	s.mu.Unlock()
	return ch, func() { s.unsubscribeMetadata(ch) }
}

func (s *subscribers) unsubscribeMetadata(ch chan *bagfile.BagMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.metadata {
		if c == ch {
			s.metadata = append(s.metadata[:i], s.metadata[i+1:]...)
			return
		}
	}
}

func (s *subscribers) publishMetadata(v *bagfile.BagMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.metadata {
		replaceLatest(ch, v)
	}
}

// replaceLatest sends v on ch, non-blockingly discarding any stale
// buffered value first so the channel never holds more than the single
// most recent publish.
func replaceLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- v:
	default:
	}
}

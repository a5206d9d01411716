// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

import "github.com/mjpitz/rosbag/bagfile"

// State is a combined snapshot of the orchestrator's observable state,
// published once per tick (after current_bag_time updates) and on every
// command that changes it.
type State struct {
	CurrentBagTime bagfile.Time
	Metadata       *bagfile.BagMetadata
	Options        Options
	IsPlaying      bool
}

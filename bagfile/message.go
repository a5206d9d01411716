// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

// RosbagMessage is a single decoded message: its topic, its recorded
// time, and its decoded field values keyed by field name.
//
// Data's values are one of: a primitive Go value (bool, int8, uint8,
// int16, uint16, int32, uint32, int64, uint64, float32, float64, string,
// Time), a string (for a constant field), []interface{} (for an array
// field), or map[string]interface{} (for a nested-type field). A "json"
// field is never decoded and has no key in Data.
type RosbagMessage struct {
	Topic string
	Time  Time
	Data  map[string]interface{}
}

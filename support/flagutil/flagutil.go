// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package flagutil provides pflag.Value implementations for the playback
// option types that cmd/rosbag-info exposes as command-line flags.
package flagutil

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Speed is a pflag.Value that parses and stores a playback speed
// multiplier, rejecting non-positive values.
type Speed float64

var _ pflag.Value = (*Speed)(nil)

func (s *Speed) String() string { return strconv.FormatFloat(float64(*s), 'g', -1, 64) }

// Set implements pflag.Value.
func (s *Speed) Set(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid speed %q", v)
	}
	if f <= 0 {
		return errors.Errorf("speed must be positive, got %v", f)
	}
	*s = Speed(f)
	return nil
}

// Type implements pflag.Value.
func (s *Speed) Type() string { return "speed" }

// Value returns the speed multiplier held by this flag.
func (s Speed) Value() float64 { return float64(s) }

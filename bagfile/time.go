// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"bytes"
	"math"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Time is a ROS bag timestamp: seconds plus nanoseconds since the epoch.
// Nsec is always normalized to [0, 1e9).
//
// The wire layout ("sec:u32 LE | nsec:u32 LE") is fixed, so it is decoded
// with struc rather than by hand.
type Time struct {
	Sec  uint32 `struc:",little"`
	Nsec uint32 `struc:",little"`
}

const nsPerSec = 1e9

// readTime decodes a Time from the next 8 bytes of b.
func readTime(b []byte) (Time, error) {
	if len(b) < 8 {
		return Time{}, errors.Wrap(ErrTruncatedHeader, "time value")
	}
	var t Time
	if err := struc.Unpack(bytes.NewReader(b[:8]), &t); err != nil {
		return Time{}, errors.Wrap(err, "decoding time")
	}
	return t, nil
}

// Compare returns a signed value comparing a and b: negative if a < b,
// zero if a == b, positive if a > b. Comparison is by Sec first, then
// Nsec, giving a total order.
func Compare(a, b Time) int {
	if a.Sec != b.Sec {
		if a.Sec < b.Sec {
			return -1
		}
		return 1
	}
	if a.Nsec != b.Nsec {
		if a.Nsec < b.Nsec {
			return -1
		}
		return 1
	}
	return 0
}

// Add returns t offset by s seconds, where s may be fractional and/or
// negative. The fractional part of s is converted to nanoseconds and
// added to t.Nsec with Euclidean carry into the seconds field, so that
// Nsec always lands in [0, 1e9) even for negative offsets.
func Add(t Time, s float64) Time {
	whole := math.Floor(s)
	frac := s - whole

	fracNs := int64(math.Floor(frac * nsPerSec))

	totalNs := int64(t.Nsec) + fracNs
	carry := floorDiv(totalNs, nsPerSec)
	nsec := totalNs - carry*nsPerSec

	sec := int64(t.Sec) + int64(whole) + carry

	return Time{
		Sec:  uint32(sec),
		Nsec: uint32(nsec),
	}
}

// floorDiv is integer division that rounds toward negative infinity, the
// carry rule Add needs to keep Nsec normalized for negative offsets.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

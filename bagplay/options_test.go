// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagplay

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

var _ = Describe("Options", func() {
	It("defaults to prefetch=10, speed=1.0, loop=true", func() {
		o := DefaultOptions()
		Expect(o.PrefetchSeconds).To(Equal(10.0))
		Expect(o.PlaybackSpeed).To(Equal(1.0))
		Expect(o.Loop).To(BeTrue())
	})

	It("merges only the non-nil fields of a patch", func() {
		o := DefaultOptions()
		got := o.Apply(OptionsPatch{PlaybackSpeed: floatPtr(2.0)})

		Expect(got.PlaybackSpeed).To(Equal(2.0))
		Expect(got.PrefetchSeconds).To(Equal(o.PrefetchSeconds))
		Expect(got.Loop).To(Equal(o.Loop))
	})

	It("leaves Options unchanged for an empty patch", func() {
		o := DefaultOptions()
		Expect(o.Apply(OptionsPatch{})).To(Equal(o))
	})

	It("applies every field when all are set", func() {
		o := DefaultOptions()
		got := o.Apply(OptionsPatch{
			PrefetchSeconds: floatPtr(5),
			PlaybackSpeed:   floatPtr(0.5),
			Loop:            boolPtr(false),
		})
		Expect(got).To(Equal(Options{PrefetchSeconds: 5, PlaybackSpeed: 0.5, Loop: false}))
	})
})

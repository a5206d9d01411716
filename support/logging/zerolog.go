// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Zerolog adapts a zerolog.Logger to the L interface.
//
// This is the concrete logger that cmd/rosbag-info wires up; the rest of
// the module only ever depends on the generic L interface.
type Zerolog struct {
	zerolog.Logger
}

var _ L = Zerolog{}

func (z Zerolog) Error(args ...interface{}) { z.Logger.Error().Msg(fmtArgs(args)) }
func (z Zerolog) Warn(args ...interface{})  { z.Logger.Warn().Msg(fmtArgs(args)) }
func (z Zerolog) Info(args ...interface{})  { z.Logger.Info().Msg(fmtArgs(args)) }
func (z Zerolog) Debug(args ...interface{}) { z.Logger.Debug().Msg(fmtArgs(args)) }

func (z Zerolog) Errorf(format string, args ...interface{}) { z.Logger.Error().Msgf(format, args...) }
func (z Zerolog) Warnf(format string, args ...interface{})  { z.Logger.Warn().Msgf(format, args...) }
func (z Zerolog) Infof(format string, args ...interface{})  { z.Logger.Info().Msgf(format, args...) }
func (z Zerolog) Debugf(format string, args ...interface{}) { z.Logger.Debug().Msgf(format, args...) }

func fmtArgs(args []interface{}) string {
	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(args...)
}

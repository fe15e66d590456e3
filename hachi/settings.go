/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-hachi.
	go-hachi is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-hachi is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-hachi. If not, see <http://www.gnu.org/licenses/>.
*/

package hachi

import "fmt"

// KeyPriority selects which key LD VX,K stores when several keys are down.
type KeyPriority int

const (
	// HighestKey picks the highest-numbered key that is down.
	HighestKey KeyPriority = iota
	// LowestKey picks the lowest-numbered key that is down.
	LowestKey
)

// WrapMode selects how sprite pixels that run past the screen edges wrap.
type WrapMode int

const (
	// WrapRow wraps each axis on its own: the pixel lands at
	// x%Width + (y%Height)*Width. Pixels past the right edge come back on
	// the left of the same row, pixels past the bottom on the top row.
	WrapRow WrapMode = iota
	// WrapLinear computes x + y*Width and takes the whole index modulo
	// ScreenSize, so pixels past the right edge continue on the next row.
	WrapLinear
)

// Settings holds the configuration parameters for a Chip8 instance.
type Settings struct {
	// Seed for the RND instruction. 0 seeds from the clock when the instance
	// is created.
	Seed int64
	// Tie-break for LD VX,K when multiple keys are held.
	KeyPriority KeyPriority
	// Sprite wrap-around behaviour.
	Wrap WrapMode
	// ShiftQuirk makes SHR/SHL read VY instead of VX (COSMAC VIP behaviour).
	ShiftQuirk bool
	// IndexQuirk leaves I untouched after LD [I],VX and LD VX,[I].
	IndexQuirk bool
	// FrameTimers stops Step from decrementing the timers. The host is then
	// expected to call TickTimers at TimerRate.
	FrameTimers bool
	// Instructions per second and timer ticks per second. Only the Runner
	// looks at these, the interpreter itself has no notion of time.
	ClockRate int
	TimerRate int
}

// Validate validates the settings.
// Returns an error when the settings aren't valid.
func (s *Settings) Validate() error {
	if s.KeyPriority != HighestKey && s.KeyPriority != LowestKey {
		return fmt.Errorf("invalid key priority %v", s.KeyPriority)
	}
	if s.Wrap != WrapRow && s.Wrap != WrapLinear {
		return fmt.Errorf("invalid wrap mode %v", s.Wrap)
	}
	if s.ClockRate <= 0 {
		return fmt.Errorf("ClockRate must be > 0, got %v", s.ClockRate)
	}
	if s.TimerRate <= 0 {
		return fmt.Errorf("TimerRate must be > 0, got %v", s.TimerRate)
	}
	if s.ClockRate < s.TimerRate {
		return fmt.Errorf("ClockRate (%v) must be >= TimerRate (%v)",
			s.ClockRate, s.TimerRate)
	}
	return nil
}

// DefaultSettings mimick the original CHIP-8 implementation.
var DefaultSettings = &Settings{
	KeyPriority: HighestKey,
	Wrap:        WrapRow,
	ClockRate:   500,
	TimerRate:   60,
}

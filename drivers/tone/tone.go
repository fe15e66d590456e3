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

// Package tone synthesizes the CHIP-8 beep: a short square wave, played
// through oto or rendered into sample buffers.
package tone

import (
	"encoding/binary"
	"math"
	"sync"
	"time"
)

// Defaults of the beep.
const (
	SampleRate = 44100
	Frequency  = 440
	Duration   = 100 * time.Millisecond
	Volume     = 0.25
)

// A Generator produces a square wave for a fixed time after every Trigger
// and silence otherwise. It is safe to Trigger from the emulation goroutine
// while the audio goroutine reads.
type Generator struct {
	sampleRate int
	halfPeriod int
	length     int
	volume     float32

	mu        sync.Mutex
	remaining int
	phase     int
}

// NewGenerator creates a generator for the given sample rate with the default
// frequency, duration and volume.
func NewGenerator(sampleRate int) *Generator {
	return &Generator{
		sampleRate: sampleRate,
		halfPeriod: max(1, sampleRate/(2*Frequency)),
		length:     int(time.Duration(sampleRate) * Duration / time.Second),
		volume:     Volume,
	}
}

// SampleRate returns the sample rate the generator was created for.
func (g *Generator) SampleRate() int { return g.sampleRate }

// Length returns the number of samples of one beep.
func (g *Generator) Length() int { return g.length }

// Trigger starts a beep, restarting it if one is already playing.
func (g *Generator) Trigger() {
	g.mu.Lock()
	g.remaining = g.length
	g.phase = 0
	g.mu.Unlock()
}

// Active returns true while a beep is playing.
func (g *Generator) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remaining > 0
}

// Fill writes the next len(samples) mono samples in [-1, 1].
func (g *Generator) Fill(samples []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range samples {
		if g.remaining == 0 {
			samples[i] = 0
			continue
		}
		if (g.phase/g.halfPeriod)%2 == 0 {
			samples[i] = g.volume
		} else {
			samples[i] = -g.volume
		}
		g.phase++
		g.remaining--
	}
}

// Read implements io.Reader with float32 little endian mono samples, the
// format the Player opens oto with. It never returns an error.
func (g *Generator) Read(p []byte) (int, error) {
	n := len(p) / 4
	samples := make([]float32, n)
	g.Fill(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	return 4 * n, nil
}

// Render returns the samples of one complete beep.
func Render(sampleRate int) []float32 {
	g := NewGenerator(sampleRate)
	g.Trigger()
	samples := make([]float32, g.length)
	g.Fill(samples)
	return samples
}

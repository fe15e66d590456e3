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

// Package wavrec records the beeps of a session into a WAV file.
//
// A Recorder wraps another driver and forwards every call to it. Emulated
// time is measured in cycles (one OnUpdate each) and converted to samples
// with the interpreter's clock rate, so the recording does not depend on
// how fast the host actually ran. The beep positions are buffered in memory
// and the file is written on Close.
package wavrec

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Francesco149/go-hachi/v2/drivers/tone"
	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// A Recorder is a driver decorator that records beeps.
type Recorder struct {
	hachi.Driver

	filename   string
	sampleRate int
	clockRate  int

	cycles uint64
	beeps  []uint64 // cycle of every beep
}

// New wraps d, the recording is written to filename on Close.
func New(d hachi.Driver, filename string) *Recorder {
	if d == nil {
		d = &hachi.NullDriver{}
	}
	return &Recorder{
		Driver:     d,
		filename:   filename,
		sampleRate: tone.SampleRate,
	}
}

func (r *Recorder) OnInit(c *hachi.Chip8) error {
	r.clockRate = c.Settings().ClockRate
	return r.Driver.OnInit(c)
}

func (r *Recorder) OnUpdate(c *hachi.Chip8) error {
	r.cycles++
	return r.Driver.OnUpdate(c)
}

func (r *Recorder) Beep() {
	r.beeps = append(r.beeps, r.cycles)
	r.Driver.Beep()
}

// Draw renders through the wrapped driver when it can draw on demand.
func (r *Recorder) Draw(c *hachi.Chip8) error {
	if d, ok := r.Driver.(interface{ Draw(c *hachi.Chip8) error }); ok {
		return d.Draw(c)
	}
	return nil
}

// Loop hands the loop to the wrapped driver when it owns one.
func (r *Recorder) Loop(ctx context.Context, runner *hachi.Runner) error {
	if l, ok := r.Driver.(hachi.Looper); ok {
		return l.Loop(ctx, runner)
	}
	return runner.Pace(ctx)
}

func (r *Recorder) GetData(key string) interface{} {
	switch key {
	case "wav_beeps":
		return len(r.beeps)
	case "wav_file":
		return r.filename
	}
	return r.Driver.GetData(key)
}

// Samples renders the recording so far as mono samples in [-1, 1].
func (r *Recorder) Samples() []float32 {
	clock := r.clockRate
	if clock <= 0 {
		clock = hachi.DefaultSettings.ClockRate
	}
	toSample := func(cycle uint64) int {
		return int(cycle * uint64(r.sampleRate) / uint64(clock))
	}

	beep := tone.Render(r.sampleRate)
	samples := make([]float32, toSample(r.cycles))
	for _, cycle := range r.beeps {
		start := toSample(cycle)
		end := start + len(beep)
		if end > len(samples) {
			// the last beep rings past the end of the session
			samples = append(samples, make([]float32, end-len(samples))...)
		}
		copy(samples[start:end], beep)
	}
	return samples
}

// Encode writes the recording as a 16-bit mono WAV stream.
func (r *Recorder) Encode(w io.WriteSeeker) error {
	samples := r.Samples()
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(w, r.sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: r.sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavrec: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavrec: %w", err)
	}
	return nil
}

// Close writes the file and closes the wrapped driver.
func (r *Recorder) Close() (rerr error) {
	defer func() {
		if err := r.Driver.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()

	f, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("wavrec: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavrec: %w", err)
		}
	}()

	return r.Encode(f)
}

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

package tone

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	ctxOnce sync.Once
	ctx     *oto.Context
	ctxRate int
	ctxErr  error
)

func audioContext(sampleRate int) (*oto.Context, error) {
	ctxOnce.Do(func() {
		ctxRate = sampleRate
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		}
		var ready chan struct{}
		ctx, ready, ctxErr = oto.NewContext(op)
		if ctxErr == nil {
			<-ready
		}
	})
	return ctx, ctxErr
}

// A Player plays the beep on the default audio device. The player streams
// silence between beeps so a Beep starts without setup latency.
type Player struct {
	gen    *Generator
	player *oto.Player

	mu     sync.Mutex
	closed bool
}

// NewPlayer opens the audio device. All players share one oto context, the
// first call decides its sample rate.
func NewPlayer(sampleRate int) (*Player, error) {
	c, err := audioContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}

	gen := NewGenerator(ctxRate)
	p := &Player{gen: gen, player: c.NewPlayer(gen)}
	p.player.Play()
	return p, nil
}

// Beep starts a beep.
func (p *Player) Beep() { p.gen.Trigger() }

// Close stops playback.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.player.Close()
}

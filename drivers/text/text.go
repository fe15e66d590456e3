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

// Package text implements a driver that draws the screen with unicode half
// blocks on a plain terminal.
//
// When stdin is a terminal it is switched to raw mode and read for keys
// (the host.Keys layout), Escape or Ctrl+C quit. Terminals only report key
// presses, so keys are released automatically after a short hold. When
// stdin is not a terminal the driver only renders, which makes it usable
// for headless runs.
//
// The output writer can be replaced with SetDriverData("output", w) before
// the runner is created.
package text

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Francesco149/go-hachi/v2/drivers/host"
	"github.com/Francesco149/go-hachi/v2/hachi"
	"golang.org/x/term"
)

const (
	keyHold = 150 * time.Millisecond

	keyCtrlC  = 0x03
	keyEscape = 0x1B

	ansiHome       = "\x1b[H"
	ansiClear      = "\x1b[2J"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
)

// A Driver renders to a terminal or any other writer.
type Driver struct {
	out   io.Writer
	ansi  bool
	beeps int

	fd       int
	oldState *term.State
	input    chan byte
	stop     chan struct{}
	held     map[int]time.Time
	quit     bool

	dirty bool
}

// New creates a text driver writing to stdout.
func New() *Driver {
	return &Driver{
		out:  os.Stdout,
		fd:   -1,
		held: make(map[int]time.Time),
	}
}

// Render draws the screen with two pixel rows per line of text.
func Render(screen *[hachi.ScreenSize]bool) string {
	var sb strings.Builder
	sb.Grow(hachi.Height / 2 * (hachi.Width*3 + 1))

	for y := 0; y < hachi.Height; y += 2 {
		for x := 0; x < hachi.Width; x++ {
			top := screen[x+y*hachi.Width]
			bottom := screen[x+(y+1)*hachi.Width]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Draw writes the current screen to the output.
func (d *Driver) Draw(c *hachi.Chip8) error {
	frame := Render(&c.Screen)
	if d.ansi {
		frame = ansiHome + frame
	}
	_, err := io.WriteString(d.out, frame)
	d.dirty = false
	return err
}

// press handles one byte read from the terminal.
func (d *Driver) press(c *hachi.Chip8, b byte) {
	if b == keyCtrlC || b == keyEscape {
		d.quit = true
		return
	}
	key, ok := host.KeyFor(rune(b))
	if !ok {
		return
	}
	c.SetKey(key, true)
	d.held[key] = time.Now()
}

func (d *Driver) release(c *hachi.Chip8, now time.Time) {
	for key, t := range d.held {
		if now.Sub(t) > keyHold {
			c.SetKey(key, false)
			delete(d.held, key)
		}
	}
}

// readInput forwards bytes read from in until Close. When in supports
// deadlines the read wakes up every keyHold to notice Close. Otherwise the
// goroutine stays blocked in Read until the next byte or process exit.
func (d *Driver) readInput(in *os.File, stop <-chan struct{}) {
	polled := in.SetReadDeadline(time.Now().Add(keyHold)) == nil
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if polled && errors.Is(err, os.ErrDeadlineExceeded) {
			select {
			case <-stop:
				return
			default:
			}
			_ = in.SetReadDeadline(time.Now().Add(keyHold))
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		select {
		case d.input <- buf[0]:
		case <-stop:
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (d *Driver) OnInit(c *hachi.Chip8) error {
	if f, ok := d.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		d.ansi = true
		if w, h, err := term.GetSize(int(f.Fd())); err == nil &&
			(w < hachi.Width || h < hachi.Height/2) {
			return fmt.Errorf("terminal is %vx%v, at least %vx%v is needed",
				w, h, hachi.Width, hachi.Height/2)
		}
		_, _ = io.WriteString(d.out, ansiClear+ansiHideCursor)
	}

	fd := int(os.Stdin.Fd())
	if d.ansi && term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("setting raw mode: %w", err)
		}
		d.fd = fd
		d.oldState = state
		d.input = make(chan byte, 16)
		d.stop = make(chan struct{})
		go d.readInput(os.Stdin, d.stop)
	}
	return nil
}

func (d *Driver) Cls() {}

func (d *Driver) OnUpdate(c *hachi.Chip8) error {
	if d.input != nil {
	drain:
		for {
			select {
			case b := <-d.input:
				d.press(c, b)
			default:
				break drain
			}
		}
	}
	d.release(c, time.Now())

	if d.quit {
		return hachi.ErrQuit
	}
	return nil
}

func (d *Driver) UpdateScreen(c *hachi.Chip8) { d.dirty = true }

func (d *Driver) Beep() {
	d.beeps++
	if d.ansi {
		_, _ = io.WriteString(d.out, "\a")
	}
}

// Loop paces frames like Runner.Run would and draws the screen at most once
// per frame.
func (d *Driver) Loop(ctx context.Context, r *hachi.Runner) error {
	period := time.Second / time.Duration(r.Chip8().Settings().TimerRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Frame(); err != nil {
				return err
			}
			if d.dirty {
				if err := d.Draw(r.Chip8()); err != nil {
					return err
				}
			}
		}
	}
}

func (d *Driver) GetData(key string) interface{} {
	switch key {
	case "beeps":
		return d.beeps
	case "dirty":
		return d.dirty
	}
	return nil
}

func (d *Driver) SetData(key string, value interface{}) error {
	if key == "output" {
		w, ok := value.(io.Writer)
		if !ok {
			return fmt.Errorf("invalid type %T for output", value)
		}
		d.out = w
		return nil
	}
	return fmt.Errorf("unknown data key '%s'", key)
}

func (d *Driver) Close() error {
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	if d.ansi {
		_, _ = io.WriteString(d.out, ansiShowCursor)
	}
	if d.oldState != nil {
		err := term.Restore(d.fd, d.oldState)
		d.oldState = nil
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func init() {
	err := hachi.RegisterDriver("text", func() hachi.Driver { return New() })
	if err != nil {
		panic(err)
	}
}

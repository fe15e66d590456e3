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

// Package ebiten implements a windowed driver on top of ebiten.
//
// The driver owns the main loop: ebiten calls Update at the timer rate and
// every Update runs one frame of the interpreter. The window shows the
// screen with the gradient tint of the original SDL host, F12 toggles a
// machine state overlay and Escape quits. Beeps go through the tone package
// when an audio device is available, GetData("audio") reports whether it is.
//
// The keypad binding is a [16]ebiten.Key indexed by CHIP-8 key and can be
// replaced with SetDriverData("key_map", myKeys).
package ebiten

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/Francesco149/go-hachi/v2/drivers/host"
	"github.com/Francesco149/go-hachi/v2/drivers/tone"
	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Window geometry of the original host.
const (
	Scale        = 20
	WindowWidth  = hachi.Width * Scale
	WindowHeight = hachi.Height * Scale
	Title        = "CHIP-8 Emulator"
)

// DefaultKeys is the keyboard binding of every CHIP-8 key, see host.Keys.
var DefaultKeys = [hachi.KeyCount]ebiten.Key{
	ebiten.KeyX, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyA,
	ebiten.KeyS, ebiten.KeyD, ebiten.KeyZ, ebiten.KeyC,
	ebiten.KeyDigit4, ebiten.KeyR, ebiten.KeyF, ebiten.KeyV,
}

var overlayColor = color.RGBA{0, 220, 90, 255}

// A Driver renders into an ebiten window.
type Driver struct {
	keys      [hachi.KeyCount]ebiten.Key
	pixels    []byte
	img       *ebiten.Image
	showState bool
	muted     bool
	player    *tone.Player

	ctx context.Context
	r   *hachi.Runner
	err error
}

// New creates an ebiten driver.
func New() *Driver {
	return &Driver{
		keys:   DefaultKeys,
		pixels: make([]byte, 4*hachi.ScreenSize),
	}
}

func (d *Driver) OnInit(c *hachi.Chip8) error {
	host.RGBA(&c.Screen, d.pixels)
	if d.muted {
		return nil
	}
	// no audio device is not fatal, the game runs silent
	p, err := tone.NewPlayer(tone.SampleRate)
	if err == nil {
		d.player = p
	}
	return nil
}

func (d *Driver) Cls() {}

// OnUpdate is called on every cycle, the keypad is sampled once per frame in
// Update instead.
func (d *Driver) OnUpdate(c *hachi.Chip8) error { return nil }

func (d *Driver) UpdateScreen(c *hachi.Chip8) {
	host.RGBA(&c.Screen, d.pixels)
}

func (d *Driver) Beep() {
	if d.player != nil {
		d.player.Beep()
	}
}

func (d *Driver) GetData(key string) interface{} {
	switch key {
	case "audio":
		return d.player != nil
	case "key_map":
		return d.keys
	}
	return nil
}

func (d *Driver) SetData(key string, value interface{}) error {
	switch key {
	case "key_map":
		keys, ok := value.([hachi.KeyCount]ebiten.Key)
		if !ok {
			return fmt.Errorf("invalid type %T for key_map", value)
		}
		d.keys = keys
		return nil
	case "mute":
		muted, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid type %T for mute", value)
		}
		d.muted = muted
		return nil
	case "show_state":
		show, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid type %T for show_state", value)
		}
		d.showState = show
		return nil
	}
	return fmt.Errorf("unknown data key '%s'", key)
}

func (d *Driver) Close() error {
	if d.player != nil {
		return d.player.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

// Loop opens the window and runs the game until it is closed.
func (d *Driver) Loop(ctx context.Context, r *hachi.Runner) error {
	d.ctx = ctx
	d.r = r

	ebiten.SetWindowSize(WindowWidth, WindowHeight)
	ebiten.SetWindowTitle(Title)
	ebiten.SetTPS(r.Chip8().Settings().TimerRate)

	if err := ebiten.RunGame(d); err != nil {
		return err
	}
	if d.err != nil {
		return d.err
	}
	return hachi.ErrQuit
}

// Update implements ebiten.Game.
func (d *Driver) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if err := d.ctx.Err(); err != nil {
		d.err = err
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		d.showState = !d.showState
	}

	c := d.r.Chip8()
	for k, key := range d.keys {
		c.SetKey(k, ebiten.IsKeyPressed(key))
	}

	if err := d.r.Frame(); err != nil {
		if !errors.Is(err, hachi.ErrQuit) {
			d.err = err
		}
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (d *Driver) Draw(screen *ebiten.Image) {
	if d.img == nil {
		d.img = ebiten.NewImage(hachi.Width, hachi.Height)
	}
	d.img.WritePixels(d.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(Scale, Scale)
	screen.DrawImage(d.img, op)

	if d.showState && d.r != nil {
		for i, line := range stateLines(d.r.Chip8()) {
			text.Draw(screen, line, basicfont.Face7x13, 6, 16+i*14, overlayColor)
		}
	}
}

// Layout implements ebiten.Game.
func (d *Driver) Layout(_, _ int) (int, int) {
	return WindowWidth, WindowHeight
}

// stateLines formats the machine state shown by the overlay.
func stateLines(c *hachi.Chip8) []string {
	return []string{
		fmt.Sprintf("PC %03X  I %03X  SP %2d  DT %02X  ST %02X",
			c.PC, c.I, c.SP, c.DT, c.ST),
		fmt.Sprintf("V % 02X", c.V),
		fmt.Sprintf("%-16s %s", c.Last(), c.Last().Op),
	}
}

// -----------------------------------------------------------------------------

func init() {
	err := hachi.RegisterDriver("ebiten", func() hachi.Driver { return New() })
	if err != nil {
		panic(err)
	}
}

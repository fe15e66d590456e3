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

// Package termloop implements a driver for termloop.
//
// The driver owns the main loop: Runner.Run starts the termloop game, which
// runs one frame of the interpreter on every draw. It shows the current
// machine state in real time next to the screen. termloop only exits on its
// end key (Ctrl+C); a fatal error halts the interpreter and is shown on the
// status line until then.
//
// Key mappings can be modified through SetDriverData("key_map", myMap) and
// SetDriverData("rune_map", myRunes), where myMap is a map[termloop.Key]int
// and myRunes a map[rune]int with CHIP-8 keys (hachi.Key0...hachi.KeyF) as
// values.
package termloop

import (
	"context"
	"fmt"
	"time"

	"github.com/Francesco149/go-hachi/v2/drivers/host"
	"github.com/Francesco149/go-hachi/v2/hachi"
	tl "github.com/JoelOtter/termloop"
)

// termbox only reports key down events, keys are released automatically
// after this long.
const keyHold = 100 * time.Millisecond

// A Driver is a terminal-based driver that uses the termloop library.
// It shows the current emulator state in real time and the screen.
type Driver struct {
	g                 *tl.Game
	registers         *tl.Text
	pointersAndTimers *tl.Text
	devices           *tl.Text
	status            *tl.Text
	stack             []*tl.Text
	syscalls          [10]*tl.Text
	screen            [hachi.Width][hachi.Height]*tl.Rectangle
	lastScreen        [hachi.ScreenSize]bool
	keyMap            map[tl.Key]int
	runeMap           map[rune]int
	held              map[int]time.Time
}

// New creates a termloop driver.
func New() *Driver {
	return &Driver{
		keyMap:  DefaultKeyMap(),
		runeMap: DefaultRuneMap(),
		held:    make(map[int]time.Time),
	}
}

// DefaultKeyMap returns the special key bindings: arrows and enter for the
// usual 2/4/6/8/5 directional layout.
func DefaultKeyMap() map[tl.Key]int {
	return map[tl.Key]int{
		tl.KeyArrowDown:  hachi.Key8,
		tl.KeyArrowLeft:  hachi.Key4,
		tl.KeyArrowRight: hachi.Key6,
		tl.KeyArrowUp:    hachi.Key2,
		tl.KeyEnter:      hachi.Key5,
	}
}

// DefaultRuneMap returns the keyboard block layout of host.Keys.
func DefaultRuneMap() map[rune]int {
	m := make(map[rune]int, hachi.KeyCount)
	for k, r := range host.Keys {
		m[r] = k
	}
	return m
}

func (d *Driver) printSyscall(s string) {
	for i := len(d.syscalls) - 1; i > 0; i-- {
		d.syscalls[i].SetText(d.syscalls[i-1].Text())
	}
	d.syscalls[0].SetText(s)
}

// press marks a key as held, key is -1 when the event isn't mapped.
func (d *Driver) press(ev tl.Event) int {
	if ev.Type != tl.EventKey {
		return -1
	}
	key, ok := d.runeMap[ev.Ch]
	if !ok || ev.Ch == 0 {
		key, ok = d.keyMap[ev.Key]
	}
	if !ok {
		return -1
	}
	d.held[key] = time.Now()
	return key
}

// -----------------------------------------------------------------------------

// a wrapper entity to run the emulator on every frame, Tick is only called
// on input so the work happens in Draw
type frameEntity struct {
	ctx context.Context
	r   *hachi.Runner
	d   *Driver
	err error
}

func (e *frameEntity) Draw(s *tl.Screen) {
	if e.err != nil {
		return
	}
	if err := e.ctx.Err(); err != nil {
		e.err = err
		e.d.status.SetText("stopped, press Ctrl+C to exit")
		return
	}

	c := e.r.Chip8()
	for key, t := range e.d.held {
		if time.Since(t) > keyHold {
			c.SetKey(key, false)
			delete(e.d.held, key)
		}
	}

	if err := e.r.Frame(); err != nil {
		e.err = err
		e.d.status.SetText(fmt.Sprintf("halted: %v (Ctrl+C to exit)", err))
	}
}

func (e *frameEntity) Tick(ev tl.Event) {
	if key := e.d.press(ev); key >= 0 {
		e.r.Chip8().SetKey(key, true)
	}
}

// Loop runs the termloop game until its end key is pressed.
func (d *Driver) Loop(ctx context.Context, r *hachi.Runner) error {
	e := &frameEntity{ctx: ctx, r: r, d: d}
	d.g.Screen().SetFps(float64(r.Chip8().Settings().TimerRate))
	d.g.Screen().AddEntity(e)
	d.g.Start()
	if e.err == nil || e.err == ctx.Err() {
		return hachi.ErrQuit
	}
	return e.err
}

// -----------------------------------------------------------------------------

func (d *Driver) OnInit(c *hachi.Chip8) error {
	d.g = tl.NewGame()
	scr := d.g.Screen()

	scr.AddEntity(tl.NewText(0, 0, "Stack   Syscalls",
		tl.ColorDefault, tl.ColorDefault))

	// stack
	d.stack = make([]*tl.Text, len(c.Stack))
	for i := 0; i < len(d.stack); i++ {
		d.stack[i] = tl.NewText(0, i+1, "", tl.ColorDefault, tl.ColorDefault)
		scr.AddEntity(d.stack[i])
	}

	// syscall log
	for i := 0; i < len(d.syscalls); i++ {
		d.syscalls[i] = tl.NewText(8, i+1, "", tl.ColorDefault, tl.ColorDefault)
		scr.AddEntity(d.syscalls[i])
	}

	// chip info
	d.registers = tl.NewText(20, 0, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.registers)

	d.pointersAndTimers = tl.NewText(20, 1, "",
		tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.pointersAndTimers)

	d.devices = tl.NewText(20, 2, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.devices)

	d.status = tl.NewText(20, 3, "", tl.ColorRed, tl.ColorDefault)
	scr.AddEntity(d.status)

	// screen preview at 20,5. pixels are added to the screen when set
	for i := 0; i < hachi.Width; i++ {
		for j := 0; j < hachi.Height; j++ {
			d.screen[i][j] = tl.NewRectangle(20+i, 5+j, 1, 1, tl.ColorWhite)
		}
	}
	d.lastScreen = [hachi.ScreenSize]bool{}
	return nil
}

func (d *Driver) Cls() { d.printSyscall("CLS") }

func (d *Driver) OnUpdate(c *hachi.Chip8) error {
	d.registers.SetText(fmt.Sprintf("Registers: % 02X", c.V))
	d.pointersAndTimers.SetText(
		fmt.Sprintf("I: %04X SP: %v, PC: %04X, DT: %02X, ST: %02X",
			c.I, c.SP, c.PC, c.DT, c.ST))

	down := ""
	for k := 0; k < hachi.KeyCount; k++ {
		if c.KeyDown(k) {
			down += fmt.Sprintf("%X", k)
		}
	}
	d.devices.SetText(fmt.Sprintf("Keys: %-16s Last: %v", down, c.Last()))

	for i := 0; i < len(d.stack); i++ {
		if i < c.SP {
			d.stack[i].SetText(fmt.Sprintf("%04X", c.Stack[i]))
		} else {
			d.stack[i].SetText("")
		}
	}
	return nil
}

func (d *Driver) UpdateScreen(c *hachi.Chip8) {
	d.printSyscall("DRW")

	scr := d.g.Screen()
	for idx, on := range c.Screen {
		if on == d.lastScreen[idx] {
			continue
		}
		rect := d.screen[idx%hachi.Width][idx/hachi.Width]
		if on {
			scr.AddEntity(rect)
		} else {
			scr.RemoveEntity(rect)
		}
	}
	d.lastScreen = c.Screen
}

func (d *Driver) Beep() { d.printSyscall("BEEP") }

func (d *Driver) GetData(key string) interface{} {
	if key == "ctx" {
		return d.g
	}
	return nil
}

func (d *Driver) SetData(key string, value interface{}) error {
	switch key {
	case "key_map":
		newMap, ok := value.(map[tl.Key]int)
		if !ok {
			return fmt.Errorf("invalid type %T for key_map", value)
		}
		d.keyMap = newMap
		return nil
	case "rune_map":
		newMap, ok := value.(map[rune]int)
		if !ok {
			return fmt.Errorf("invalid type %T for rune_map", value)
		}
		d.runeMap = newMap
		return nil
	}
	return fmt.Errorf("unknown data key '%s'", key)
}

func (d *Driver) Close() error { return nil }

// -----------------------------------------------------------------------------

func init() {
	err := hachi.RegisterDriver("termloop", func() hachi.Driver { return New() })
	if err != nil {
		panic(err)
	}
}

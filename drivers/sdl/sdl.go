//go:build sdl

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

// Package sdl implements an SDL2 driver: a 1280x640 window streaming an
// ARGB8888 texture of the screen with the gradient tint, the host.Keys
// keypad and Escape to quit. It needs the SDL2 development files and is
// only built with the sdl build tag.
package sdl

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/Francesco149/go-hachi/v2/drivers/host"
	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	windowTitle  = "CHIP-8 Emulator"
	windowWidth  = 1280
	windowHeight = 640
)

// DefaultKeys is the keyboard binding of every CHIP-8 key, see host.Keys.
var DefaultKeys = [hachi.KeyCount]sdl.Keycode{
	sdl.K_x, sdl.K_1, sdl.K_2, sdl.K_3,
	sdl.K_q, sdl.K_w, sdl.K_e, sdl.K_a,
	sdl.K_s, sdl.K_d, sdl.K_z, sdl.K_c,
	sdl.K_4, sdl.K_r, sdl.K_f, sdl.K_v,
}

// A Driver renders into an SDL window.
type Driver struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []uint32
	keys     [hachi.KeyCount]sdl.Keycode
	dirty    bool
}

// New creates an SDL driver.
func New() *Driver {
	return &Driver{
		pixels: make([]uint32, hachi.ScreenSize),
		keys:   DefaultKeys,
	}
}

func (d *Driver) OnInit(c *hachi.Chip8) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	var err error
	d.window, err = sdl.CreateWindow(windowTitle,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		windowWidth, windowHeight, uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	d.renderer, err = sdl.CreateRenderer(d.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	if err := d.renderer.SetLogicalSize(windowWidth, windowHeight); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	d.texture, err = d.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ARGB8888),
		int(sdl.TEXTUREACCESS_STREAMING), hachi.Width, hachi.Height)
	if err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	d.UpdateScreen(c)
	return nil
}

func (d *Driver) Cls() {}

// OnUpdate polls the SDL events, key ups and downs map straight onto the
// keypad.
func (d *Driver) OnUpdate(c *hachi.Chip8) error {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			return hachi.ErrQuit
		case *sdl.KeyboardEvent:
			if ev.Keysym.Sym == sdl.K_ESCAPE {
				return hachi.ErrQuit
			}
			for k, key := range d.keys {
				if ev.Keysym.Sym == key {
					c.SetKey(k, ev.Type == sdl.KEYDOWN)
				}
			}
		}
	}
	return nil
}

func (d *Driver) UpdateScreen(c *hachi.Chip8) {
	host.ARGB(&c.Screen, d.pixels)
	d.dirty = true
}

func (d *Driver) Beep() {}

func (d *Driver) present() error {
	if err := d.texture.UpdateRGBA(nil, d.pixels, hachi.Width); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	if err := d.renderer.Clear(); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	if err := d.renderer.Copy(d.texture, nil, nil); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	d.renderer.Present()
	d.dirty = false
	return nil
}

// Loop runs frames at the timer rate on the locked main thread and presents
// the texture after every frame that changed the screen.
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
				if err := d.present(); err != nil {
					return err
				}
			}
		}
	}
}

func (d *Driver) GetData(key string) interface{} {
	if key == "window" {
		return d.window
	}
	return nil
}

func (d *Driver) SetData(key string, value interface{}) error {
	if key == "key_map" {
		keys, ok := value.([hachi.KeyCount]sdl.Keycode)
		if !ok {
			return fmt.Errorf("invalid type %T for key_map", value)
		}
		d.keys = keys
		return nil
	}
	return fmt.Errorf("unknown data key '%s'", key)
}

func (d *Driver) Close() error {
	if d.texture != nil {
		_ = d.texture.Destroy()
	}
	if d.renderer != nil {
		_ = d.renderer.Destroy()
	}
	if d.window != nil {
		_ = d.window.Destroy()
	}
	sdl.Quit()
	return nil
}

// -----------------------------------------------------------------------------

func init() {
	// SDL wants all calls on the main thread
	runtime.LockOSThread()

	err := hachi.RegisterDriver("sdl", func() hachi.Driver { return New() })
	if err != nil {
		panic(err)
	}
}

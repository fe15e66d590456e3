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

import (
	"context"
	"errors"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// A Runner drives a Chip8 at a fixed clock rate and forwards screen, sound
// and input through a Driver.
type Runner struct {
	c      *Chip8
	driver Driver
	logger *log.Logger
	cycles uint64
}

// NewRunner binds an interpreter to a driver and initializes the driver.
// If logger is nil, the interpreter's logger is used.
func NewRunner(c *Chip8, d Driver, logger *log.Logger) (*Runner, error) {
	if d == nil {
		d = &NullDriver{}
	}
	if logger == nil {
		logger = c.logger
	}
	if err := d.OnInit(c); err != nil {
		return nil, err
	}
	return &Runner{c: c, driver: d, logger: logger}, nil
}

// Chip8 returns the interpreter driven by the runner.
func (r *Runner) Chip8() *Chip8 { return r.c }

// Driver returns the driver the runner forwards to.
func (r *Runner) Driver() Driver { return r.driver }

// Cycles returns the number of instructions executed so far.
func (r *Runner) Cycles() uint64 { return r.cycles }

// DriverData retrieves custom driver data.
func (r *Runner) DriverData(key string) interface{} {
	return r.driver.GetData(key)
}

// SetDriverData sets custom driver data.
func (r *Runner) SetDriverData(key string, value interface{}) error {
	return r.driver.SetData(key, value)
}

// Tick polls the driver, runs one cycle and forwards its side effects.
// Unknown opcodes are logged and skipped, any other error is returned.
func (r *Runner) Tick() error {
	if err := r.driver.OnUpdate(r.c); err != nil {
		return err
	}

	pc := r.c.PC
	err := r.c.Step()
	if err != nil {
		var unknown *UnknownOpcodeErr
		if !errors.As(err, &unknown) {
			return err
		}
		r.logger.Warn("Skipping unknown opcode",
			log.Hex("pc", pc), log.Hex("opcode", unknown.Opcode))
	}
	r.cycles++

	if r.c.Last().Op == OpCls {
		r.driver.Cls()
	}
	if r.c.ConsumeRedraw() {
		r.driver.UpdateScreen(r.c)
	}
	if r.c.ConsumeBeep() {
		r.driver.Beep()
	}
	return nil
}

// Frame runs one timer period worth of cycles (ClockRate / TimerRate) and,
// when the host owns the timers, ticks them once.
func (r *Runner) Frame() error {
	s := r.c.settings
	n := s.ClockRate / s.TimerRate
	for i := 0; i < n; i++ {
		if err := r.Tick(); err != nil {
			return err
		}
	}

	if s.FrameTimers {
		r.c.TickTimers()
		if r.c.ConsumeBeep() {
			r.driver.Beep()
		}
	}
	return nil
}

// Run executes frames at the timer rate until ctx is done, the driver asks
// to quit or a fatal error occurs. Drivers implementing Looper own the loop.
// A quit request is not an error.
func (r *Runner) Run(ctx context.Context) error {
	var err error
	if l, ok := r.driver.(Looper); ok {
		err = l.Loop(ctx, r)
	} else {
		err = r.Pace(ctx)
	}

	if errors.Is(err, ErrQuit) {
		r.logger.Debug("Quit requested", log.Int("cycles", int(r.cycles)))
		return nil
	}
	return err
}

// Pace calls Frame at the timer rate until ctx is done or Frame fails. It is
// the loop Run uses for drivers that don't implement Looper.
func (r *Runner) Pace(ctx context.Context) error {
	period := time.Second / time.Duration(r.c.settings.TimerRate)
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
		}
	}
}

// Close releases the driver.
func (r *Runner) Close() error {
	return r.driver.Close()
}

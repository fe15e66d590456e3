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
	"fmt"
	"sort"
)

// ErrQuit is returned by drivers from OnUpdate when the user asked to quit.
// The Runner stops without reporting an error.
var ErrQuit = errors.New("quit requested")

// A Driver is an interface through which the runner performs platform
// specific calls: input, video and sound all live behind it.
// Drivers should register a constructor with RegisterDriver in init().
type Driver interface {
	// Called once before the program starts executing.
	OnInit(c *Chip8) error
	// Called when the program clears the screen.
	Cls()
	// Called on every clock cycle before the instruction runs, should be
	// used for input polling and similar tasks. Returning ErrQuit stops
	// the runner.
	OnUpdate(c *Chip8) error
	// Called when the program modifies the screen buffer.
	UpdateScreen(c *Chip8)
	// Plays a beeping sound. Called once each time the sound timer runs out.
	Beep()
	// Returns custom data that can be retrieved through the runner by
	// calling DriverData()
	GetData(key string) interface{}
	// Sets custom data that can be set through the runner by
	// calling SetDriverData()
	SetData(key string, value interface{}) error
	// Releases the resources of the driver.
	Close() error
}

// A Looper is a Driver that needs to own the main loop (most GUI toolkits
// do). Runner.Run hands control to Loop, which must call Runner.Frame at
// the timer rate until ctx is done or the user quits.
type Looper interface {
	Loop(ctx context.Context, r *Runner) error
}

// A DriverFactory creates a new, independent driver instance.
type DriverFactory func() Driver

// -----------------------------------------------------------------------------

var drivers map[string]DriverFactory

// RegisterDriver registers a driver constructor to a name. The driver can
// then be created with NewDriver.
// This is not thread-safe, so don't call it concurrently to NewDriver.
func RegisterDriver(name string, f DriverFactory) error {
	if drivers[name] != nil {
		return fmt.Errorf("driver %s already exists", name)
	}
	drivers[name] = f
	return nil
}

// UnregisterDriver unloads a previously registered driver.
// This is not thread-safe, so don't call it concurrently to NewDriver.
func UnregisterDriver(name string) error {
	if drivers[name] == nil {
		return fmt.Errorf("driver %s does not exist", name)
	}
	delete(drivers, name)
	return nil
}

// NewDriver creates a new instance of the driver registered as name.
func NewDriver(name string) (Driver, error) {
	f := drivers[name]
	if f == nil {
		return nil, fmt.Errorf("driver %s not found", name)
	}
	return f(), nil
}

// Drivers returns the sorted names of all registered drivers.
func Drivers() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// -----------------------------------------------------------------------------

// A NullDriver is the default driver, which ignores all calls.
type NullDriver struct{}

func (d *NullDriver) OnInit(c *Chip8) error          { return nil }
func (d *NullDriver) Cls()                           {}
func (d *NullDriver) OnUpdate(c *Chip8) error        { return nil }
func (d *NullDriver) UpdateScreen(c *Chip8)          {}
func (d *NullDriver) Beep()                          {}
func (d *NullDriver) GetData(key string) interface{} { return nil }
func (d *NullDriver) SetData(key string, value interface{}) error {
	return fmt.Errorf("this driver has no settable data")
}
func (d *NullDriver) Close() error { return nil }

// -----------------------------------------------------------------------------

func init() {
	drivers = make(map[string]DriverFactory)

	err := RegisterDriver("null", func() Driver { return &NullDriver{} })
	if err != nil {
		panic(err)
	}
}

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

// Package hachi implements various CHIP-8 utilities, including an interpreter
// and a disassembler.
//
// The interpreter (Chip8) has no notion of time, windows, sound or keyboards.
// It exposes Step, which runs exactly one fetch-decode-execute cycle, plus
// the framebuffer, the redraw flag, the keypad and the sound edge. A Runner
// drives it at a fixed rate and forwards those signals to a Driver.
package hachi

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Memory map and machine dimensions.
const (
	MemorySize   = 0x1000
	ProgramStart = 0x200
	MaxProgram   = MemorySize - ProgramStart
	StackSize    = 16
	Registers    = 16
	Width        = 64
	Height       = 32
	ScreenSize   = Width * Height
)

// Key numbers of the hex keypad.
const (
	Key0 = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	KeyCount
)

// -----------------------------------------------------------------------------

// Chip8 is an implementation of a CHIP-8 interpreter. It holds the state of
// the virtual machine. It is not safe for concurrent use, the driving loop
// owns it and mutates it between calls to Step.
type Chip8 struct {
	// The memory where programs are loaded and executed.
	// Programs start at 0x200 because the original interpreter occupied
	// those first 512 bytes. The font lives at FontBase.
	Memory [MemorySize]byte
	// V[0x0]~V[0xF] are 8-bit registers. V[0xF] doubles as a carry, borrow
	// and collision flag and is clobbered by several instructions.
	V [Registers]uint8
	// 16-bit address register. Used for memory operations.
	I uint16
	// The call stack, which holds return addresses.
	Stack [StackSize]uint16
	// The stack pointer. Number of return addresses on the stack.
	SP int
	// Program counter. Holds the address of the next instruction.
	PC uint16
	// Timers. They count down by one per cycle (or per TickTimers call)
	// while non-zero. The sound timer reaching zero triggers the beep.
	DT uint8
	ST uint8
	// Keys is the hex keypad, true while a key is held down. Drivers write
	// it, the interpreter only reads it.
	Keys [KeyCount]bool
	// Screen buffer, 64x32 monochrome pixels stored row by row.
	Screen [ScreenSize]bool

	settings Settings
	rng      *rand.Rand
	logger   *log.Logger

	redraw bool
	beep   bool
	last   Instruction
}

// New initializes a new instance of Chip8 with the given settings. If settings
// is nil, DefaultSettings will be used. If logger is nil, a default logger
// is created.
func New(s *Settings, logger *log.Logger) (*Chip8, error) {
	if s == nil {
		s = DefaultSettings
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithConfig(log.DefaultConfig())
	}

	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	c := &Chip8{
		settings: *s,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logger,
	}
	c.Reset()

	logger.Debug("Interpreter created", log.Int("seed", int(seed)))
	return c, nil
}

// Reset puts the machine back in the state New left it in: everything
// cleared except the font, PC at ProgramStart. The random source keeps
// its sequence.
func (c *Chip8) Reset() {
	c.Memory = [MemorySize]byte{}
	copy(c.Memory[FontBase:], Font[:])
	c.V = [Registers]uint8{}
	c.I = 0
	c.Stack = [StackSize]uint16{}
	c.SP = 0
	c.PC = ProgramStart
	c.DT, c.ST = 0, 0
	c.Keys = [KeyCount]bool{}
	c.Screen = [ScreenSize]bool{}
	// a fresh machine has a blank screen that was never shown
	c.redraw, c.beep = true, false
	c.last = Instruction{}
}

// String returns formatted information about the instance of the emulator.
func (c *Chip8) String() string {
	return fmt.Sprintf("Chip8{Registers: [% 02X] I: %04X, "+
		"Stack: % 04X, SP: %v, PC: %04X, DT: %02X, ST: %02X, "+
		"Keyboard: %016b}",
		c.V, c.I, c.Stack[:c.SP], c.SP, c.PC, c.DT, c.ST, c.keyBits())
}

func (c *Chip8) keyBits() (bits uint16) {
	for k, down := range c.Keys {
		if down {
			bits |= 1 << k
		}
	}
	return
}

// Settings returns a copy of the settings the instance was created with.
func (c *Chip8) Settings() Settings { return c.settings }

// -----------------------------------------------------------------------------

// Load opens a CHIP-8 binary file and loads it into memory.
// Returns the size, in bytes, of the program and an error if any.
func (c *Chip8) Load(path string) (size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Size() > MaxProgram {
		return fi.Size(), &OutOfMemoryErr{fi.Size(), MaxProgram}
	}

	size, err = c.LoadReader(f)
	if err != nil {
		return size, fmt.Errorf("loading %s: %w", path, err)
	}
	c.logger.Info("Loaded program", log.String("file", path),
		log.Int("bytes", int(size)))
	return size, nil
}

// LoadReader reads a whole CHIP-8 binary from r and loads it into memory.
func (c *Chip8) LoadReader(r io.Reader) (int64, error) {
	// one byte past the limit is enough to tell an oversized program apart
	program, err := io.ReadAll(io.LimitReader(r, MaxProgram+1))
	if err != nil {
		return 0, err
	}
	if err := c.LoadRaw(program); err != nil {
		return int64(len(program)), err
	}
	return int64(len(program)), nil
}

// LoadRaw loads a byte array as a CHIP-8 binary into memory at ProgramStart.
// Either the whole program is copied or, if it doesn't fit, nothing is.
// No other state is touched.
func (c *Chip8) LoadRaw(program []byte) error {
	if len(program) > MaxProgram {
		return &OutOfMemoryErr{int64(len(program)), MaxProgram}
	}
	copy(c.Memory[ProgramStart:], program)
	c.logger.Debug("Loaded code", log.Int("bytes", len(program)))
	return nil
}

// -----------------------------------------------------------------------------

// Fetch returns the big-endian instruction word at PC.
func (c *Chip8) Fetch() (uint16, error) {
	if int(c.PC)+1 >= MemorySize {
		return 0, &AccessErr{Address: c.PC, Size: 2, PC: c.PC}
	}
	return uint16(c.Memory[c.PC])<<8 | uint16(c.Memory[c.PC+1]), nil
}

// Step runs one fetch-decode-execute cycle followed by a timer tick (unless
// the FrameTimers setting hands timers to the host).
//
// Fatal errors (AccessErr, StackErr) leave the machine exactly as it was
// before the call. An UnknownOpcodeErr means the word was skipped, PC moved
// past it and the timers ticked, so execution can go on.
func (c *Chip8) Step() error {
	word, err := c.Fetch()
	if err != nil {
		return err
	}

	err = c.Execute(Decode(word))
	if !IsRecoverable(err) {
		return err
	}

	if !c.settings.FrameTimers {
		c.TickTimers()
	}
	return err
}

// TickTimers decrements the delay and sound timers when non-zero. The sound
// timer going from 1 to 0 raises the beep edge (see ConsumeBeep).
func (c *Chip8) TickTimers() {
	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
		if c.ST == 0 {
			c.beep = true
		}
	}
}

// -----------------------------------------------------------------------------

// NeedsRedraw returns true when the screen changed since the last
// ConsumeRedraw.
func (c *Chip8) NeedsRedraw() bool { return c.redraw }

// ConsumeRedraw returns the redraw flag and clears it. Renderers call this
// once they picked up the screen.
func (c *Chip8) ConsumeRedraw() bool {
	r := c.redraw
	c.redraw = false
	return r
}

// Beeped returns true when the sound timer reached zero and nobody has
// consumed the edge yet.
func (c *Chip8) Beeped() bool { return c.beep }

// ConsumeBeep returns the pending beep edge and clears it.
func (c *Chip8) ConsumeBeep() bool {
	b := c.beep
	c.beep = false
	return b
}

// Pixel returns the pixel at x, y. Coordinates wrap around the screen.
func (c *Chip8) Pixel(x, y int) bool {
	x %= Width
	y %= Height
	if x < 0 {
		x += Width
	}
	if y < 0 {
		y += Height
	}
	return c.Screen[x+y*Width]
}

// Framebuffer returns a copy of the screen buffer.
func (c *Chip8) Framebuffer() [ScreenSize]bool { return c.Screen }

// SetKey sets the state of key k (0x0-0xF). Out of range keys are ignored.
func (c *Chip8) SetKey(k int, down bool) {
	if k < 0 || k >= KeyCount {
		return
	}
	c.Keys[k] = down
}

// KeyDown returns true while key k is held down.
func (c *Chip8) KeyDown(k int) bool {
	if k < 0 || k >= KeyCount {
		return false
	}
	return c.Keys[k]
}

// Last returns the last instruction that was executed.
func (c *Chip8) Last() Instruction { return c.last }

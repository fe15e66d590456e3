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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRegisters(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		x, y   uint8
		wantX  uint8
		wantF  uint8
	}{
		{"LD", 0x6142, 0x00, 0x00, 0x42, 0x00},
		{"ADD wraps without flag", 0x71FF, 0x02, 0x00, 0x01, 0x00},
		{"LD reg", 0x8120, 0x00, 0x37, 0x37, 0x00},
		{"OR", 0x8121, 0xF0, 0x0F, 0xFF, 0x00},
		{"AND", 0x8122, 0xFC, 0x3F, 0x3C, 0x00},
		{"XOR", 0x8123, 0xFF, 0x0F, 0xF0, 0x00},
		{"ADD carry", 0x8124, 0xFF, 0x02, 0x01, 0x01},
		{"ADD no carry", 0x8124, 0x10, 0x20, 0x30, 0x00},
		{"SUB no borrow", 0x8125, 0x30, 0x10, 0x20, 0x01},
		{"SUB equal", 0x8125, 0x30, 0x30, 0x00, 0x01},
		{"SUB borrow", 0x8125, 0x10, 0x30, 0xE0, 0x00},
		{"SHR", 0x8126, 0x05, 0x00, 0x02, 0x01},
		{"SHR even", 0x8126, 0x04, 0x00, 0x02, 0x00},
		{"SUBN no borrow", 0x8127, 0x10, 0x30, 0x20, 0x01},
		{"SUBN borrow", 0x8127, 0x30, 0x10, 0xE0, 0x00},
		{"SHL", 0x812E, 0x81, 0x00, 0x02, 0x01},
		{"SHL no msb", 0x812E, 0x41, 0x00, 0x82, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChip8(t, nil)
			c.V[1], c.V[2] = tt.x, tt.y

			require.NoError(t, c.Execute(Decode(tt.opcode)))
			assert.Equal(t, tt.wantX, c.V[1])
			assert.Equal(t, tt.wantF, c.V[0xF])
			assert.Equal(t, uint16(ProgramStart+2), c.PC)
		})
	}
}

func TestExecuteFlagRegisterAsOperand(t *testing.T) {
	// VF receives the flag even when it is the destination
	c := newTestChip8(t, nil)
	c.V[0xF], c.V[1] = 0xFF, 0x01
	require.NoError(t, c.Execute(Decode(0x8F14)))
	assert.Equal(t, uint8(1), c.V[0xF])
}

func TestExecuteMasksRegisterIndex(t *testing.T) {
	c := newTestChip8(t, nil)
	c.V[0x2] = 7

	require.NotPanics(t, func() {
		require.NoError(t, c.Execute(Instruction{Op: OpAddReg, X: 0xF1, Y: 0x42}))
		require.NoError(t, c.Execute(Instruction{Op: OpLd, X: 0x1F, NN: 5}))
		require.NoError(t, c.Execute(Instruction{Op: OpLdMem, X: 0xF0}))
	})
	assert.Equal(t, uint8(5), c.V[0xF])
	assert.Equal(t, uint8(7), c.V[0x1])
	assert.Equal(t, Font[0], c.V[0x0])
	assert.Equal(t, uint16(1), c.I)
}

func TestAddSubProperties(t *testing.T) {
	c := newTestChip8(t, nil)
	for x := 0; x < 256; x += 7 {
		for y := 0; y < 256; y += 5 {
			c.V[1], c.V[2] = uint8(x), uint8(y)
			require.NoError(t, c.Execute(Decode(0x8124)))
			assert.Equal(t, uint8((x+y)%256), c.V[1])
			assert.Equal(t, flag(x+y > 255), c.V[0xF])

			c.V[1], c.V[2] = uint8(x), uint8(y)
			require.NoError(t, c.Execute(Decode(0x8125)))
			assert.Equal(t, uint8((x-y+256)%256), c.V[1])
			assert.Equal(t, flag(x >= y), c.V[0xF])
		}
	}
}

func TestShiftQuirk(t *testing.T) {
	s := *DefaultSettings
	s.ShiftQuirk = true
	c := newTestChip8(t, &s)

	c.V[1], c.V[2] = 0x00, 0x03
	require.NoError(t, c.Execute(Decode(0x8126)))
	assert.Equal(t, uint8(0x01), c.V[1])
	assert.Equal(t, uint8(1), c.V[0xF])

	c.V[1], c.V[2] = 0x00, 0x80
	require.NoError(t, c.Execute(Decode(0x812E)))
	assert.Equal(t, uint8(0x00), c.V[1])
	assert.Equal(t, uint8(1), c.V[0xF])
}

func TestExecuteSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		x, y   uint8
		key    int
		skip   bool
	}{
		{"SE taken", 0x3142, 0x42, 0, -1, true},
		{"SE not taken", 0x3142, 0x41, 0, -1, false},
		{"SNE taken", 0x4142, 0x41, 0, -1, true},
		{"SNE not taken", 0x4142, 0x42, 0, -1, false},
		{"SE reg taken", 0x5120, 0x07, 0x07, -1, true},
		{"SE reg not taken", 0x5120, 0x07, 0x08, -1, false},
		{"SNE reg taken", 0x9120, 0x07, 0x08, -1, true},
		{"SNE reg not taken", 0x9120, 0x07, 0x07, -1, false},
		{"SKP taken", 0xE19E, 0x0A, 0, KeyA, true},
		{"SKP not taken", 0xE19E, 0x0A, 0, KeyB, false},
		{"SKP masks the key", 0xE19E, 0xFA, 0, KeyA, true},
		{"SKNP taken", 0xE1A1, 0x0A, 0, KeyB, true},
		{"SKNP not taken", 0xE1A1, 0x0A, 0, KeyA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChip8(t, nil)
			c.V[1], c.V[2] = tt.x, tt.y
			c.SetKey(tt.key, true)

			require.NoError(t, c.Execute(Decode(tt.opcode)))
			want := uint16(ProgramStart + 2)
			if tt.skip {
				want += 2
			}
			assert.Equal(t, want, c.PC)
		})
	}
}

func TestJumps(t *testing.T) {
	c := newTestChip8(t, nil)
	require.NoError(t, c.Execute(Decode(0x1ABC)))
	assert.Equal(t, uint16(0xABC), c.PC)

	c.V[0] = 0x10
	require.NoError(t, c.Execute(Decode(0xB300)))
	assert.Equal(t, uint16(0x310), c.PC)
}

func TestCallReturn(t *testing.T) {
	c := newTestChip8(t, nil,
		0x22, 0x06, // CALL 206
		0x12, 0x02, // JP 202
		0x00, 0x00,
		0x00, 0xEE, // RET
	)

	stepN(t, c, 1)
	assert.Equal(t, uint16(0x206), c.PC)
	assert.Equal(t, 1, c.SP)
	assert.Equal(t, uint16(0x202), c.Stack[0])
	assert.True(t, c.Last().IsCall())

	stepN(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC)
	assert.Equal(t, 0, c.SP)
	assert.True(t, c.Last().IsReturn())
}

func TestStackOverflow(t *testing.T) {
	// CALL 200 forever
	c := newTestChip8(t, nil, 0x22, 0x00)
	stepN(t, c, StackSize)
	assert.Equal(t, StackSize, c.SP)

	before := *c
	err := c.Step()
	assert.ErrorIs(t, err, ErrStackOverflow)
	assert.False(t, IsRecoverable(err))

	var stackErr *StackErr
	require.ErrorAs(t, err, &stackErr)
	assert.True(t, stackErr.Overflow)
	assert.Equal(t, uint16(ProgramStart), stackErr.PC)

	assert.Equal(t, before.PC, c.PC)
	assert.Equal(t, before.SP, c.SP)
	assert.Equal(t, before.Stack, c.Stack)
	assert.Equal(t, before.DT, c.DT)
}

func TestStackUnderflow(t *testing.T) {
	c := newTestChip8(t, nil, 0x00, 0xEE)
	c.DT = 5

	err := c.Step()
	assert.ErrorIs(t, err, ErrStackUnderflow)
	assert.Equal(t, uint16(ProgramStart), c.PC)
	assert.Equal(t, 0, c.SP)
	// a failed step doesn't tick the timers either
	assert.Equal(t, uint8(5), c.DT)
}

func TestUnknownOpcode(t *testing.T) {
	for _, opcode := range []uint16{0x5121, 0x812F, 0x9123, 0xE100, 0xF1FF} {
		c := newTestChip8(t, nil, uint8(opcode>>8), uint8(opcode))
		c.DT = 2

		err := c.Step()
		assert.ErrorIs(t, err, ErrUnknownOpcode)
		assert.True(t, IsRecoverable(err))

		var unknown *UnknownOpcodeErr
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, opcode, unknown.Opcode)
		assert.Equal(t, uint16(ProgramStart), unknown.PC)

		assert.Equal(t, uint16(ProgramStart+2), c.PC)
		assert.Equal(t, uint8(1), c.DT)
	}
}

func TestSysIgnored(t *testing.T) {
	c := newTestChip8(t, nil, 0x01, 0x23)
	before := c.V
	stepN(t, c, 1)
	assert.Equal(t, uint16(ProgramStart+2), c.PC)
	assert.Equal(t, before, c.V)
	assert.Equal(t, OpSys, c.Last().Op)
}

func TestIndexOps(t *testing.T) {
	c := newTestChip8(t, nil)

	require.NoError(t, c.Execute(Decode(0xA123)))
	assert.Equal(t, uint16(0x123), c.I)

	c.V[1] = 0x10
	require.NoError(t, c.Execute(Decode(0xF11E)))
	assert.Equal(t, uint16(0x133), c.I)
	assert.Equal(t, uint8(0), c.V[0xF])

	c.I = 0xFF8
	require.NoError(t, c.Execute(Decode(0xF11E)))
	assert.Equal(t, uint16(0x1008), c.I)
	assert.Equal(t, uint8(1), c.V[0xF])

	c.V[1] = 0xAB
	require.NoError(t, c.Execute(Decode(0xF129)))
	assert.Equal(t, uint16(FontBase+0xB*GlyphSize), c.I)
}

func TestTimerOps(t *testing.T) {
	c := newTestChip8(t, nil)
	c.V[1] = 0x33

	require.NoError(t, c.Execute(Decode(0xF115)))
	assert.Equal(t, uint8(0x33), c.DT)
	require.NoError(t, c.Execute(Decode(0xF118)))
	assert.Equal(t, uint8(0x33), c.ST)

	c.DT = 0x44
	require.NoError(t, c.Execute(Decode(0xF207)))
	assert.Equal(t, uint8(0x44), c.V[2])
}

func TestRandom(t *testing.T) {
	s := *DefaultSettings
	s.Seed = 42
	a := newTestChip8(t, &s)
	b := newTestChip8(t, &s)

	for i := 0; i < 32; i++ {
		require.NoError(t, a.Execute(Decode(0xC10F)))
		require.NoError(t, b.Execute(Decode(0xC10F)))
		assert.Equal(t, a.V[1], b.V[1])
		assert.Zero(t, a.V[1]&0xF0)
	}
}

func TestBCD(t *testing.T) {
	c := newTestChip8(t, nil)
	c.I = 0x300

	for _, v := range []uint8{0, 7, 42, 128, 255} {
		c.V[1] = v
		require.NoError(t, c.Execute(Decode(0xF133)))
		assert.Equal(t, []byte{v / 100, v / 10 % 10, v % 10}, c.Memory[0x300:0x303])
		assert.Equal(t, uint16(0x300), c.I)
	}
}

func TestStoreLoadRegisters(t *testing.T) {
	c := newTestChip8(t, nil)
	for i := range c.V {
		c.V[i] = uint8(i * 3)
	}

	c.I = 0x300
	require.NoError(t, c.Execute(Decode(0xF355)))
	assert.Equal(t, []byte{0, 3, 6, 9}, c.Memory[0x300:0x304])
	assert.Equal(t, byte(0), c.Memory[0x304])
	assert.Equal(t, uint16(0x304), c.I)

	c.V = [Registers]uint8{}
	c.I = 0x300
	require.NoError(t, c.Execute(Decode(0xF265)))
	assert.Equal(t, []uint8{0, 3, 6, 0}, c.V[:4])
	assert.Equal(t, uint16(0x303), c.I)
}

func TestIndexQuirk(t *testing.T) {
	s := *DefaultSettings
	s.IndexQuirk = true
	c := newTestChip8(t, &s)

	c.I = 0x300
	require.NoError(t, c.Execute(Decode(0xF355)))
	assert.Equal(t, uint16(0x300), c.I)
	require.NoError(t, c.Execute(Decode(0xF365)))
	assert.Equal(t, uint16(0x300), c.I)
}

func TestMemoryProtection(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		i      uint16
	}{
		{"BCD over the font", 0xF133, 0x050},
		{"BCD past the end", 0xF133, 0xFFE},
		{"store over the font", 0xF355, 0x1FE},
		{"store past the end", 0xF355, 0xFFD},
		{"load past the end", 0xF365, 0xFFD},
		{"draw past the end", 0xD125, 0xFFC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChip8(t, nil)
			c.I = tt.i
			c.V[1] = 0x11
			mem, v := c.Memory, c.V

			err := c.Execute(Decode(tt.opcode))
			assert.ErrorIs(t, err, ErrOutOfBounds)

			var access *AccessErr
			require.ErrorAs(t, err, &access)
			assert.Equal(t, tt.i, access.Address)

			assert.Equal(t, mem, c.Memory)
			assert.Equal(t, v, c.V)
			assert.Equal(t, uint16(ProgramStart), c.PC)
		})
	}
}

func TestReadFontAllowed(t *testing.T) {
	c := newTestChip8(t, nil)
	c.I = FontBase
	require.NoError(t, c.Execute(Decode(0xF465)))
	assert.Equal(t, Font[:5], c.V[:5])
}

func TestAwaitKey(t *testing.T) {
	c := newTestChip8(t, nil, 0xF3, 0x0A)
	c.DT = 3

	stepN(t, c, 2)
	assert.Equal(t, uint16(ProgramStart), c.PC)
	assert.True(t, c.Last().AwaitsInput())
	// timers keep running while waiting
	assert.Equal(t, uint8(1), c.DT)

	c.SetKey(Key2, true)
	c.SetKey(Key9, true)
	stepN(t, c, 1)
	assert.Equal(t, uint8(9), c.V[3])
	assert.Equal(t, uint16(ProgramStart+2), c.PC)
}

func TestAwaitKeyLowestPriority(t *testing.T) {
	s := *DefaultSettings
	s.KeyPriority = LowestKey
	c := newTestChip8(t, &s, 0xF3, 0x0A)

	c.SetKey(Key2, true)
	c.SetKey(Key9, true)
	stepN(t, c, 1)
	assert.Equal(t, uint8(2), c.V[3])
}

func TestDraw(t *testing.T) {
	// draw the "0" glyph at 1,2 then draw it again
	c := newTestChip8(t, nil,
		0x61, 0x01, // LD V1,01
		0x62, 0x02, // LD V2,02
		0xA0, 0x00, // LD I,000
		0xD1, 0x25, // DRW V1,V2,5
		0xD1, 0x25, // DRW V1,V2,5
	)
	stepN(t, c, 4)
	assert.True(t, c.ConsumeRedraw())
	assert.Equal(t, uint8(0), c.V[0xF])

	for row := 0; row < 5; row++ {
		bits := Font[row]
		for col := 0; col < 8; col++ {
			want := bits&(0x80>>col) != 0
			assert.Equal(t, want, c.Pixel(1+col, 2+row), "pixel %d,%d", col, row)
		}
	}
	assert.False(t, c.Pixel(0, 2))

	stepN(t, c, 1)
	assert.True(t, c.NeedsRedraw())
	assert.Equal(t, uint8(1), c.V[0xF])
	if diff := cmp.Diff([ScreenSize]bool{}, c.Screen); diff != "" {
		t.Errorf("drawing twice must restore the screen (-want +got):\n%s", diff)
	}
}

func TestDrawWrap(t *testing.T) {
	tests := []struct {
		name string
		wrap WrapMode
		want []int
	}{
		{"row", WrapRow, []int{60, 61, 62, 63, 0, 1, 2, 3}},
		{"linear", WrapLinear, []int{60, 61, 62, 63, Width, Width + 1, Width + 2, Width + 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *DefaultSettings
			s.Wrap = tt.wrap
			c := newTestChip8(t, &s)
			c.Memory[0x300] = 0xFF
			c.I = 0x300
			c.V[1] = 60

			require.NoError(t, c.Execute(Decode(0xD121)))

			var want [ScreenSize]bool
			for _, idx := range tt.want {
				want[idx] = true
			}
			if diff := cmp.Diff(want, c.Screen); diff != "" {
				t.Errorf("unexpected screen (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDrawBottomWrap(t *testing.T) {
	c := newTestChip8(t, nil)
	c.Memory[0x300] = 0x80
	c.Memory[0x301] = 0x80
	c.I = 0x300
	c.V[1], c.V[2] = 5, Height-1

	require.NoError(t, c.Execute(Decode(0xD122)))
	assert.True(t, c.Pixel(5, Height-1))
	assert.True(t, c.Pixel(5, 0))
}

func TestWrapRowPerAxis(t *testing.T) {
	c := newTestChip8(t, nil)
	for x := 0; x < 256; x += 3 {
		for y := 0; y < 256; y += 5 {
			assert.Equal(t, x%Width+(y%Height)*Width, c.pixelIndex(x, y), "%d,%d", x, y)
		}
	}
}

func TestClearScreen(t *testing.T) {
	c := newTestChip8(t, nil, 0x00, 0xE0)
	c.Screen[100] = true

	stepN(t, c, 1)
	assert.Equal(t, [ScreenSize]bool{}, c.Screen)
	assert.True(t, c.NeedsRedraw())
	assert.Equal(t, OpCls, c.Last().Op)
}

func FuzzStep(f *testing.F) {
	f.Add([]byte{0x60, 0x0A, 0x61, 0x05, 0x80, 0x14})
	f.Add([]byte{0x22, 0x00})
	f.Add([]byte{0xA0, 0x00, 0xD0, 0x0F, 0xF0, 0x0A})

	f.Fuzz(func(t *testing.T, program []byte) {
		if len(program) > MaxProgram {
			return
		}
		c := newTestChip8(t, nil, program...)
		c.SetKey(Key5, true)

		for i := 0; i < 200; i++ {
			before := c.PC
			err := c.Step()
			if err == nil {
				continue
			}
			if IsRecoverable(err) {
				if c.PC != before+2 {
					t.Fatalf("unknown opcode at %03X moved PC to %03X", before, c.PC)
				}
				continue
			}
			// fatal errors leave PC untouched
			if c.PC != before {
				t.Fatalf("PC moved from %03X to %03X on %v", before, c.PC, err)
			}
			return
		}
	})
}

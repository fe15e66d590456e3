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

// Execute runs a decoded instruction as if it had been fetched at PC. Every
// instruction computes the address of the next one; PC is only committed
// when the instruction succeeds, so fatal errors leave the state untouched.
// Only the low nibble of X and Y selects a register, like in a decoded word.
func (c *Chip8) Execute(in Instruction) error {
	next := c.PC + 2
	x, y := in.X&0x0F, in.Y&0x0F
	vx, vy := c.V[x], c.V[y]

	switch in.Op {
	case OpSys:
		// machine code routines of the original hardware, ignored.
	case OpCls:
		c.Screen = [ScreenSize]bool{}
		c.redraw = true
	case OpRet:
		if c.SP == 0 {
			return &StackErr{Overflow: false, PC: c.PC}
		}
		c.SP--
		next = c.Stack[c.SP]
	case OpJp:
		next = in.NNN
	case OpCall:
		if c.SP >= StackSize {
			return &StackErr{Overflow: true, PC: c.PC}
		}
		c.Stack[c.SP] = c.PC + 2
		c.SP++
		next = in.NNN
	case OpSe:
		if vx == in.NN {
			next += 2
		}
	case OpSne:
		if vx != in.NN {
			next += 2
		}
	case OpSeReg:
		if vx == vy {
			next += 2
		}
	case OpLd:
		c.V[x] = in.NN
	case OpAdd:
		c.V[x] += in.NN
	case OpLdReg:
		c.V[x] = vy
	case OpOr:
		c.V[x] = vx | vy
	case OpAnd:
		c.V[x] = vx & vy
	case OpXor:
		c.V[x] = vx ^ vy
	case OpAddReg:
		sum := uint16(vx) + uint16(vy)
		c.V[x] = uint8(sum)
		c.V[0xF] = flag(sum > 0xFF)
	case OpSub:
		c.V[x] = vx - vy
		c.V[0xF] = flag(vx >= vy)
	case OpShr:
		src := vx
		if c.settings.ShiftQuirk {
			src = vy
		}
		c.V[x] = src >> 1
		c.V[0xF] = src & 0x01 // least significant bit
	case OpSubn:
		c.V[x] = vy - vx
		c.V[0xF] = flag(vy >= vx)
	case OpShl:
		src := vx
		if c.settings.ShiftQuirk {
			src = vy
		}
		c.V[x] = src << 1
		c.V[0xF] = src >> 7 // most significant bit
	case OpSneReg:
		if vx != vy {
			next += 2
		}
	case OpLdI:
		c.I = in.NNN
	case OpJpV0:
		next = in.NNN + uint16(c.V[0])
	case OpRnd:
		c.V[x] = uint8(c.rng.Intn(256)) & in.NN
	case OpDrw:
		if err := c.draw(vx, vy, in.N); err != nil {
			return err
		}
	case OpSkp:
		if c.Keys[vx&0x0F] {
			next += 2
		}
	case OpSknp:
		if !c.Keys[vx&0x0F] {
			next += 2
		}
	case OpLdVxDT:
		c.V[x] = c.DT
	case OpLdVxK:
		if key, ok := c.pressedKey(); ok {
			c.V[x] = key
		} else {
			next = c.PC
		}
	case OpLdDTVx:
		c.DT = vx
	case OpLdSTVx:
		c.ST = vx
	case OpAddI:
		sum := uint32(c.I) + uint32(vx)
		c.I = uint16(sum)
		c.V[0xF] = flag(sum > 0xFFF)
	case OpLdFont:
		c.I = FontBase + uint16(vx&0x0F)*GlyphSize
	case OpLdBcd:
		if err := c.checkWrite(c.I, 3); err != nil {
			return err
		}
		c.Memory[c.I] = vx / 100       // hundreds
		c.Memory[c.I+1] = vx / 10 % 10 // tens
		c.Memory[c.I+2] = vx % 10      // ones
	case OpLdSetMem:
		n := int(x) + 1
		if err := c.checkWrite(c.I, n); err != nil {
			return err
		}
		copy(c.Memory[c.I:], c.V[:n])
		if !c.settings.IndexQuirk {
			c.I += uint16(n)
		}
	case OpLdMem:
		n := int(x) + 1
		if err := c.checkRead(c.I, n); err != nil {
			return err
		}
		copy(c.V[:n], c.Memory[c.I:])
		if !c.settings.IndexQuirk {
			c.I += uint16(n)
		}
	default:
		// skipped so execution can go on, the caller decides what to report
		pc := c.PC
		c.PC = next
		c.last = in
		return &UnknownOpcodeErr{Opcode: in.Opcode, PC: pc}
	}

	c.PC = next
	c.last = in
	return nil
}

// draw XORs an n-row sprite from memory[I:] onto the screen at x, y and sets
// VF when any set pixel was turned off.
func (c *Chip8) draw(x, y uint8, n uint8) error {
	if err := c.checkRead(c.I, int(n)); err != nil {
		return err
	}

	collision := false
	for row := 0; row < int(n); row++ {
		bits := c.Memory[int(c.I)+row]
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			idx := c.pixelIndex(int(x)+col, int(y)+row)
			if c.Screen[idx] {
				collision = true
			}
			c.Screen[idx] = !c.Screen[idx]
		}
	}

	c.V[0xF] = flag(collision)
	c.redraw = true
	return nil
}

func (c *Chip8) pixelIndex(x, y int) int {
	if c.settings.Wrap == WrapLinear {
		return (x + y*Width) % ScreenSize
	}
	return x%Width + (y%Height)*Width
}

// pressedKey returns the key LD VX,K should store, honouring KeyPriority.
func (c *Chip8) pressedKey() (uint8, bool) {
	if c.settings.KeyPriority == LowestKey {
		for k := 0; k < KeyCount; k++ {
			if c.Keys[k] {
				return uint8(k), true
			}
		}
		return 0, false
	}
	for k := KeyCount - 1; k >= 0; k-- {
		if c.Keys[k] {
			return uint8(k), true
		}
	}
	return 0, false
}

func (c *Chip8) checkRead(addr uint16, size int) error {
	if int(addr)+size > MemorySize {
		return &AccessErr{Address: addr, Size: size, PC: c.PC}
	}
	return nil
}

// writes below ProgramStart would clobber the font
func (c *Chip8) checkWrite(addr uint16, size int) error {
	if addr < ProgramStart {
		return &AccessErr{Address: addr, Size: size, PC: c.PC}
	}
	return c.checkRead(addr, size)
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

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
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies a decoded CHIP-8 instruction.
type Op uint8

const (
	OpUnknown  Op = iota
	OpSys         // 0NNN
	OpCls         // 00E0
	OpRet         // 00EE
	OpJp          // 1NNN
	OpCall        // 2NNN
	OpSe          // 3XNN
	OpSne         // 4XNN
	OpSeReg       // 5XY0
	OpLd          // 6XNN
	OpAdd         // 7XNN
	OpLdReg       // 8XY0
	OpOr          // 8XY1
	OpAnd         // 8XY2
	OpXor         // 8XY3
	OpAddReg      // 8XY4
	OpSub         // 8XY5
	OpShr         // 8XY6
	OpSubn        // 8XY7
	OpShl         // 8XYE
	OpSneReg      // 9XY0
	OpLdI         // ANNN
	OpJpV0        // BNNN
	OpRnd         // CXNN
	OpDrw         // DXYN
	OpSkp         // EX9E
	OpSknp        // EXA1
	OpLdVxDT      // FX07
	OpLdVxK       // FX0A
	OpLdDTVx      // FX15
	OpLdSTVx      // FX18
	OpAddI        // FX1E
	OpLdFont      // FX29
	OpLdBcd       // FX33
	OpLdSetMem    // FX55
	OpLdMem       // FX65

	opCount
)

// ins is the instruction family in the retrogolib opcode table, nil for the
// entries the table doesn't carry.
type opInfo struct {
	pattern     string
	ins         *chip8.Instruction
	format      func(i Instruction) string
	description string
}

func fmtNone(i Instruction) string   { return "" }
func fmtAddr(i Instruction) string   { return fmt.Sprintf("%03X", i.NNN) }
func fmtVxNN(i Instruction) string   { return fmt.Sprintf("V%1X,%02X", i.X, i.NN) }
func fmtVxVy(i Instruction) string   { return fmt.Sprintf("V%1X,V%1X", i.X, i.Y) }
func fmtVx(i Instruction) string     { return fmt.Sprintf("V%1X", i.X) }
func fmtVxVyN(i Instruction) string  { return fmt.Sprintf("V%1X,V%1X,%1X", i.X, i.Y, i.N) }
func fmtLdI(i Instruction) string    { return fmt.Sprintf("I,%03X", i.NNN) }
func fmtJpV0(i Instruction) string   { return fmt.Sprintf("V0,%03X", i.NNN) }
func fmtVxDT(i Instruction) string   { return fmt.Sprintf("V%1X,DT", i.X) }
func fmtVxK(i Instruction) string    { return fmt.Sprintf("V%1X,K", i.X) }
func fmtDTVx(i Instruction) string   { return fmt.Sprintf("DT,V%1X", i.X) }
func fmtSTVx(i Instruction) string   { return fmt.Sprintf("ST,V%1X", i.X) }
func fmtIVx(i Instruction) string    { return fmt.Sprintf("I,V%1X", i.X) }
func fmtFont(i Instruction) string   { return fmt.Sprintf("I,CHAR V%1X", i.X) }
func fmtBcd(i Instruction) string    { return fmt.Sprintf("[I],BCD V%1X", i.X) }
func fmtSetMem(i Instruction) string { return fmt.Sprintf("[I],V%1X", i.X) }
func fmtMem(i Instruction) string    { return fmt.Sprintf("V%1X,[I]", i.X) }
func fmtRaw(i Instruction) string {
	return fmt.Sprintf("%02X %02X", uint8(i.Opcode>>8), uint8(i.Opcode))
}

var opInfos = [opCount]opInfo{
	OpUnknown: {"????", nil, fmtRaw, "Unknown / Raw Data"},
	OpSys:     {"0NNN", nil, fmtAddr, "Calls RCA 1802 program at address NNN (ignored)."},
	OpCls:     {"00E0", chip8.ClsInst, fmtNone, "Clears the screen."},
	OpRet:     {"00EE", chip8.RetInst, fmtNone, "Returns from a subroutine."},
	OpJp:      {"1NNN", chip8.JpInst, fmtAddr, "Jumps to address NNN."},
	OpCall:    {"2NNN", chip8.CallInst, fmtAddr, "Calls subroutine at NNN."},
	OpSe:      {"3XNN", chip8.SeInst, fmtVxNN, "Skips the next instruction if VX equals NN."},
	OpSne: {"4XNN", chip8.SneInst, fmtVxNN,
		"Skips the next instruction if VX doesn't equal NN."},
	OpSeReg: {"5XY0", chip8.SeInst, fmtVxVy, "Skips the next instruction if VX equals VY."},
	OpLd:    {"6XNN", chip8.LdInst, fmtVxNN, "Sets VX to NN."},
	OpAdd:   {"7XNN", chip8.AddInst, fmtVxNN, "Adds NN to VX."},
	OpLdReg: {"8XY0", chip8.LdInst, fmtVxVy, "Sets VX to the value of VY."},
	OpOr:    {"8XY1", chip8.OrInst, fmtVxVy, "Sets VX to VX | VY (bit-wise OR)."},
	OpAnd:   {"8XY2", chip8.AndInst, fmtVxVy, "Sets VX to VX & VY (bit-wise AND)."},
	OpXor:   {"8XY3", chip8.XorInst, fmtVxVy, "Sets VX to VX ^ VY (bit-wise XOR)."},
	OpAddReg: {"8XY4", chip8.AddInst, fmtVxVy,
		"VX += VY. VF = 1 when there's a carry, 0 when there isn't."},
	OpSub: {"8XY5", chip8.SubInst, fmtVxVy,
		"VX -= VY. VF = 0 when there's a borrow, 1 when there isn't."},
	OpShr: {"8XY6", chip8.ShrInst, fmtVxVy,
		"VX >>= 1. VF = least significant bit prior to the shift."},
	OpSubn: {"8XY7", chip8.SubnInst, fmtVxVy,
		"VX = VY - VX. VF = 0 when there's a borrow, 1 when there isn't."},
	OpShl: {"8XYE", chip8.ShlInst, fmtVxVy,
		"VX <<= 1. VF = most significant bit prior to the shift."},
	OpSneReg: {"9XY0", chip8.SneInst, fmtVxVy,
		"Skips the next instruction if VX doesn't equal VY."},
	OpLdI:  {"ANNN", chip8.LdInst, fmtLdI, "Sets I to the address NNN."},
	OpJpV0: {"BNNN", chip8.JpInst, fmtJpV0, "Jumps to the address NNN plus V0."},
	OpRnd: {"CXNN", chip8.RndInst, fmtVxNN,
		"Sets VX to a random number (0-FF) & NN (bit-wise AND)."},
	OpDrw: {"DXYN", chip8.DrwInst, fmtVxVyN,
		"Draws N rows of sprite pointed by I at VX,VY."},
	OpSkp: {"EX9E", chip8.SkpInst, fmtVx,
		"Skips the next instruction if the key stored in VX is pressed."},
	OpSknp: {"EXA1", chip8.SknpInst, fmtVx,
		"Skips the next instruction if the key stored in VX isn't pressed."},
	OpLdVxDT: {"FX07", chip8.LdInst, fmtVxDT, "Sets VX to the value of the delay timer."},
	OpLdVxK: {"FX0A", chip8.LdInst, fmtVxK,
		"A key press is awaited, and then key number is stored in VX."},
	OpLdDTVx: {"FX15", chip8.LdInst, fmtDTVx, "Sets the delay timer to VX."},
	OpLdSTVx: {"FX18", chip8.LdInst, fmtSTVx, "Sets the sound timer to VX."},
	OpAddI:   {"FX1E", chip8.AddInst, fmtIVx, "Adds VX to I. VF = 1 when I goes past FFF."},
	OpLdFont: {"FX29", chip8.LdInst, fmtFont,
		"Sets I to the location of the sprite for the character in VX."},
	OpLdBcd: {"FX33", chip8.LdInst, fmtBcd,
		"Store BCD representation of VX in memory at I, I+1, and I+2."},
	OpLdSetMem: {"FX55", chip8.LdInst, fmtSetMem,
		"Stores V0 to VX in memory starting at address I. I += X+1."},
	OpLdMem: {"FX65", chip8.LdInst, fmtMem,
		"Fills V0 to VX with values from memory starting at address I. I += X+1."},
}

// Derived from opInfos: mnemonics come from the library's instruction names,
// masks and values from the patterns.
var (
	opMnemonics       [opCount]string
	opMasks, opValues [opCount]uint16
)

func init() {
	opMnemonics[OpUnknown] = "DB"
	opMnemonics[OpSys] = "SYS"
	for op := OpSys; op < opCount; op++ {
		info := &opInfos[op]
		if info.ins != nil {
			opMnemonics[op] = strings.ToUpper(info.ins.Name)
		}
		for _, c := range info.pattern {
			opMasks[op] <<= 4
			opValues[op] <<= 4
			switch {
			case c >= '0' && c <= '9':
				opMasks[op] |= 0xF
				opValues[op] |= uint16(c - '0')
			case c >= 'A' && c <= 'F':
				opMasks[op] |= 0xF
				opValues[op] |= uint16(c-'A') + 10
			}
		}
	}
}

// Pattern returns the opcode pattern of op, e.g. "8XY4".
func (op Op) Pattern() string {
	if op >= opCount {
		return opInfos[OpUnknown].pattern
	}
	return opInfos[op].pattern
}

// Mnemonic returns the pseudo-asm mnemonic of op, e.g. "ADD".
func (op Op) Mnemonic() string {
	if op >= opCount {
		return opMnemonics[OpUnknown]
	}
	return opMnemonics[op]
}

func (op Op) String() string { return op.Pattern() }

// -----------------------------------------------------------------------------

// An Instruction is a decoded CHIP-8 instruction word. The operand fields are
// always filled from the word regardless of Op, only the ones the pattern
// names are meaningful.
type Instruction struct {
	Op     Op
	Opcode uint16

	X, Y uint8  // register nibbles
	N    uint8  // lowest nibble
	NN   uint8  // low byte
	NNN  uint16 // low 12 bits
}

// Decode resolves an instruction word into an Instruction. Words that don't
// match any instruction decode to OpUnknown.
func Decode(word uint16) Instruction {
	in := Instruction{
		Opcode: word,
		X:      uint8(word>>8) & 0x0F,
		Y:      uint8(word>>4) & 0x0F,
		N:      uint8(word) & 0x0F,
		NN:     uint8(word),
		NNN:    word & 0x0FFF,
	}
	in.Op = decodeOp(word)
	return in
}

// decodeOp matches word against the retrogolib opcode table, then narrows the
// matched instruction family down to an Op by its full pattern. 0NNN isn't in
// the table and resolves to OpSys on the pattern alone.
func decodeOp(word uint16) Op {
	var ins *chip8.Instruction
	for _, op := range chip8.Opcodes[int(word>>12)] {
		if op.Info.Mask&word == op.Info.Value {
			ins = op.Instruction
			break
		}
	}

	if ins != nil {
		for op := OpSys; op < opCount; op++ {
			if opInfos[op].ins == ins && opMasks[op]&word == opValues[op] {
				return op
			}
		}
	}
	if opMasks[OpSys]&word == opValues[OpSys] {
		return OpSys
	}
	return OpUnknown
}

// String returns a pseudo-asm representation of the instruction.
func (i Instruction) String() string {
	info := opInfos[OpUnknown]
	if i.Op < opCount {
		info = opInfos[i.Op]
	}
	mnemonic := i.Op.Mnemonic()
	params := info.format(i)
	if params == "" {
		return mnemonic
	}
	return mnemonic + " " + params
}

// Description returns a detailed description of what the instruction does.
func (i Instruction) Description() string {
	if i.Op >= opCount {
		return opInfos[OpUnknown].description
	}
	return opInfos[i.Op].description
}

// IsJump returns true for unconditional jumps.
func (i Instruction) IsJump() bool { return i.Op == OpJp || i.Op == OpJpV0 }

// IsCall returns true for subroutine calls.
func (i Instruction) IsCall() bool { return i.Op == OpCall }

// IsReturn returns true for subroutine returns.
func (i Instruction) IsReturn() bool { return i.Op == OpRet }

// IsSkip returns true for the conditional skip instructions.
func (i Instruction) IsSkip() bool {
	switch i.Op {
	case OpSe, OpSne, OpSeReg, OpSneReg, OpSkp, OpSknp:
		return true
	}
	return false
}

// IsDataReference returns true when the instruction loads an address into I.
func (i Instruction) IsDataReference() bool { return i.Op == OpLdI }

// AwaitsInput returns true for instructions that leave PC in place, and so
// re-execute on the next cycle, until a key is down.
func (i Instruction) AwaitsInput() bool { return i.Op == OpLdVxK }

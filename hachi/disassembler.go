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

import "fmt"

// A Line is one disassembled word of a program.
type Line struct {
	// Address the word is loaded at.
	Address uint16
	// Raw bytes, 2 of them except for an odd trailing byte.
	Bytes []byte
	// The decoded instruction. Meaningless when len(Bytes) == 1.
	Instruction Instruction
}

// Size returns the size of the line in bytes.
func (l Line) Size() int { return len(l.Bytes) }

// String returns a pseudo-asm representation of the line.
func (l Line) String() string {
	if len(l.Bytes) == 1 {
		return fmt.Sprintf("DB %02X", l.Bytes[0])
	}
	return l.Instruction.String()
}

// Description returns a detailed description of what the line does.
func (l Line) Description() string {
	if len(l.Bytes) == 1 {
		return opInfos[OpUnknown].description
	}
	return l.Instruction.Description()
}

// ASCII returns the ASCII representation of the raw data for this line.
// Returns an empty string if the data is not printable ascii.
func (l Line) ASCII() (res string) {
	if isPrintableASCII(l.Bytes) {
		res = string(l.Bytes)
	}
	return
}

// -----------------------------------------------------------------------------

// DisassembleSimple disassembles raw data loaded at ProgramStart and returns
// one line per 16-bit word. It's fast but it cannot handle odd-aligned
// opcodes or recognize raw data memory regions: every word is decoded as if
// it were code, a trailing odd byte becomes a single DB line.
func DisassembleSimple(b []byte) []Line {
	res := make([]Line, 0, (len(b)+1)/2)

	for i := 0; i < len(b); i += 2 {
		addr := uint16(ProgramStart + i)

		if i+1 >= len(b) {
			res = append(res, Line{Address: addr, Bytes: b[i : i+1]})
			break
		}

		word := uint16(b[i])<<8 | uint16(b[i+1])
		res = append(res, Line{
			Address:     addr,
			Bytes:       b[i : i+2],
			Instruction: Decode(word),
		})
	}

	return res
}

func isPrintableASCII(b []byte) bool {
	for _, c := range b {
		if c < ' ' || c > '~' {
			return false
		}
	}
	return true
}

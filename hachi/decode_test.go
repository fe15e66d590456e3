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
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		opcode uint16
		op     Op
		asm    string
	}{
		{0x0123, OpSys, "SYS 123"},
		{0x00E0, OpCls, "CLS"},
		{0x00EE, OpRet, "RET"},
		{0x1234, OpJp, "JP 234"},
		{0x2345, OpCall, "CALL 345"},
		{0x3A12, OpSe, "SE VA,12"},
		{0x4B34, OpSne, "SNE VB,34"},
		{0x5120, OpSeReg, "SE V1,V2"},
		{0x6C56, OpLd, "LD VC,56"},
		{0x7D78, OpAdd, "ADD VD,78"},
		{0x8120, OpLdReg, "LD V1,V2"},
		{0x8121, OpOr, "OR V1,V2"},
		{0x8122, OpAnd, "AND V1,V2"},
		{0x8123, OpXor, "XOR V1,V2"},
		{0x8124, OpAddReg, "ADD V1,V2"},
		{0x8125, OpSub, "SUB V1,V2"},
		{0x8126, OpShr, "SHR V1,V2"},
		{0x8127, OpSubn, "SUBN V1,V2"},
		{0x812E, OpShl, "SHL V1,V2"},
		{0x9120, OpSneReg, "SNE V1,V2"},
		{0xA456, OpLdI, "LD I,456"},
		{0xB567, OpJpV0, "JP V0,567"},
		{0xC1FF, OpRnd, "RND V1,FF"},
		{0xD12F, OpDrw, "DRW V1,V2,F"},
		{0xE39E, OpSkp, "SKP V3"},
		{0xE3A1, OpSknp, "SKNP V3"},
		{0xF407, OpLdVxDT, "LD V4,DT"},
		{0xF40A, OpLdVxK, "LD V4,K"},
		{0xF415, OpLdDTVx, "LD DT,V4"},
		{0xF418, OpLdSTVx, "LD ST,V4"},
		{0xF41E, OpAddI, "ADD I,V4"},
		{0xF429, OpLdFont, "LD I,CHAR V4"},
		{0xF433, OpLdBcd, "LD [I],BCD V4"},
		{0xF455, OpLdSetMem, "LD [I],V4"},
		{0xF465, OpLdMem, "LD V4,[I]"},
		{0x5121, OpUnknown, "DB 51 21"},
		{0x8128, OpUnknown, "DB 81 28"},
		{0x9121, OpUnknown, "DB 91 21"},
		{0xE1FF, OpUnknown, "DB E1 FF"},
		{0xFFFF, OpUnknown, "DB FF FF"},
	}

	for _, tt := range tests {
		t.Run(tt.asm, func(t *testing.T) {
			in := Decode(tt.opcode)
			assert.Equal(t, tt.op, in.Op)
			assert.Equal(t, tt.opcode, in.Opcode)
			assert.Equal(t, tt.asm, in.String())
			assert.NotEmpty(t, in.Description())
		})
	}
}

func TestDecodeFields(t *testing.T) {
	in := Decode(0xD12F)
	assert.Equal(t, Instruction{
		Op:     OpDrw,
		Opcode: 0xD12F,
		X:      0x1,
		Y:      0x2,
		N:      0xF,
		NN:     0x2F,
		NNN:    0x12F,
	}, in)
}

func TestOpNames(t *testing.T) {
	assert.Equal(t, "8XY4", OpAddReg.Pattern())
	assert.Equal(t, "8XY4", OpAddReg.String())
	assert.Equal(t, "ADD", OpAddReg.Mnemonic())
	assert.Equal(t, "DB", Op(200).Mnemonic())
	assert.Equal(t, "????", Op(200).Pattern())
}

func libraryInstruction(word uint16) *chip8.Instruction {
	for _, op := range chip8.Opcodes[int(word>>12)] {
		if op.Info.Mask&word == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

func TestDecodeMatchesLibraryTable(t *testing.T) {
	for w := 0; w <= 0xFFFF; w++ {
		word := uint16(w)
		in := Decode(word)
		if in.Op == OpUnknown || in.Op == OpSys {
			continue
		}
		ins := libraryInstruction(word)
		require.NotNil(t, ins, "%04X", word)
		assert.Equal(t, strings.ToUpper(ins.Name), in.Op.Mnemonic(), "%04X", word)
	}
}

func TestDecodePatterns(t *testing.T) {
	for op := OpSys; op < opCount; op++ {
		assert.Equal(t, op, Decode(opValues[op]).Op, op.Pattern())
		assert.NotEmpty(t, op.Mnemonic(), op.Pattern())
	}
	assert.Equal(t, uint16(0xF00F), opMasks[OpSeReg])
	assert.Equal(t, uint16(0xF0FF), opMasks[OpLdMem])
	assert.Equal(t, uint16(0xFFFF), opMasks[OpCls])
	assert.Equal(t, OpUnknown, Decode(0x5121).Op)
	assert.Equal(t, OpUnknown, Decode(0x912F).Op)
}

func TestFlowHelpers(t *testing.T) {
	assert.True(t, Decode(0x1200).IsJump())
	assert.True(t, Decode(0xB200).IsJump())
	assert.False(t, Decode(0x2200).IsJump())

	assert.True(t, Decode(0x2200).IsCall())
	assert.True(t, Decode(0x00EE).IsReturn())
	assert.False(t, Decode(0x00E0).IsReturn())

	for _, op := range []uint16{0x3000, 0x4000, 0x5010, 0x9010, 0xE09E, 0xE0A1} {
		assert.True(t, Decode(op).IsSkip(), "%04X", op)
	}
	assert.False(t, Decode(0x6000).IsSkip())

	assert.True(t, Decode(0xA300).IsDataReference())
	assert.True(t, Decode(0xF00A).AwaitsInput())
	assert.False(t, Decode(0xF007).AwaitsInput())
}

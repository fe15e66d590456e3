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
	"errors"
	"fmt"
)

// Sentinels matched by the error types below through errors.Is.
var (
	ErrOutOfBounds    = errors.New("address out of bounds")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrOutOfMemory    = errors.New("program too large")
)

// -----------------------------------------------------------------------------

// An OutOfMemoryErr is returned upon attempting to load a program that
// exceeds the memory's capacity. Nothing is copied when this happens.
type OutOfMemoryErr struct {
	ProgramSize int64
	Free        int
}

func (e *OutOfMemoryErr) Error() string {
	return fmt.Sprintf("not enough memory (program size: %v, free memory: %v)",
		e.ProgramSize, e.Free)
}

func (e *OutOfMemoryErr) Is(target error) bool { return target == ErrOutOfMemory }

// A StackErr is returned when a CALL exceeds the stack capacity or a RET is
// executed on an empty stack. PC is the address of the offending instruction.
type StackErr struct {
	Overflow bool
	PC       uint16
}

func (e *StackErr) Error() string {
	if e.Overflow {
		return fmt.Sprintf("stack overflow at %03X", e.PC)
	}
	return fmt.Sprintf("stack underflow at %03X", e.PC)
}

func (e *StackErr) Is(target error) bool {
	if e.Overflow {
		return target == ErrStackOverflow
	}
	return target == ErrStackUnderflow
}

// An AccessErr is returned when the program tries to fetch from or access
// memory outside of the address space, or write to the reserved interpreter
// area below ProgramStart.
type AccessErr struct {
	Address uint16
	Size    int
	PC      uint16
}

func (e *AccessErr) Error() string {
	return fmt.Sprintf("invalid memory access of %v byte(s) at %04X (pc: %03X)",
		e.Size, e.Address, e.PC)
}

func (e *AccessErr) Is(target error) bool { return target == ErrOutOfBounds }

// An UnknownOpcodeErr is returned when the instruction word at PC does not
// decode to any CHIP-8 instruction. It is the only recoverable execution
// error: PC has already been advanced past the word when it is returned.
type UnknownOpcodeErr struct {
	Opcode uint16
	PC     uint16
}

func (e *UnknownOpcodeErr) Error() string {
	return fmt.Sprintf("unknown opcode %04X at %03X", e.Opcode, e.PC)
}

func (e *UnknownOpcodeErr) Is(target error) bool { return target == ErrUnknownOpcode }

// IsRecoverable reports whether execution may continue after err.
func IsRecoverable(err error) bool {
	return err == nil || errors.Is(err, ErrUnknownOpcode)
}

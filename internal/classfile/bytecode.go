// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package classfile

import "fmt"

// Opcodes relevant to module discovery: loading constants and invoking or
// referencing other classes. Every other opcode is skipped by length alone.
const (
	opLdc        = 0x12
	opLdcW       = 0x13
	opLdc2W      = 0x14
	opGetStatic       = 0xb2
	opPutStatic       = 0xb3
	opGetField        = 0xb4
	opPutField        = 0xb5
	opInvokeVirtual   = 0xb6
	opInvokeSpecial   = 0xb7
	opInvokeStatic    = 0xb8
	opInvokeInterface = 0xb9
	opInvokeDynamic   = 0xba
	opNew             = 0xbb
	opANewArray       = 0xbd
	opCheckCast       = 0xc0
	opInstanceOf      = 0xc1
	opWide            = 0xc4
	opTableSwitch     = 0xaa
	opLookupSwitch    = 0xab
)

// fixedOperandLen gives the number of operand bytes following each opcode
// that is NOT one of tableswitch, lookupswitch, or wide, per JVM Spec
// chapter 6. Index is the opcode value; an opcode not listed below,
// including the reserved/unused ones, has no operand bytes.
var fixedOperandLen = buildOperandLenTable()

func buildOperandLenTable() [256]int {
	var t [256]int
	for i := range t {
		t[i] = 0
	}
	// one-byte operand
	for _, op := range []byte{0x10, 0x12, 0x15, 0x16, 0x17, 0x18, 0x19, 0x36, 0x37, 0x38, 0x39, 0x3a, 0xa9, 0xbc} {
		t[op] = 1
	}
	// two-byte operand
	for _, op := range []byte{
		0x11, 0x13, 0x14, 0xa7, 0x99, 0x9a, 0x9b, 0x9c, 0x9d, 0x9e, 0x9f,
		0xa0, 0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xc6, 0xc7,
		opGetStatic, opPutStatic, opGetField, opPutField,
		opInvokeVirtual, opInvokeSpecial, opInvokeStatic,
		opNew, opANewArray, opCheckCast, opInstanceOf,
		0xbb, 0xa8,
	} {
		t[op] = 2
	}
	// invokeinterface: 2-byte index + count + 0
	t[opInvokeInterface] = 4
	// invokedynamic: 2-byte index + 2 reserved zero bytes
	t[opInvokeDynamic] = 4
	// multianewarray: 2-byte class index + 1-byte dims
	t[0xc5] = 3
	// goto_w/jsr_w: 4-byte offset
	t[0xc8] = 4
	t[0xc9] = 4
	// iinc: varnum + const
	t[0x84] = 2
	return t
}

// Instruction is one decoded bytecode instruction a scanner may care about.
// Operand fields are populated only for the opcodes that reference the
// constant pool in a way module discovery uses; for everything else only
// PC and Opcode are meaningful.
type Instruction struct {
	PC         int
	Opcode     byte
	ClassName  string    // new, anewarray, checkcast, instanceof: referenced class
	Member     MemberRef // getstatic/putstatic/getfield/putfield/invoke*: referenced member
	StringConst string   // ldc/ldc_w of a String constant
}

// walkCode decodes the instructions of a Code attribute's bytecode array,
// calling visit for each one. Unrecognized opcodes are skipped by their
// fixed or variable-length operand size so the scan never desyncs; an
// opcode fixedOperandLen has no entry for is treated as having no
// operands. Only an instruction whose operands run past the end of the
// code array produces an error.
func walkCode(code []byte, pool constantPool, visit func(Instruction) error) error {
	pc := 0
	for pc < len(code) {
		opcode := code[pc]
		start := pc
		pc++
		inst := Instruction{PC: start, Opcode: opcode}

		switch opcode {
		case opWide:
			if pc >= len(code) {
				return fmt.Errorf("classfile: truncated wide instruction at pc %d", start)
			}
			wideOp := code[pc]
			pc++
			if wideOp == 0x84 { // iinc
				pc += 4
			} else {
				pc += 2
			}
		case opTableSwitch:
			pc = alignTo4(pc)
			var err error
			pc, err = skipTableSwitch(code, pc)
			if err != nil {
				return err
			}
		case opLookupSwitch:
			pc = alignTo4(pc)
			var err error
			pc, err = skipLookupSwitch(code, pc)
			if err != nil {
				return err
			}
		case opLdc:
			if pc >= len(code) {
				return fmt.Errorf("classfile: truncated ldc at pc %d", start)
			}
			idx := uint16(code[pc])
			pc++
			if s, err := pool.stringConstantAt(idx); err == nil {
				inst.StringConst = s
			}
		case opLdcW, opLdc2W:
			idx, err := u16At(code, pc)
			if err != nil {
				return err
			}
			pc += 2
			if opcode == opLdcW {
				if s, err := pool.stringConstantAt(idx); err == nil {
					inst.StringConst = s
				}
			}
		case opGetStatic, opPutStatic, opGetField, opPutField,
			opInvokeVirtual, opInvokeSpecial, opInvokeStatic:
			idx, err := u16At(code, pc)
			if err != nil {
				return err
			}
			pc += 2
			if m, err := pool.memberRefAt(idx); err == nil {
				inst.Member = m
			}
		case opInvokeInterface:
			idx, err := u16At(code, pc)
			if err != nil {
				return err
			}
			pc += 4 // index(2) + count(1) + reserved(1)
			if m, err := pool.memberRefAt(idx); err == nil {
				inst.Member = m
			}
		case opInvokeDynamic:
			pc += 4 // indy call sites aren't module-bearing class refs; skip
		case opNew, opANewArray, opCheckCast, opInstanceOf:
			idx, err := u16At(code, pc)
			if err != nil {
				return err
			}
			pc += 2
			if n, err := pool.classNameAt(idx); err == nil {
				inst.ClassName = n
			}
		default:
			n := fixedOperandLen[opcode]
			if pc+n > len(code) {
				return fmt.Errorf("classfile: truncated instruction 0x%02x at pc %d", opcode, start)
			}
			pc += n
		}

		if err := visit(inst); err != nil {
			return err
		}
	}
	return nil
}

func alignTo4(pc int) int {
	if rem := pc % 4; rem != 0 {
		return pc + (4 - rem)
	}
	return pc
}

func u16At(code []byte, pc int) (uint16, error) {
	if pc+2 > len(code) {
		return 0, fmt.Errorf("classfile: truncated operand at pc %d", pc)
	}
	return uint16(code[pc])<<8 | uint16(code[pc+1]), nil
}

func u32At(code []byte, pc int) (uint32, error) {
	if pc+4 > len(code) {
		return 0, fmt.Errorf("classfile: truncated operand at pc %d", pc)
	}
	return uint32(code[pc])<<24 | uint32(code[pc+1])<<16 | uint32(code[pc+2])<<8 | uint32(code[pc+3]), nil
}

func skipTableSwitch(code []byte, pc int) (int, error) {
	if pc+12 > len(code) {
		return 0, fmt.Errorf("classfile: truncated tableswitch at pc %d", pc)
	}
	pc += 4 // default
	low, err := u32At(code, pc)
	if err != nil {
		return 0, err
	}
	pc += 4
	high, err := u32At(code, pc)
	if err != nil {
		return 0, err
	}
	pc += 4
	n := int(int32(high)) - int(int32(low)) + 1
	if n < 0 {
		return 0, fmt.Errorf("classfile: invalid tableswitch range at pc %d", pc)
	}
	pc += n * 4
	if pc > len(code) {
		return 0, fmt.Errorf("classfile: truncated tableswitch entries at pc %d", pc)
	}
	return pc, nil
}

func skipLookupSwitch(code []byte, pc int) (int, error) {
	if pc+8 > len(code) {
		return 0, fmt.Errorf("classfile: truncated lookupswitch at pc %d", pc)
	}
	pc += 4 // default
	npairs, err := u32At(code, pc)
	if err != nil {
		return 0, err
	}
	pc += 4
	pc += int(npairs) * 8
	if pc > len(code) {
		return 0, fmt.Errorf("classfile: truncated lookupswitch entries at pc %d", pc)
	}
	return pc, nil
}

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

package scanner

import (
	"bytes"
	"testing"

	"github.com/slimjre/slimjre/internal/classfile"
	"github.com/stretchr/testify/require"
)

// cpBuilder assembles a minimal, valid constant pool one entry at a time,
// mirroring the layout internal/classfile's reader expects: 1-based
// indices, Utf8-backed names, and Fieldref/Methodref entries that
// transitively create their own Class and NameAndType entries.
type cpBuilder struct {
	entries [][]byte
}

func newCPBuilder() *cpBuilder { return &cpBuilder{} }

func (b *cpBuilder) add(raw []byte) uint16 {
	b.entries = append(b.entries, raw)
	return uint16(len(b.entries))
}

func (b *cpBuilder) utf8(s string) uint16 {
	buf := []byte{1, byte(len(s) >> 8), byte(len(s))}
	buf = append(buf, []byte(s)...)
	return b.add(buf)
}

func (b *cpBuilder) class(internalName string) uint16 {
	nameIdx := b.utf8(internalName)
	return b.add([]byte{7, byte(nameIdx >> 8), byte(nameIdx)})
}

func (b *cpBuilder) str(s string) uint16 {
	u := b.utf8(s)
	return b.add([]byte{8, byte(u >> 8), byte(u)})
}

func (b *cpBuilder) nameAndType(name, desc string) uint16 {
	n := b.utf8(name)
	d := b.utf8(desc)
	return b.add([]byte{12, byte(n >> 8), byte(n), byte(d >> 8), byte(d)})
}

func (b *cpBuilder) methodref(owner, name, desc string) uint16 {
	c := b.class(owner)
	nt := b.nameAndType(name, desc)
	return b.add([]byte{10, byte(c >> 8), byte(c), byte(nt >> 8), byte(nt)})
}

func (b *cpBuilder) fieldref(owner, name, desc string) uint16 {
	c := b.class(owner)
	nt := b.nameAndType(name, desc)
	return b.add([]byte{9, byte(c >> 8), byte(c), byte(nt >> 8), byte(nt)})
}

func (b *cpBuilder) bytes() []byte {
	count := uint16(len(b.entries) + 1)
	out := []byte{byte(count >> 8), byte(count)}
	for _, e := range b.entries {
		out = append(out, e...)
	}
	return out
}

// Bytecode helpers. Each returns the opcode plus its operand bytes;
// concatBytecode strings a sequence together and appends a trailing
// return so the method body is well formed.
func ldc(cpIdx uint16) []byte { return []byte{0x12, byte(cpIdx)} }

func invokeStatic(cpIdx uint16) []byte { return []byte{0xb8, byte(cpIdx >> 8), byte(cpIdx)} }

func invokeVirtual(cpIdx uint16) []byte { return []byte{0xb6, byte(cpIdx >> 8), byte(cpIdx)} }

func getStatic(cpIdx uint16) []byte { return []byte{0xb2, byte(cpIdx >> 8), byte(cpIdx)} }

// aloadThis is aload_0, a zero-operand instruction used to stand in for
// "some variable, not a constant" in reflection tests.
func aloadThis() []byte { return []byte{0x2a} }

func concatBytecode(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return append(out, 0xb1) // return
}

func buildCodeBody(code []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0, 10}) // max_stack
	b.Write([]byte{0, 10}) // max_locals
	n := uint32(len(code))
	b.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	b.Write(code)
	b.Write([]byte{0, 0}) // exception_table_length
	b.Write([]byte{0, 0}) // attributes_count
	return b.Bytes()
}

// classSpec describes the class a test wants built. Code may be nil, in
// which case the class has zero methods and only its constant pool
// entries are available for ReferencedClasses()-style tests.
type classSpec struct {
	thisName   string
	code       []byte
	methodName string
	methodDesc string
}

// buildClass serializes cp plus spec into a real class file and parses it
// through classfile.Parse, so tests exercise the actual bytecode walker
// rather than a hand-built Instruction slice.
func buildClass(t *testing.T, cp *cpBuilder, spec classSpec) *classfile.ClassFile {
	t.Helper()
	thisIdx := cp.class(spec.thisName)

	hasCode := spec.code != nil
	var codeAttrNameIdx, methodNameIdx, methodDescIdx uint16
	if hasCode {
		codeAttrNameIdx = cp.utf8("Code")
		methodNameIdx = cp.utf8(spec.methodName)
		methodDescIdx = cp.utf8(spec.methodDesc)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xCA, 0xFE, 0xBA, 0xBE})
	buf.Write([]byte{0, 0})    // minor
	buf.Write([]byte{0, 0x41}) // major (Java 21)
	buf.Write(cp.bytes())
	buf.Write([]byte{0, 0x21}) // access_flags
	buf.Write([]byte{byte(thisIdx >> 8), byte(thisIdx)})
	buf.Write([]byte{0, 0}) // super_class
	buf.Write([]byte{0, 0}) // interfaces_count
	buf.Write([]byte{0, 0}) // fields_count
	if !hasCode {
		buf.Write([]byte{0, 0}) // methods_count
	} else {
		buf.Write([]byte{0, 1}) // methods_count
		buf.Write([]byte{0, 0x09})
		buf.Write([]byte{byte(methodNameIdx >> 8), byte(methodNameIdx)})
		buf.Write([]byte{byte(methodDescIdx >> 8), byte(methodDescIdx)})
		buf.Write([]byte{0, 1}) // attributes_count
		buf.Write([]byte{byte(codeAttrNameIdx >> 8), byte(codeAttrNameIdx)})
		body := buildCodeBody(spec.code)
		n := uint32(len(body))
		buf.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
		buf.Write(body)
	}
	buf.Write([]byte{0, 0}) // class attributes_count

	cf, err := classfile.Parse(buf.Bytes())
	require.NoError(t, err)
	return cf
}

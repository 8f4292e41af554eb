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

// Package classfile parses the subset of the JVM class file format that
// module discovery needs: the constant pool, the class's own name and
// supertype, and the Code attribute of each method, walked instruction by
// instruction so scanners can see which classes and members a method
// references and which string literals it loads via ldc.
//
// It deliberately does not build anything resembling a runtime class
// model - no verification, no layout, no resolution beyond what's needed
// to name a referenced class or member.
package classfile

import (
	"fmt"
)

const classMagic = 0xCAFEBABE

// Method is one method_info entry, with its Code attribute (if any)
// already decoded into a flat instruction list.
type Method struct {
	Name         string
	Descriptor   string
	AccessFlags  uint16
	Instructions []Instruction
}

// ClassFile is the result of parsing a single .class file.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16

	// Name and SuperName are internal (slash-separated) class names, e.g.
	// "java/util/ServiceLoader". SuperName is empty for java/lang/Object.
	Name      string
	SuperName string
	Interfaces []string

	Methods []Method

	pool constantPool
}

// Parse decodes a class file from raw bytes.
func Parse(data []byte) (*ClassFile, error) {
	r := newReader(data)

	magic, err := r.u4()
	if err != nil {
		return nil, fmt.Errorf("classfile: reading magic: %w", err)
	}
	if magic != classMagic {
		return nil, fmt.Errorf("classfile: bad magic 0x%08x, not a class file", magic)
	}

	minor, err := r.u2()
	if err != nil {
		return nil, err
	}
	major, err := r.u2()
	if err != nil {
		return nil, err
	}

	pool, err := readPool(r)
	if err != nil {
		return nil, err
	}

	if err := r.skip(2); err != nil { // access_flags
		return nil, err
	}

	thisClassIdx, err := r.u2()
	if err != nil {
		return nil, err
	}
	superClassIdx, err := r.u2()
	if err != nil {
		return nil, err
	}

	name, err := pool.classNameAt(thisClassIdx)
	if err != nil {
		return nil, fmt.Errorf("classfile: resolving this_class: %w", err)
	}
	var superName string
	if superClassIdx != 0 {
		superName, err = pool.classNameAt(superClassIdx)
		if err != nil {
			return nil, fmt.Errorf("classfile: resolving super_class: %w", err)
		}
	}

	ifaceCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	interfaces := make([]string, 0, ifaceCount)
	for i := uint16(0); i < ifaceCount; i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		n, err := pool.classNameAt(idx)
		if err != nil {
			return nil, fmt.Errorf("classfile: resolving interface %d: %w", i, err)
		}
		interfaces = append(interfaces, n)
	}

	if err := skipFieldsOrMethods(r, pool, func(accessFlags, nameIdx, descIdx uint16, attrs []rawAttribute) error {
		return nil // fields carry no module-discovery signal beyond the constant pool itself
	}); err != nil {
		return nil, fmt.Errorf("classfile: reading fields: %w", err)
	}

	var methods []Method
	if err := skipFieldsOrMethods(r, pool, func(accessFlags, nameIdx, descIdx uint16, attrs []rawAttribute) error {
		mName, err := pool.utf8At(nameIdx)
		if err != nil {
			return err
		}
		mDesc, err := pool.utf8At(descIdx)
		if err != nil {
			return err
		}
		m := Method{Name: mName, Descriptor: mDesc, AccessFlags: accessFlags}
		for _, a := range attrs {
			if a.name != "Code" {
				continue
			}
			insns, err := parseCodeAttribute(a.data, pool)
			if err != nil {
				return fmt.Errorf("method %s%s: %w", mName, mDesc, err)
			}
			m.Instructions = insns
		}
		methods = append(methods, m)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("classfile: reading methods: %w", err)
	}

	// class attributes (SourceFile, InnerClasses, etc.) carry nothing
	// module discovery needs; read and discard them to confirm the file
	// isn't truncated.
	if _, err := readAttributes(r, pool); err != nil {
		return nil, fmt.Errorf("classfile: reading class attributes: %w", err)
	}

	return &ClassFile{
		MinorVersion: minor,
		MajorVersion: major,
		Name:         name,
		SuperName:    superName,
		Interfaces:   interfaces,
		Methods:      methods,
		pool:         pool,
	}, nil
}

type rawAttribute struct {
	name string
	data []byte
}

func readAttributes(r *reader, pool constantPool) ([]rawAttribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	attrs := make([]rawAttribute, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		length, err := r.u4()
		if err != nil {
			return nil, err
		}
		data, err := r.bytes(int(length))
		if err != nil {
			return nil, err
		}
		name, err := pool.utf8At(nameIdx)
		if err != nil {
			return nil, fmt.Errorf("resolving attribute %d name: %w", i, err)
		}
		attrs = append(attrs, rawAttribute{name: name, data: data})
	}
	return attrs, nil
}

// skipFieldsOrMethods reads a field_info or method_info table - the two
// share an identical layout - calling handle once per entry with its raw
// attributes.
func skipFieldsOrMethods(r *reader, pool constantPool, handle func(accessFlags, nameIdx, descIdx uint16, attrs []rawAttribute) error) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		accessFlags, err := r.u2()
		if err != nil {
			return err
		}
		nameIdx, err := r.u2()
		if err != nil {
			return err
		}
		descIdx, err := r.u2()
		if err != nil {
			return err
		}
		attrs, err := readAttributes(r, pool)
		if err != nil {
			return err
		}
		if err := handle(accessFlags, nameIdx, descIdx, attrs); err != nil {
			return err
		}
	}
	return nil
}

// parseCodeAttribute decodes a Code attribute's body (JVM Spec 4.7.3) and
// walks its bytecode into a flat Instruction list. Nested attributes
// (LineNumberTable, StackMapTable, exception handlers) carry nothing
// module discovery needs and are skipped by length.
func parseCodeAttribute(data []byte, pool constantPool) ([]Instruction, error) {
	r := newReader(data)
	if err := r.skip(4); err != nil { // max_stack, max_locals
		return nil, err
	}
	codeLength, err := r.u4()
	if err != nil {
		return nil, err
	}
	code, err := r.bytes(int(codeLength))
	if err != nil {
		return nil, err
	}

	var insns []Instruction
	if err := walkCode(code, pool, func(in Instruction) error {
		insns = append(insns, in)
		return nil
	}); err != nil {
		return nil, err
	}
	return insns, nil
}

// ReferencedClasses returns every internal class name named anywhere in
// the constant pool: superclasses, interfaces, member owners, cast and
// instanceof targets, and Class constants loaded directly. This is the
// cheapest, most complete signal a scanner can use and doesn't require
// walking bytecode.
func (c *ClassFile) ReferencedClasses() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(n string) {
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	add(c.SuperName)
	for _, n := range c.Interfaces {
		add(n)
	}
	for idx, e := range c.pool {
		switch e.tag {
		case tagClass:
			if n, err := c.pool.utf8At(e.classNameIdx); err == nil {
				add(n)
			}
		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			if m, err := c.pool.memberRefAt(uint16(idx)); err == nil {
				add(m.OwnerClass)
			}
		}
	}
	return out
}

// StringConstants returns every String constant in the pool, in pool
// order. The scanners read string literals from each Instruction's
// StringConst rather than from this list.
func (c *ClassFile) StringConstants() []string {
	var out []string
	for _, e := range c.pool {
		if e.tag != tagString {
			continue
		}
		if s, err := c.pool.utf8At(e.stringUtf8Idx); err == nil {
			out = append(out, s)
		}
	}
	return out
}

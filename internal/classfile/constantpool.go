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

// Constant pool tag values, JVM Spec section 4.4.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// cpEntry is one slot of the constant pool. Only the fields a given tag
// uses are populated; the rest are zero.
type cpEntry struct {
	tag           byte
	utf8          string
	classNameIdx  uint16 // tagClass: index of a Utf8 holding the class's internal name
	nameIdx       uint16 // tagNameAndType: index of a Utf8 name
	descIdx       uint16 // tagNameAndType: index of a Utf8 descriptor
	classIdx      uint16 // tagXref: index of a tagClass entry
	natIdx        uint16 // tagXref: index of a tagNameAndType entry
	stringUtf8Idx uint16 // tagString: index of a Utf8 entry
}

// constantPool is a class file's constant pool, indexed exactly as the
// class file does: valid indices run from 1 to len(pool)-1, with index 0
// always unused and Long/Double entries consuming two slots (the second
// is left as a zero entry, per JVM Spec 4.4.5).
type constantPool []cpEntry

// utf8At resolves idx to its UTF-8 string, or an error if idx doesn't name
// a Utf8 entry.
func (p constantPool) utf8At(idx uint16) (string, error) {
	e, err := p.at(idx)
	if err != nil {
		return "", err
	}
	if e.tag != tagUtf8 {
		return "", fmt.Errorf("classfile: constant pool index %d is not Utf8 (tag %d)", idx, e.tag)
	}
	return e.utf8, nil
}

// classNameAt resolves idx, which must name a Class entry, to the class's
// internal (slash-separated) name.
func (p constantPool) classNameAt(idx uint16) (string, error) {
	e, err := p.at(idx)
	if err != nil {
		return "", err
	}
	if e.tag != tagClass {
		return "", fmt.Errorf("classfile: constant pool index %d is not Class (tag %d)", idx, e.tag)
	}
	return p.utf8At(e.classNameIdx)
}

// nameAndTypeAt resolves idx, which must name a NameAndType entry, to its
// member name and descriptor.
func (p constantPool) nameAndTypeAt(idx uint16) (name, desc string, err error) {
	e, err := p.at(idx)
	if err != nil {
		return "", "", err
	}
	if e.tag != tagNameAndType {
		return "", "", fmt.Errorf("classfile: constant pool index %d is not NameAndType (tag %d)", idx, e.tag)
	}
	name, err = p.utf8At(e.nameIdx)
	if err != nil {
		return "", "", err
	}
	desc, err = p.utf8At(e.descIdx)
	if err != nil {
		return "", "", err
	}
	return name, desc, nil
}

// MemberRef is a resolved Fieldref, Methodref, or InterfaceMethodref: the
// internal name of the owning class plus the member's name and descriptor.
type MemberRef struct {
	OwnerClass string
	Name       string
	Descriptor string
}

// memberRefAt resolves idx, which must name a Fieldref, Methodref, or
// InterfaceMethodref entry, to a MemberRef.
func (p constantPool) memberRefAt(idx uint16) (MemberRef, error) {
	e, err := p.at(idx)
	if err != nil {
		return MemberRef{}, err
	}
	switch e.tag {
	case tagFieldref, tagMethodref, tagInterfaceMethodref:
	default:
		return MemberRef{}, fmt.Errorf("classfile: constant pool index %d is not a member ref (tag %d)", idx, e.tag)
	}
	owner, err := p.classNameAt(e.classIdx)
	if err != nil {
		return MemberRef{}, err
	}
	name, desc, err := p.nameAndTypeAt(e.natIdx)
	if err != nil {
		return MemberRef{}, err
	}
	return MemberRef{OwnerClass: owner, Name: name, Descriptor: desc}, nil
}

// stringConstantAt resolves idx, which must name a String entry, to its
// UTF-8 value. Used to find ldc-loaded literals such as
// "java.naming.factory.initial" or provider class names.
func (p constantPool) stringConstantAt(idx uint16) (string, error) {
	e, err := p.at(idx)
	if err != nil {
		return "", err
	}
	if e.tag != tagString {
		return "", fmt.Errorf("classfile: constant pool index %d is not String (tag %d)", idx, e.tag)
	}
	return p.utf8At(e.stringUtf8Idx)
}

func (p constantPool) at(idx uint16) (cpEntry, error) {
	if int(idx) <= 0 || int(idx) >= len(p) {
		return cpEntry{}, fmt.Errorf("classfile: constant pool index %d out of range (pool size %d)", idx, len(p))
	}
	return p[idx], nil
}

func readPool(r *reader) (constantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	pool := make(constantPool, count)
	for i := uint16(1); i < count; i++ {
		tag, err := r.u1()
		if err != nil {
			return nil, fmt.Errorf("classfile: reading constant pool entry %d: %w", i, err)
		}
		entry := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			entry.utf8, err = r.utf8()
		case tagInteger, tagFloat:
			_, err = r.u4()
		case tagLong, tagDouble:
			_, err = r.u4()
			if err == nil {
				_, err = r.u4()
			}
		case tagClass, tagMethodType, tagModule, tagPackage:
			entry.classNameIdx, err = r.u2()
		case tagString:
			entry.stringUtf8Idx, err = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			entry.classIdx, err = r.u2()
			if err == nil {
				entry.natIdx, err = r.u2()
			}
		case tagNameAndType:
			entry.nameIdx, err = r.u2()
			if err == nil {
				entry.descIdx, err = r.u2()
			}
		case tagMethodHandle:
			_, err = r.u1()
			if err == nil {
				_, err = r.u2()
			}
		case tagDynamic, tagInvokeDynamic:
			_, err = r.u2()
			if err == nil {
				_, err = r.u2()
			}
		default:
			return nil, fmt.Errorf("classfile: unknown constant pool tag %d at entry %d", tag, i)
		}
		if err != nil {
			return nil, fmt.Errorf("classfile: reading constant pool entry %d (tag %d): %w", i, tag, err)
		}
		pool[i] = entry
		if tag == tagLong || tag == tagDouble {
			i++ // long/double occupy two constant pool slots
		}
	}
	return pool, nil
}

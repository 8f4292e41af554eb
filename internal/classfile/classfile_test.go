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

import (
	"testing"
)

// minimalClassBytes builds the smallest legal class file this package
// needs to exercise: one class ("Demo") with no superclass, no fields or
// methods, and a single String constant ("Hello locale") it never loads
// via an instruction - exactly enough to test pool-level resolution
// without hand-assembling bytecode.
func minimalClassBytes() []byte {
	return []byte{
		0xCA, 0xFE, 0xBA, 0xBE, // magic
		0x00, 0x00, // minor
		0x00, 0x41, // major
		0x00, 0x05, // constant_pool_count (indices 1..4)
		1, 0x00, 0x04, 'D', 'e', 'm', 'o', // #1 Utf8 "Demo"
		7, 0x00, 0x01, // #2 Class -> #1
		1, 0x00, 0x0C, 'H', 'e', 'l', 'l', 'o', ' ', 'l', 'o', 'c', 'a', 'l', 'e', // #3 Utf8 "Hello locale"
		8, 0x00, 0x03, // #4 String -> #3
		0x00, 0x21, // access_flags
		0x00, 0x02, // this_class = #2
		0x00, 0x00, // super_class = 0
		0x00, 0x00, // interfaces_count
		0x00, 0x00, // fields_count
		0x00, 0x00, // methods_count
		0x00, 0x00, // attributes_count
	}
}

func TestParseMinimalClass(t *testing.T) {
	cf, err := Parse(minimalClassBytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cf.Name != "Demo" {
		t.Errorf("Name = %q, want Demo", cf.Name)
	}
	if cf.SuperName != "" {
		t.Errorf("SuperName = %q, want empty", cf.SuperName)
	}
	if len(cf.Methods) != 0 {
		t.Errorf("Methods = %v, want none", cf.Methods)
	}
}

func TestStringConstants(t *testing.T) {
	cf, err := Parse(minimalClassBytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := cf.StringConstants()
	if len(got) != 1 || got[0] != "Hello locale" {
		t.Errorf("StringConstants = %v, want [\"Hello locale\"]", got)
	}
}

func TestReferencedClassesIncludesSelf(t *testing.T) {
	cf, err := Parse(minimalClassBytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := cf.ReferencedClasses()
	if len(got) != 1 || got[0] != "Demo" {
		t.Errorf("ReferencedClasses = %v, want [\"Demo\"]", got)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := append([]byte{0x00, 0x00, 0x00, 0x00}, minimalClassBytes()[4:]...)
	if _, err := Parse(data); err == nil {
		t.Errorf("expected error for bad magic")
	}
}

func TestParseRejectsTruncatedFile(t *testing.T) {
	data := minimalClassBytes()
	if _, err := Parse(data[:len(data)-5]); err == nil {
		t.Errorf("expected error for truncated file")
	}
}

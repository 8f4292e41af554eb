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
	"strings"

	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/internal/classfile"
	"github.com/slimjre/slimjre/platform/moduleindex"
)

// zipFsScanner implies jdk.zipfs when an application opens a "jar:"
// NIO file system, either via FileSystems.newFileSystem or a literal
// "jar:file:" URI string - both of which only work at runtime if
// jdk.zipfs is present, and neither of which is visible to the jdeps
// oracle since they resolve the provider via ServiceLoader, not a direct
// class reference.
type zipFsScanner struct{}

// NewZipFsScanner returns the scanner that detects use of the jar: NIO
// file system provider.
func NewZipFsScanner() ClassScanner { return zipFsScanner{} }

func (zipFsScanner) Kind() evidence.ScannerKind { return evidence.ZipFs }

func (zipFsScanner) ScanClass(idx *moduleindex.Index, cf *classfile.ClassFile) (*evidence.ModuleEvidence, error) {
	ev := evidence.New(evidence.ZipFs)
	for _, m := range cf.Methods {
		for _, in := range m.Instructions {
			if in.Member.Name == "newFileSystem" && in.Member.OwnerClass == "java/nio/file/FileSystems" {
				ev.AddModule("jdk.zipfs")
				ev.AddPattern("java.nio.file.FileSystems.newFileSystem")
			}
			if in.StringConst != "" && (hasPrefixFold(in.StringConst, "jar:")) {
				ev.AddModule("jdk.zipfs")
				ev.AddPattern(in.StringConst)
			}
		}
	}
	return ev, nil
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

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

// reflectionScanner looks for calls to the platform's dynamic class-loading
// entry points (Class.forName, ClassLoader.loadClass, and similar) and
// resolves the argument via the string constant most recently loaded by an
// ldc/ldc_w earlier in the same method - a stand-in for real dataflow
// analysis. A call site is reported as unresolved only when that most
// recent constant is absent or doesn't look like a class name; a variable
// or concatenated argument passed after such a constant was loaded is
// attributed to that constant.
type reflectionScanner struct{}

// NewReflectionScanner returns the scanner that infers module usage from
// reflective class-loading call sites.
func NewReflectionScanner() ClassScanner { return reflectionScanner{} }

func (reflectionScanner) Kind() evidence.ScannerKind { return evidence.Reflection }

var reflectiveMemberNames = map[string]bool{
	"forName":   true,
	"loadClass": true,
	"findClass": true,
}

func (reflectionScanner) ScanClass(idx *moduleindex.Index, cf *classfile.ClassFile) (*evidence.ModuleEvidence, error) {
	ev := evidence.New(evidence.Reflection)
	for _, m := range cf.Methods {
		var lastStringConst string
		for _, in := range m.Instructions {
			if in.StringConst != "" {
				lastStringConst = in.StringConst
				continue
			}
			if in.Member.Name == "" || !reflectiveMemberNames[in.Member.Name] {
				continue
			}
			if lastStringConst != "" && looksLikeClassName(lastStringConst) {
				internal := strings.ReplaceAll(lastStringConst, ".", "/")
				if mod, ok := idx.ClassNameToModule(internal); ok {
					ev.AddModule(mod)
				}
				ev.AddPattern(lastStringConst)
			} else {
				ev.AddPattern(unresolvedReflectionPattern(in.Member.Name))
			}
		}
	}
	return ev, nil
}

// unresolvedReflectionPattern marks a reflective call site whose argument
// couldn't be resolved to a load-time constant - a variable or
// concatenated expression. Recorded as evidence only; it never implies a
// module, since guessing the wrong one silently would be worse than
// reporting nothing.
func unresolvedReflectionPattern(member string) string {
	return "<unresolved:" + member + ">"
}

func looksLikeClassName(s string) bool {
	if s == "" || strings.ContainsAny(s, "/ \t\n") {
		return false
	}
	return strings.Contains(s, ".") && !strings.HasSuffix(s, ".")
}

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

// apiUsageScanner implements ClassScanner by matching every class the
// application directly references against the curated moduleindex: any
// referenced internal name whose owning module isn't java.base. This
// catches static references the external oracle may miss when the
// referenced API is only transitively reachable.
type apiUsageScanner struct{}

// NewApiUsageScanner returns the scanner that maps an application class's
// direct references (superclass, interfaces, field/method owners, cast
// targets) to platform modules via the embedded class-to-module index.
func NewApiUsageScanner() ClassScanner { return apiUsageScanner{} }

func (apiUsageScanner) Kind() evidence.ScannerKind { return evidence.ApiUsage }

func (apiUsageScanner) ScanClass(idx *moduleindex.Index, cf *classfile.ClassFile) (*evidence.ModuleEvidence, error) {
	ev := evidence.New(evidence.ApiUsage)
	for _, internalName := range cf.ReferencedClasses() {
		if m, ok := idx.ClassNameToModule(internalName); ok {
			ev.AddModule(m)
			ev.AddPattern(strings.ReplaceAll(internalName, "/", "."))
		}
	}
	return ev, nil
}

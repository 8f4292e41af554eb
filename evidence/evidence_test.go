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

package evidence

import (
	"testing"

	"github.com/slimjre/slimjre/module"
)

func TestNewIsEmptyButUsable(t *testing.T) {
	e := New(Crypto)
	if e.Kind != Crypto {
		t.Errorf("Kind = %v, want Crypto", e.Kind)
	}
	if e.Modules.Len() != 0 {
		t.Errorf("expected empty Modules, got %v", e.Modules)
	}
	e.AddModule("java.base")
	e.AddPattern("AES")
	if !e.Modules.Contains("java.base") {
		t.Errorf("AddModule did not record java.base")
	}
	if !e.Patterns.Contains("AES") {
		t.Errorf("AddPattern did not record AES")
	}
}

func TestRaiseConfidenceNeverLowers(t *testing.T) {
	e := New(Locale)
	e.RaiseConfidence(Strong)
	e.RaiseConfidence(Possible)
	if e.Confidence != Strong {
		t.Errorf("Confidence = %v, want Strong (must not lower)", e.Confidence)
	}
	e.RaiseConfidence(Definite)
	if e.Confidence != Definite {
		t.Errorf("Confidence = %v, want Definite", e.Confidence)
	}
}

func TestMergeUnionsModulesAndPatternsAndMaxConfidence(t *testing.T) {
	a := New(ApiUsage)
	a.AddModule("java.sql")
	a.AddPattern("p1")
	a.RaiseConfidence(Possible)

	b := New(ApiUsage)
	b.AddModule("java.naming")
	b.AddPattern("p2")
	b.RaiseConfidence(Strong)

	a.Merge(b)

	if !a.Modules.Contains("java.sql") || !a.Modules.Contains("java.naming") {
		t.Errorf("Merge did not union modules: %v", a.Modules)
	}
	if !a.Patterns.Contains("p1") || !a.Patterns.Contains("p2") {
		t.Errorf("Merge did not union patterns: %v", a.Patterns)
	}
	if a.Confidence != Strong {
		t.Errorf("Confidence = %v, want Strong", a.Confidence)
	}
	// b must be left unmodified.
	if b.Modules.Contains("java.sql") {
		t.Errorf("Merge mutated other")
	}
}

func TestMergeNilOtherIsNoop(t *testing.T) {
	a := New(Jmx)
	a.AddModule("java.management")
	a.Merge(nil)
	if a.Modules.Len() != 1 {
		t.Errorf("Merge(nil) changed Modules: %v", a.Modules)
	}
}

func TestSortedPatternsIsDeterministic(t *testing.T) {
	e := New(Reflection)
	e.AddPattern("zeta")
	e.AddPattern("alpha")
	e.AddPattern("mu")
	got := e.SortedPatterns()
	want := []string{"alpha", "mu", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedPatterns = %v, want %v", got, want)
		}
	}
}

func TestScannerKindStringAndAllKinds(t *testing.T) {
	if Jdeps.String() != "Jdeps" {
		t.Errorf("Jdeps.String() = %q", Jdeps.String())
	}
	if Unspecified.String() != "Unspecified" {
		t.Errorf("Unspecified.String() = %q", Unspecified.String())
	}
	if len(AllKinds) != 9 {
		t.Errorf("AllKinds has %d entries, want 9", len(AllKinds))
	}
	seen := module.NewSet()
	for _, k := range AllKinds {
		if seen.Contains(module.Name(k.String())) {
			t.Errorf("duplicate kind %v in AllKinds", k)
		}
		seen.Add(module.Name(k.String()))
	}
}

func TestConfidenceString(t *testing.T) {
	cases := map[Confidence]string{
		None:     "None",
		Possible: "Possible",
		Strong:   "Strong",
		Definite: "Definite",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", c, got, want)
		}
	}
}

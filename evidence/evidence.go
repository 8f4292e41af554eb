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

// Package evidence holds the per-scanner result type shared by every
// bytecode scanner and the external dependency oracle.
package evidence

import (
	"sort"

	"bitbucket.org/creachadair/stringset"
	"github.com/slimjre/slimjre/module"
)

// ScannerKind tags which analyzer produced a ModuleEvidence.
type ScannerKind int

// The nine scanner kinds named in the module discovery engine.
const (
	Unspecified ScannerKind = iota
	Jdeps
	ServiceLoader
	Reflection
	ApiUsage
	GraalVmMetadata
	Crypto
	Locale
	ZipFs
	Jmx
)

// String renders the scanner kind name, used in logs and AnalysisResult
// breakdowns.
func (k ScannerKind) String() string {
	switch k {
	case Jdeps:
		return "Jdeps"
	case ServiceLoader:
		return "ServiceLoader"
	case Reflection:
		return "Reflection"
	case ApiUsage:
		return "ApiUsage"
	case GraalVmMetadata:
		return "GraalVmMetadata"
	case Crypto:
		return "Crypto"
	case Locale:
		return "Locale"
	case ZipFs:
		return "ZipFs"
	case Jmx:
		return "Jmx"
	default:
		return "Unspecified"
	}
}

// AllKinds lists every local scanner kind in a stable order, used to build
// the default scanner registry and to iterate AnalysisResult breakdowns
// deterministically. Jdeps is listed first because it's the external
// dependency oracle the others extend.
var AllKinds = []ScannerKind{
	Jdeps, ServiceLoader, Reflection, ApiUsage, GraalVmMetadata, Crypto, Locale, ZipFs, Jmx,
}

// Confidence is only meaningful for the Locale scanner's three-tier
// detection.
type Confidence int

// Confidence levels, low to high.
const (
	None Confidence = iota
	Possible
	Strong
	Definite
)

func (c Confidence) String() string {
	switch c {
	case Possible:
		return "Possible"
	case Strong:
		return "Strong"
	case Definite:
		return "Definite"
	default:
		return "None"
	}
}

// ModuleEvidence is one scanner's result for one archive: the modules it
// implies, the patterns it matched (including unresolvable reflective call
// sites, reported for evidence only), and - for the Locale scanner only -
// the highest confidence tier hit.
type ModuleEvidence struct {
	Kind       ScannerKind
	Modules    module.Set
	Patterns   stringset.Set
	Confidence Confidence
}

// New returns an empty, usable ModuleEvidence for kind.
func New(kind ScannerKind) *ModuleEvidence {
	return &ModuleEvidence{
		Kind:     kind,
		Modules:  module.Set{},
		Patterns: stringset.New(),
	}
}

// AddModule records that m was implied by this scanner.
func (e *ModuleEvidence) AddModule(m module.Name) {
	e.Modules.Add(m)
}

// AddPattern records a matched (or unresolvable) pattern string.
func (e *ModuleEvidence) AddPattern(p string) {
	e.Patterns.Add(p)
}

// RaiseConfidence bumps e.Confidence up to at least c, never down.
func (e *ModuleEvidence) RaiseConfidence(c Confidence) {
	if c > e.Confidence {
		e.Confidence = c
	}
}

// Merge folds other into e: union of modules and patterns, and the higher
// of the two confidences. other is left unmodified. Merge is commutative
// and used to fold per-archive evidence into the pipeline-wide per-kind
// result, which is why determinism (spec's aggregator commutativity
// invariant) only depends on Modules/Patterns being true sets.
func (e *ModuleEvidence) Merge(other *ModuleEvidence) {
	if other == nil {
		return
	}
	e.Modules = e.Modules.Union(other.Modules)
	e.Patterns = e.Patterns.Union(other.Patterns)
	e.RaiseConfidence(other.Confidence)
}

// SortedPatterns returns the matched patterns in ascending lexical order,
// for deterministic serialization.
func (e *ModuleEvidence) SortedPatterns() []string {
	out := e.Patterns.Elements()
	sort.Strings(out)
	return out
}

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

// Package module holds the platform module name type and a deterministic,
// sorted set of module names shared by every stage of the discovery
// pipeline (scanners, the oracle, the resolver, and the aggregator).
package module

import "slices"

// Name is a dotted platform module identifier, e.g. "java.base" or
// "jdk.crypto.ec". Equality is by string.
type Name string

// Base is the module every runtime image implies and every analysis result
// must contain.
const Base Name = "java.base"

// Set is a deterministic set of module Names. The zero value (nil) reads
// as an empty set, but Add on a nil Set panics; NewSet returns a Set that
// can be added to. Iteration order is never guaranteed; use Sorted for a
// reproducible ordering.
type Set map[Name]struct{}

// NewSet builds a Set from the given names.
func NewSet(names ...Name) Set {
	s := make(Set, len(names))
	s.Add(names...)
	return s
}

// Add inserts names into s, mutating and returning it.
func (s Set) Add(names ...Name) Set {
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether n is in s.
func (s Set) Contains(n Name) bool {
	_, ok := s[n]
	return ok
}

// Clone returns a shallow copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}

// Union returns a new set containing every name in s or other.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	for n := range other {
		out[n] = struct{}{}
	}
	return out
}

// Diff returns a new set containing every name in s that is not in other.
func (s Set) Diff(other Set) Set {
	out := make(Set, len(s))
	for n := range s {
		if !other.Contains(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set containing every name in both s and other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for n := range s {
		if other.Contains(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Len returns the number of names in s.
func (s Set) Len() int { return len(s) }

// Sorted returns the names of s in ascending lexical order. The result is
// always non-nil, so two equal sets serialize identically.
func (s Set) Sorted() []Name {
	out := make([]Name, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether s and other contain exactly the same names.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Contains(n) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the set as a sorted JSON array, so that equal sets
// always produce byte-identical output.
func (s Set) MarshalJSON() ([]byte, error) {
	return marshalSortedNames(s.Sorted())
}

// UnmarshalJSON populates the set from a JSON array of names.
func (s *Set) UnmarshalJSON(data []byte) error {
	names, err := unmarshalNames(data)
	if err != nil {
		return err
	}
	*s = NewSet(names...)
	return nil
}

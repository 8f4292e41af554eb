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

package module

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetSortedIsDeterministic(t *testing.T) {
	s := NewSet("java.sql", "java.base", "java.naming")
	got := s.Sorted()
	want := []Name{"java.base", "java.naming", "java.sql"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sorted() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetUnionDiffIntersect(t *testing.T) {
	a := NewSet("x", "y")
	b := NewSet("y", "z")

	if !a.Union(b).Equal(NewSet("x", "y", "z")) {
		t.Errorf("Union mismatch")
	}
	if !a.Diff(b).Equal(NewSet("x")) {
		t.Errorf("Diff mismatch")
	}
	if !a.Intersect(b).Equal(NewSet("y")) {
		t.Errorf("Intersect mismatch")
	}
}

func TestSetJSONRoundTrip(t *testing.T) {
	s := NewSet("java.sql", "java.base")
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Set
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(s) {
		t.Errorf("round-trip mismatch: got %v, want %v", got.Sorted(), s.Sorted())
	}
}

func TestSetMarshalIsOrderIndependent(t *testing.T) {
	a := NewSet("b", "a", "c")
	b := NewSet("c", "b", "a")
	rawA, _ := json.Marshal(a)
	rawB, _ := json.Marshal(b)
	if string(rawA) != string(rawB) {
		t.Errorf("equal sets must marshal identically: %s vs %s", rawA, rawB)
	}
}

func TestSetCloneIsIndependent(t *testing.T) {
	a := NewSet("x")
	b := a.Clone()
	b.Add("y")
	if a.Contains("y") {
		t.Errorf("mutating clone must not affect original")
	}
}

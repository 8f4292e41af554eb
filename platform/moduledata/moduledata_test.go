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

package moduledata

import (
	"testing"
)

func TestLoadKnownRelease(t *testing.T) {
	r, err := Load("21")
	if err != nil {
		t.Fatalf("Load(21): %v", err)
	}
	if r.ReleaseName != "21" {
		t.Errorf("ReleaseName = %q, want 21", r.ReleaseName)
	}
	if len(r.Requires) == 0 {
		t.Errorf("Requires is empty")
	}
	if len(r.ClassIndex) == 0 {
		t.Errorf("ClassIndex is empty")
	}
	if _, ok := r.Requires["java.base"]; !ok {
		t.Errorf("Requires missing java.base")
	}
}

func TestLoadUnknownReleaseErrors(t *testing.T) {
	if _, err := Load("999"); err == nil {
		t.Errorf("expected error for unsupported release")
	}
}

func TestSupportedReleasesIncludes21(t *testing.T) {
	releases, err := SupportedReleases()
	if err != nil {
		t.Fatalf("SupportedReleases: %v", err)
	}
	found := false
	for _, r := range releases {
		if r == "21" {
			found = true
		}
		if r == "" {
			t.Errorf("SupportedReleases returned an empty release name")
		}
	}
	if !found {
		t.Errorf("SupportedReleases = %v, want it to include 21", releases)
	}
}

func TestClassIndexMapsToKnownModules(t *testing.T) {
	r, err := Load("21")
	if err != nil {
		t.Fatalf("Load(21): %v", err)
	}
	for class, mod := range r.ClassIndex {
		if _, ok := r.Requires[mod]; !ok {
			t.Errorf("classIndex entry %q maps to module %q, which is not in requires", class, mod)
		}
	}
}

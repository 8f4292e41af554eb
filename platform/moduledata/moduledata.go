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

// Package moduledata embeds, per supported JDK release, a static table of
// platform module "requires" edges and a curated class-name-to-module
// index. Both platform/moduleindex and platform/resolver load their data
// through this package rather than introspecting a live JVM, so discovery
// works identically regardless of which (if any) JDK happens to be on the
// machine running slimjre.
package moduledata

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed data/*.json
var files embed.FS

// Release is the decoded content of one data/<release>.json file.
type Release struct {
	ReleaseName string                       `json:"release"`
	Requires    map[string][]string          `json:"requires"`
	ClassIndex  map[string]string             `json:"classIndex"`
}

// Load decodes the embedded data file for the given JDK feature release
// (e.g. "21"). It returns an error naming the release if no data file for
// it was embedded, so callers can surface a clear "unsupported release"
// message instead of a missing-file stack trace.
func Load(release string) (*Release, error) {
	path := fmt.Sprintf("data/jdk%s.json", release)
	raw, err := files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("moduledata: no embedded module data for JDK release %q: %w", release, err)
	}
	var r Release
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("moduledata: parsing embedded data for release %q: %w", release, err)
	}
	return &r, nil
}

// SupportedReleases lists the JDK feature releases this binary embeds data
// for, derived from the embedded file set rather than hand-maintained.
func SupportedReleases() ([]string, error) {
	entries, err := files.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("moduledata: listing embedded data: %w", err)
	}
	var releases []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "jdk") || !strings.HasSuffix(name, ".json") {
			continue
		}
		releases = append(releases, strings.TrimSuffix(strings.TrimPrefix(name, "jdk"), ".json"))
	}
	return releases, nil
}

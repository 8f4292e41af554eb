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

package discovery

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"path/filepath"
	"regexp"
	"strings"
)

// Coordinates identifies a Java archive as a Maven artifact, best-effort.
// They exist purely to make per-archive reporting readable ("commons-codec
// 1.16 implies X") - nothing downstream depends on them being correct.
type Coordinates struct {
	GroupID    string
	ArtifactID string
	Version    string
}

func (c Coordinates) valid() bool {
	return c.GroupID != "" && c.ArtifactID != "" && c.Version != ""
}

// String renders "groupId:artifactId:version", or "" if incomplete.
func (c Coordinates) String() string {
	if !c.valid() {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", c.GroupID, c.ArtifactID, c.Version)
}

// coordinatesFromEntries inspects pom.properties, MANIFEST.MF, and the
// archive's own filename, in that priority order, and returns the first
// complete set of coordinates found.
func coordinatesFromEntries(archivePath string, files []*zip.File) Coordinates {
	var fromPom, fromManifest Coordinates
	for _, f := range files {
		switch {
		case filepath.Base(f.Name) == "pom.properties":
			if p, err := parsePomProperties(f); err == nil && p.valid() {
				fromPom = p
			}
		case strings.ToLower(filepath.Base(f.Name)) == "manifest.mf":
			if m, err := parseManifestCoordinates(f); err == nil && m.valid() {
				fromManifest = m
			}
		}
	}
	if fromPom.valid() {
		return fromPom
	}
	if fromManifest.valid() {
		return fromManifest
	}
	return coordinatesFromFilename(archivePath)
}

func parsePomProperties(f *zip.File) (Coordinates, error) {
	file, err := f.Open()
	if err != nil {
		return Coordinates{}, fmt.Errorf("opening %q: %w", f.Name, err)
	}
	defer file.Close()

	var c Coordinates
	s := bufio.NewScanner(file)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		parts := strings.SplitN(line, "=", 2)
		if len(parts) < 2 {
			continue
		}
		key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		switch key {
		case "groupId":
			c.GroupID = value
		case "artifactId":
			c.ArtifactID = value
		case "version":
			c.Version = value
		}
	}
	if s.Err() != nil {
		return Coordinates{}, fmt.Errorf("scanning pom.properties %q: %w", f.Name, s.Err())
	}
	return c, nil
}

var manifestGroupIDKeys = []string{
	"Bundle-SymbolicName",
	"Implementation-Vendor-Id",
	"Implementation-Title",
	"Automatic-Module-Name",
}

var manifestArtifactIDKeys = []string{
	"Bundle-Name",
	"Implementation-Title",
	"Specification-Title",
}

var manifestVersionKeys = []string{
	"Implementation-Version",
	"Specification-Version",
	"Bundle-Version",
}

func parseManifestCoordinates(f *zip.File) (Coordinates, error) {
	file, err := f.Open()
	if err != nil {
		return Coordinates{}, fmt.Errorf("opening %q: %w", f.Name, err)
	}
	defer file.Close()

	rd := textproto.NewReader(bufio.NewReader(file))
	h, err := rd.ReadMIMEHeader()
	// A MANIFEST.MF that doesn't end in a blank line trips textproto's EOF
	// check; everything before the truncation point still parsed.
	if err != nil && !errors.Is(err, io.EOF) {
		return Coordinates{}, fmt.Errorf("reading MIME header: %w", err)
	}

	var c Coordinates
	for _, k := range manifestGroupIDKeys {
		if v := h.Get(k); validCoordinatePart(v) {
			c.GroupID = strings.ToLower(strings.SplitN(v, ";", 2)[0])
			break
		}
	}
	for _, k := range manifestArtifactIDKeys {
		if v := h.Get(k); validCoordinatePart(v) {
			c.ArtifactID = v
			break
		}
	}
	for _, k := range manifestVersionKeys {
		if v := h.Get(k); v != "" {
			c.Version = v
			break
		}
	}
	return c, nil
}

func validCoordinatePart(s string) bool {
	return s != "" && !strings.Contains(s, " ") && !strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "%")
}

var (
	versionLeadingDigit = regexp.MustCompile(`^[0-9]`)
	versionBuildPrefix  = regexp.MustCompile(`^build[0-9]`)
	versionRcPrefix     = regexp.MustCompile(`^rc?[0-9]+([^a-zA-Z]|$)`)
)

// coordinatesFromFilename applies the "name-version.jar" convention, the
// same heuristic Maven-aware tooling uses when no embedded metadata names
// the artifact directly.
func coordinatesFromFilename(archivePath string) Coordinates {
	base := filepath.Base(archivePath)
	filename := strings.TrimSuffix(base, filepath.Ext(base))

	name, version := filename, ""
	if strings.Contains(filename, "-") {
		for i, r := range filename {
			if r != '-' {
				continue
			}
			v := filename[i+1:]
			if looksLikeVersion(v) {
				name, version = filename[:i], v
				break
			}
		}
	}
	if version == "" {
		for _, sep := range []string{"_", "."} {
			if i := strings.Index(filename, sep); i != -1 {
				v := filename[i+1:]
				if looksLikeVersion(v) {
					name, version = filename[:i], v
					break
				}
			}
		}
	}
	if version == "" {
		return Coordinates{}
	}

	groupID := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		groupID = name[:i]
	}
	return Coordinates{GroupID: groupID, ArtifactID: name, Version: version}
}

func looksLikeVersion(s string) bool {
	return versionLeadingDigit.MatchString(s) || versionBuildPrefix.MatchString(s) || versionRcPrefix.MatchString(s)
}

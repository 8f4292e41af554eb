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
	"encoding/json"
	"strings"

	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/platform/moduleindex"
)

// graalVmMetadataScanner reads META-INF/native-image/**/reflect-config.json,
// jni-config.json, and resource-config.json files. These GraalVM
// native-image hint files are frequently shipped by libraries even when
// the application doesn't build a native image, and they name exactly the
// classes the library reflectively touches - a strong, low-noise signal
// the Reflection scanner can't get from bytecode alone.
type graalVmMetadataScanner struct{}

// NewGraalVmMetadataScanner returns the resource scanner for GraalVM
// native-image metadata files.
func NewGraalVmMetadataScanner() ResourceScanner { return graalVmMetadataScanner{} }

func (graalVmMetadataScanner) Kind() evidence.ScannerKind { return evidence.GraalVmMetadata }

const nativeImagePrefix = "META-INF/native-image/"

// reflectConfigEntry models one element of reflect-config.json or
// jni-config.json, both a flat array of {"name": "<fqcn>"} objects.
type reflectConfigEntry struct {
	Name string `json:"name"`
}

// resourceConfigFile models resource-config.json's nested shape:
// {"resources":{"includes":[{"pattern":"<regex>"}, ...]}}.
type resourceConfigFile struct {
	Resources struct {
		Includes []struct {
			Pattern string `json:"pattern"`
		} `json:"includes"`
	} `json:"resources"`
}

func (graalVmMetadataScanner) ScanResource(idx *moduleindex.Index, name string, data []byte) (*evidence.ModuleEvidence, error) {
	if !strings.HasPrefix(name, nativeImagePrefix) || !strings.HasSuffix(name, ".json") {
		return nil, nil
	}
	ev := evidence.New(evidence.GraalVmMetadata)

	var entries []reflectConfigEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		for _, e := range entries {
			resolveDotted(ev, idx, e.Name)
		}
		return ev, nil
	}

	var resources resourceConfigFile
	if err := json.Unmarshal(data, &resources); err == nil {
		for _, inc := range resources.Resources.Includes {
			if dotted, ok := classNameFromResourcePattern(inc.Pattern); ok {
				resolveDotted(ev, idx, dotted)
			}
		}
		return ev, nil
	}

	// Some native-image metadata files (proxy-config.json's array-of-arrays,
	// serialization-config.json) use a shape neither of the above models; a
	// parse miss there isn't an archive-level failure.
	return nil, nil
}

// classNameFromResourcePattern extracts a dotted class name from a
// resource-config.json include pattern whose path names a .class file,
// stripping GraalVM's \Q...\E literal-regex quoting if present.
func classNameFromResourcePattern(pattern string) (string, bool) {
	p := strings.TrimPrefix(pattern, `\Q`)
	p = strings.TrimSuffix(p, `\E`)
	if !strings.HasSuffix(p, ".class") {
		return "", false
	}
	p = strings.TrimSuffix(p, ".class")
	p = strings.TrimPrefix(p, "/")
	return strings.ReplaceAll(p, "/", "."), true
}

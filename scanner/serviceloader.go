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
	"bufio"
	"bytes"
	"strings"

	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/platform/moduleindex"
)

// serviceLoaderScanner reads META-INF/services/<provider-interface> files:
// the file name itself is the interface being provided, and each
// non-comment line names a provider implementation class. Both can imply a
// platform module, e.g. META-INF/services/java.security.Provider naming a
// class from jdk.crypto.ec.
type serviceLoaderScanner struct{}

// NewServiceLoaderScanner returns the resource scanner for
// META-INF/services provider-configuration files.
func NewServiceLoaderScanner() ResourceScanner { return serviceLoaderScanner{} }

func (serviceLoaderScanner) Kind() evidence.ScannerKind { return evidence.ServiceLoader }

const servicesPrefix = "META-INF/services/"

func (serviceLoaderScanner) ScanResource(idx *moduleindex.Index, name string, data []byte) (*evidence.ModuleEvidence, error) {
	if !strings.HasPrefix(name, servicesPrefix) {
		return nil, nil
	}
	ev := evidence.New(evidence.ServiceLoader)

	iface := strings.TrimPrefix(name, servicesPrefix)
	resolveDotted(ev, idx, iface)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		resolveDotted(ev, idx, line)
	}
	return ev, nil
}

// resolveDotted looks up a dotted class name against the module index and
// records a hit, regardless of whether it resolved - the raw name is
// always useful evidence.
func resolveDotted(ev *evidence.ModuleEvidence, idx *moduleindex.Index, dotted string) {
	if dotted == "" {
		return
	}
	ev.AddPattern(dotted)
	internal := strings.ReplaceAll(dotted, ".", "/")
	if m, ok := idx.ClassNameToModule(internal); ok {
		ev.AddModule(m)
	}
}

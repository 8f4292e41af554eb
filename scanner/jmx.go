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

// jmxClassScanner implies java.management from direct javax.management
// references, and additionally implies jdk.management.agent when the
// class touches the attach API (com.sun.tools.attach) to start a remote
// JMX agent dynamically - a pattern invisible to jdeps because
// VirtualMachine.attach resolves its target agent by PID at runtime.
type jmxClassScanner struct{}

// NewJmxClassScanner returns the scanner for direct JMX API usage.
func NewJmxClassScanner() ClassScanner { return jmxClassScanner{} }

func (jmxClassScanner) Kind() evidence.ScannerKind { return evidence.Jmx }

func (jmxClassScanner) ScanClass(idx *moduleindex.Index, cf *classfile.ClassFile) (*evidence.ModuleEvidence, error) {
	ev := evidence.New(evidence.Jmx)
	for _, internalName := range cf.ReferencedClasses() {
		switch {
		case strings.HasPrefix(internalName, "javax/management/remote/"):
			ev.AddModule("java.management.rmi")
			ev.AddPattern(strings.ReplaceAll(internalName, "/", "."))
		case strings.HasPrefix(internalName, "javax/management/"):
			ev.AddModule("java.management")
			ev.AddPattern(strings.ReplaceAll(internalName, "/", "."))
		case strings.HasPrefix(internalName, "com/sun/tools/attach/"):
			ev.AddModule("jdk.management.agent")
			ev.AddPattern(strings.ReplaceAll(internalName, "/", "."))
		}
	}
	return ev, nil
}

// jmxResourceScanner reads the standard remote-agent JMX properties file
// that application packaging sometimes ships
// (conf/management.properties-style resources bundled as
// META-INF/jmxremote.properties) as a weaker, presence-only signal that
// the JMX remote agent will be enabled.
type jmxResourceScanner struct{}

// NewJmxResourceScanner returns the resource scanner for JMX remote agent
// configuration.
func NewJmxResourceScanner() ResourceScanner { return jmxResourceScanner{} }

func (jmxResourceScanner) Kind() evidence.ScannerKind { return evidence.Jmx }

const jmxRemotePropertiesFile = "META-INF/jmxremote.properties"

func (jmxResourceScanner) ScanResource(idx *moduleindex.Index, name string, data []byte) (*evidence.ModuleEvidence, error) {
	if name != jmxRemotePropertiesFile {
		return nil, nil
	}
	ev := evidence.New(evidence.Jmx)
	ev.AddModule("java.management")
	ev.AddModule("jdk.management.agent")
	ev.AddPattern(jmxRemotePropertiesFile)
	return ev, nil
}

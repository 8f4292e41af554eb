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
	"fmt"
	"strings"

	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/internal/classfile"
	"github.com/slimjre/slimjre/log"
	"github.com/slimjre/slimjre/platform/moduleindex"
)

// CryptoMode governs whether the Crypto scanner's detection is trusted,
// forced on, or forced off.
type CryptoMode int

const (
	// CryptoAuto adds jdk.crypto.ec only when the scanner detects SSL/TLS
	// or crypto API usage.
	CryptoAuto CryptoMode = iota
	// CryptoAlways adds jdk.crypto.ec unconditionally.
	CryptoAlways
	// CryptoNever never adds jdk.crypto.ec, even on positive detection.
	CryptoNever
)

// String renders m the way it's spelled on the command line.
func (m CryptoMode) String() string {
	switch m {
	case CryptoAlways:
		return "always"
	case CryptoNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseCryptoMode parses the --crypto flag value.
func ParseCryptoMode(s string) (CryptoMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return CryptoAuto, nil
	case "always":
		return CryptoAlways, nil
	case "never":
		return CryptoNever, nil
	default:
		return CryptoAuto, fmt.Errorf("unknown crypto mode %q (want auto, always, or never)", s)
	}
}

// cryptoInternalPrefixes are the internal-name prefixes whose presence in a
// class's constant pool signals SSL/TLS or cryptographic API usage.
// java/security/cert/ is excluded deliberately: certificate parsing ships
// in java.base and doesn't imply jdk.crypto.ec on its own.
var cryptoInternalPrefixes = []string{
	"javax/net/ssl/",
	"java/net/http/",
	"javax/crypto/",
	"java/security/",
}

// cryptoClassScanner flags SSL/TLS and cryptographic API usage by matching
// internal-name prefixes referenced from a class's constant pool.
type cryptoClassScanner struct {
	mode CryptoMode
}

// NewCryptoClassScanner returns the scanner that inspects classes for
// SSL/TLS and cryptographic API references, honoring mode.
func NewCryptoClassScanner(mode CryptoMode) ClassScanner { return cryptoClassScanner{mode: mode} }

func (cryptoClassScanner) Kind() evidence.ScannerKind { return evidence.Crypto }

func (s cryptoClassScanner) ScanClass(idx *moduleindex.Index, cf *classfile.ClassFile) (*evidence.ModuleEvidence, error) {
	ev := evidence.New(evidence.Crypto)

	var hit string
	for _, internalName := range cf.ReferencedClasses() {
		if strings.HasPrefix(internalName, "java/security/cert/") {
			continue
		}
		for _, prefix := range cryptoInternalPrefixes {
			if strings.HasPrefix(internalName, prefix) {
				hit = internalName
				break
			}
		}
		if hit != "" {
			break
		}
	}

	switch s.mode {
	case CryptoAlways:
		ev.AddModule("jdk.crypto.ec")
	case CryptoNever:
		if hit != "" {
			log.Warnf("scanner: crypto usage detected (%s) but cryptoMode=never suppresses jdk.crypto.ec", hit)
		}
	default:
		if hit != "" {
			ev.AddModule("jdk.crypto.ec")
			ev.AddPattern(hit)
		}
	}
	return ev, nil
}

// cryptoResourceScanner reads META-INF/services/java.security.Provider,
// the standard JCA provider-registration file, and resolves each named
// provider class to its module.
type cryptoResourceScanner struct{}

// NewCryptoResourceScanner returns the resource scanner for JCA provider
// registration files.
func NewCryptoResourceScanner() ResourceScanner { return cryptoResourceScanner{} }

func (cryptoResourceScanner) Kind() evidence.ScannerKind { return evidence.Crypto }

const jcaProviderServiceFile = servicesPrefix + "java.security.Provider"

func (cryptoResourceScanner) ScanResource(idx *moduleindex.Index, name string, data []byte) (*evidence.ModuleEvidence, error) {
	if name != jcaProviderServiceFile {
		return nil, nil
	}
	// Delegate to the generic service-file line scanner; it resolves each
	// provider class name via the index exactly the same way, but the
	// evidence must be re-tagged as Crypto, not ServiceLoader.
	ev, err := serviceLoaderScanner{}.ScanResource(idx, name, data)
	if err != nil || ev == nil {
		return nil, err
	}
	ev.Kind = evidence.Crypto
	return ev, nil
}

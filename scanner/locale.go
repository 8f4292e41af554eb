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

// localeScanner grades locale evidence into three confidence tiers:
// Possible for merely referencing locale-sensitive types, Strong for
// calling a locale-sensitive formatting entry point, and Definite for
// referencing a non-English Locale constant by field name. Only Definite
// implies jdk.localedata - the strongest signal that the application
// actually needs locale data beyond the root locale jlink includes by
// default.
type localeScanner struct{}

// NewLocaleScanner returns the scanner that grades locale-sensitivity
// evidence into confidence tiers.
func NewLocaleScanner() ClassScanner { return localeScanner{} }

func (localeScanner) Kind() evidence.ScannerKind { return evidence.Locale }

// nonEnglishLocaleFields are the java.util.Locale static fields naming a
// locale other than the root/English ones jlink's default locale data
// already covers. A getstatic reference to one of these by field name is
// Tier 1/Definite.
var nonEnglishLocaleFields = map[string]bool{
	"FRENCH":             true,
	"FRANCE":             true,
	"GERMAN":             true,
	"GERMANY":            true,
	"ITALIAN":            true,
	"ITALY":              true,
	"JAPANESE":           true,
	"JAPAN":              true,
	"KOREAN":             true,
	"KOREA":              true,
	"CHINESE":            true,
	"CHINA":              true,
	"PRC":                true,
	"TAIWAN":             true,
	"SIMPLIFIED_CHINESE": true,
	"TRADITIONAL_CHINESE": true,
}

// strongLocaleSensitiveMembers are the internationalization entry points
// named for Tier 2/Strong.
var strongLocaleSensitiveMembers = map[string]bool{
	"ofLocalizedDate":     true,
	"ofLocalizedDateTime": true,
	"getCurrencyInstance": true,
}

// possibleLocaleSensitiveMembers are the generic locale APIs named for
// Tier 3/Possible, beyond the bare java/util/Locale reference the scan
// already gates on.
var possibleLocaleSensitiveMembers = map[string]bool{
	"getDefault": true,
}

func (localeScanner) ScanClass(idx *moduleindex.Index, cf *classfile.ClassFile) (*evidence.ModuleEvidence, error) {
	ev := evidence.New(evidence.Locale)
	referencesLocale := false
	for _, internalName := range cf.ReferencedClasses() {
		if internalName == "java/util/Locale" ||
			strings.HasPrefix(internalName, "java/text/") ||
			strings.HasPrefix(internalName, "java/time/format/") {
			referencesLocale = true
		}
	}
	if !referencesLocale {
		return ev, nil
	}
	ev.RaiseConfidence(evidence.Possible)

	for _, m := range cf.Methods {
		for _, in := range m.Instructions {
			if in.Member.Name == "" {
				continue
			}
			if in.Member.OwnerClass == "java/util/Locale" && nonEnglishLocaleFields[in.Member.Name] {
				ev.RaiseConfidence(evidence.Definite)
				ev.AddPattern("java.util.Locale." + in.Member.Name)
				continue
			}
			if strongLocaleSensitiveMembers[in.Member.Name] {
				ev.RaiseConfidence(evidence.Strong)
				ev.AddPattern(in.Member.Name)
				continue
			}
			if possibleLocaleSensitiveMembers[in.Member.Name] {
				ev.AddPattern(in.Member.Name)
			}
		}
	}

	if ev.Confidence == evidence.Definite {
		ev.AddModule("jdk.localedata")
	}
	return ev, nil
}

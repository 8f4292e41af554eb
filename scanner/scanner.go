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

// Package scanner runs the bytecode and resource analyzers that imply
// platform module usage from an application's own class files and
// META-INF resources. Every scanner sees each class file exactly once -
// ScanArchive parses a .class entry a single time and fans the result out
// to every registered ClassScanner, rather than having each scanner
// re-parse the same bytes.
package scanner

import (
	"fmt"
	"path"

	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/internal/classfile"
	"github.com/slimjre/slimjre/log"
	"github.com/slimjre/slimjre/platform/moduleindex"
	"github.com/slimjre/slimjre/slimerr"
)

// ClassScanner inspects one parsed class file for platform module
// evidence.
type ClassScanner interface {
	Kind() evidence.ScannerKind
	ScanClass(idx *moduleindex.Index, cf *classfile.ClassFile) (*evidence.ModuleEvidence, error)
}

// ResourceScanner inspects one non-.class archive entry (a manifest,
// service provider file, GraalVM metadata file, and so on) for platform
// module evidence.
type ResourceScanner interface {
	Kind() evidence.ScannerKind
	ScanResource(idx *moduleindex.Index, name string, data []byte) (*evidence.ModuleEvidence, error)
}

// Entry is one archive entry handed to ScanArchive: its path within the
// archive that directly contains it (without any nested-archive prefix)
// and its decompressed bytes.
type Entry struct {
	Name string
	Data []byte
}

// Result is ScanArchive's combined output: one merged ModuleEvidence per
// scanner kind that produced any evidence at all.
type Result struct {
	ByKind map[evidence.ScannerKind]*evidence.ModuleEvidence
}

// merge folds ev into the result under its own kind.
func (r *Result) merge(ev *evidence.ModuleEvidence) {
	if ev == nil {
		return
	}
	existing, ok := r.ByKind[ev.Kind]
	if !ok {
		r.ByKind[ev.Kind] = ev
		return
	}
	existing.Merge(ev)
}

// ScanArchive runs every registered scanner over entries, parsing each
// .class entry once. A parse failure on one class file is logged and
// skipped rather than aborting the scan: a single malformed or
// version-skewed class file shouldn't block discovery for the rest of the
// archive.
func ScanArchive(idx *moduleindex.Index, entries []Entry, classScanners []ClassScanner, resourceScanners []ResourceScanner) (*Result, error) {
	res := &Result{ByKind: make(map[evidence.ScannerKind]*evidence.ModuleEvidence)}
	var errs error

	for _, e := range entries {
		if isClassEntry(e.Name) {
			if path.Base(e.Name) == "module-info.class" {
				continue
			}
			cf, err := classfile.Parse(e.Data)
			if err != nil {
				log.Debugf("scanner: skipping unparseable class entry %s: %v", e.Name, err)
				continue
			}
			for _, s := range classScanners {
				ev, err := s.ScanClass(idx, cf)
				if err != nil {
					errs = slimerr.Append(errs, slimerr.New(slimerr.Scanner, e.Name, fmt.Errorf("%s: %w", s.Kind(), err)))
					continue
				}
				res.merge(ev)
			}
			continue
		}
		for _, s := range resourceScanners {
			ev, err := s.ScanResource(idx, e.Name, e.Data)
			if err != nil {
				errs = slimerr.Append(errs, slimerr.New(slimerr.Scanner, e.Name, fmt.Errorf("%s: %w", s.Kind(), err)))
				continue
			}
			res.merge(ev)
		}
	}
	return res, errs
}

func isClassEntry(name string) bool {
	return len(name) > len(".class") && name[len(name)-len(".class"):] == ".class"
}

// DefaultClassScanners returns the class-file scanners wired into the
// pipeline by default. cryptoMode governs the Crypto scanner's behavior.
func DefaultClassScanners(cryptoMode CryptoMode) []ClassScanner {
	return []ClassScanner{
		NewReflectionScanner(),
		NewApiUsageScanner(),
		NewCryptoClassScanner(cryptoMode),
		NewLocaleScanner(),
		NewZipFsScanner(),
		NewJmxClassScanner(),
	}
}

// DefaultResourceScanners returns the resource-file scanners wired into
// the pipeline by default.
func DefaultResourceScanners() []ResourceScanner {
	return []ResourceScanner{
		NewServiceLoaderScanner(),
		NewGraalVmMetadataScanner(),
		NewCryptoResourceScanner(),
		NewJmxResourceScanner(),
	}
}

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

// Package aggregator runs discovery, the bytecode scanners, and the jdeps
// oracle over every archive of an application, in bounded parallel, and
// folds the results into one platform module set closed under the
// resolver's "requires" graph.
package aggregator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/slimjre/slimjre/discovery"
	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/log"
	"github.com/slimjre/slimjre/module"
	"github.com/slimjre/slimjre/oracle"
	"github.com/slimjre/slimjre/platform/moduleindex"
	"github.com/slimjre/slimjre/platform/resolver"
	"github.com/slimjre/slimjre/scanner"
	"github.com/slimjre/slimjre/slimerr"
)

// Config controls how Run fans work out and which sources of evidence it
// consults.
type Config struct {
	// JdkRelease is the JDK feature release to resolve modules against,
	// e.g. "21".
	JdkRelease string
	// MaxConcurrency bounds how many archives are scanned at once. Zero
	// means unbounded.
	MaxConcurrency int
	// IncludeModules are added to the result unconditionally, and their
	// transitive requirements are resolved alongside the discovered set.
	IncludeModules module.Set
	// ExcludeModules are removed from the result after transitive
	// resolution - the caller accepts responsibility for the runtime
	// behavior of a smaller image.
	ExcludeModules module.Set
	// Jdeps is the external dependency oracle. A nil Jdeps (or one that
	// isn't available on the host) simply contributes no evidence; the
	// scanners still produce a usable result on their own.
	Jdeps *oracle.Jdeps
	// TopLevelArchivePaths are the archives handed to jdeps directly - the
	// same top-level entry points given to discovery.
	TopLevelArchivePaths []string
	// CryptoMode governs the Crypto scanner's Auto/Always/Never behavior.
	// The zero value is CryptoAuto.
	CryptoMode scanner.CryptoMode
	// DisabledScanners excludes the given scanner kinds from the pipeline
	// entirely, as if they were never registered. Jdeps is controlled
	// separately via the Jdeps field, not this map.
	DisabledScanners map[evidence.ScannerKind]bool
}

func (cfg Config) classScanners() []scanner.ClassScanner {
	all := scanner.DefaultClassScanners(cfg.CryptoMode)
	out := make([]scanner.ClassScanner, 0, len(all))
	for _, s := range all {
		if !cfg.DisabledScanners[s.Kind()] {
			out = append(out, s)
		}
	}
	return out
}

func (cfg Config) resourceScanners() []scanner.ResourceScanner {
	all := scanner.DefaultResourceScanners()
	out := make([]scanner.ResourceScanner, 0, len(all))
	for _, s := range all {
		if !cfg.DisabledScanners[s.Kind()] {
			out = append(out, s)
		}
	}
	return out
}

// PerArchiveModules maps an archive's discovery path to the modules its
// own scan implied, for the "why is this module here" breakdown.
type PerArchiveModules map[string]module.Set

// Result is everything Run produces: the final closed module set, the
// breakdown by scanner kind, and the breakdown by archive.
type Result struct {
	Modules       module.Set
	ByScannerKind map[evidence.ScannerKind]*evidence.ModuleEvidence
	ByArchive     PerArchiveModules
}

// Run scans every archive in archives and combines their evidence with the
// jdeps oracle's result (if configured) into one resolved module set.
func Run(ctx context.Context, archives []*discovery.Archive, cfg Config) (*Result, error) {
	idx, err := moduleindex.ForRelease(cfg.JdkRelease)
	if err != nil {
		return nil, err
	}
	res, err := resolver.ForRelease(cfg.JdkRelease)
	if err != nil {
		return nil, err
	}

	classScanners := cfg.classScanners()
	resourceScanners := cfg.resourceScanners()

	type archiveScan struct {
		path    string
		modules module.Set
		byKind  map[evidence.ScannerKind]*evidence.ModuleEvidence
	}
	scans := make([]archiveScan, len(archives))

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxConcurrency > 0 {
		g.SetLimit(cfg.MaxConcurrency)
	}
	for i, arc := range archives {
		i, arc := i, arc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := scanner.ScanArchive(idx, arc.Entries, classScanners, resourceScanners)
			if err != nil {
				// Per-archive scanner errors are warnings, not aborts: one
				// bad class file shouldn't sink the whole analysis.
				log.Warnf("aggregator: scanner errors in %s: %v", arc.Path, err)
				err = nil
			}
			modules := module.NewSet()
			for _, ev := range result.ByKind {
				modules = modules.Union(ev.Modules)
			}
			scans[i] = archiveScan{path: arc.Path, modules: modules, byKind: result.ByKind}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, slimerr.New(slimerr.Scanner, "", err)
	}

	combined := module.NewSet()
	byKind := make(map[evidence.ScannerKind]*evidence.ModuleEvidence)
	byArchive := make(PerArchiveModules, len(scans))
	for _, s := range scans {
		combined = combined.Union(s.modules)
		byArchive[s.path] = s.modules
		for kind, ev := range s.byKind {
			if existing, ok := byKind[kind]; ok {
				existing.Merge(ev)
			} else {
				byKind[kind] = ev
			}
		}
	}

	if cfg.Jdeps != nil && cfg.Jdeps.Available() && len(cfg.TopLevelArchivePaths) > 0 {
		jdepsModules, err := cfg.Jdeps.ListDeps(ctx, cfg.TopLevelArchivePaths)
		if err != nil {
			return nil, err
		}
		ev := evidence.New(evidence.Jdeps)
		ev.Modules = jdepsModules
		ev.RaiseConfidence(evidence.Definite)
		byKind[evidence.Jdeps] = ev
		combined = combined.Union(jdepsModules)
	}

	combined = combined.Union(cfg.IncludeModules)

	closed, err := res.ResolveTransitive(combined)
	if err != nil {
		return nil, err
	}
	closed = closed.Diff(cfg.ExcludeModules)
	switch cfg.CryptoMode {
	case scanner.CryptoAlways:
		closed.Add("jdk.crypto.ec")
	case scanner.CryptoNever:
		closed = closed.Diff(module.NewSet("jdk.crypto.ec"))
	}
	closed.Add(module.Base) // java.base is never excludable

	return &Result{
		Modules:       closed,
		ByScannerKind: byKind,
		ByArchive:     byArchive,
	}, nil
}

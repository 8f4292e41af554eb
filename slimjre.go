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

// Package slimjre discovers the minimal set of JDK platform modules an
// application actually uses and can invoke jlink to build a runtime image
// containing only those modules. See ./cmd/slimjre for the command-line
// front end; this package is the library API other Go programs embed
// directly.
package slimjre

import (
	"context"
	"fmt"
	"time"

	"github.com/slimjre/slimjre/aggregator"
	"github.com/slimjre/slimjre/discovery"
	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/linker"
	"github.com/slimjre/slimjre/log"
	"github.com/slimjre/slimjre/module"
	"github.com/slimjre/slimjre/oracle"
	"github.com/slimjre/slimjre/scanner"
	"github.com/slimjre/slimjre/slimerr"
)

// ScanConfig controls one AnalyzeOnly or CreateMinimalJre call.
type ScanConfig struct {
	// ArchivePaths are the application's top-level archives: typically
	// the main JAR plus any additional JARs on its classpath. At least
	// one is required.
	ArchivePaths []string
	// JdkRelease is the JDK feature release to resolve modules against,
	// e.g. "21".
	JdkRelease string
	// JdepsPath is the path to a jdeps binary. Empty uses "jdeps" from
	// PATH; discovery still succeeds without jdeps, using bytecode
	// scanners alone.
	JdepsPath string
	// IncludeModules are unconditionally part of the result.
	IncludeModules module.Set
	// ExcludeModules are removed from the result after resolution, except
	// java.base which can never be excluded.
	ExcludeModules module.Set
	// SkipGlobs excludes matching archive entries from scanning.
	SkipGlobs []string
	// MaxConcurrency bounds concurrent per-archive scanning. Zero means
	// unbounded.
	MaxConcurrency int
	// ScratchDir is the base directory for discovery scratch space. Empty
	// uses the OS temp directory.
	ScratchDir string
	// CryptoMode governs the Crypto scanner's handling of jdk.crypto.ec:
	// the zero value, CryptoAuto, adds it only on a detected TLS/crypto
	// API reference. CryptoAlways forces it in unconditionally;
	// CryptoNever suppresses it even when usage is detected.
	CryptoMode scanner.CryptoMode
	// DisabledScanners excludes the given scanner kinds from the pipeline
	// entirely, as if they were never registered.
	DisabledScanners map[evidence.ScannerKind]bool
}

// Validate reports a Configuration error for anything downstream stages
// would otherwise fail on less legibly.
func (c *ScanConfig) Validate() error {
	if len(c.ArchivePaths) == 0 {
		return slimerr.Newf(slimerr.Configuration, "", "at least one archive path is required")
	}
	if c.JdkRelease == "" {
		return slimerr.Newf(slimerr.Configuration, "", "a JDK release is required")
	}
	return nil
}

// AnalysisResult is everything AnalyzeOnly produces.
type AnalysisResult struct {
	Modules       module.Set
	ByScannerKind map[evidence.ScannerKind]*evidence.ModuleEvidence
	ByArchive     aggregator.PerArchiveModules
	Duration      time.Duration
}

// AnalyzeOnly runs the full discovery pipeline over cfg.ArchivePaths and
// returns the resolved module set without building a runtime image.
func AnalyzeOnly(ctx context.Context, cfg ScanConfig) (*AnalysisResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	session, err := discovery.NewSession(cfg.ScratchDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warnf("slimjre: cleaning up scratch dir: %v", err)
		}
	}()

	opts := discovery.DefaultOptions()
	opts.SkipGlobs = cfg.SkipGlobs

	var allArchives []*discovery.Archive
	var errs error
	for _, path := range cfg.ArchivePaths {
		archives, err := session.DiscoverPath(ctx, path, opts)
		allArchives = append(allArchives, archives...)
		if err != nil {
			errs = slimerr.Append(errs, err)
		}
	}
	if len(allArchives) == 0 {
		return nil, slimerr.New(slimerr.Discovery, "", fmt.Errorf("no archives could be opened: %w", errs))
	}
	if errs != nil {
		log.Warnf("slimjre: %d archive(s) had discovery errors: %v", len(slimerr.Errors(errs)), errs)
	}

	// oracle.New defaults to "jdeps" on PATH; aggregator.Run checks
	// Available() before using it, so a missing binary just means the
	// oracle contributes no evidence, not a hard failure.
	jdeps := oracle.New(cfg.JdepsPath)

	result, err := aggregator.Run(ctx, allArchives, aggregator.Config{
		JdkRelease:           cfg.JdkRelease,
		MaxConcurrency:       cfg.MaxConcurrency,
		IncludeModules:       cfg.IncludeModules,
		ExcludeModules:       cfg.ExcludeModules,
		Jdeps:                jdeps,
		TopLevelArchivePaths: cfg.ArchivePaths,
		CryptoMode:           cfg.CryptoMode,
		DisabledScanners:     cfg.DisabledScanners,
	})
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		Modules:       result.Modules,
		ByScannerKind: result.ByScannerKind,
		ByArchive:     result.ByArchive,
		Duration:      time.Since(start),
	}, nil
}

// BuildConfig controls CreateMinimalJre: a ScanConfig plus the jlink
// invocation details.
type BuildConfig struct {
	ScanConfig
	JavaHome      string
	OutputDir     string
	JlinkPath     string
	StripDebug    bool
	NoHeaderFiles bool
	NoManPages    bool
	Compress      linker.CompressionLevel
}

// BuildResult is everything CreateMinimalJre produces.
type BuildResult struct {
	Analysis *AnalysisResult
	Image    *linker.BuildResult
}

// CreateMinimalJre runs AnalyzeOnly and then invokes jlink to build a
// runtime image from the resulting module set.
func CreateMinimalJre(ctx context.Context, cfg BuildConfig) (*BuildResult, error) {
	analysis, err := AnalyzeOnly(ctx, cfg.ScanConfig)
	if err != nil {
		return nil, err
	}

	modulePath := cfg.JavaHome
	if modulePath != "" {
		modulePath = modulePath + "/jmods"
	}
	image, err := linker.Build(ctx, linker.BuildConfig{
		JlinkPath:     cfg.JlinkPath,
		ModulePath:    modulePath,
		Modules:       analysis.Modules,
		OutputDir:     cfg.OutputDir,
		StripDebug:    cfg.StripDebug,
		NoHeaderFiles: cfg.NoHeaderFiles,
		NoManPages:    cfg.NoManPages,
		Compress:      cfg.Compress,
	})
	if err != nil {
		return nil, err
	}

	return &BuildResult{Analysis: analysis, Image: image}, nil
}

// NewDiscoverySession exposes a raw discovery.Session to callers that want
// to drive discovery manually (e.g. to scan archives already extracted to
// disk, or to share one scratch area across several ScanConfig runs).
func NewDiscoverySession(scratchDir string) (*discovery.Session, error) {
	return discovery.NewSession(scratchDir)
}

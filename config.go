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

package slimjre

import (
	"flag"
	"fmt"
	"sort"
	"strconv"

	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/linker"
	"github.com/slimjre/slimjre/module"
	"github.com/slimjre/slimjre/scanner"
)

// CLIConfig is the subset of ScanConfig and BuildConfig that has a
// corresponding command-line flag. It exists so the CLI front end and
// anything else that drives slimjre from a flat argument list share one
// definition of "the recognized flags" instead of two that can drift
// apart. Parsing the output of ToArgs reproduces an equal CLIConfig when
// the config is already in the form FromArgs returns: non-nil
// ArchivePaths, IncludeModules, ExcludeModules and DisabledScanners,
// SkipGlobs in sorted order (ToArgs sorts them), and DisabledScanners
// naming only ServiceLoader and GraalVmMetadata (no other kind has a flag).
type CLIConfig struct {
	ArchivePaths     []string
	JdkRelease       string
	JavaHome         string
	JdepsPath        string
	JlinkPath        string
	Output           string
	MaxConcurrency   int
	StripDebug       bool
	NoHeaderFiles    bool
	NoManPages       bool
	Compress         linker.CompressionLevel
	IncludeModules   module.Set
	ExcludeModules   module.Set
	SkipGlobs        []string
	CryptoMode       scanner.CryptoMode
	DisabledScanners map[evidence.ScannerKind]bool
	AnalyzeOnly      bool
	JSON             bool
	Verbose          bool
}

// ScanConfig projects the recognized subset down to a ScanConfig, ready to
// pass to AnalyzeOnly.
func (c CLIConfig) ScanConfig() ScanConfig {
	return ScanConfig{
		ArchivePaths:     c.ArchivePaths,
		JdkRelease:       c.JdkRelease,
		JdepsPath:        c.JdepsPath,
		IncludeModules:   c.IncludeModules,
		ExcludeModules:   c.ExcludeModules,
		SkipGlobs:        c.SkipGlobs,
		MaxConcurrency:   c.MaxConcurrency,
		CryptoMode:       c.CryptoMode,
		DisabledScanners: c.DisabledScanners,
	}
}

// BuildConfig projects the recognized subset down to a BuildConfig, ready
// to pass to CreateMinimalJre.
func (c CLIConfig) BuildConfig() BuildConfig {
	return BuildConfig{
		ScanConfig:    c.ScanConfig(),
		JavaHome:      c.JavaHome,
		OutputDir:     c.Output,
		JlinkPath:     c.JlinkPath,
		StripDebug:    c.StripDebug,
		NoHeaderFiles: c.NoHeaderFiles,
		NoManPages:    c.NoManPages,
		Compress:      c.Compress,
	}
}

// ToArgs renders c as a command-line argument list that FromArgs parses
// back into an equal CLIConfig, within the limits described on CLIConfig.
// Boolean flags that are false (other than
// the scanner-disabling pair, which default to false and so are simply
// omitted) are emitted explicitly so the round trip doesn't depend on a
// flag's default value.
func (c CLIConfig) ToArgs() []string {
	var args []string
	add := func(name, value string) { args = append(args, "-"+name, value) }

	add("jdk-release", c.JdkRelease)
	add("java-home", c.JavaHome)
	add("jdeps", c.JdepsPath)
	add("jlink", c.JlinkPath)
	add("output", c.Output)
	add("max-concurrency", strconv.Itoa(c.MaxConcurrency))
	add("compress", string(c.Compress))
	add("crypto", c.CryptoMode.String())
	args = append(args, "-strip-debug="+strconv.FormatBool(c.StripDebug))
	args = append(args, "-no-header-files="+strconv.FormatBool(c.NoHeaderFiles))
	args = append(args, "-no-man-pages="+strconv.FormatBool(c.NoManPages))
	args = append(args, "-analyze-only="+strconv.FormatBool(c.AnalyzeOnly))
	args = append(args, "-json="+strconv.FormatBool(c.JSON))
	args = append(args, "-verbose="+strconv.FormatBool(c.Verbose))
	if c.DisabledScanners[evidence.ServiceLoader] {
		args = append(args, "-no-service-scan")
	}
	if c.DisabledScanners[evidence.GraalVmMetadata] {
		args = append(args, "-no-graalvm-metadata")
	}
	for _, m := range c.IncludeModules.Sorted() {
		add("include-module", string(m))
	}
	for _, m := range c.ExcludeModules.Sorted() {
		add("exclude-module", string(m))
	}
	skipGlobs := append([]string(nil), c.SkipGlobs...)
	sort.Strings(skipGlobs)
	for _, g := range skipGlobs {
		add("skip-glob", g)
	}
	args = append(args, c.ArchivePaths...)
	return args
}

// FromArgs parses argv, in the form ToArgs produces, into a CLIConfig.
func FromArgs(argv []string) (CLIConfig, error) {
	fs := flag.NewFlagSet("slimjre", flag.ContinueOnError)

	jdkRelease := fs.String("jdk-release", "21", "")
	javaHome := fs.String("java-home", "", "")
	jdepsPath := fs.String("jdeps", "", "")
	jlinkPath := fs.String("jlink", "", "")
	output := fs.String("output", "", "")
	maxConcurrency := fs.Int("max-concurrency", 0, "")
	compress := fs.String("compress", string(linker.CompressZipDeflate), "")
	cryptoModeFlag := fs.String("crypto", "auto", "")
	stripDebug := fs.Bool("strip-debug", true, "")
	noHeaderFiles := fs.Bool("no-header-files", true, "")
	noManPages := fs.Bool("no-man-pages", true, "")
	analyzeOnly := fs.Bool("analyze-only", false, "")
	jsonOut := fs.Bool("json", false, "")
	verbose := fs.Bool("verbose", false, "")
	noServiceScan := fs.Bool("no-service-scan", false, "")
	noGraalVmMetadata := fs.Bool("no-graalvm-metadata", false, "")

	var include, exclude, skipGlob stringListFlag
	fs.Var(&include, "include-module", "")
	fs.Var(&exclude, "exclude-module", "")
	fs.Var(&skipGlob, "skip-glob", "")

	if err := fs.Parse(argv); err != nil {
		return CLIConfig{}, err
	}

	cryptoMode, err := scanner.ParseCryptoMode(*cryptoModeFlag)
	if err != nil {
		return CLIConfig{}, fmt.Errorf("parsing -crypto: %w", err)
	}

	disabled := map[evidence.ScannerKind]bool{}
	if *noServiceScan {
		disabled[evidence.ServiceLoader] = true
	}
	if *noGraalVmMetadata {
		disabled[evidence.GraalVmMetadata] = true
	}

	return CLIConfig{
		ArchivePaths:     fs.Args(),
		JdkRelease:       *jdkRelease,
		JavaHome:         *javaHome,
		JdepsPath:        *jdepsPath,
		JlinkPath:        *jlinkPath,
		Output:           *output,
		MaxConcurrency:   *maxConcurrency,
		StripDebug:       *stripDebug,
		NoHeaderFiles:    *noHeaderFiles,
		NoManPages:       *noManPages,
		Compress:         linker.CompressionLevel(*compress),
		IncludeModules:   module.NewSet(toModuleNames(include)...),
		ExcludeModules:   module.NewSet(toModuleNames(exclude)...),
		SkipGlobs:        skipGlob,
		CryptoMode:       cryptoMode,
		DisabledScanners: disabled,
		AnalyzeOnly:      *analyzeOnly,
		JSON:             *jsonOut,
		Verbose:          *verbose,
	}, nil
}

type stringListFlag []string

func (f *stringListFlag) String() string {
	if f == nil {
		return ""
	}
	out := ""
	for i, s := range *f {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

func (f *stringListFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func toModuleNames(ss []string) []module.Name {
	out := make([]module.Name, len(ss))
	for i, s := range ss {
		out[i] = module.Name(s)
	}
	return out
}

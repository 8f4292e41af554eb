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

// Command slimjre discovers the platform modules an application needs
// and, optionally, builds a minimal jlink runtime image from them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/slimjre/slimjre"
	"github.com/slimjre/slimjre/log"
	"github.com/slimjre/slimjre/slimerr"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cfg, err := slimjre.FromArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slimjre: %v\n", err)
		return 2
	}
	if len(cfg.ArchivePaths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: slimjre [flags] <archive> [archive...]")
		return 2
	}
	if cfg.JavaHome == "" {
		cfg.JavaHome = os.Getenv("JAVA_HOME")
	}
	cfg.JdepsPath = resolveTool(cfg.JdepsPath, cfg.JavaHome, "jdeps")
	cfg.JlinkPath = resolveTool(cfg.JlinkPath, cfg.JavaHome, "jlink")

	logger := &log.DefaultLogger{Verbose: cfg.Verbose, TraceEnabled: false}
	log.SetLogger(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.AnalyzeOnly || cfg.Output == "" {
		result, err := slimjre.AnalyzeOnly(ctx, cfg.ScanConfig())
		if err != nil {
			return reportErr(err)
		}
		printAnalysis(result, cfg.JSON)
		return 0
	}

	buildResult, err := slimjre.CreateMinimalJre(ctx, cfg.BuildConfig())
	if err != nil {
		return reportErr(err)
	}
	printAnalysis(buildResult.Analysis, cfg.JSON)
	fmt.Printf("runtime image written to %s (%d bytes)\n", buildResult.Image.OutputDir, buildResult.Image.ImageSizeBytes)
	return 0
}

func resolveTool(explicit, javaHome, tool string) string {
	if explicit != "" {
		return explicit
	}
	if javaHome != "" {
		return javaHome + "/bin/" + tool
	}
	return ""
}

func printAnalysis(result *slimjre.AnalysisResult, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"modules":  result.Modules,
			"duration": result.Duration.String(),
		})
		return
	}
	fmt.Printf("resolved %d module(s) in %s:\n", result.Modules.Len(), result.Duration)
	for _, m := range result.Modules.Sorted() {
		fmt.Printf("  %s\n", m)
	}
}

func reportErr(err error) int {
	for _, e := range slimerr.Errors(err) {
		fmt.Fprintf(os.Stderr, "slimjre: %v\n", e)
	}
	return 1
}

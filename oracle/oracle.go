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

// Package oracle shells out to the JDK's own jdeps tool to get its static
// dependency analysis, the one signal the bytecode scanners can't
// reproduce themselves: jdeps already knows the exact module graph of the
// JDK it ships with, including internal JDK-internal package-to-module
// mappings slimjre doesn't try to replicate.
package oracle

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/slimjre/slimjre/module"
	"github.com/slimjre/slimjre/slimerr"
)

// Jdeps wraps an invocation of the jdeps binary.
type Jdeps struct {
	// BinaryPath is the path to the jdeps executable, typically
	// $JAVA_HOME/bin/jdeps. Defaults to "jdeps" (resolved via PATH) if
	// empty.
	BinaryPath string
}

// New returns a Jdeps oracle using binaryPath, or the "jdeps" found on
// PATH if binaryPath is empty.
func New(binaryPath string) *Jdeps {
	if binaryPath == "" {
		binaryPath = "jdeps"
	}
	return &Jdeps{BinaryPath: binaryPath}
}

// ListDeps runs `jdeps --list-deps` against the given archive paths and
// returns the platform modules jdeps reports as required. Archives with
// no discoverable module dependency produce an empty set, not an error.
func (j *Jdeps) ListDeps(ctx context.Context, archivePaths []string) (module.Set, error) {
	if len(archivePaths) == 0 {
		return module.NewSet(), nil
	}

	args := append([]string{"--list-deps"}, archivePaths...)
	cmd := exec.CommandContext(ctx, j.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, slimerr.New(slimerr.ExternalTool, strings.Join(archivePaths, ","),
			fmt.Errorf("jdeps --list-deps failed: %w (stderr: %s)", err, stderr.String()))
	}

	return parseListDeps(stdout.Bytes()), nil
}

// parseListDeps reads jdeps --list-deps output. Each line is either a bare
// module name ("java.sql") or, for a JDK-internal dependency, a module
// name followed by " (jdk.internal...)"; only the leading module name
// before any whitespace is kept. Lines indented by three spaces and lines
// whose first word is "JDK" are not module names; they're skipped.
func parseListDeps(out []byte) module.Set {
	set := module.NewSet()
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(line, "   ") {
			continue
		}
		name := strings.Fields(trimmed)[0]
		if name == "" || name == "JDK" {
			continue
		}
		set.Add(module.Name(name))
	}
	return set
}

// Available reports whether the configured jdeps binary can actually be
// found, so callers can fall back to bytecode-only discovery with a clear
// warning instead of a confusing exec error mid-pipeline.
func (j *Jdeps) Available() bool {
	_, err := exec.LookPath(j.BinaryPath)
	return err == nil
}

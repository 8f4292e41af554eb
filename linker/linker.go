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

// Package linker invokes the JDK's jlink tool to build a runtime image
// from a resolved set of platform modules.
package linker

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/slimjre/slimjre/module"
	"github.com/slimjre/slimjre/slimerr"
)

// CompressionLevel mirrors jlink's --compress values.
type CompressionLevel string

const (
	CompressNone CompressionLevel = "0"
	CompressZip  CompressionLevel = "1"
	CompressZipDeflate CompressionLevel = "2"
)

// BuildConfig describes one jlink invocation.
type BuildConfig struct {
	// JlinkPath is the path to the jlink binary, typically
	// $JAVA_HOME/bin/jlink. Defaults to "jlink" resolved via PATH.
	JlinkPath string
	// ModulePath is passed to jlink's --module-path; usually
	// $JAVA_HOME/jmods.
	ModulePath string
	// Modules is the resolved module set to link, including java.base.
	Modules module.Set
	// OutputDir is where jlink writes the image. It must not already
	// exist; jlink refuses to overwrite a directory.
	OutputDir string
	// StripDebug, NoHeaderFiles, and NoManPages map directly to jlink's
	// own flags of the same purpose, all defaulting to on for a minimal
	// image.
	StripDebug    bool
	NoHeaderFiles bool
	NoManPages    bool
	Compress      CompressionLevel
}

// Validate reports a Configuration error for anything jlink would
// otherwise fail on in a less legible way.
func (c *BuildConfig) Validate() error {
	if c.ModulePath == "" {
		return slimerr.Newf(slimerr.Configuration, "", "module path is required")
	}
	if c.Modules.Len() == 0 {
		return slimerr.Newf(slimerr.Configuration, "", "at least one module is required")
	}
	if !c.Modules.Contains(module.Base) {
		return slimerr.Newf(slimerr.Configuration, "", "module set must include %s", module.Base)
	}
	if c.OutputDir == "" {
		return slimerr.Newf(slimerr.Configuration, "", "output directory is required")
	}
	if _, err := os.Stat(c.OutputDir); err == nil {
		return slimerr.Newf(slimerr.Configuration, c.OutputDir, "output directory already exists")
	}
	return nil
}

func (c *BuildConfig) jlinkPath() string {
	if c.JlinkPath != "" {
		return c.JlinkPath
	}
	return "jlink"
}

func (c *BuildConfig) args() []string {
	args := []string{
		"--module-path", c.ModulePath,
		"--add-modules", moduleArg(c.Modules),
		"--output", c.OutputDir,
	}
	if c.StripDebug {
		args = append(args, "--strip-debug")
	}
	if c.NoHeaderFiles {
		args = append(args, "--no-header-files")
	}
	if c.NoManPages {
		args = append(args, "--no-man-pages")
	}
	if c.Compress != "" {
		args = append(args, "--compress", string(c.Compress))
	}
	return args
}

func moduleArg(modules module.Set) string {
	names := modules.Sorted()
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += string(n)
	}
	return out
}

// BuildResult reports the outcome of a successful jlink invocation.
type BuildResult struct {
	OutputDir     string
	Modules       module.Set
	ImageSizeBytes int64
}

// Build runs jlink according to cfg and measures the resulting image.
func Build(ctx context.Context, cfg BuildConfig) (*BuildResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, cfg.jlinkPath(), cfg.args()...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, slimerr.New(slimerr.Build, cfg.OutputDir,
			fmt.Errorf("jlink failed: %w (stderr: %s)", err, stderr.String()))
	}

	size, err := dirSize(cfg.OutputDir)
	if err != nil {
		return nil, slimerr.New(slimerr.Build, cfg.OutputDir, fmt.Errorf("measuring output image: %w", err))
	}

	return &BuildResult{
		OutputDir:      cfg.OutputDir,
		Modules:        cfg.Modules.Clone(),
		ImageSizeBytes: size,
	}, nil
}

// dirSize sums the size of every regular file under root.
func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Available reports whether the configured jlink binary can be found.
func (c *BuildConfig) Available() bool {
	_, err := exec.LookPath(c.jlinkPath())
	return err == nil
}

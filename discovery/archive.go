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

// Package discovery walks an application's archives - the top-level JAR
// or WAR plus every archive nested inside it - and hands each one's class
// and resource entries to the scanner package, the way archive extraction
// walks a JAR's contents for package inventory, but collecting bytes for
// bytecode scanning instead of package metadata.
package discovery

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/slimjre/slimjre/internal/units"
	"github.com/slimjre/slimjre/log"
	"github.com/slimjre/slimjre/scanner"
	"github.com/slimjre/slimjre/slimerr"
)

const (
	defaultMaxNestingDepth = 16
	defaultMaxOpenedBytes  = 4 * units.GiB
	defaultMinZipBytes     = 30
)

var nestedArchiveExtensions = []string{".jar", ".war", ".ear"}

func isNestedArchive(name string) bool {
	for _, ext := range nestedArchiveExtensions {
		if strings.EqualFold(path.Ext(name), ext) {
			return true
		}
	}
	return false
}

// Options configures archive discovery.
type Options struct {
	// MaxNestingDepth bounds how many levels of nested archive (a WAR
	// containing a JAR containing a JAR) discovery will descend into.
	MaxNestingDepth int
	// MaxOpenedBytes bounds total decompressed bytes read across an entire
	// discovery session, across every nested archive.
	MaxOpenedBytes int64
	// MinZipBytes below which a nested entry is assumed to not actually be
	// a usable zip, rather than attempted and logged as a failure.
	MinZipBytes int
	// SkipGlobs excludes archive entries whose full path (including nested
	// prefixes, e.g. "app.jar!BOOT-INF/lib/guava.jar!com/foo/Bar.class")
	// matches any of these glob patterns.
	SkipGlobs []string
}

// DefaultOptions returns the bounds archive extraction uses by default.
func DefaultOptions() Options {
	return Options{
		MaxNestingDepth: defaultMaxNestingDepth,
		MaxOpenedBytes:  defaultMaxOpenedBytes,
		MinZipBytes:     defaultMinZipBytes,
	}
}

// Archive is one archive found during discovery: the top-level archive
// the user pointed slimjre at, or one nested inside it.
type Archive struct {
	// Path is the archive's location for reporting: the top-level file's
	// OS path, or "<parent>!<entry name>" for a nested archive.
	Path        string
	Coordinates Coordinates
	Entries     []scanner.Entry
}

// walker accumulates archives and enforces the byte and depth bounds
// across the whole recursive walk.
type walker struct {
	opts        Options
	openedBytes int64
	skip        []glob.Glob
	archives    []*Archive
}

// Walk extracts data, a top-level archive's raw bytes, into one or more
// Archive results: itself plus every archive nested inside it, bounded by
// opts.
func Walk(ctx context.Context, topLevelPath string, data []byte, opts Options) ([]*Archive, error) {
	w := &walker{opts: opts}
	for _, pattern := range opts.SkipGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, slimerr.New(slimerr.Configuration, "", fmt.Errorf("invalid skip glob %q: %w", pattern, err))
		}
		w.skip = append(w.skip, g)
	}

	if err := w.extract(ctx, topLevelPath, data, 1); err != nil {
		return w.archives, err
	}
	return w.archives, nil
}

func (w *walker) skipped(entryPath string) bool {
	for _, g := range w.skip {
		if g.Match(entryPath) {
			return true
		}
	}
	return false
}

func (w *walker) extract(ctx context.Context, archivePath string, data []byte, depth int) error {
	if depth > w.opts.MaxNestingDepth {
		return slimerr.New(slimerr.Discovery, archivePath,
			fmt.Errorf("reached max nesting depth %d", w.opts.MaxNestingDepth))
	}
	if len(data) < w.opts.MinZipBytes {
		log.Warnf("discovery: ignoring %q, too small to be a zip (%d bytes)", archivePath, len(data))
		return nil
	}
	w.openedBytes += int64(len(data))
	if w.openedBytes > w.opts.MaxOpenedBytes {
		return slimerr.New(slimerr.Discovery, archivePath,
			fmt.Errorf("reached max opened bytes %d", w.opts.MaxOpenedBytes))
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return slimerr.New(slimerr.Discovery, archivePath, fmt.Errorf("not a valid archive: %w", err))
	}

	arc := &Archive{Path: archivePath, Coordinates: coordinatesFromEntries(archivePath, zr.File)}

	var errs error
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return slimerr.New(slimerr.Discovery, archivePath, fmt.Errorf("halted: %w", err))
		}
		if f.FileInfo().IsDir() {
			continue
		}
		entryPath := archivePath + "!" + f.Name
		if w.skipped(entryPath) {
			continue
		}

		if isNestedArchive(f.Name) {
			nested, err := readZipEntry(f)
			if err != nil {
				errs = slimerr.Append(errs, slimerr.New(slimerr.Discovery, entryPath, err))
				continue
			}
			if err := w.extract(ctx, entryPath, nested, depth+1); err != nil {
				errs = slimerr.Append(errs, err)
			}
			continue
		}

		if !isScannableEntry(f.Name) {
			continue
		}
		b, err := readZipEntry(f)
		if err != nil {
			errs = slimerr.Append(errs, slimerr.New(slimerr.Discovery, entryPath, err))
			continue
		}
		w.openedBytes += int64(len(b))
		arc.Entries = append(arc.Entries, scanner.Entry{Name: f.Name, Data: b})
	}

	w.archives = append(w.archives, arc)

	// A nested archive that produced zero scannable entries isn't a
	// failure on its own - it's common for a lib jar to be pure resources
	// or native code - but if ALL archives end up empty the caller should
	// know discovery found nothing to scan, which it checks itself.
	return errs
}

func isScannableEntry(name string) bool {
	return strings.HasSuffix(name, ".class") ||
		strings.HasPrefix(name, "META-INF/services/") ||
		strings.HasPrefix(name, "META-INF/native-image/") ||
		name == "META-INF/jmxremote.properties"
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", f.Name, err)
	}
	defer rc.Close()
	buf, err := io.ReadAll(rc)
	if err != nil {
		return buf, fmt.Errorf("reading %q: %w", f.Name, err)
	}
	return buf, nil
}

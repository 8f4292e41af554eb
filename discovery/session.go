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

package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/slimjre/slimjre/log"
	"github.com/slimjre/slimjre/slimerr"
)

// Session owns one discovery run's scratch directory and guarantees that
// scratch area is removed exactly once regardless of how the session ends.
// Walk and DiscoverPath hold every archive, nested ones included, in
// memory and write nothing into the scratch directory.
type Session struct {
	ScratchDir string

	closeOnce sync.Once
	closeErr  error
}

// NewSession creates a uniquely named scratch directory under baseDir
// (os.TempDir() if empty) for one discovery run.
func NewSession(baseDir string) (*Session, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	dir := filepath.Join(baseDir, "slimjre-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, slimerr.New(slimerr.Discovery, dir, fmt.Errorf("creating scratch dir: %w", err))
	}
	return &Session{ScratchDir: dir}, nil
}

// Close removes the session's scratch directory. Safe to call more than
// once and from a deferred call alongside an explicit one; only the first
// call does the work.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.ScratchDir == "" {
			return
		}
		if err := os.RemoveAll(s.ScratchDir); err != nil {
			s.closeErr = slimerr.New(slimerr.Discovery, s.ScratchDir, fmt.Errorf("removing scratch dir: %w", err))
		}
	})
	return s.closeErr
}

// DiscoverPath reads topLevelPath from disk and walks it (and any nested
// archives within it) according to opts. Panics during the walk - from a
// corrupt zip central directory triggering an out-of-bounds slice, say -
// are recovered and surfaced as a Discovery error rather than crashing the
// whole analysis.
func (s *Session) DiscoverPath(ctx context.Context, topLevelPath string, opts Options) (archives []*Archive, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("discovery: recovered panic scanning %q: %v", topLevelPath, r)
			err = slimerr.New(slimerr.Discovery, topLevelPath, fmt.Errorf("panic during discovery: %v", r))
		}
	}()

	data, readErr := os.ReadFile(topLevelPath)
	if readErr != nil {
		return nil, slimerr.New(slimerr.Discovery, topLevelPath, fmt.Errorf("reading archive: %w", readErr))
	}

	archives, err = Walk(ctx, topLevelPath, data, opts)
	return archives, err
}

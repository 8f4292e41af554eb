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

// Package moduleindex answers "which platform module declares this
// class?" from the embedded per-release data in platform/moduledata,
// instead of from a live JDK's module graph.
package moduleindex

import (
	"strings"
	"sync"

	"github.com/slimjre/slimjre/module"
	"github.com/slimjre/slimjre/platform/moduledata"
	"github.com/slimjre/slimjre/slimerr"
)

// Index resolves internal (slash-separated) class names to the platform
// module that declares them, for one JDK feature release.
type Index struct {
	release string
	byClass map[string]module.Name
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Index{}
)

// ForRelease returns the Index for the given JDK feature release (e.g.
// "21"), building it once and caching it for subsequent calls.
func ForRelease(release string) (*Index, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if idx, ok := cache[release]; ok {
		return idx, nil
	}

	data, err := moduledata.Load(release)
	if err != nil {
		return nil, slimerr.New(slimerr.Index, "", err)
	}

	byClass := make(map[string]module.Name, len(data.ClassIndex))
	for cls, mod := range data.ClassIndex {
		byClass[cls] = module.Name(mod)
	}

	idx := &Index{release: release, byClass: byClass}
	cache[release] = idx
	return idx, nil
}

// ClassNameToModule resolves an internal class name (e.g.
// "javax/naming/Context" or "java/sql/Connection") to the non-java.base
// module that declares it. The second return is false for classes the
// index has no entry for, which callers should treat as "no additional
// module implied" rather than an error - most classes live in java.base
// or in the application's own code, and the index deliberately only
// carries classes outside java.base.
func (idx *Index) ClassNameToModule(internalName string) (module.Name, bool) {
	internalName = strings.TrimPrefix(internalName, "/")
	m, ok := idx.byClass[internalName]
	if !ok {
		return "", false
	}
	return m, true
}

// Release reports the JDK feature release this index was built for.
func (idx *Index) Release() string { return idx.release }

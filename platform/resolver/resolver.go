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

// Package resolver computes the transitive closure of a platform module
// "requires" graph, the way the jlink module resolver would, from the
// embedded per-release data in platform/moduledata.
package resolver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/slimjre/slimjre/module"
	"github.com/slimjre/slimjre/platform/moduledata"
	"github.com/slimjre/slimjre/slimerr"
)

// Resolver answers module-graph questions for one JDK feature release.
type Resolver struct {
	release  string
	requires map[module.Name]module.Set
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Resolver{}
)

// ForRelease returns the Resolver for the given JDK feature release,
// building it once and caching it for subsequent calls.
func ForRelease(release string) (*Resolver, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if r, ok := cache[release]; ok {
		return r, nil
	}

	data, err := moduledata.Load(release)
	if err != nil {
		return nil, slimerr.New(slimerr.ModuleResolution, "", err)
	}

	requires := make(map[module.Name]module.Set, len(data.Requires))
	for mod, deps := range data.Requires {
		names := make([]module.Name, len(deps))
		for i, d := range deps {
			names[i] = module.Name(d)
		}
		requires[module.Name(mod)] = module.NewSet(names...)
	}

	r := &Resolver{release: release, requires: requires}
	cache[release] = r
	return r, nil
}

// Release reports the JDK feature release this resolver was built for.
func (r *Resolver) Release() string { return r.release }

// IsAvailable reports whether m is a module this JDK release ships.
func (r *Resolver) IsAvailable(m module.Name) bool {
	_, ok := r.requires[m]
	return ok
}

// AvailableModules returns every module this JDK release ships.
func (r *Resolver) AvailableModules() module.Set {
	out := make(module.Set, len(r.requires))
	for m := range r.requires {
		out.Add(m)
	}
	return out
}

// DirectRequires returns the modules m directly requires, not including m
// itself or any transitive dependency.
func (r *Resolver) DirectRequires(m module.Name) (module.Set, error) {
	deps, ok := r.requires[m]
	if !ok {
		return nil, slimerr.New(slimerr.ModuleResolution, "",
			fmt.Errorf("module %q is not available in JDK release %s", m, r.release))
	}
	return deps.Clone(), nil
}

// FilterToAvailable returns the subset of seed that this JDK release
// actually ships, dropping anything it doesn't recognize. Used when a
// scanner's static data table names a module from a newer or older
// release than the one being linked against.
func (r *Resolver) FilterToAvailable(seed module.Set) module.Set {
	out := make(module.Set, seed.Len())
	for _, m := range seed.Sorted() {
		if r.IsAvailable(m) {
			out.Add(m)
		}
	}
	return out
}

// looksLikePlatformModule reports whether name carries the java./jdk.
// prefix reserved for platform modules. Anything else looks like an
// application module name, not a typo'd platform one.
func looksLikePlatformModule(name module.Name) bool {
	return strings.HasPrefix(string(name), "java.") || strings.HasPrefix(string(name), "jdk.")
}

// ResolveTransitive returns seed plus every module seed's members require,
// directly or transitively, always including java.base. A seed name this
// release doesn't recognize is silently dropped if it doesn't look like a
// platform module (an application module name has no business in the
// platform graph); a seed name with a java./jdk. prefix that isn't
// recognized is an error, since it means some earlier stage inferred a
// platform module name the target runtime can't actually provide.
func (r *Resolver) ResolveTransitive(seed module.Set) (module.Set, error) {
	out := module.NewSet(module.Base)
	pending := seed.Sorted()
	for len(pending) > 0 {
		m := pending[0]
		pending = pending[1:]
		if out.Contains(m) {
			continue
		}
		deps, ok := r.requires[m]
		if !ok {
			if !looksLikePlatformModule(m) {
				continue
			}
			return nil, slimerr.New(slimerr.ModuleResolution, "",
				fmt.Errorf("module %q is not available in JDK release %s", m, r.release))
		}
		out.Add(m)
		pending = append(pending, deps.Sorted()...)
	}
	return out, nil
}

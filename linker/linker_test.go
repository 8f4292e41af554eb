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

package linker

import (
	"path/filepath"
	"testing"

	"github.com/slimjre/slimjre/module"
	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresJavaBase(t *testing.T) {
	cfg := BuildConfig{
		ModulePath: "/jdk/jmods",
		Modules:    module.NewSet("java.sql"),
		OutputDir:  filepath.Join(t.TempDir(), "out"),
	}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsExistingOutputDir(t *testing.T) {
	dir := t.TempDir()
	cfg := BuildConfig{
		ModulePath: "/jdk/jmods",
		Modules:    module.NewSet(module.Base),
		OutputDir:  dir,
	}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidatePasses(t *testing.T) {
	cfg := BuildConfig{
		ModulePath: "/jdk/jmods",
		Modules:    module.NewSet(module.Base, "java.sql"),
		OutputDir:  filepath.Join(t.TempDir(), "out"),
	}
	assert.NoError(t, cfg.Validate())
}

func TestModuleArgIsSorted(t *testing.T) {
	cfg := &BuildConfig{Modules: module.NewSet("java.sql", module.Base, "java.naming")}
	assert.Equal(t, "java.base,java.naming,java.sql", moduleArg(cfg.Modules))
}

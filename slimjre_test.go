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
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestJar(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.jar")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestValidateRequiresArchivePaths(t *testing.T) {
	cfg := ScanConfig{JdkRelease: "21"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresJdkRelease(t *testing.T) {
	cfg := ScanConfig{ArchivePaths: []string{"app.jar"}}
	assert.Error(t, cfg.Validate())
}

func TestAnalyzeOnlyAlwaysIncludesJavaBase(t *testing.T) {
	path := writeTestJar(t, map[string]string{
		"com/example/Main.class": "not really bytecode; skipped as an unparseable class entry",
	})

	result, err := AnalyzeOnly(context.Background(), ScanConfig{
		ArchivePaths: []string{path},
		JdkRelease:   "21",
	})
	require.NoError(t, err)
	assert.True(t, result.Modules.Contains("java.base"))
}

func TestAnalyzeOnlyFindsNamingModuleFromServiceFile(t *testing.T) {
	path := writeTestJar(t, map[string]string{
		"META-INF/services/javax.naming.spi.InitialContextFactory": "com.sun.jndi.dns.DnsContextFactory\n",
	})

	result, err := AnalyzeOnly(context.Background(), ScanConfig{
		ArchivePaths: []string{path},
		JdkRelease:   "21",
	})
	require.NoError(t, err)
	assert.True(t, result.Modules.Contains("java.naming"))
	assert.True(t, result.Modules.Contains("jdk.naming.dns"))
}

func TestAnalyzeOnlyMissingArchiveErrors(t *testing.T) {
	_, err := AnalyzeOnly(context.Background(), ScanConfig{
		ArchivePaths: []string{"/does/not/exist.jar"},
		JdkRelease:   "21",
	})
	assert.Error(t, err)
}

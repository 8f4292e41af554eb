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

package aggregator

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slimjre/slimjre/discovery"
	"github.com/slimjre/slimjre/module"
	"github.com/slimjre/slimjre/scanner"
)

func writeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestRunIncludesAndResolvesTransitively(t *testing.T) {
	data := writeZip(t, map[string]string{
		"META-INF/services/javax.naming.spi.InitialContextFactory": "com.sun.jndi.dns.DnsContextFactory\n",
	})
	archives, err := discovery.Walk(context.Background(), "app.jar", data, discovery.DefaultOptions())
	require.NoError(t, err)

	res, err := Run(context.Background(), archives, Config{JdkRelease: "21"})
	require.NoError(t, err)

	assert.True(t, res.Modules.Contains(module.Base))
	assert.True(t, res.Modules.Contains("java.naming"))
	assert.True(t, res.Modules.Contains("jdk.naming.dns"))
}

func TestRunAppliesIncludeAndExclude(t *testing.T) {
	archives := []*discovery.Archive{{Path: "app.jar", Entries: []scanner.Entry{}}}

	res, err := Run(context.Background(), archives, Config{
		JdkRelease:     "21",
		IncludeModules: module.NewSet("java.sql"),
		ExcludeModules: module.NewSet("java.logging"),
	})
	require.NoError(t, err)

	assert.True(t, res.Modules.Contains("java.sql"))
	assert.False(t, res.Modules.Contains("java.logging"), "explicit exclude must win over a transitive require")
	assert.True(t, res.Modules.Contains(module.Base), "java.base is never excludable")
}

func TestRunEmptyArchiveProducesJustJavaBase(t *testing.T) {
	archives := []*discovery.Archive{{Path: "app.jar"}}
	res, err := Run(context.Background(), archives, Config{JdkRelease: "21"})
	require.NoError(t, err)
	assert.True(t, res.Modules.Equal(module.NewSet(module.Base)))
}

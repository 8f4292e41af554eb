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
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestWalkFindsNestedArchive(t *testing.T) {
	inner := writeZip(t, map[string]string{
		"com/example/Inner.class": "not really bytecode",
	})
	outer := writeZip(t, map[string]string{
		"BOOT-INF/lib/inner.jar":          string(inner),
		"com/example/Outer.class":         "not really bytecode",
		"META-INF/MANIFEST.MF":            "Implementation-Title: demo\nImplementation-Version: 1.0\n",
	})

	archives, err := Walk(context.Background(), "app.jar", outer, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, archives, 2)

	var paths []string
	for _, a := range archives {
		paths = append(paths, a.Path)
	}
	assert.Contains(t, paths, "app.jar")
	assert.Contains(t, paths, "app.jar!BOOT-INF/lib/inner.jar")
}

func TestWalkRespectsSkipGlob(t *testing.T) {
	outer := writeZip(t, map[string]string{
		"com/example/Keep.class": "x",
		"com/example/test/Skip.class": "x",
	})
	opts := DefaultOptions()
	opts.SkipGlobs = []string{"*!com/example/test/**"}

	archives, err := Walk(context.Background(), "app.jar", outer, opts)
	require.NoError(t, err)
	require.Len(t, archives, 1)

	var names []string
	for _, e := range archives[0].Entries {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "com/example/Keep.class")
	assert.NotContains(t, names, "com/example/test/Skip.class")
}

func TestWalkMaxNestingDepthExceeded(t *testing.T) {
	innermost := writeZip(t, map[string]string{"a.class": "x"})
	level2 := writeZip(t, map[string]string{"l.jar": string(innermost)})
	level1 := writeZip(t, map[string]string{"l.jar": string(level2)})

	opts := DefaultOptions()
	opts.MaxNestingDepth = 1

	_, err := Walk(context.Background(), "app.jar", level1, opts)
	assert.Error(t, err)
}

func TestCoordinatesFromFilename(t *testing.T) {
	c := coordinatesFromFilename("/libs/guava-31.1-jre.jar")
	assert.Equal(t, "guava", c.ArtifactID)
	assert.Equal(t, "31.1-jre", c.Version)
}

func TestCoordinatesFromManifestPreferredOverFilename(t *testing.T) {
	data := writeZip(t, map[string]string{
		"META-INF/MANIFEST.MF": "Implementation-Title: demo-app\nImplementation-Version: 2.0.0\nImplementation-Vendor-Id: com.example\n",
	})
	archives, err := Walk(context.Background(), "weird-name.jar", data, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, "com.example", archives[0].Coordinates.GroupID)
	assert.Equal(t, "2.0.0", archives[0].Coordinates.Version)
}

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

package scanner

import (
	"testing"

	"github.com/slimjre/slimjre/evidence"
	"github.com/slimjre/slimjre/platform/moduleindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T) *moduleindex.Index {
	t.Helper()
	idx, err := moduleindex.ForRelease("21")
	require.NoError(t, err)
	return idx
}

func TestServiceLoaderScannerResolvesInterfaceAndProvider(t *testing.T) {
	idx := testIndex(t)
	data := []byte("# comment\ncom.sun.jndi.dns.DnsContextFactory\n\n")
	ev, err := NewServiceLoaderScanner().ScanResource(idx, "META-INF/services/javax.naming.spi.InitialContextFactory", data)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.True(t, ev.Modules.Contains("java.naming"))
	assert.True(t, ev.Modules.Contains("jdk.naming.dns"))
}

func TestServiceLoaderScannerIgnoresUnrelatedResource(t *testing.T) {
	idx := testIndex(t)
	ev, err := NewServiceLoaderScanner().ScanResource(idx, "META-INF/MANIFEST.MF", []byte("Main-Class: Foo\n"))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestCryptoResourceScannerRetagsKind(t *testing.T) {
	idx := testIndex(t)
	data := []byte("sun.security.ec.SunEC\n")
	ev, err := NewCryptoResourceScanner().ScanResource(idx, jcaProviderServiceFile, data)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, evidence.Crypto, ev.Kind)
	assert.True(t, ev.Modules.Contains("jdk.crypto.ec"))
}

func TestGraalVmMetadataScannerParsesReflectConfig(t *testing.T) {
	idx := testIndex(t)
	data := []byte(`[{"name":"com.sun.jndi.rmi.registry.RegistryContextFactory"}]`)
	ev, err := NewGraalVmMetadataScanner().ScanResource(idx, "META-INF/native-image/foo/reflect-config.json", data)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.True(t, ev.Modules.Contains("jdk.naming.rmi"))
}

func TestGraalVmMetadataScannerParsesResourceConfigPatterns(t *testing.T) {
	idx := testIndex(t)
	data := []byte(`{"resources":{"includes":[{"pattern":"\\Qcom/sun/jndi/rmi/registry/RegistryContextFactory.class\\E"}]}}`)
	ev, err := NewGraalVmMetadataScanner().ScanResource(idx, "META-INF/native-image/foo/resource-config.json", data)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.True(t, ev.Modules.Contains("jdk.naming.rmi"))
}

func TestGraalVmMetadataScannerIgnoresUnmodeledShape(t *testing.T) {
	idx := testIndex(t)
	// proxy-config.json's shape (array-of-arrays of interface names) isn't
	// modeled by either the reflect/jni-config or resource-config parsers.
	ev, err := NewGraalVmMetadataScanner().ScanResource(idx, "META-INF/native-image/foo/proxy-config.json", []byte(`[["java.lang.Runnable"]]`))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestJmxResourcePropertiesFile(t *testing.T) {
	idx := testIndex(t)
	ev, err := NewJmxResourceScanner().ScanResource(idx, jmxRemotePropertiesFile, []byte("com.sun.management.jmxremote=true\n"))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.True(t, ev.Modules.Contains("java.management"))
	assert.True(t, ev.Modules.Contains("jdk.management.agent"))
}

func TestLooksLikeClassName(t *testing.T) {
	assert.True(t, looksLikeClassName("com.example.Foo"))
	assert.False(t, looksLikeClassName("com/example/Foo"))
	assert.False(t, looksLikeClassName("plainword"))
	assert.False(t, looksLikeClassName(""))
}

func TestScanArchiveSkipsUnparseableClassEntries(t *testing.T) {
	idx := testIndex(t)
	entries := []Entry{
		{Name: "com/example/Foo.class", Data: []byte("not a real class file")},
		{Name: "META-INF/services/javax.naming.spi.InitialContextFactory", Data: []byte("com.sun.jndi.dns.DnsContextFactory\n")},
	}
	res, err := ScanArchive(idx, entries, DefaultClassScanners(CryptoAuto), DefaultResourceScanners())
	require.NoError(t, err)
	sl, ok := res.ByKind[evidence.ServiceLoader]
	require.True(t, ok)
	assert.True(t, sl.Modules.Contains("jdk.naming.dns"))
}

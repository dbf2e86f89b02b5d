/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keyvaluestore

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFKVS(t *testing.T) {
	storePath := t.TempDir()
	testFKVS(t, storePath, nil)
}

func TestFKVSWithCustomKeySerializer(t *testing.T) {
	storePath := t.TempDir()
	keySerializer := func(key string) (string, error) {
		return filepath.Join(storePath, fmt.Sprintf("mypath/%s/valuefile", key)), nil
	}
	testFKVS(t, storePath, keySerializer)
}

func testFKVS(t *testing.T, storePath string, keySerializer KeySerializer) {
	var store core.KVStore
	store, err := New(&FileKeyValueStoreOptions{Path: storePath, KeySerializer: keySerializer})
	require.NoError(t, err)

	err = store.Store("", []byte("1234"))
	assert.EqualError(t, err, "key is empty")
	err = store.Store("key", nil)
	assert.EqualError(t, err, "value is nil")

	require.NoError(t, store.Store("key1", []byte("value1")))
	require.NoError(t, store.Store("key2", []byte("value2")))

	checkKeyValue(t, store, "key1", []byte("value1"))
	checkKeyValue(t, store, "key2", []byte("value2"))

	_, err = store.Load("non-existing")
	assert.Equal(t, core.ErrKeyValueNotFound, err)

	require.NoError(t, store.Store("empty-string", []byte("")))
	v, err := store.Load("empty-string")
	require.NoError(t, err)
	assert.Empty(t, v)

	assert.NoError(t, store.Delete("never-stored"))
}

func checkKeyValue(t *testing.T, store core.KVStore, key string, value []byte) {
	v, err := store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, value, v)

	require.NoError(t, store.Delete(key))
	_, err = store.Load(key)
	assert.Equal(t, core.ErrKeyValueNotFound, err)
}

func TestOverwriteLeavesNoTempFiles(t *testing.T) {
	storePath := t.TempDir()
	store, err := New(&FileKeyValueStoreOptions{Path: storePath})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Store("seq", []byte(fmt.Sprintf("v%d", i))))
	}

	v, err := store.Load("seq")
	require.NoError(t, err)
	assert.Equal(t, []byte("v4"), v)

	files, err := ioutil.ReadDir(storePath)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "seq", files[0].Name())
	assert.Equal(t, os.FileMode(newFileMode), files[0].Mode().Perm())
}

func TestInvalidKeys(t *testing.T) {
	store, err := New(&FileKeyValueStoreOptions{Path: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/b", "..", "."} {
		assert.Error(t, store.Store(key, []byte("x")), key)
	}
}

func TestMarshallers(t *testing.T) {
	store, err := New(&FileKeyValueStoreOptions{
		Path:         t.TempDir(),
		Marshaller:   func(v interface{}) ([]byte, error) { return []byte(v.(string)), nil },
		Unmarshaller: func(b []byte) (interface{}, error) { return string(b), nil },
	})
	require.NoError(t, err)

	require.NoError(t, store.Store("k", "hello"))
	v, err := store.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	defaultStore, err := New(&FileKeyValueStoreOptions{Path: t.TempDir()})
	require.NoError(t, err)
	assert.EqualError(t, defaultStore.Store("k", "not bytes"), "converting value to byte array failed")
}

func TestCreateNewFileKeyValueStore(t *testing.T) {
	_, err := New(&FileKeyValueStoreOptions{Path: ""})
	assert.EqualError(t, err, "FileKeyValueStore path is empty")

	_, err = New(nil)
	assert.EqualError(t, err, "FileKeyValueStoreOptions is nil")

	store, err := New(&FileKeyValueStoreOptions{Path: "/tmp/testkeyvaluestore"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/testkeyvaluestore", store.GetPath())
}

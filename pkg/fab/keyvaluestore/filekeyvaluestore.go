/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keyvaluestore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/core"
	"github.com/pkg/errors"
)

const (
	newDirMode  = 0700
	newFileMode = 0600
	tmpPattern  = ".tmp-*"
)

// KeySerializer converts a key to a unique file path
type KeySerializer func(key string) (string, error)

// Marshaller marshals a value into a byte array
type Marshaller func(value interface{}) ([]byte, error)

// Unmarshaller unmarshals a value from a byte array
type Unmarshaller func(value []byte) (interface{}, error)

// FileKeyValueStore stores each value into a separate file.
// KeySerializer maps a key to a unique file path (relative to the store path)
// Marshaller and Unmarshaller serialize and deserialize a value
// to and from the bytes stored in the path derived from the key.
// Values are replaced atomically: they are written to a temporary file in the
// same directory, synced, and renamed over the previous file.
type FileKeyValueStore struct {
	path          string
	keySerializer KeySerializer
	marshaller    Marshaller
	unmarshaller  Unmarshaller
}

// FileKeyValueStoreOptions allow overriding store defaults
type FileKeyValueStoreOptions struct {
	// Store path, mandatory
	Path string
	// Optional. If not provided, default key serializer is used.
	KeySerializer KeySerializer
	// Optional. If not provided, default Marshaller is used.
	Marshaller Marshaller
	// Optional. If not provided, default Unmarshaller is used.
	Unmarshaller Unmarshaller
}

// Default Marshaller
func defaultMarshaller(value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	valueBytes, ok := value.([]byte)
	if !ok {
		return nil, errors.New("converting value to byte array failed")
	}
	return valueBytes, nil
}

// Default Unmarshaller
func defaultUnmarshaller(value []byte) (interface{}, error) {
	return value, nil
}

// GetPath returns the store path
func (fkvs *FileKeyValueStore) GetPath() string {
	return fkvs.path
}

// New creates a new instance of FileKeyValueStore using provided options
func New(opts *FileKeyValueStoreOptions) (*FileKeyValueStore, error) {
	if opts == nil {
		return nil, errors.New("FileKeyValueStoreOptions is nil")
	}
	if opts.Path == "" {
		return nil, errors.New("FileKeyValueStore path is empty")
	}
	if opts.KeySerializer == nil {
		path := opts.Path
		opts.KeySerializer = func(key string) (string, error) {
			if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
				return "", errors.Errorf("invalid key [%s]", key)
			}
			return filepath.Join(path, key), nil
		}
	}
	if opts.Marshaller == nil {
		opts.Marshaller = defaultMarshaller
	}
	if opts.Unmarshaller == nil {
		opts.Unmarshaller = defaultUnmarshaller
	}
	return &FileKeyValueStore{
		path:          opts.Path,
		keySerializer: opts.KeySerializer,
		marshaller:    opts.Marshaller,
		unmarshaller:  opts.Unmarshaller,
	}, nil
}

// Load returns the value stored in the store for a key.
// If a value for the key was not found, returns (nil, ErrKeyValueNotFound)
func (fkvs *FileKeyValueStore) Load(key string) (interface{}, error) {
	file, err := fkvs.keySerializer(key)
	if err != nil {
		return nil, err
	}
	bytes, err := ioutil.ReadFile(file) // nolint: gas
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrKeyValueNotFound
		}
		return nil, errors.Wrapf(err, "reading %s failed", file)
	}
	return fkvs.unmarshaller(bytes)
}

// Store sets the value for the key.
func (fkvs *FileKeyValueStore) Store(key string, value interface{}) error {
	if key == "" {
		return errors.New("key is empty")
	}
	if value == nil {
		return errors.New("value is nil")
	}
	file, err := fkvs.keySerializer(key)
	if err != nil {
		return err
	}
	valueBytes, err := fkvs.marshaller(value)
	if err != nil {
		return err
	}
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, newDirMode); err != nil {
		return errors.Wrapf(err, "creating directory %s failed", dir)
	}
	return writeAtomic(file, valueBytes)
}

// Delete deletes the value for a key.
func (fkvs *FileKeyValueStore) Delete(key string) error {
	if key == "" {
		return errors.New("key is empty")
	}
	file, err := fkvs.keySerializer(key)
	if err != nil {
		return err
	}
	err = os.Remove(file)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s failed", file)
	}
	return nil
}

func writeAtomic(file string, data []byte) error {
	dir := filepath.Dir(file)
	tmp, err := ioutil.TempFile(dir, filepath.Base(file)+tmpPattern)
	if err != nil {
		return errors.Wrap(err, "creating temporary file failed")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName) // nolint: errcheck
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint: errcheck
		return errors.Wrapf(err, "writing %s failed", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint: errcheck
		return errors.Wrapf(err, "syncing %s failed", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s failed", tmpName)
	}
	if err := os.Chmod(tmpName, newFileMode); err != nil {
		return errors.Wrapf(err, "chmod %s failed", tmpName)
	}
	if err := os.Rename(tmpName, file); err != nil {
		return errors.Wrapf(err, "renaming %s to %s failed", tmpName, file)
	}
	committed = true

	// persist the rename itself
	if d, err := os.Open(dir); err == nil {
		d.Sync()  // nolint: errcheck
		d.Close() // nolint: errcheck
	}
	return nil
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package seqstore

import (
	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/providers/core"
	"github.com/hyperledger-labs/fabric-coordinator/pkg/fab/keyvaluestore"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	sequenceFileKey     = "blocksequence.yaml"
	sequenceFileVersion = 1
)

type sequenceFile struct {
	Version  int              `yaml:"version"`
	Channels map[string]int64 `yaml:"channels"`
}

// FileSink stores all records as a single YAML document that is replaced
// atomically on every save.
type FileSink struct {
	store core.KVStore
}

// NewFileSink returns a sink writing to blocksequence.yaml under dir.
func NewFileSink(dir string) (*FileSink, error) {
	store, err := keyvaluestore.New(&keyvaluestore.FileKeyValueStoreOptions{
		Path:         dir,
		Marshaller:   marshalSequenceFile,
		Unmarshaller: unmarshalSequenceFile,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "creating block sequence file store failed")
	}
	return &FileSink{store: store}, nil
}

// Load reads the records. A missing file yields no records.
func (f *FileSink) Load() (map[string]int64, error) {
	v, err := f.store.Load(sequenceFileKey)
	if err == core.ErrKeyValueNotFound {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, err
	}
	return v.(map[string]int64), nil
}

// Save replaces the stored records.
func (f *FileSink) Save(snapshot map[string]int64) error {
	return f.store.Store(sequenceFileKey, snapshot)
}

func marshalSequenceFile(value interface{}) ([]byte, error) {
	records, ok := value.(map[string]int64)
	if !ok {
		return nil, errors.Errorf("unexpected block sequence value type %T", value)
	}
	return yaml.Marshal(&sequenceFile{Version: sequenceFileVersion, Channels: records})
}

func unmarshalSequenceFile(data []byte) (interface{}, error) {
	var file sequenceFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, errors.Wrap(err, "decoding block sequence file failed")
	}
	if file.Version != sequenceFileVersion {
		return nil, errors.Errorf("unsupported block sequence file version %d", file.Version)
	}
	if file.Channels == nil {
		file.Channels = map[string]int64{}
	}
	return file.Channels, nil
}

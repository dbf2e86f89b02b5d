/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package seqstore

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	goleveldbutil "github.com/syndtr/goleveldb/leveldb/util"
)

var recordKeyPrefix = []byte("seq/")

// LevelDBSink stores one record per channel in a LevelDB database. Every
// write is synced.
type LevelDBSink struct {
	mutex     sync.RWMutex
	db        *leveldb.DB
	path      string
	writeOpts *opt.WriteOptions
}

// NewLevelDBSink opens (creating if needed) the database at path.
func NewLevelDBSink(path string) (*LevelDBSink, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "error opening leveldb at [%s]", path)
	}
	return &LevelDBSink{db: db, path: path, writeOpts: &opt.WriteOptions{Sync: true}}, nil
}

// Load reads every record.
func (l *LevelDBSink) Load() (map[string]int64, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	if l.db == nil {
		return nil, errors.New("leveldb sink is closed")
	}

	records := make(map[string]int64)
	itr := l.db.NewIterator(goleveldbutil.BytesPrefix(recordKeyPrefix), nil)
	defer itr.Release()
	for itr.Next() {
		channelID := string(itr.Key()[len(recordKeyPrefix):])
		seq, err := decodeSeq(itr.Value())
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid record for channel [%s]", channelID)
		}
		records[channelID] = seq
	}
	if err := itr.Error(); err != nil {
		return nil, errors.Wrapf(err, "error iterating leveldb at [%s]", l.path)
	}
	return records, nil
}

// Save replaces all records in one batch.
func (l *LevelDBSink) Save(snapshot map[string]int64) error {
	existing, err := l.Load()
	if err != nil {
		return err
	}

	batch := &leveldb.Batch{}
	for channelID := range existing {
		if _, ok := snapshot[channelID]; !ok {
			batch.Delete(recordKey(channelID))
		}
	}
	for channelID, seq := range snapshot {
		batch.Put(recordKey(channelID), encodeSeq(seq))
	}
	return l.write(func(db *leveldb.DB) error { return db.Write(batch, l.writeOpts) })
}

// SaveRecord writes a single channel's record.
func (l *LevelDBSink) SaveRecord(channelID string, seq int64) error {
	return l.write(func(db *leveldb.DB) error { return db.Put(recordKey(channelID), encodeSeq(seq), l.writeOpts) })
}

// Close closes the database
func (l *LevelDBSink) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return errors.Wrapf(err, "error closing leveldb at [%s]", l.path)
}

func (l *LevelDBSink) write(f func(db *leveldb.DB) error) error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	if l.db == nil {
		return errors.New("leveldb sink is closed")
	}
	return errors.Wrapf(f(l.db), "error writing leveldb at [%s]", l.path)
}

func recordKey(channelID string) []byte {
	return append(append([]byte(nil), recordKeyPrefix...), channelID...)
}

func encodeSeq(seq int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(seq))
	return b
}

func decodeSeq(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, errors.Errorf("expected 8 bytes, got %d", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

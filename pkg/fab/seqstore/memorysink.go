/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package seqstore

import "sync"

// MemorySink keeps records in memory. Records survive a Store being
// recreated over the same sink, but not the process.
type MemorySink struct {
	mutex   sync.RWMutex
	records map[string]int64
	saves   int
}

// NewMemorySink returns a sink seeded with the given records.
func NewMemorySink(records map[string]int64) *MemorySink {
	return &MemorySink{records: copyRecords(records)}
}

// Load returns a copy of the records
func (m *MemorySink) Load() (map[string]int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return copyRecords(m.records), nil
}

// Save replaces the records
func (m *MemorySink) Save(snapshot map[string]int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.records = copyRecords(snapshot)
	m.saves++
	return nil
}

// Saves returns the number of snapshots saved
func (m *MemorySink) Saves() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.saves
}

func copyRecords(records map[string]int64) map[string]int64 {
	c := make(map[string]int64, len(records))
	for k, v := range records {
		c[k] = v
	}
	return c
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package core

import "github.com/pkg/errors"

var (
	// ErrKeyValueNotFound indicates that a value for the key does not exist
	ErrKeyValueNotFound = errors.New("value for key not found")
)

// KVStore is a generic key-value store interface.
type KVStore interface {
	// Store sets the value for the key. The write is atomic: a reader sees
	// either the previous value or the new one.
	Store(key string, value interface{}) error

	// Load returns the value stored in the store for a key.
	// If a value for the key was not found, returns (nil, ErrKeyValueNotFound)
	Load(key string) (interface{}, error)

	// Delete deletes the value for a key.
	Delete(key string) error
}

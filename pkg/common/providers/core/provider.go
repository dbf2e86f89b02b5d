/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package core defines the low level providers shared by the coordinator
// packages: configuration backends and key-value stores.
package core

// ConfigBackend backend for all config types in the coordinator
type ConfigBackend interface {
	Lookup(key string) (interface{}, bool)
}

// ConfigProvider provides one or more config backends
type ConfigProvider func() ([]ConfigBackend, error)

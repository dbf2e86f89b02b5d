/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package urlutil

import (
	"strings"

	"github.com/pkg/errors"
)

// IsTLSEnabled is a generic function that expects a URL and verifies if it has
// a prefix HTTPS or GRPCS to return true for TLS Enabled URLs or false otherwise
func IsTLSEnabled(url string) bool {
	tlsURL := strings.ToLower(url)
	if strings.HasPrefix(tlsURL, "https://") || strings.HasPrefix(tlsURL, "grpcs://") {
		return true
	}
	return false
}

// ToAddress is a utility function to trim the GRPC protocol prefix as it is not needed by GO
// if the GRPC protocol is not found, the url is returned unchanged
func ToAddress(url string) string {
	if strings.HasPrefix(url, "grpc://") {
		return strings.TrimPrefix(url, "grpc://")
	}
	if strings.HasPrefix(url, "grpcs://") {
		return strings.TrimPrefix(url, "grpcs://")
	}
	return url
}

//HasProtocol is a utility function which verifies if protocol is provided in URL
func HasProtocol(url string) bool {
	return strings.Contains(url, "://")
}

// ValidatePeerURL checks that url is a grpc:// or grpcs:// URL with a host.
func ValidatePeerURL(url string) error {
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "grpc://") && !strings.HasPrefix(lower, "grpcs://") {
		return errors.Errorf("peer URL [%s] must use the grpc or grpcs protocol", url)
	}
	if ToAddress(lower) == "" {
		return errors.Errorf("peer URL [%s] has no address", url)
	}
	return nil
}

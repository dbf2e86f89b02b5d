/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

// OrdererRef identifies an ordering service node.
type OrdererRef struct {
	ID  string
	URL string
}

func (o OrdererRef) String() string {
	if o.ID != "" {
		return o.ID
	}
	return o.URL
}

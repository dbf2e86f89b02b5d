/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package retry provides the bounded retransmission policy used when
// collecting endorsements. A Handler decides whether an error warrants
// another attempt and how long to back off before making it; the caller
// performs the wait so that it can honour cancellation.
package retry

import (
	"time"

	"github.com/hyperledger-labs/fabric-coordinator/pkg/common/errors/status"
)

// Opts defines the retry parameters
type Opts struct {
	// Attempts the number of retry attempts made after the first failure
	Attempts int
	// InitialBackoff the backoff interval for the first retry attempt
	InitialBackoff time.Duration
	// MaxBackoff the maximum backoff interval for any retry attempt
	MaxBackoff time.Duration
	// BackoffFactor the factor by which the InitialBackoff is exponentially
	// incremented for consecutive retry attempts.
	// For example, a backoff factor of 2.5 will result in a backoff of
	// InitialBackoff * 2.5 * 2.5 on the second attempt.
	BackoffFactor float64
	// RetryableCodes defines the status codes, mapped by group, that warrant
	// a retry. This will default to retry.DefaultRetryableCodes.
	RetryableCodes map[status.Group][]status.Code
	// RetryUnclassified retries errors that carry no status at all.
	// Gateways that report raw transport errors rely on this.
	RetryUnclassified bool
}

// Handler retry handler interface decides whether a retry is required for the given
// error
type Handler interface {
	// Required reports whether err warrants another attempt and, if so, consumes one.
	Required(err error) bool
	// Retries returns the number of retries granted so far.
	Retries() int
	// Backoff returns the backoff period preceding the retry most recently granted.
	Backoff() time.Duration
}

// impl retry Handler implementation
type impl struct {
	opts    Opts
	retries int
}

// New retry Handler with the given opts
func New(opts Opts) Handler {
	if len(opts.RetryableCodes) == 0 {
		opts.RetryableCodes = DefaultRetryableCodes
	}
	return &impl{opts: opts}
}

// WithDefaults new retry Handler with default opts
func WithDefaults() Handler {
	return &impl{opts: DefaultOpts}
}

// WithAttempts new retry Handler with given attempts. Other opts are set to default.
func WithAttempts(attempts int) Handler {
	opts := DefaultOpts
	opts.Attempts = attempts
	return &impl{opts: opts}
}

// Required determines if retry is required for the given error
func (i *impl) Required(err error) bool {
	if err == nil || i.retries >= i.opts.Attempts {
		return false
	}

	if Retryable(i.opts, err) {
		i.retries++
		return true
	}

	return false
}

// Retryable reports whether err is transient under opts, regardless of the
// number of attempts left.
func Retryable(opts Opts, err error) bool {
	if err == nil {
		return false
	}
	s, ok := status.FromError(err)
	if !ok {
		return opts.RetryUnclassified
	}
	codes := opts.RetryableCodes
	if len(codes) == 0 {
		codes = DefaultRetryableCodes
	}
	for _, code := range codes[s.Group] {
		if status.Code(s.Code) == code {
			return true
		}
	}
	return false
}

func (i *impl) Retries() int {
	return i.retries
}

func (i *impl) Backoff() time.Duration {
	if i.retries == 0 {
		return 0
	}
	return i.backoffPeriod(i.retries - 1)
}

// backoffPeriod calculates the backoff duration for the n-th retry (zero based)
func (i *impl) backoffPeriod(n int) time.Duration {
	backoff, max := float64(i.opts.InitialBackoff), float64(i.opts.MaxBackoff)
	for j := 0; j < n && backoff < max; j++ {
		backoff *= i.opts.BackoffFactor
	}
	if backoff > max {
		backoff = max
	}

	return time.Duration(backoff)
}

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package syncerr defines the error taxonomy shared by every stage of a sync run.
// Each failure is wrapped around one of the sentinels below so callers can branch on it
// with errors.Is, while the http details stay reachable with errors.As on *StatusError.
package syncerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a bad input detected before any I/O happens.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamUnavailable reports a failure reading from the source of stock truth.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrChannelDeliveryFailed reports a batch rejected by, or not delivered to, a channel.
	ErrChannelDeliveryFailed = errors.New("channel delivery failed")
	// ErrStorageFailure reports a failure reading or persisting sync state.
	ErrStorageFailure = errors.New("storage failure")
)

// StatusError carries the status code and the url of a failed http request.
// StatusCode is 0 when no response was received at all.
type StatusError struct {
	StatusCode int
	URL        string
	// Message is the optional error message returned by the remote server.
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d. URL: %s", e.StatusCode, e.URL)
	if e.Message != "" {
		msg += ": " + e.Message
	}

	return msg
}

// InvalidArgument returns an ErrInvalidArgument error with a formatted detail message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

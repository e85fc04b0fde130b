// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package syncerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusError(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		err      *StatusError
		expected string
	}{
		"status and url": {
			err:      &StatusError{StatusCode: 500, URL: "http://erp/products?page=0"},
			expected: "HTTP 500. URL: http://erp/products?page=0",
		},
		"with remote message": {
			err:      &StatusError{StatusCode: 400, URL: "http://makro/products/batch-stock", Message: "bad quantity"},
			expected: "HTTP 400. URL: http://makro/products/batch-stock: bad quantity",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestWrappedErrorsAreReachable(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: %w", ErrUpstreamUnavailable, &StatusError{StatusCode: 503, URL: "http://erp"})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, ErrChannelDeliveryFailed)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 503, statusErr.StatusCode)
}

func TestInvalidArgument(t *testing.T) {
	t.Parallel()

	err := InvalidArgument("page size %d out of range", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "invalid argument: page size 0 out of range", err.Error())
	assert.False(t, errors.Is(err, ErrStorageFailure))
}

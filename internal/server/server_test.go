// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/stocksync/internal/info"
)

func TestStatusRoutes(t *testing.T) {
	srv, err := NewServer(t.Context())
	require.NoError(t, err)

	for _, path := range []string{"/-/healthz", "/-/ready", "/-/check-up"} {
		t.Run(path, func(t *testing.T) {
			response, err := srv.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
			require.NoError(t, err)
			defer response.Body.Close()

			require.Equal(t, http.StatusOK, response.StatusCode)
			var body statusResponse
			require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
			assert.Equal(t, statusResponse{Status: "OK", Name: info.AppName, Version: info.Version}, body)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	srv, err := NewServer(t.Context())
	require.NoError(t, err)

	srv.App().Get("/missing", func(*fiber.Ctx) error {
		return fiber.NewError(http.StatusNotFound, "product not found")
	})
	srv.App().Get("/broken", func(*fiber.Ctx) error {
		return assert.AnError
	})

	testCases := map[string]struct {
		path            string
		expectedStatus  int
		expectedMessage string
	}{
		"fiber error": {
			path:            "/missing",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "product not found",
		},
		"generic error": {
			path:            "/broken",
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: assert.AnError.Error(),
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			response, err := srv.App().Test(httptest.NewRequest(http.MethodGet, test.path, nil))
			require.NoError(t, err)
			defer response.Body.Close()

			require.Equal(t, test.expectedStatus, response.StatusCode)
			var body map[string]any
			require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
			assert.Equal(t, test.expectedMessage, body["message"])
			assert.Equal(t, http.StatusText(test.expectedStatus), body["error"])
		})
	}
}

func TestStartAndStop(t *testing.T) {
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", "39017")

	srv, err := NewServer(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:39017", srv.Address())

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	require.Eventually(t, func() bool {
		response, err := http.Get("http://" + srv.Address() + "/-/healthz")
		if err != nil {
			return false
		}
		defer response.Body.Close()
		return response.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, srv.Stop())
	require.NoError(t, <-errChan)
}

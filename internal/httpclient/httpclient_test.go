// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package httpclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		credentials          Credentials
		expectedAuthEndpoint string
		expectedErr          error
	}{
		"no credentials": {},
		"static token": {
			credentials: Credentials{Token: "token"},
		},
		"client credentials infer auth endpoint": {
			credentials:          Credentials{ClientID: "id", ClientSecret: "secret"},
			expectedAuthEndpoint: "http://localhost:8080/oauth/token",
		},
		"client credentials keep explicit auth endpoint": {
			credentials:          Credentials{ClientID: "id", ClientSecret: "secret", AuthEndpoint: "http://auth/token"},
			expectedAuthEndpoint: "http://auth/token",
		},
		"token together with client id": {
			credentials: Credentials{Token: "token", ClientID: "id"},
			expectedErr: errMultipleAuthMethods,
		},
		"client id without secret": {
			credentials: Credentials{ClientID: "id"},
			expectedErr: errMissingClientSecret,
		},
		"secret without client id": {
			credentials: Credentials{ClientSecret: "secret"},
			expectedErr: errMissingClientID,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			credentials := test.credentials
			err := credentials.Validate("http://localhost:8080/api?x=1")
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedAuthEndpoint, credentials.AuthEndpoint)
		})
	}
}

func TestClientAuthentication(t *testing.T) {
	t.Parallel()

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "issued-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer authServer.Close()

	testCases := map[string]struct {
		credentials    Credentials
		expectedHeader string
	}{
		"anonymous": {
			expectedHeader: "",
		},
		"static token": {
			credentials:    Credentials{Token: "static-token"},
			expectedHeader: "Bearer static-token",
		},
		"client credentials": {
			credentials:    Credentials{ClientID: "id", ClientSecret: "secret", AuthEndpoint: authServer.URL},
			expectedHeader: "Bearer issued-token",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, test.expectedHeader, r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			client := New(t.Context(), test.credentials)
			resp, err := client.Get(server.URL)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		})
	}
}

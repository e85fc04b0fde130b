// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package httpclient builds the authenticated http clients used to talk with the stock source
// and with the sales channels.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultAuthPath = "/oauth/token"
)

var (
	errMultipleAuthMethods = errors.New("TOKEN and CLIENT_ID/CLIENT_SECRET are mutually exclusive")
	errMissingClientID     = errors.New("CLIENT_ID is required when CLIENT_SECRET is set")
	errMissingClientSecret = errors.New("CLIENT_SECRET is required when CLIENT_ID is set")
)

// Credentials holds the optional authentication settings of a remote API. It is meant to be
// embedded in env configurations parsed with a prefix, so that the final variable names
// become <PREFIX>TOKEN, <PREFIX>CLIENT_ID and so on.
type Credentials struct {
	Token        string `env:"TOKEN"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	AuthEndpoint string `env:"AUTH_ENDPOINT"`
}

// Validate checks that at most one authentication method is configured and fills the
// AuthEndpoint from endpoint when client credentials are used without an explicit one.
func (c *Credentials) Validate(endpoint string) error {
	switch {
	case len(c.Token) > 0 && (len(c.ClientID) > 0 || len(c.ClientSecret) > 0):
		return errMultipleAuthMethods
	case len(c.ClientID) > 0 && len(c.ClientSecret) == 0:
		return errMissingClientSecret
	case len(c.ClientSecret) > 0 && len(c.ClientID) == 0:
		return errMissingClientID
	}

	if len(c.ClientID) == 0 {
		return nil
	}

	if len(c.AuthEndpoint) == 0 {
		endpointURL, err := url.Parse(endpoint)
		if err != nil {
			return err
		}
		endpointURL.Path = defaultAuthPath
		endpointURL.RawQuery = ""
		c.AuthEndpoint = endpointURL.String()
		return nil
	}

	if _, err := url.Parse(c.AuthEndpoint); err != nil {
		return fmt.Errorf("invalid AUTH_ENDPOINT: %w", err)
	}
	return nil
}

// New returns an http client whose transport authenticates every request with the configured
// credentials: a static bearer token, an OAuth2 client-credentials flow, or nothing at all.
func New(ctx context.Context, credentials Credentials) *http.Client {
	return &http.Client{
		Transport: newTransport(ctx, credentials),
	}
}

func newTransport(ctx context.Context, credentials Credentials) http.RoundTripper {
	var source oauth2.TokenSource
	switch {
	case len(credentials.Token) > 0:
		source = oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: credentials.Token,
			TokenType:   "Bearer",
		})
	case len(credentials.ClientID) > 0 && len(credentials.ClientSecret) > 0:
		config := clientcredentials.Config{
			ClientID:     credentials.ClientID,
			ClientSecret: credentials.ClientSecret,
			TokenURL:     credentials.AuthEndpoint,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		source = config.TokenSource(ctx)
	}

	if source == nil {
		return http.DefaultTransport
	}

	return &oauth2.Transport{
		Source: oauth2.ReuseTokenSource(nil, source),
		Base:   http.DefaultTransport,
	}
}

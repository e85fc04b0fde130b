// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package erp

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/mia-platform/stocksync/internal/httpclient"
)

const (
	envPrefix = "ERP_"
)

var (
	// ErrInvalidEnvVariable reports malformed environment variable values.
	ErrInvalidEnvVariable = errors.New("invalid environment value")
)

// config holds the environment-driven ERP settings.
type config struct {
	Endpoint string `env:"ENDPOINT,required"`

	httpclient.Credentials
}

func (c *config) validate() error {
	endpointURL, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %sENDPOINT: %w", ErrInvalidEnvVariable, envPrefix, err)
	}

	if endpointURL.Scheme == "" || endpointURL.Host == "" {
		return fmt.Errorf("%w: %sENDPOINT must be an absolute url", ErrInvalidEnvVariable, envPrefix)
	}

	if err := c.Credentials.Validate(c.Endpoint); err != nil {
		return fmt.Errorf("%w: %s%w", ErrInvalidEnvVariable, envPrefix, err)
	}

	return nil
}

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/mia-platform/stocksync/internal/state/sqlite"
)

// stateConfig holds the env configuration of the state file.
type stateConfig struct {
	Path string `env:"SYNC_STATE_PATH"`
}

// resolveStatePath returns flagValue when set, otherwise the path configured in the env,
// falling back to sqlite.DefaultPath.
func resolveStatePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	cfg, err := env.ParseAs[stateConfig]()
	if err != nil {
		var parseErr env.AggregateError
		if errors.As(err, &parseErr) {
			err = parseErr.Errors[0]
		}
		return "", fmt.Errorf("state file: %w", err)
	}

	if cfg.Path == "" {
		return sqlite.DefaultPath, nil
	}
	return cfg.Path, nil
}

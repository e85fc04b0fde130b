// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mia-platform/stocksync/internal/destination/makro"
	"github.com/mia-platform/stocksync/internal/destination/woo"
	"github.com/mia-platform/stocksync/internal/pipeline"
	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/source/erp"
)

var (
	errMissingTarget    = errors.New("no target channel provided")
	errInvalidTarget    = errors.New("invalid target channel provided")
	errInvalidMode      = errors.New("invalid mode provided")
	errInvalidWorkers   = errors.New("invalid worker configuration")
	errInvalidBatchSize = errors.New("invalid batch size provided")
	errInvalidProducts  = errors.New("invalid products count provided")

	// availableTargets holds the list of available channels and their description
	// for command completion and help messages.
	availableTargets = map[string]string{
		makro.Name: "Makro marketplace",
		woo.Name:   "WooCommerce storefront",
	}
	// availableModes holds the list of sync modes and their description for command completion.
	availableModes = map[string]string{
		pipeline.ModeFull.String():        "sync every product",
		pipeline.ModeIncremental.String(): "sync the products changed after the last incremental sync",
	}

	// sourceGetter returns the source of the products to sync.
	// It can be overridden for testing purposes.
	sourceGetter = func(ctx context.Context) (source.ProductSource, error) {
		return erp.NewSource(ctx)
	}
)

// handleError will do custom print error handling based on the type of error received.
// Invalid flag values are printed along the command usage; every error is returned
// to obtain a non zero exit code.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errMissingTarget),
		errors.Is(err, errInvalidTarget),
		errors.Is(err, errInvalidMode),
		errors.Is(err, errInvalidWorkers),
		errors.Is(err, errInvalidBatchSize),
		errors.Is(err, errInvalidProducts):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

// noArgs rejects any positional argument, printing the error with the command usage.
func noArgs(cmd *cobra.Command, args []string) error {
	err := cobra.NoArgs(cmd, args)
	if err != nil {
		cmd.PrintErrln(err)
		_ = cmd.Usage()
	}

	return err
}

// completionFunc completes a flag with the keys of values matching the typed prefix.
func completionFunc(values map[string]string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var comps []string
		for name, description := range values {
			if strings.HasPrefix(name, toComplete) {
				comps = append(comps, cobra.CompletionWithDesc(name, description))
			}
		}

		return comps, cobra.ShellCompDirectiveNoFileComp
	}
}

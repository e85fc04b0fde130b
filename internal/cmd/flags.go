// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mia-platform/stocksync/internal/pipeline"
)

const (
	targetFlagName = "target"
	modeFlagName   = "mode"
	defaultMode    = pipeline.ModeFull

	workersFlagName    = "workers"
	workersFlagUsage   = "total number of workers sharing the catalog"
	defaultWorkers     = 1
	workerFlagName     = "worker"
	workerFlagUsage    = "0-indexed id of this worker, lower than --workers"
	defaultWorkerIndex = 0

	batchSizeFlagName  = "batch-size"
	batchSizeFlagUsage = "maximum number of updates sent in a single request (default 100, or the channel value of the config file)"

	configFileFlagName  = "config-file"
	configFileFlagShort = "c"
	configFileFlagUsage = "path to a YAML file with the page size and the per channel batch sizes"

	stateFileFlagName  = "state-file"
	stateFileFlagUsage = "path of the SQLite file keeping the sync progress (default $SYNC_STATE_PATH or sync-state.db)"

	localOutputFlagName  = "local-output"
	localOutputFlagUsage = "If set, writes the channel requests to stdout instead of sending them to the remote"
	defaultLocalOutput   = false

	productsFlagName  = "products"
	productsFlagUsage = "number of products in the mock ERP catalog"
	defaultProducts   = 250
)

func allowedValuesUsage(usage string, values map[string]string) string {
	return usage + " (" + strings.Join(slices.Sorted(maps.Keys(values)), "|") + ")"
}

// syncFlags holds the flags for the "sync" command.
type syncFlags struct {
	target       string
	mode         string
	totalWorkers int
	workerID     int
	batchSize    int
	configFile   string
	statePath    string
	localOutput  bool
}

// addFlags adds the cli flags to the cobra command.
func (f *syncFlags) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.target, targetFlagName, "", allowedValuesUsage("channel receiving the stock updates", availableTargets))
	flags.StringVar(&f.mode, modeFlagName, defaultMode.String(), allowedValuesUsage("sync mode", availableModes))
	flags.IntVar(&f.totalWorkers, workersFlagName, defaultWorkers, workersFlagUsage)
	flags.IntVar(&f.workerID, workerFlagName, defaultWorkerIndex, workerFlagUsage)
	flags.IntVar(&f.batchSize, batchSizeFlagName, 0, batchSizeFlagUsage)
	flags.StringVarP(&f.configFile, configFileFlagName, configFileFlagShort, "", configFileFlagUsage)
	flags.StringVar(&f.statePath, stateFileFlagName, "", stateFileFlagUsage)
	flags.BoolVar(&f.localOutput, localOutputFlagName, defaultLocalOutput, localOutputFlagUsage)

	_ = cmd.RegisterFlagCompletionFunc(targetFlagName, completionFunc(availableTargets))
	_ = cmd.RegisterFlagCompletionFunc(modeFlagName, completionFunc(availableModes))
}

// toOptions converts the sync flags to syncOptions.
func (f *syncFlags) toOptions(cmd *cobra.Command) (*syncOptions, error) {
	statePath, err := resolveStatePath(f.statePath)
	if err != nil {
		return nil, err
	}

	return &syncOptions{
		target:       strings.ToLower(f.target),
		mode:         strings.ToLower(f.mode),
		totalWorkers: f.totalWorkers,
		workerID:     f.workerID,
		batchSize:    f.batchSize,
		batchSizeSet: cmd.Flags().Changed(batchSizeFlagName),
		configFile:   f.configFile,
		statePath:    statePath,
		localOutput:  f.localOutput,
		out:          cmd.OutOrStdout(),
	}, nil
}

// statusFlags holds the flags for the "status" command.
type statusFlags struct {
	statePath string
}

func (f *statusFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.statePath, stateFileFlagName, "", stateFileFlagUsage)
}

func (f *statusFlags) toOptions(cmd *cobra.Command) (*statusOptions, error) {
	statePath, err := resolveStatePath(f.statePath)
	if err != nil {
		return nil, err
	}

	return &statusOptions{
		statePath: statePath,
		out:       cmd.OutOrStdout(),
	}, nil
}

// mockFlags holds the flags for the "mock" command.
type mockFlags struct {
	products int
}

func (f *mockFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.products, productsFlagName, defaultProducts, productsFlagUsage)
}

func (f *mockFlags) toOptions(cmd *cobra.Command) *mockOptions {
	return &mockOptions{
		products: f.products,
		out:      cmd.OutOrStdout(),
	}
}

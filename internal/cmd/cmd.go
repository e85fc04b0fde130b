// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	syncCmdUsage = "sync"
	syncCmdShort = "sync the ERP stock to a sales channel"
	syncCmdLong  = `Sync the stock quantities of the ERP products to a sales channel.

	In full mode every product is sent to the channel. In incremental mode only the
	products changed after the last incremental sync of the channel are sent, and
	the sync progress is saved in the state file once every batch is delivered.

	The work can be split across independent processes with the --workers and
	--worker flags: every product is handled by exactly one worker, chosen by its SKU.
	Every worker must use its own state file.

	The ERP is configured with the ERP_ENDPOINT env variable and the channels with
	MAKRO_ENDPOINT and WOO_ENDPOINT. Each of them accepts an optional static token
	(<PREFIX>_TOKEN) or OAuth2 client credentials (<PREFIX>_CLIENT_ID,
	<PREFIX>_CLIENT_SECRET and <PREFIX>_AUTH_ENDPOINT).

	The available channels are:
	- makro: Makro marketplace, products are identified by SKU
	- woo: WooCommerce storefront, products are identified by the ERP id`

	syncCmdExample = `# Send every product to Makro
	stocksync sync --target makro

	# Send the products changed since the last run to WooCommerce, as the second of three workers
	stocksync sync --target woo --mode incremental --workers 3 --worker 1 --state-file woo-1.db

	# Print the requests instead of calling the channel
	stocksync sync --target makro --local-output`

	statusCmdUsage = "status"
	statusCmdShort = "print the sync progress saved for every channel"
	statusCmdLong  = `Print the watermark saved by the incremental syncs of every channel.

	The watermark is the latest product update time delivered to the channel, the next
	incremental sync will send only the products updated after it.`

	statusCmdExample = `# Print the progress saved in the default state file
	stocksync status

	# Print the progress of a single worker
	stocksync status --state-file woo-1.db`

	mockCmdUsage = "mock"
	mockCmdShort = "start a mock of the ERP and of the channels apis"
	mockCmdLong  = `Start an http server emulating the ERP products api and the stock endpoints of
	every channel, keeping everything in memory.

	The server port is set with the HTTP_PORT env variable. Point the sync to it with:
	- ERP_ENDPOINT=http://localhost:<port>/erp
	- MAKRO_ENDPOINT=http://localhost:<port>/makro
	- WOO_ENDPOINT=http://localhost:<port>/woo`

	mockCmdExample = `# Start the mock with a catalog of 1000 products
	HTTP_PORT=8080 stocksync mock --products 1000`
)

// SyncCmd returns the Cobra command that syncs the stock to a channel.
func SyncCmd() *cobra.Command {
	flags := &syncFlags{}
	cmd := &cobra.Command{
		Use:     syncCmdUsage,
		Short:   heredoc.Doc(syncCmdShort),
		Long:    heredoc.Doc(syncCmdLong),
		Example: heredoc.Doc(syncCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              noArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// StatusCmd returns the Cobra command that prints the stored watermarks.
func StatusCmd() *cobra.Command {
	flags := &statusFlags{}
	cmd := &cobra.Command{
		Use:     statusCmdUsage,
		Short:   heredoc.Doc(statusCmdShort),
		Long:    heredoc.Doc(statusCmdLong),
		Example: heredoc.Doc(statusCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              noArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// MockCmd returns the Cobra command that starts the mock apis server.
func MockCmd() *cobra.Command {
	flags := &mockFlags{}
	cmd := &cobra.Command{
		Use:     mockCmdUsage,
		Short:   heredoc.Doc(mockCmdShort),
		Long:    heredoc.Doc(mockCmdLong),
		Example: heredoc.Doc(mockCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              noArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := flags.toOptions(cmd)
			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

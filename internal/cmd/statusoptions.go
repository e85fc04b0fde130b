// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mia-platform/stocksync/internal/state/sqlite"
)

type statusOptions struct {
	statePath string

	out io.Writer
}

// execute prints every watermark stored in the state file.
func (o *statusOptions) execute(ctx context.Context) error {
	if _, err := os.Stat(o.statePath); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(o.out, "No watermark recorded in %s\n", o.statePath)
		return nil
	}

	store, err := sqlite.Open(ctx, o.statePath)
	if err != nil {
		return err
	}
	defer store.Close()

	watermarks, err := store.List(ctx)
	if err != nil {
		return err
	}

	if len(watermarks) == 0 {
		fmt.Fprintf(o.out, "No watermark recorded in %s\n", o.statePath)
		return nil
	}

	table := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "CHANNEL\tLAST SYNCED AT\tCREATED AT\tUPDATED AT")
	for _, watermark := range watermarks {
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\n",
			watermark.Channel,
			watermark.LastSyncedAt.UTC().Format(time.RFC3339Nano),
			watermark.CreatedAt.UTC().Format(time.RFC3339),
			watermark.UpdatedAt.UTC().Format(time.RFC3339),
		)
	}
	return table.Flush()
}

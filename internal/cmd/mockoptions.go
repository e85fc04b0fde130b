// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mia-platform/stocksync/internal/logger"
	"github.com/mia-platform/stocksync/internal/mockapi"
	"github.com/mia-platform/stocksync/internal/server"
)

const (
	mockLoggerName = "stocksync:mock"
)

type mockOptions struct {
	products int

	out io.Writer
}

func (o *mockOptions) validate() error {
	if o.products < 0 {
		return fmt.Errorf("%w: must not be negative, got %d", errInvalidProducts, o.products)
	}
	return nil
}

// execute serves the mock apis until ctx is cancelled.
func (o *mockOptions) execute(ctx context.Context) error {
	srv, err := server.NewServer(ctx)
	if err != nil {
		return err
	}

	start := time.Now().Add(-time.Duration(o.products) * time.Second)
	api := mockapi.New(mockapi.GenerateProducts(o.products, start))
	api.Register(srv.App())

	baseURL := "http://" + srv.Address()
	fmt.Fprintf(o.out, "Mock server listening on %s\n", baseURL)
	fmt.Fprintf(o.out, "\tERP_ENDPOINT=%s%s\n", baseURL, mockapi.ERPPrefix)
	fmt.Fprintf(o.out, "\tMAKRO_ENDPOINT=%s%s\n", baseURL, mockapi.MakroPrefix)
	fmt.Fprintf(o.out, "\tWOO_ENDPOINT=%s%s\n", baseURL, mockapi.WooPrefix)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.FromContext(ctx).WithName(mockLoggerName).Info("stopping mock server")
		if err := srv.Stop(); err != nil {
			return err
		}
		return <-errChan
	}
}

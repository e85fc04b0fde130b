// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package erp implements source.ProductSource on top of the ERP products read api.
package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mia-platform/stocksync/internal/httpclient"
	"github.com/mia-platform/stocksync/internal/info"
	"github.com/mia-platform/stocksync/internal/logger"
	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

const (
	loggerName = "stocksync:source:erp"

	productsPath = "/products"

	pageParam         = "page"
	limitParam        = "limit"
	updatedAfterParam = "updated_after"
)

var (
	// ErrERPSource wraps configuration errors emitted by the ERP source.
	ErrERPSource = errors.New("erp source")
)

var _ source.ProductSource = &Source{}

// Source reads products from the ERP. It keeps no state between calls.
type Source struct {
	endpoint *url.URL
	client   *http.Client
}

// NewSource creates a new ERP Source reading the needed configuration from the env variables.
func NewSource(ctx context.Context) (*Source, error) {
	cfg, err := env.ParseAsWithOptions[config](env.Options{Prefix: envPrefix})
	if err != nil {
		return nil, handleErr(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, handleErr(err)
	}

	return newSource(cfg.Endpoint, httpclient.New(ctx, cfg.Credentials))
}

func newSource(endpoint string, client *http.Client) (*Source, error) {
	endpointURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, handleErr(err)
	}

	return &Source{
		endpoint: endpointURL,
		client:   client,
	}, nil
}

// Stream implements source.ProductSource. It starts from page 0 and, after consuming page i,
// requests page i+1 only while i+1 is below the total_pages reported by the server.
func (s *Source) Stream(ctx context.Context, pageSize int, changedAfter *time.Time) (iter.Seq2[*source.Page, error], error) {
	if err := validateLimit(pageSize); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithName(loggerName)
	return func(yield func(*source.Page, error) bool) {
		for pageIndex := 0; ; pageIndex++ {
			page, err := s.FetchPage(ctx, pageIndex, pageSize, changedAfter)
			if err != nil {
				yield(nil, err)
				return
			}

			log.Debug("page fetched", "page", pageIndex, "totalPages", page.Pagination.TotalPages, "products", len(page.Data))
			if !yield(page, nil) {
				return
			}

			if !page.HasNext(pageIndex) {
				log.Trace("no more pages to fetch", "lastPage", pageIndex)
				return
			}
		}
	}, nil
}

// FetchPage requests a single page of products. page is 0-indexed, limit must be in the
// [source.MinPageSize, source.MaxPageSize] range.
func (s *Source) FetchPage(ctx context.Context, page, limit int, changedAfter *time.Time) (*source.Page, error) {
	if page < 0 {
		return nil, syncerr.InvalidArgument("page must be >= 0, got %d", page)
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	requestURL := s.pageURL(page, limit, changedAfter)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, upstreamError(0, requestURL, err)
	}

	request.Header.Set("User-Agent", info.UserAgent())
	request.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(request)
	if err != nil {
		return nil, upstreamError(0, requestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, upstreamError(resp.StatusCode, requestURL, nil)
	}

	result := new(source.Page)
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, upstreamError(resp.StatusCode, requestURL, fmt.Errorf("decoding products page: %w", err))
	}

	return result, nil
}

// pageURL builds the request url for a page, carrying over any query of the configured endpoint.
func (s *Source) pageURL(page, limit int, changedAfter *time.Time) string {
	pageURL := s.endpoint.JoinPath(productsPath)
	query := pageURL.Query()
	query.Set(pageParam, strconv.Itoa(page))
	query.Set(limitParam, strconv.Itoa(limit))
	if changedAfter != nil {
		query.Set(updatedAfterParam, changedAfter.UTC().Format(time.RFC3339Nano))
	}
	pageURL.RawQuery = query.Encode()
	return pageURL.String()
}

func validateLimit(limit int) error {
	if limit < source.MinPageSize || limit > source.MaxPageSize {
		return syncerr.InvalidArgument("limit must be between %d and %d, got %d", source.MinPageSize, source.MaxPageSize, limit)
	}
	return nil
}

// upstreamError reports a failed page request as syncerr.ErrUpstreamUnavailable.
func upstreamError(statusCode int, requestURL string, cause error) error {
	statusErr := &syncerr.StatusError{StatusCode: statusCode, URL: requestURL}
	if cause != nil {
		statusErr.Message = cause.Error()
	}

	return fmt.Errorf("%w: ERP API error: %w", syncerr.ErrUpstreamUnavailable, statusErr)
}

// handleErr wraps configuration errors with ErrERPSource, unwrapping the env aggregate errors
// to keep only the first meaningful message.
func handleErr(err error) error {
	if err == nil {
		return nil
	}

	var parseErr env.AggregateError
	if errors.As(err, &parseErr) {
		err = parseErr.Errors[0]
	}

	return fmt.Errorf("%w: %w", ErrERPSource, err)
}

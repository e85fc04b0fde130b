// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package remote implements destination.Sender posting bulk requests to the http api of a
// sales channel.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/httpclient"
	"github.com/mia-platform/stocksync/internal/info"
	"github.com/mia-platform/stocksync/internal/logger"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

const (
	loggerName = "stocksync:destination:remote"

	// maxErrorBody caps the bytes read from a failed response while looking for its message.
	maxErrorBody = 64 * 1024
)

var _ destination.Sender = &Sender{}

// ConfigError reports an invalid configuration of a remote channel.
type ConfigError struct {
	channel string
	err     error
}

func (e *ConfigError) Error() string {
	return e.channel + " destination: " + e.err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.err
}

func (e *ConfigError) Is(target error) bool {
	cfgErr, ok := target.(*ConfigError)
	if !ok {
		return false
	}

	return e.channel == cfgErr.channel && e.err.Error() == cfgErr.err.Error()
}

type config struct {
	Endpoint string `env:"ENDPOINT,required"`

	httpclient.Credentials
}

// Sender posts JSON bodies to a channel api.
type Sender struct {
	channel  string
	endpoint *url.URL
	client   *http.Client
}

// EnvPrefix returns the prefix of the env variables configuring channel, e.g. MAKRO_.
func EnvPrefix(channel string) string {
	return strings.ToUpper(channel) + "_"
}

// NewSender returns a Sender for channel reading its configuration from the env variables
// prefixed with EnvPrefix(channel).
func NewSender(ctx context.Context, channel string) (*Sender, error) {
	prefix := EnvPrefix(channel)
	cfg, err := env.ParseAsWithOptions[config](env.Options{Prefix: prefix})
	if err != nil {
		return nil, handleError(channel, err)
	}

	endpointURL, err := url.Parse(cfg.Endpoint)
	if err != nil || endpointURL.Scheme == "" || endpointURL.Host == "" {
		return nil, handleError(channel, fmt.Errorf("%sENDPOINT must be an absolute url", prefix))
	}

	if err := cfg.Credentials.Validate(cfg.Endpoint); err != nil {
		return nil, handleError(channel, fmt.Errorf("%s%w", prefix, err))
	}

	return newSender(channel, endpointURL, httpclient.New(ctx, cfg.Credentials)), nil
}

func newSender(channel string, endpoint *url.URL, client *http.Client) *Sender {
	return &Sender{
		channel:  channel,
		endpoint: endpoint,
		client:   client,
	}
}

// Send implements destination.Sender. Any non 2xx response is reported as
// syncerr.ErrChannelDeliveryFailed with the response details attached.
func (s *Sender) Send(ctx context.Context, path string, payload any) error {
	requestURL := s.endpoint.JoinPath(path).String()
	body, err := json.Marshal(payload)
	if err != nil {
		return s.deliveryError(0, requestURL, err.Error())
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return s.deliveryError(0, requestURL, err.Error())
	}

	request.Header.Set("User-Agent", info.UserAgent())
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(request)
	if err != nil {
		return s.deliveryError(0, requestURL, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return s.deliveryError(resp.StatusCode, requestURL, responseMessage(resp.Body))
	}

	logger.FromContext(ctx).WithName(loggerName).Trace("request delivered", "channel", s.channel, "url", requestURL, "status", resp.StatusCode)
	return nil
}

func (s *Sender) deliveryError(statusCode int, requestURL, message string) error {
	return fmt.Errorf("%w: %s API error: %w", syncerr.ErrChannelDeliveryFailed, s.channel, &syncerr.StatusError{
		StatusCode: statusCode,
		URL:        requestURL,
		Message:    message,
	})
}

// responseMessage extracts the message field of a JSON error body, if any.
func responseMessage(body io.Reader) string {
	var respBody map[string]any
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&respBody); err != nil {
		return ""
	}

	if message, ok := respBody["message"].(string); ok {
		return message
	}
	return ""
}

func handleError(channel string, err error) error {
	var parseErr env.AggregateError
	if errors.As(err, &parseErr) {
		err = parseErr.Errors[0]
	}

	return &ConfigError{
		channel: channel,
		err:     err,
	}
}

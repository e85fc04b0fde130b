// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config reads the optional settings file tuning the sync runs of every channel.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mia-platform/stocksync/internal/source"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

const (
	PageSizeField  = "pageSize"
	BatchSizeField = "batchSize"
)

var (
	// ErrParsing reports failures that occur while decoding the settings file.
	ErrParsing = errors.New("error parsing")
)

// Settings holds the content of a settings file. Zero values mean the field is not set.
type Settings struct {
	PageSize int                        `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
	Channels map[string]ChannelSettings `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// ChannelSettings holds the settings of a single channel.
type ChannelSettings struct {
	BatchSize int `json:"batchSize,omitempty" yaml:"batchSize,omitempty"`
}

// BatchSize returns the batch size configured for channel, 0 when not set.
func (s *Settings) BatchSize(channel string) int {
	if s == nil {
		return 0
	}
	return s.Channels[channel].BatchSize
}

// NewSettingsFromPath parses the settings file at path. An empty path returns empty settings.
func NewSettingsFromPath(path string) (*Settings, error) {
	settings := new(Settings)
	if path == "" {
		return settings, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	if err := decoder.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}

	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
	}

	return settings, nil
}

func (s *Settings) validate() error {
	invalidFields := []string{}
	if s.PageSize != 0 && (s.PageSize < source.MinPageSize || s.PageSize > source.MaxPageSize) {
		invalidFields = append(invalidFields, fmt.Sprintf("%s must be between %d and %d", PageSizeField, source.MinPageSize, source.MaxPageSize))
	}

	for channel, channelSettings := range s.Channels {
		if channelSettings.BatchSize < 0 {
			invalidFields = append(invalidFields, fmt.Sprintf("channels.%s.%s must be greater than 0", channel, BatchSizeField))
		}
	}

	if len(invalidFields) > 0 {
		return syncerr.InvalidArgument("%s", strings.Join(invalidFields, "; "))
	}
	return nil
}

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mia-platform/stocksync/internal/destination"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

var _ destination.Sender = &Sender{}

// Sender prints every request it is asked to send on the wrapped writer instead of calling
// the remote api.
type Sender struct {
	channel string
	writer  io.Writer

	lock sync.Mutex
}

func NewSender(w io.Writer, channel string) *Sender {
	return &Sender{
		channel: channel,
		writer:  w,
	}
}

func (s *Sender) Send(_ context.Context, path string, payload any) error {
	builder := new(strings.Builder)

	builder.WriteString("Send batch:\n")
	builder.WriteString("\tChannel: " + s.channel + "\n")
	builder.WriteString("\tPath: " + path + "\n")
	builder.WriteString("\tBody: ")

	encoder := json.NewEncoder(builder)
	encoder.SetIndent("\t", "\t")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("%w: %s: %w", syncerr.ErrChannelDeliveryFailed, s.channel, err)
	}
	builder.WriteString("\n")

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, err := fmt.Fprint(s.writer, builder.String()); err != nil {
		return fmt.Errorf("%w: %s: %w", syncerr.ErrChannelDeliveryFailed, s.channel, err)
	}
	return nil
}

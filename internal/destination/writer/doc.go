// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package writer implements a sender that prints the requests of a channel to the given
// io.Writer instead of calling its api.
// It is primarily useful for dry runs, or for checking the mapped updates before
// pointing a sync to a real channel.
package writer

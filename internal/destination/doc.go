// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package destination defines the contracts implemented by the sales channels receiving stock
// updates, and the sender abstraction used to ship their bulk requests either to the remote
// api or to a local writer.
package destination

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package source defines the product model read from the stock source of truth and the
// contract a product source must satisfy to feed a sync pipeline.
package source

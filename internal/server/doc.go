// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server contains the http server used by stocksync to expose its mock apis.
// It sets up the HTTP server using the Fiber framework, configures middleware for logging,
// and defines routes for health checks and service status.
package server

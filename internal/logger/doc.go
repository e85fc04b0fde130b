// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps hclog behind a small interface and makes the configured
// logger available to every sync component through context helpers.
package logger

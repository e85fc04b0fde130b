// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pipeline orchestrates a stock sync run.
// A pipeline is composed of a product source, a sales channel and the store keeping the sync
// progress of the channel. Each run streams the source pages, keeps only the products assigned
// to the current worker, maps them into channel records and delivers them in bounded batches.
// Incremental runs start from the stored watermark and advance it once every batch is delivered.
package pipeline

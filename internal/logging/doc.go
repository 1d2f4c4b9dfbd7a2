// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

// Package logging provides the process-wide zerolog logger.
//
// main calls Init once with the configured level and format; components
// receive a zerolog.Logger and derive their own child with a "component"
// field. The ops HTTP server stores a per-request logger and request id in
// the context, read back with Ctx.
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//	logger := logging.WithComponent("trainer")
//	logger.Info().Str("generation", id).Msg("generation installed")
//
// SlogHandler bridges zerolog to log/slog for sutureslog.
//
// Environment Variables (read by the config package):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller info (default: false)
package logging

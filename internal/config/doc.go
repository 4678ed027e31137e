// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for shift-ai.
//
// Configuration comes from ~/.shiftai/config.toml when present, with
// environment variable overrides (SHIFTAI_*) applied on top and
// out-of-range values clamped to safe bounds. The file can be watched
// for changes so tunables like the reveal speed apply without a
// restart.
package config

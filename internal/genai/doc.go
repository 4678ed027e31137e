// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genai is the HTTP client for the generative-language API.
//
// One exchange maps to exactly one generateContent request; there is no
// retry or backoff. The request carries the composed message text in
// the contents/parts shape and the reply is read from the
// candidates[0].content.parts[0].text path. Any deviation - transport
// error, non-2xx status, or a missing/empty reply - is reported as a
// typed ClientError so the pipeline can fail the exchange cleanly.
package genai

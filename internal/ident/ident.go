// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ident generates collision-resistant identifiers for sessions
// and messages.
package ident

import (
	"crypto/rand"
	"strconv"
	"time"
)

// suffixLen is the number of random base36 characters appended to each id.
const suffixLen = 9

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// New produces an identifier of the form
//
//	<prefix>_<unix-millis>_<random suffix>
//
// The time component keeps ids roughly sortable by creation time; the
// random suffix makes collisions within the same millisecond practically
// impossible. There is no collision detection.
func New(prefix string) string {
	return prefix + "_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + randomSuffix()
}

// randomSuffix returns suffixLen characters drawn from the base36 alphabet.
func randomSuffix() string {
	buf := make([]byte, suffixLen)
	rand.Read(buf)
	out := make([]byte, suffixLen)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}

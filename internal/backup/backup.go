// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backup is the local durability layer: it snapshots the live
// session to a single JSON slot on a fixed interval and restores it on
// startup when the backup is recent enough.
//
// Writes are best-effort full overwrites; a failed write is logged and
// surfaced as a warning but never crashes the caller. Restore never
// blocks startup: a missing, corrupt, or stale slot simply yields a
// fresh session, and the slot is left untouched.
package backup

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sujithcherukuri72/shift-ai/internal/model"
	"github.com/sujithcherukuri72/shift-ai/internal/notify"
	"github.com/sujithcherukuri72/shift-ai/internal/util"
)

// Defaults for the snapshot loop and the restore recency window.
const (
	DefaultInterval = 30 * time.Second
	DefaultMaxAge   = 24 * time.Hour
)

// =============================================================================
// STORE
// =============================================================================

// Store writes and restores the durable session slot.
type Store struct {
	path     string
	interval time.Duration
	maxAge   time.Duration
	log      zerolog.Logger
}

// New creates a backup store for the given slot path. Zero interval or
// maxAge fall back to the defaults.
func New(path string, interval, maxAge time.Duration, log zerolog.Logger) *Store {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Store{
		path:     path,
		interval: interval,
		maxAge:   maxAge,
		log:      log.With().Str("component", "backup").Logger(),
	}
}

// Path returns the slot file path.
func (s *Store) Path() string {
	return s.path
}

// Interval returns the snapshot interval.
func (s *Store) Interval() time.Duration {
	return s.interval
}

// =============================================================================
// WRITE / RESTORE
// =============================================================================

// Write overwrites the slot with a full snapshot. Atomic: on crash the
// slot holds either the previous or the new complete document.
func (s *Store) Write(session model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}

// Restore reads the slot once. It returns the stored session and true
// only when the slot exists, parses, and its start time is within the
// recency window. In every other case the zero session and false are
// returned and the slot file is left as-is.
func (s *Store) Restore() (model.Session, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Msg("failed to read backup slot")
		}
		return model.Session{}, false
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.log.Warn().Err(err).Msg("backup slot is corrupt, starting fresh")
		return model.Session{}, false
	}

	if session.ID == "" || session.StartTime.IsZero() {
		s.log.Warn().Msg("backup slot is incomplete, starting fresh")
		return model.Session{}, false
	}

	if age := time.Since(session.StartTime); age > s.maxAge {
		s.log.Info().Dur("age", age).Msg("backup slot is stale, starting fresh")
		return model.Session{}, false
	}

	s.log.Info().Str("session_id", session.ID).Int("messages", session.MessageCount()).
		Msg("restored session from backup")
	return session, true
}

// =============================================================================
// SNAPSHOT LOOP
// =============================================================================

// Run snapshots the session on every interval tick until ctx is
// cancelled. Failures are reported through notifier and never stop the
// loop. A final snapshot is written on shutdown so the slot is no more
// than one interval behind.
func (s *Store) Run(ctx context.Context, snapshot func() model.Session, notifier *notify.Notifier) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.Write(snapshot()); err != nil {
				s.log.Warn().Err(err).Msg("final backup write failed")
			}
			return
		case <-ticker.C:
			if err := s.Write(snapshot()); err != nil {
				s.log.Warn().Err(err).Msg("backup write failed")
				if notifier != nil {
					notifier.Warnf("Failed to back up chat history: %v", err)
				}
			}
		}
	}
}

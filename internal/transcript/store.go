// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"sync"

	"github.com/sujithcherukuri72/shift-ai/internal/model"
)

// =============================================================================
// STORE
// =============================================================================

// AppendHook is invoked after a message has been appended. Hooks run
// outside the store lock and must not mutate the message.
type AppendHook func(model.Message)

// Store holds the active session and serializes all mutation.
type Store struct {
	mu      sync.Mutex
	session model.Session
	meta    model.Metadata
	hooks   []AppendHook
}

// New creates a store with a fresh session.
func New(meta model.Metadata) *Store {
	return &Store{
		session: model.NewSession(meta),
		meta:    meta,
	}
}

// Adopt replaces the live session with a restored one. Used once at
// startup when a recent durable backup exists.
func (s *Store) Adopt(session model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session.Clone()
}

// =============================================================================
// MUTATION
// =============================================================================

// Append constructs a message with a fresh id and current timestamp and
// adds it to the transcript. It never fails; empty-content validation
// happens upstream in the pipeline.
func (s *Store) Append(role model.Role, content string, attachment *model.FileRef) model.Message {
	msg := model.NewMessage(role, content, attachment)

	s.mu.Lock()
	s.session.Messages = append(s.session.Messages, msg)
	hooks := s.hooks
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(msg.Clone())
	}
	return msg
}

// Reset replaces the active session with a fresh one and returns a
// snapshot of the session it replaced. Irreversible.
func (s *Store) Reset() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.session
	s.session = model.NewSession(s.meta)
	return prior
}

// =============================================================================
// READS
// =============================================================================

// Snapshot returns an immutable deep copy of the current session.
func (s *Store) Snapshot() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// SessionID returns the id of the active session.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.ID
}

// MessageCount returns the number of messages in the active session.
func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.session.Messages)
}

// =============================================================================
// HOOKS
// =============================================================================

// OnAppend registers a hook invoked after every append. Registration is
// expected during wiring, before concurrent use.
func (s *Store) OnAppend(hook AppendHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

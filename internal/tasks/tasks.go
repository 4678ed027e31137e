// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks runs background work whose failures must never be
// silently dropped.
//
// Remote sync writes and durability snapshots are fire-and-forget from
// the caller's point of view, but every error and panic is captured and
// reported through the notification surface and the log.
package tasks

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sujithcherukuri72/shift-ai/internal/notify"
)

// Runner executes background tasks and reports their outcomes.
type Runner struct {
	wg       sync.WaitGroup
	stopped  atomic.Bool
	notifier *notify.Notifier
	log      zerolog.Logger
}

// New creates a runner reporting failures to notifier.
func New(notifier *notify.Notifier, log zerolog.Logger) *Runner {
	return &Runner{
		notifier: notifier,
		log:      log.With().Str("component", "tasks").Logger(),
	}
}

// Go runs fn on its own goroutine. Errors are logged and surfaced as
// warnings; panics are recovered and surfaced as errors. After Stop,
// new tasks are dropped.
func (r *Runner) Go(name string, fn func() error) {
	if r.stopped.Load() {
		return
	}

	id := uuid.New().String()
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error().Str("task", name).Str("task_id", id).Msg(fmt.Sprintf("task panicked: %v", rec))
				if r.notifier != nil {
					r.notifier.Errorf("Background task %s failed unexpectedly", name)
				}
			}
		}()

		if err := fn(); err != nil {
			r.log.Warn().Str("task", name).Str("task_id", id).Err(err).Msg("task failed")
			if r.notifier != nil {
				r.notifier.Warnf("%s failed: %v", name, err)
			}
			return
		}
		r.log.Debug().Str("task", name).Str("task_id", id).Msg("task completed")
	}()
}

// Stop prevents new tasks and waits for running tasks to finish.
func (r *Runner) Stop() {
	r.stopped.Store(true)
	r.wg.Wait()
}

// Wait blocks until all currently running tasks finish.
func (r *Runner) Wait() {
	r.wg.Wait()
}

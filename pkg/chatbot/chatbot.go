// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatbot

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/sujithcherukuri72/shift-ai/internal/archive"
	"github.com/sujithcherukuri72/shift-ai/internal/backup"
	"github.com/sujithcherukuri72/shift-ai/internal/chat"
	"github.com/sujithcherukuri72/shift-ai/internal/config"
	"github.com/sujithcherukuri72/shift-ai/internal/export"
	"github.com/sujithcherukuri72/shift-ai/internal/genai"
	"github.com/sujithcherukuri72/shift-ai/internal/model"
	"github.com/sujithcherukuri72/shift-ai/internal/notify"
	"github.com/sujithcherukuri72/shift-ai/internal/remote"
	"github.com/sujithcherukuri72/shift-ai/internal/tasks"
	"github.com/sujithcherukuri72/shift-ai/internal/transcript"
)

// Version is the shift-ai release version, recorded in session
// metadata.
const Version = "0.1.0"

// Greeting opens every fresh conversation.
const Greeting = "👋 Hey there!\nI'm ShiftAI, your intelligent assistant. How can I help you today?"

// syncTimeout bounds each background remote upsert.
const syncTimeout = 10 * time.Second

// ErrNoSync is returned by sync operations when no credentials are
// configured.
var ErrNoSync = errors.New("remote sync is not configured")

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Widget. Config is required; the rest default
// sensibly.
type Options struct {
	Config *config.Config
	Logger zerolog.Logger

	// Generator overrides the HTTP inference client. Used in tests.
	Generator chat.Generator

	// Syncer overrides the remote sync adapter. Used in tests.
	Syncer remote.Syncer

	// DataDir overrides the resolved data directory.
	DataDir string
}

// =============================================================================
// WIDGET
// =============================================================================

// Widget is a running conversation engine. Create with New, then
// Start; Stop flushes and releases everything.
type Widget struct {
	cfg      *config.Config
	log      zerolog.Logger
	notifier *notify.Notifier

	store    *transcript.Store
	backup   *backup.Store
	archive  *archive.Store
	syncer   remote.Syncer
	pipeline *chat.Pipeline
	runner   *tasks.Runner

	ctx        context.Context
	cancel     context.CancelFunc
	started    bool
	backupDone chan struct{}
}

// New assembles a widget. It restores the last locally saved session
// when one is fresh enough, otherwise it seeds the greeting. The
// archive is best-effort: a broken database disables archival but not
// the chat.
func New(opts Options) (*Widget, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger.With().Str("component", "chatbot").Logger()

	dataDir := opts.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = cfg.DataDir()
		if err != nil {
			return nil, err
		}
	}

	notifier := notify.New(opts.Logger)
	store := transcript.New(model.CollectMetadata(Version))
	backupStore := backup.New(filepath.Join(dataDir, "backup.json"), cfg.BackupInterval(), cfg.BackupMaxAge(), opts.Logger)

	if prior, ok := backupStore.Restore(); ok {
		store.Adopt(prior)
		log.Info().Str("session", prior.ID).Int("messages", len(prior.Messages)).Msg("restored saved session")
	} else {
		store.Append(model.RoleBot, Greeting, nil)
	}

	arch, err := archive.Open(filepath.Join(dataDir, "archive.db"))
	if err != nil {
		log.Warn().Err(err).Msg("archive unavailable")
		arch = nil
	}

	syncer := opts.Syncer
	if syncer == nil {
		syncer = remote.NewDocStore(opts.Logger)
	}

	gen := opts.Generator
	if gen == nil {
		gen = genai.NewClientWithConfig(&genai.ClientConfig{
			Endpoint:          cfg.API.Endpoint,
			Model:             cfg.API.Model,
			APIKey:            cfg.API.Key,
			Timeout:           cfg.APITimeout(),
			RequestsPerMinute: cfg.API.RequestsPerMinute,
		})
	}

	pipeline := chat.New(store, gen, notifier, opts.Logger)
	pipeline.SetRevealInterval(cfg.RevealInterval())

	ctx, cancel := context.WithCancel(context.Background())
	w := &Widget{
		cfg:        cfg,
		log:        log,
		notifier:   notifier,
		store:      store,
		backup:     backupStore,
		archive:    arch,
		syncer:     syncer,
		pipeline:   pipeline,
		runner:     tasks.New(notifier, opts.Logger),
		ctx:        ctx,
		cancel:     cancel,
		backupDone: make(chan struct{}),
	}

	// Every committed message triggers a background upsert while the
	// remote side is connected.
	store.OnAppend(func(model.Message) {
		if !w.syncer.Connected() {
			return
		}
		snapshot := w.store.Snapshot()
		w.runner.Go("remote sync", func() error {
			syncCtx, cancel := context.WithTimeout(context.Background(), syncTimeout)
			defer cancel()
			return w.syncer.Sync(syncCtx, snapshot)
		})
	})

	return w, nil
}

// Start launches the periodic backup loop.
func (w *Widget) Start() {
	w.started = true
	go func() {
		defer close(w.backupDone)
		w.backup.Run(w.ctx, w.store.Snapshot, w.notifier)
	}()
}

// Stop shuts the widget down: in-flight replies resolve, a final
// backup is written, and background tasks drain. Safe to call once
// after Start.
func (w *Widget) Stop() {
	w.cancel()
	w.pipeline.Wait()
	if w.started {
		<-w.backupDone
	}
	w.runner.Stop()
	w.runner.Wait()
	w.syncer.Disconnect()
	if w.archive != nil {
		w.archive.Close()
	}
	w.notifier.Close()
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Send submits a user message. The reply resolves in the background
// and is delivered through the reveal sink and the transcript.
func (w *Widget) Send(text string, attachment *model.FileRef) (string, error) {
	return w.pipeline.Send(w.ctx, text, attachment)
}

// Snapshot returns a deep copy of the current session.
func (w *Widget) Snapshot() model.Session {
	return w.store.Snapshot()
}

// SessionID returns the active session id.
func (w *Widget) SessionID() string {
	return w.store.SessionID()
}

// Clear archives the current session and starts a fresh one opened by
// the greeting. Returns the new session id.
func (w *Widget) Clear() string {
	prior := w.store.Reset()
	if w.archive != nil && len(prior.Messages) > 0 {
		if err := w.archive.Save(prior); err != nil {
			w.log.Warn().Err(err).Str("session", prior.ID).Msg("failed to archive session")
			w.notifier.Warnf("could not archive previous chat: %v", err)
		}
	}
	w.store.Append(model.RoleBot, Greeting, nil)
	return w.store.SessionID()
}

// Exchange reports the state of an exchange started by Send.
func (w *Widget) Exchange(id string) (chat.Exchange, bool) {
	return w.pipeline.Exchange(id)
}

// SetRevealSink installs the reveal consumer for reply animation.
func (w *Widget) SetRevealSink(sink chat.RevealSink) {
	w.pipeline.SetRevealSink(sink)
}

// SetRevealInterval adjusts the typewriter speed at runtime.
func (w *Widget) SetRevealInterval(d time.Duration) {
	w.pipeline.SetRevealInterval(d)
}

// =============================================================================
// EXPORT
// =============================================================================

// Export serializes the session and returns the payload with its
// download-style file name.
func (w *Widget) Export() ([]byte, string, error) {
	session := w.store.Snapshot()
	data, err := export.JSON(session)
	if err != nil {
		return nil, "", err
	}
	return data, export.FileName(session.ID), nil
}

// ExportTo writes the session export into dir and returns the path.
func (w *Widget) ExportTo(dir string) (string, error) {
	path, err := export.WriteFile(w.store.Snapshot(), dir)
	if err != nil {
		return "", err
	}
	w.notifier.Successf("chat exported to %s", path)
	return path, nil
}

// =============================================================================
// REMOTE SYNC
// =============================================================================

// ConnectSync brings the remote adapter up using the configured
// credentials and pushes the current session as the initial sync.
func (w *Widget) ConnectSync(ctx context.Context) error {
	if !w.cfg.SyncEnabled() {
		return ErrNoSync
	}
	rcfg := remote.Config{
		ProjectID:  w.cfg.Sync.ProjectID,
		APIKey:     w.cfg.Sync.APIKey,
		Endpoint:   w.cfg.Sync.Endpoint,
		Collection: w.cfg.Sync.Collection,
	}
	if err := w.syncer.Connect(ctx, rcfg, w.store.Snapshot()); err != nil {
		w.notifier.Errorf("sync connection failed: %v", err)
		return err
	}
	w.notifier.Successf("sync connected")
	return nil
}

// DisconnectSync drops the remote connection. Local state is kept.
func (w *Widget) DisconnectSync() {
	w.syncer.Disconnect()
	w.notifier.Infof("sync disconnected")
}

// SyncConnected reports whether remote sync is active.
func (w *Widget) SyncConnected() bool {
	return w.syncer.Connected()
}

// LoadRemote fetches a previously synced session and adopts it as the
// active conversation.
func (w *Widget) LoadRemote(ctx context.Context, sessionID string) error {
	session, err := w.syncer.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	w.store.Adopt(session)
	w.notifier.Successf("loaded chat %s", sessionID)
	return nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifications returns the stream of user-facing notices.
func (w *Widget) Notifications() <-chan notify.Notification {
	return w.notifier.Subscribe()
}

// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sujithcherukuri72/shift-ai/internal/backup"
	"github.com/sujithcherukuri72/shift-ai/internal/config"
	"github.com/sujithcherukuri72/shift-ai/internal/model"
	"github.com/sujithcherukuri72/shift-ai/internal/remote"
)

// echoGenerator replies with a fixed prefix of the request.
type echoGenerator struct {
	err error
}

func (g *echoGenerator) Generate(ctx context.Context, text string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "echo: " + text, nil
}

// fakeSyncer records sync calls in memory.
type fakeSyncer struct {
	mu        sync.Mutex
	connected bool
	synced    []model.Session
	loadable  map[string]model.Session
}

func newFakeSyncer() *fakeSyncer {
	return &fakeSyncer{loadable: make(map[string]model.Session)}
}

func (f *fakeSyncer) Connect(ctx context.Context, cfg remote.Config, initial model.Session) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	f.synced = append(f.synced, initial)
	return nil
}

func (f *fakeSyncer) Sync(ctx context.Context, session model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return nil
	}
	f.synced = append(f.synced, session)
	return nil
}

func (f *fakeSyncer) Load(ctx context.Context, sessionID string) (model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return model.Session{}, remote.ErrNotConnected
	}
	s, ok := f.loadable[sessionID]
	if !ok {
		return model.Session{}, remote.ErrNotFound
	}
	return s, nil
}

func (f *fakeSyncer) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func (f *fakeSyncer) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeSyncer) syncCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.synced)
}

func newTestWidget(t *testing.T, opts Options) *Widget {
	t.Helper()
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.DataDir == "" {
		opts.DataDir = t.TempDir()
	}
	if opts.Generator == nil {
		opts.Generator = &echoGenerator{}
	}
	opts.Logger = zerolog.Nop()

	w, err := New(opts)
	require.NoError(t, err)
	w.SetRevealInterval(0)
	return w
}

func TestNewSeedsGreeting(t *testing.T) {
	w := newTestWidget(t, Options{})
	defer w.Stop()

	session := w.Snapshot()
	require.True(t, strings.HasPrefix(session.ID, "chat_"))
	require.Len(t, session.Messages, 1)
	require.Equal(t, model.RoleBot, session.Messages[0].Role)
	require.Equal(t, Greeting, session.Messages[0].Content)
	require.Equal(t, "en_US", session.Metadata.Locale)
}

func TestNewRestoresBackup(t *testing.T) {
	dir := t.TempDir()

	prior := model.NewSession(model.Metadata{Locale: "en_US"})
	prior.Messages = append(prior.Messages,
		model.NewMessage(model.RoleBot, Greeting, nil),
		model.NewMessage(model.RoleUser, "remember me", nil),
	)
	slot := backup.New(filepath.Join(dir, "backup.json"), 0, 0, zerolog.Nop())
	require.NoError(t, slot.Write(prior))

	w := newTestWidget(t, Options{DataDir: dir})
	defer w.Stop()

	session := w.Snapshot()
	require.Equal(t, prior.ID, session.ID)
	require.Len(t, session.Messages, 2)
	require.Equal(t, "remember me", session.Messages[1].Content)
}

func TestSendRoundTrip(t *testing.T) {
	w := newTestWidget(t, Options{})
	defer w.Stop()

	id, err := w.Send("hello", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		ex, ok := w.Exchange(id)
		return ok && ex.State != 0 && w.Snapshot().MessageCount() == 3
	}, 5*time.Second, 10*time.Millisecond)

	session := w.Snapshot()
	require.Equal(t, "hello", session.Messages[1].Content)
	require.Equal(t, "echo: hello", session.Messages[2].Content)
}

func TestSendFailureShowsApology(t *testing.T) {
	w := newTestWidget(t, Options{Generator: &echoGenerator{err: errors.New("offline")}})
	defer w.Stop()

	_, err := w.Send("hi", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return w.Snapshot().MessageCount() == 3
	}, 5*time.Second, 10*time.Millisecond)

	last := w.Snapshot().Messages[2]
	require.Equal(t, model.RoleBot, last.Role)
	require.Contains(t, last.Content, "trouble connecting")
}

func TestClearStartsFreshSession(t *testing.T) {
	w := newTestWidget(t, Options{})
	defer w.Stop()

	oldID := w.SessionID()
	_, err := w.Send("something", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return w.Snapshot().MessageCount() == 3
	}, 5*time.Second, 10*time.Millisecond)

	newID := w.Clear()
	require.NotEqual(t, oldID, newID)

	session := w.Snapshot()
	require.Equal(t, newID, session.ID)
	require.Len(t, session.Messages, 1)
	require.Equal(t, Greeting, session.Messages[0].Content)
}

func TestExport(t *testing.T) {
	w := newTestWidget(t, Options{})
	defer w.Stop()

	data, name, err := w.Export()
	require.NoError(t, err)
	require.Equal(t, "chat_history_"+w.SessionID()+".json", name)

	var session model.Session
	require.NoError(t, json.Unmarshal(data, &session))
	require.Equal(t, w.SessionID(), session.ID)
}

func TestExportTo(t *testing.T) {
	w := newTestWidget(t, Options{})
	defer w.Stop()

	dir := t.TempDir()
	path, err := w.ExportTo(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), w.SessionID())
}

func TestConnectSyncWithoutCredentials(t *testing.T) {
	w := newTestWidget(t, Options{})
	defer w.Stop()

	err := w.ConnectSync(context.Background())
	require.ErrorIs(t, err, ErrNoSync)
}

func TestSyncLifecycle(t *testing.T) {
	cfg := config.Default()
	cfg.Sync.ProjectID = "demo"
	cfg.Sync.APIKey = "key"

	syncer := newFakeSyncer()
	w := newTestWidget(t, Options{Config: cfg, Syncer: syncer})

	require.NoError(t, w.ConnectSync(context.Background()))
	require.True(t, w.SyncConnected())
	require.Equal(t, 1, syncer.syncCount())

	_, err := w.Send("sync me", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return w.Snapshot().MessageCount() == 3
	}, 5*time.Second, 10*time.Millisecond)

	w.Stop()

	// Initial sync plus one upsert per committed message.
	require.GreaterOrEqual(t, syncer.syncCount(), 3)
	require.False(t, w.SyncConnected())
}

func TestLoadRemoteAdoptsSession(t *testing.T) {
	cfg := config.Default()
	cfg.Sync.ProjectID = "demo"
	cfg.Sync.APIKey = "key"

	syncer := newFakeSyncer()
	stored := model.NewSession(model.Metadata{Locale: "en_US"})
	stored.Messages = append(stored.Messages, model.NewMessage(model.RoleUser, "from the cloud", nil))
	syncer.loadable[stored.ID] = stored

	w := newTestWidget(t, Options{Config: cfg, Syncer: syncer})
	defer w.Stop()

	require.NoError(t, w.ConnectSync(context.Background()))
	require.NoError(t, w.LoadRemote(context.Background(), stored.ID))

	session := w.Snapshot()
	require.Equal(t, stored.ID, session.ID)
	require.Equal(t, "from the cloud", session.Messages[0].Content)

	require.ErrorIs(t, w.LoadRemote(context.Background(), "missing"), remote.ErrNotFound)
}

func TestStopAfterStartFlushesBackup(t *testing.T) {
	dir := t.TempDir()
	w := newTestWidget(t, Options{DataDir: dir})
	w.Start()

	_, err := w.Send("persist this", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return w.Snapshot().MessageCount() == 3
	}, 5*time.Second, 10*time.Millisecond)

	w.Stop()

	slot := backup.New(filepath.Join(dir, "backup.json"), 0, 0, zerolog.Nop())
	restored, ok := slot.Restore()
	require.True(t, ok)
	require.Equal(t, 3, len(restored.Messages))
}

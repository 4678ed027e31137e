// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sujithcherukuri72/shift-ai/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidConfig marks a config rejected before any state change.
	ErrInvalidConfig = errors.New("invalid sync configuration")

	// ErrNotConnected is returned by operations that require an
	// established connection.
	ErrNotConnected = errors.New("remote sync is not connected")

	// ErrNotFound is returned when no document exists for a session id.
	ErrNotFound = errors.New("remote document not found")
)

// =============================================================================
// STATE
// =============================================================================

// State is the adapter's connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	default:
		return "Disconnected"
	}
}

// =============================================================================
// CONFIG
// =============================================================================

// DefaultEndpoint is the document-store API root used when the config
// does not override it.
const DefaultEndpoint = "https://firestore.googleapis.com/v1/projects"

// DefaultCollection is the collection holding chat documents.
const DefaultCollection = "chats"

// Config identifies the remote project and credentials.
type Config struct {
	ProjectID  string `json:"projectId"`
	APIKey     string `json:"apiKey"`
	Endpoint   string `json:"endpoint,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// ParseConfig decodes a user-supplied JSON config blob and validates it.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("%w: projectId is required", ErrInvalidConfig)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: apiKey is required", ErrInvalidConfig)
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if _, err := url.Parse(c.Endpoint); err != nil {
		return fmt.Errorf("%w: bad endpoint: %v", ErrInvalidConfig, err)
	}
	return nil
}

// =============================================================================
// SYNCER INTERFACE
// =============================================================================

// Syncer is the capability the core depends on. Exactly one Syncer is
// active per widget; calls are serialized by the caller.
type Syncer interface {
	// Connect validates cfg, establishes the remote handle, and
	// performs an initial full sync of the given snapshot. On failure
	// the adapter stays Disconnected and local state is untouched.
	Connect(ctx context.Context, cfg Config, initial model.Session) error

	// Sync upserts a full snapshot keyed by its session id. No-op when
	// disconnected. Failures are non-fatal and leave the connection up.
	Sync(ctx context.Context, session model.Session) error

	// Load fetches the stored snapshot for a session id.
	Load(ctx context.Context, sessionID string) (model.Session, error)

	// Disconnect drops the handle and config. Idempotent.
	Disconnect()

	// Connected reports whether the adapter is in the Connected state.
	Connected() bool
}

// =============================================================================
// DOCUMENT STORE ADAPTER
// =============================================================================

// document is the remote wire shape: the full session plus an upsert
// timestamp, mirroring the local export format.
type document struct {
	model.Session
	LastUpdated time.Time `json:"lastUpdated"`
}

// DocStore implements Syncer against an HTTP JSON document store.
type DocStore struct {
	mu         sync.Mutex
	state      State
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

// NewDocStore creates a disconnected adapter.
func NewDocStore(log zerolog.Logger) *DocStore {
	return &DocStore{
		state:      StateDisconnected,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("component", "remote").Logger(),
	}
}

// State returns the current connection state.
func (d *DocStore) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Connected implements Syncer.
func (d *DocStore) Connected() bool {
	return d.State() == StateConnected
}

// Connect implements Syncer. The initial upsert doubles as the
// connectivity probe: if the store rejects it, no connection is kept.
func (d *DocStore) Connect(ctx context.Context, cfg Config, initial model.Session) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.state != StateDisconnected {
		d.mu.Unlock()
		return fmt.Errorf("connect called in state %s", d.state)
	}
	d.state = StateConnecting
	d.mu.Unlock()

	if err := d.upsert(ctx, cfg, initial); err != nil {
		d.mu.Lock()
		d.state = StateDisconnected
		d.mu.Unlock()
		return fmt.Errorf("remote store unreachable: %w", err)
	}

	d.mu.Lock()
	d.cfg = cfg
	d.state = StateConnected
	d.mu.Unlock()

	d.log.Info().Str("project", cfg.ProjectID).Msg("remote sync connected")
	return nil
}

// Sync implements Syncer.
func (d *DocStore) Sync(ctx context.Context, session model.Session) error {
	d.mu.Lock()
	if d.state != StateConnected {
		d.mu.Unlock()
		return nil
	}
	cfg := d.cfg
	d.mu.Unlock()

	if err := d.upsert(ctx, cfg, session); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// Load implements Syncer.
func (d *DocStore) Load(ctx context.Context, sessionID string) (model.Session, error) {
	d.mu.Lock()
	if d.state != StateConnected {
		d.mu.Unlock()
		return model.Session{}, ErrNotConnected
	}
	cfg := d.cfg
	d.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.documentURL(cfg, sessionID), nil)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return model.Session{}, fmt.Errorf("load failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.Session{}, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Session{}, fmt.Errorf("load failed: unexpected status %s", resp.Status)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode remote document: %w", err)
	}
	return doc.Session, nil
}

// Disconnect implements Syncer.
func (d *DocStore) Disconnect() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDisconnected {
		return
	}
	d.state = StateDisconnected
	d.cfg = Config{}
	d.log.Info().Msg("remote sync disconnected")
}

// =============================================================================
// WIRE
// =============================================================================

// upsert writes the full snapshot document, create-or-replace.
func (d *DocStore) upsert(ctx context.Context, cfg Config, session model.Session) error {
	body, err := json.Marshal(document{Session: session, LastUpdated: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, d.documentURL(cfg, session.ID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

// documentURL addresses one chat document:
// <endpoint>/<projectId>/<collection>/<sessionId>?key=<apiKey>
func (d *DocStore) documentURL(cfg Config, sessionID string) string {
	return cfg.Endpoint + "/" + url.PathEscape(cfg.ProjectID) + "/" +
		url.PathEscape(cfg.Collection) + "/" + url.PathEscape(sessionID) +
		"?key=" + url.QueryEscape(cfg.APIKey)
}

// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify delivers one-shot, user-visible feedback.
//
// Every background failure path in the widget (durability writes, remote
// sync, task panics) reports here instead of being silently dropped.
// Notifications are fan-out: each subscriber gets its own buffered
// channel and a slow subscriber never blocks a publisher.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// NOTIFICATION TYPE
// =============================================================================

// Level classifies a notification for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a one-shot user-visible message.
type Notification struct {
	Level   Level
	Message string
	Time    time.Time
}

// =============================================================================
// NOTIFIER
// =============================================================================

// subscriberBuffer is the per-subscriber channel depth. Publishes to a
// full subscriber are dropped rather than blocking the caller.
const subscriberBuffer = 16

// Notifier fans notifications out to subscribers and echoes them to the log.
type Notifier struct {
	mu     sync.Mutex
	subs   []chan Notification
	closed bool
	log    zerolog.Logger
}

// New creates a notifier that echoes every notification to log.
func New(log zerolog.Logger) *Notifier {
	return &Notifier{log: log.With().Str("component", "notify").Logger()}
}

// Subscribe registers a new subscriber channel. The channel is closed
// when the notifier shuts down.
func (n *Notifier) Subscribe() <-chan Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Notification, subscriberBuffer)
	if n.closed {
		close(ch)
		return ch
	}
	n.subs = append(n.subs, ch)
	return ch
}

// Publish delivers a notification to all subscribers without blocking.
func (n *Notifier) Publish(level Level, message string) {
	note := Notification{Level: level, Message: message, Time: time.Now()}

	switch level {
	case LevelWarning:
		n.log.Warn().Msg(message)
	case LevelError:
		n.log.Error().Msg(message)
	default:
		n.log.Info().Msg(message)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for _, ch := range n.subs {
		select {
		case ch <- note:
		default:
			// Subscriber is not draining; drop rather than stall the widget.
		}
	}
}

// Infof publishes an info-level notification.
func (n *Notifier) Infof(format string, args ...any) {
	n.Publish(LevelInfo, fmt.Sprintf(format, args...))
}

// Successf publishes a success-level notification.
func (n *Notifier) Successf(format string, args ...any) {
	n.Publish(LevelSuccess, fmt.Sprintf(format, args...))
}

// Warnf publishes a warning-level notification.
func (n *Notifier) Warnf(format string, args ...any) {
	n.Publish(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf publishes an error-level notification.
func (n *Notifier) Errorf(format string, args ...any) {
	n.Publish(LevelError, fmt.Sprintf(format, args...))
}

// Close shuts the notifier down and closes all subscriber channels.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for _, ch := range n.subs {
		close(ch)
	}
	n.subs = nil
}

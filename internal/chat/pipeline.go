// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sujithcherukuri72/shift-ai/internal/model"
	"github.com/sujithcherukuri72/shift-ai/internal/notify"
	"github.com/sujithcherukuri72/shift-ai/internal/transcript"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// Apology is appended as the bot reply whenever an exchange fails,
	// regardless of the underlying cause.
	Apology = "Sorry, I'm having trouble connecting right now. Please try again in a moment."

	// AttachmentFallback stands in as message content when the user
	// sends a file with no text.
	AttachmentFallback = "📎 File attached"

	// DefaultRevealInterval is the delay between reveal steps, one
	// rune per step.
	DefaultRevealInterval = 30 * time.Millisecond
)

// ErrEmptyMessage is returned by Send when there is nothing to send.
var ErrEmptyMessage = errors.New("message is empty")

// =============================================================================
// EXCHANGE
// =============================================================================

// State tracks an exchange through its lifecycle.
type State int

const (
	// StateComposing means the user message is being validated and
	// recorded.
	StateComposing State = iota

	// StatePending means the inference request is in flight.
	StatePending

	// StateFulfilled means the reply was committed to the transcript.
	StateFulfilled

	// StateFailed means the exchange ended with the apology instead.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateComposing:
		return "composing"
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Exchange is one user turn and its eventual reply.
type Exchange struct {
	ID        string
	State     State
	RequestID string
}

// =============================================================================
// PIPELINE
// =============================================================================

// Generator produces a reply for one request. A single Send makes a
// single Generate call.
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// RevealSink receives reveal progress for an exchange. chunk is the
// reply text revealed so far; done marks the final delivery. The sink
// is called from the pipeline's worker goroutine.
type RevealSink func(exchangeID, chunk string, done bool)

// Pipeline turns user input into transcript entries. Safe for
// concurrent use.
type Pipeline struct {
	store    *transcript.Store
	gen      Generator
	notifier *notify.Notifier
	log      zerolog.Logger

	mu        sync.Mutex
	interval  time.Duration
	sink      RevealSink
	exchanges map[string]*Exchange

	wg sync.WaitGroup
}

// New creates a pipeline over the given store and generator.
func New(store *transcript.Store, gen Generator, notifier *notify.Notifier, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		gen:       gen,
		notifier:  notifier,
		log:       log.With().Str("component", "chat").Logger(),
		interval:  DefaultRevealInterval,
		exchanges: make(map[string]*Exchange),
	}
}

// SetRevealSink installs the reveal consumer. A nil sink disables
// reveal delivery; replies still reach the transcript.
func (p *Pipeline) SetRevealSink(sink RevealSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = sink
}

// SetRevealInterval adjusts the per-rune reveal delay. Zero or
// negative delivers the full reply in one step.
func (p *Pipeline) SetRevealInterval(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = d
}

// Exchange reports the state of a previously started exchange.
func (p *Pipeline) Exchange(id string) (Exchange, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ex, ok := p.exchanges[id]
	if !ok {
		return Exchange{}, false
	}
	return *ex, true
}

// Wait blocks until all in-flight exchanges have resolved.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Send records the user message and starts resolving the reply in the
// background. It returns the exchange id immediately; the reply
// arrives through the reveal sink and the transcript.
func (p *Pipeline) Send(ctx context.Context, text string, attachment *model.FileRef) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return "", ErrEmptyMessage
	}

	content := text
	if content == "" {
		content = AttachmentFallback
	}

	ex := &Exchange{ID: uuid.NewString(), State: StateComposing}
	p.mu.Lock()
	p.exchanges[ex.ID] = ex
	p.mu.Unlock()

	// The user message lands in the transcript before the request is
	// even attempted, so a dead network never loses typed input.
	msg := p.store.Append(model.RoleUser, content, attachment)
	p.setState(ex.ID, StatePending)
	p.mu.Lock()
	ex.RequestID = msg.ID
	p.mu.Unlock()

	request := content
	if attachment != nil {
		request += "\n\n[User attached a file: " + attachment.Name + "]"
	}

	p.wg.Add(1)
	go p.resolve(ctx, ex.ID, request)

	return ex.ID, nil
}

// resolve performs the single inference attempt and commits the
// outcome.
func (p *Pipeline) resolve(ctx context.Context, exchangeID, request string) {
	defer p.wg.Done()

	reply, err := p.gen.Generate(ctx, request)
	if err != nil {
		p.log.Warn().Err(err).Str("exchange", exchangeID).Msg("inference failed")
		if p.notifier != nil {
			p.notifier.Warnf("reply failed: %v", err)
		}
		// The apology is delivered in one step; only real replies
		// get the typewriter treatment.
		p.store.Append(model.RoleBot, Apology, nil)
		p.emit(exchangeID, Apology, true)
		p.setState(exchangeID, StateFailed)
		return
	}

	p.reveal(ctx, exchangeID, reply)
	p.store.Append(model.RoleBot, reply, nil)
	p.setState(exchangeID, StateFulfilled)
}

// reveal streams the reply to the sink one rune at a time. A cancelled
// context short-circuits to the full text so the transcript and the
// view never disagree.
func (p *Pipeline) reveal(ctx context.Context, exchangeID, text string) {
	p.mu.Lock()
	sink, interval := p.sink, p.interval
	p.mu.Unlock()

	if sink == nil {
		return
	}
	if interval <= 0 {
		sink(exchangeID, text, true)
		return
	}

	runes := []rune(text)
	if len(runes) == 0 {
		sink(exchangeID, text, true)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-ctx.Done():
			sink(exchangeID, text, true)
			return
		case <-ticker.C:
			sink(exchangeID, string(runes[:i]), i == len(runes))
		}
	}
}

func (p *Pipeline) emit(exchangeID, chunk string, done bool) {
	p.mu.Lock()
	sink := p.sink
	p.mu.Unlock()
	if sink != nil {
		sink(exchangeID, chunk, done)
	}
}

func (p *Pipeline) setState(exchangeID string, s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ex, ok := p.exchanges[exchangeID]; ok {
		ex.State = s
	}
}

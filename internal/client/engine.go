// Package client runs the session engine: a single event loop that
// reconciles server pushes into the session store, recomputes eligibility,
// and lets the autoplay orchestrator drive agent turns.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"codenames-client/internal/autoplay"
	"codenames-client/internal/eligibility"
	"codenames-client/internal/protocol"
	"codenames-client/internal/session"
	"codenames-client/internal/ws"
)

// Transport is the engine's view of the connection manager.
type Transport interface {
	Events() <-chan ws.Event
	Send(payload []byte)
	Close() error
}

// Screen tracks which view the client is on; the engine only needs it to
// mirror the structural transitions the server announces.
type Screen string

const (
	ScreenLanding Screen = "landing"
	ScreenLobby   Screen = "lobby"
	ScreenGame    Screen = "game"
)

// ErrConnectionLost reports a transport failure; the session is dead until
// a fresh join.
var ErrConnectionLost = errors.New("connection lost")

type Options struct {
	// PlayerID and RoomID are set when the identity is already known,
	// as when this client created the room over HTTP.
	PlayerID string
	RoomID   string

	// AutoplayDelay spaces agent triggers out for observability.
	AutoplayDelay time.Duration
	// StallTimeout bounds how long an agent-action request may stay
	// outstanding before the busy guard is forcibly cleared. Zero
	// disables the watchdog.
	StallTimeout time.Duration

	// ExitOnGameEnd makes Run return after the terminal push, for
	// headless use.
	ExitOnGameEnd bool

	Logger zerolog.Logger
}

// internalMsg is the loop's private inbox: timer fires routed back onto
// the engine goroutine so orchestrator state stays single-writer.
type internalMsg interface{ isInternal() }

type triggerAgent struct{ agentID string }
type stallExpired struct{}

func (triggerAgent) isInternal() {}
func (stallExpired) isInternal() {}

type Engine struct {
	log       zerolog.Logger
	transport Transport
	store     *session.Store
	auto      *autoplay.Orchestrator

	playerID string
	roomID   string
	screen   Screen

	inbox    chan internalMsg
	commands <-chan Command

	// eligibility cache, invalidated by snapshot generation or an
	// identity change.
	actions      eligibility.ActionSet
	actionsGen   uint64
	actionsValid bool

	chat []protocol.ChatMessage

	exitOnGameEnd bool
	quit          bool
}

// New wires an engine to a transport and a user-command stream. Commands
// are consumed only inside Run, so precondition guards always see the
// engine's current state.
func New(transport Transport, commands <-chan Command, opts Options) *Engine {
	e := &Engine{
		log:           opts.Logger,
		transport:     transport,
		store:         session.NewStore(),
		playerID:      opts.PlayerID,
		roomID:        opts.RoomID,
		screen:        ScreenLanding,
		inbox:         make(chan internalMsg, 16),
		commands:      commands,
		exitOnGameEnd: opts.ExitOnGameEnd,
	}
	delay := opts.AutoplayDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	e.auto = autoplay.New(delay, opts.StallTimeout,
		func(agentID string) { e.post(triggerAgent{agentID: agentID}) },
		func() { e.post(stallExpired{}) },
	)
	return e
}

// Run processes events until the context ends, the connection drops, the
// user quits, or (with ExitOnGameEnd) the round finishes.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-e.transport.Events():
			if !ok {
				return nil
			}
			if ev.Err != nil {
				e.notifyError("disconnected from server")
				return fmt.Errorf("%w: %v", ErrConnectionLost, ev.Err)
			}
			e.handleFrame(ev.Data)

		case m := <-e.inbox:
			e.handleInternal(m)

		case cmd, ok := <-e.commands:
			if !ok {
				return nil
			}
			e.handleCommand(cmd)
		}
		if e.quit {
			return nil
		}
	}
}

func (e *Engine) handleFrame(raw []byte) {
	ev, err := protocol.DecodeServer(raw)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownType) {
			e.log.Debug().Err(err).Msg("ignoring unknown message")
		} else {
			e.log.Warn().Err(err).Msg("ignoring malformed message")
		}
		return
	}
	e.dispatch(ev)
}

func (e *Engine) handleInternal(m internalMsg) {
	switch msg := m.(type) {
	case triggerAgent:
		// The delay window may have seen a turn change; only send if
		// this agent is still the one expected to act.
		acts := e.resolveActions()
		if acts.ActiveAgentID != msg.agentID {
			return
		}
		if !e.auto.TriggerDue() {
			return
		}
		e.log.Info().Str("agent_id", msg.agentID).Str("agent", acts.ActiveAgentName).Msg("requesting agent action")
		e.sendCommand(protocol.RequestAIAction{PlayerID: msg.agentID})

	case stallExpired:
		if !e.auto.StallDue() {
			return
		}
		e.log.Warn().Msg("agent action stalled, clearing busy guard")
		e.auto.ClearBusy()
		e.reconcileAutoplay()
	}
}

// reconcile runs after a snapshot install: recompute eligibility and let
// autoplay advance.
func (e *Engine) reconcile() {
	room, ok := e.store.Current()
	if !ok {
		return
	}
	e.auto.Advance(room, e.resolveActions())
}

// reconcileAutoplay re-evaluates autoplay against the current snapshot
// without requiring a fresh install, as after a terminal event cleared
// the busy guard.
func (e *Engine) reconcileAutoplay() {
	if room, ok := e.store.Current(); ok {
		e.auto.Advance(room, e.resolveActions())
	}
}

func (e *Engine) resolveActions() eligibility.ActionSet {
	room, _ := e.store.Current()
	gen := e.store.Generation()
	if e.actionsValid && gen == e.actionsGen {
		return e.actions
	}
	e.actions = eligibility.Resolve(room, e.playerID)
	e.actionsGen = gen
	e.actionsValid = true
	return e.actions
}

func (e *Engine) setIdentity(playerID string) {
	e.playerID = playerID
	e.actionsValid = false
}

func (e *Engine) setScreen(s Screen) {
	if e.screen == s {
		return
	}
	e.screen = s
	e.log.Info().Str("screen", string(s)).Msg("screen changed")
}

func (e *Engine) post(m internalMsg) {
	select {
	case e.inbox <- m:
	default:
		e.log.Warn().Msg("engine inbox full, dropping internal message")
	}
}

func (e *Engine) sendCommand(c protocol.Command) {
	payload, err := protocol.EncodeCommand(c)
	if err != nil {
		e.log.Error().Err(err).Str("command", protocol.Tag(c)).Msg("encode command")
		return
	}
	e.transport.Send(payload)
}

func (e *Engine) requestState() {
	e.sendCommand(protocol.RequestState{})
}

func (e *Engine) notifyf(format string, args ...any) {
	e.log.Info().Msg(fmt.Sprintf(format, args...))
}

func (e *Engine) notifyError(msg string) {
	e.log.Error().Msg(msg)
}

// PlayerID is the identity adopted from the server, empty before the
// handshake completes.
func (e *Engine) PlayerID() string { return e.playerID }

// Screen reports the current view.
func (e *Engine) CurrentScreen() Screen { return e.screen }

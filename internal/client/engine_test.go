package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"codenames-client/internal/game"
	"codenames-client/internal/protocol"
	"codenames-client/internal/ws"
)

type fakeTransport struct {
	mu     sync.Mutex
	events chan ws.Event
	sent   [][]byte
	closed bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan ws.Event, 16)}
}

func (f *fakeTransport) Events() <-chan ws.Event { return f.events }

func (f *fakeTransport) Send(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// tags returns the type tag of every payload sent so far.
func (f *fakeTransport) tags(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, p := range f.sent {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(p, &head); err != nil {
			t.Fatalf("sent payload is not JSON: %v", err)
		}
		out = append(out, head.Type)
	}
	return out
}

func (f *fakeTransport) countTag(t *testing.T, tag string) int {
	t.Helper()
	n := 0
	for _, got := range f.tags(t) {
		if got == tag {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, playerID string) (*Engine, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	e := New(ft, nil, Options{
		PlayerID:      playerID,
		AutoplayDelay: time.Millisecond,
		Logger:        zerolog.Nop(),
	})
	return e, ft
}

// guessingRoom is mid-round: red operatives guessing, the red operative
// is an AI, and the local host sits on blue.
func guessingRoom() game.Room {
	return game.Room{
		RoomID: "room-1",
		HostID: "host",
		Players: []game.Player{
			{ID: "host", Name: "hal", Team: game.TeamBlue, Role: game.RoleOperative},
			{ID: "blue-sm", Name: "bea", Team: game.TeamBlue, Role: game.RoleSpymaster},
			{ID: "red-sm", Name: "sam", Team: game.TeamRed, Role: game.RoleSpymaster},
			{ID: "agent-1", Name: "bot", Team: game.TeamRed, Role: game.RoleOperative, IsAI: true},
		},
		Game: game.State{
			Phase:       game.PhasePlaying,
			CurrentTeam: game.TeamRed,
			TurnPhase:   game.TurnGuessing,
			Cards: []game.Card{
				{Word: "ocean", Position: 0},
				{Word: "flint", Position: 1, Revealed: true, Color: "red"},
				{Word: "piano", Position: 2},
			},
			CurrentClue:  &game.Clue{Word: "water", Number: 2, Team: game.TeamRed},
			RedRemaining: 8, BlueRemaining: 9,
		},
	}
}

func install(e *Engine, room game.Room) {
	e.dispatch(protocol.GameState{Room: room})
}

func waitInternal(t *testing.T, e *Engine) internalMsg {
	t.Helper()
	select {
	case m := <-e.inbox:
		return m
	case <-time.After(time.Second):
		t.Fatal("no internal message arrived")
		return nil
	}
}

func expectNoInternal(t *testing.T, e *Engine) {
	t.Helper()
	select {
	case m := <-e.inbox:
		t.Fatalf("unexpected internal message %T", m)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConnectedAdoptsIdentityOnce(t *testing.T) {
	e, _ := newTestEngine(t, "")

	e.dispatch(protocol.Connected{PlayerID: "p-1"})
	if e.PlayerID() != "p-1" {
		t.Fatalf("PlayerID = %q, want p-1", e.PlayerID())
	}

	// a pre-set identity from the HTTP create path must not be replaced
	e.dispatch(protocol.Connected{PlayerID: "p-2"})
	if e.PlayerID() != "p-1" {
		t.Fatalf("PlayerID = %q after second connected, want p-1", e.PlayerID())
	}
}

func TestRoomJoinedEntersLobbyAndRefreshes(t *testing.T) {
	e, ft := newTestEngine(t, "")

	e.dispatch(protocol.RoomJoined{RoomID: "room-1", PlayerID: "p-1"})

	if e.CurrentScreen() != ScreenLobby {
		t.Fatalf("screen = %q, want lobby", e.CurrentScreen())
	}
	if e.PlayerID() != "p-1" {
		t.Fatalf("PlayerID = %q, want p-1", e.PlayerID())
	}
	if got := ft.tags(t); len(got) != 1 || got[0] != "request_state" {
		t.Fatalf("sent %v, want a single request_state", got)
	}
}

func TestNotifyEventsRequestFreshState(t *testing.T) {
	events := []struct {
		name string
		ev   protocol.ServerEvent
	}{
		{"player_joined", protocol.PlayerJoined{Player: game.Player{ID: "x", Name: "x"}}},
		{"player_left", protocol.PlayerLeft{PlayerID: "x"}},
		{"player_updated", protocol.PlayerUpdated{}},
		{"game_started", protocol.GameStarted{}},
		{"clue_given", protocol.ClueGiven{Team: game.TeamRed, Word: "water", Number: 2}},
		{"guess_made", protocol.GuessMade{Team: game.TeamRed, Position: 0, Result: protocol.GuessResult{Word: "ocean", Correct: true}}},
		{"turn_passed", protocol.TurnPassed{Team: game.TeamRed}},
		{"game_reset", protocol.GameReset{}},
	}
	for _, tc := range events {
		t.Run(tc.name, func(t *testing.T) {
			e, ft := newTestEngine(t, "host")
			e.dispatch(tc.ev)
			if n := ft.countTag(t, "request_state"); n != 1 {
				t.Fatalf("sent %d request_state, want 1", n)
			}
		})
	}
}

func TestChatDoesNotTouchState(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	install(e, guessingRoom())
	before := e.store.Generation()

	e.dispatch(protocol.ChatMessage{PlayerName: "sam", Message: "hi", Timestamp: "12:00"})

	if e.store.Generation() != before {
		t.Fatal("chat must not install a snapshot")
	}
	if n := ft.countTag(t, "request_state"); n != 0 {
		t.Fatalf("chat triggered %d request_state, want 0", n)
	}
	if len(e.chat) != 1 {
		t.Fatalf("chat log has %d entries, want 1", len(e.chat))
	}
}

func TestGameStateInstallIsIdempotent(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	room := guessingRoom()

	install(e, room)
	install(e, room)

	if got := ft.tags(t); len(got) != 0 {
		t.Fatalf("snapshot installs sent %v, want nothing", got)
	}
	if room, ok := e.store.Current(); !ok || room.RoomID != "room-1" {
		t.Fatalf("snapshot not installed: %+v ok=%v", room, ok)
	}
}

func TestAutoplayRequestsActiveAgent(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	install(e, guessingRoom())

	e.handleCommand(StartAutoplay{})
	if !e.auto.Armed() {
		t.Fatal("autoplay should be armed")
	}

	m := waitInternal(t, e)
	trig, ok := m.(triggerAgent)
	if !ok {
		t.Fatalf("internal message is %T, want triggerAgent", m)
	}
	if trig.agentID != "agent-1" {
		t.Fatalf("trigger for %q, want agent-1", trig.agentID)
	}

	e.handleInternal(m)
	if n := ft.countTag(t, "request_ai_action"); n != 1 {
		t.Fatalf("sent %d request_ai_action, want 1", n)
	}
	if !e.auto.Busy() {
		t.Fatal("busy guard should be set after the request went out")
	}

	var req struct {
		PlayerID string `json:"player_id"`
	}
	last := ft.sent[len(ft.sent)-1]
	if err := json.Unmarshal(last, &req); err != nil || req.PlayerID != "agent-1" {
		t.Fatalf("request targets %q (err %v), want agent-1", req.PlayerID, err)
	}

	// a duplicate fire for the same agent must be swallowed by the guard
	e.handleInternal(m)
	if n := ft.countTag(t, "request_ai_action"); n != 1 {
		t.Fatalf("duplicate trigger sent %d requests, want 1", n)
	}
}

func TestStaleTriggerIsDropped(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	install(e, guessingRoom())
	e.auto.Arm()

	// the turn moved on before the delayed trigger landed
	e.handleInternal(triggerAgent{agentID: "agent-gone"})

	if n := ft.countTag(t, "request_ai_action"); n != 0 {
		t.Fatalf("stale trigger sent %d requests, want 0", n)
	}
	if e.auto.Busy() {
		t.Fatal("stale trigger must not set the busy guard")
	}
}

func TestGameEndedStopsAutoplay(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	install(e, guessingRoom())
	e.handleCommand(StartAutoplay{})
	e.handleInternal(waitInternal(t, e))
	if !e.auto.Busy() {
		t.Fatal("setup: expected an outstanding request")
	}

	e.dispatch(protocol.GameEnded{Winner: game.TeamRed})

	if e.auto.Busy() {
		t.Fatal("terminal push must clear the busy guard")
	}
	if e.auto.Armed() {
		t.Fatal("terminal push must disarm autoplay")
	}

	// later snapshots must not revive the loop
	install(e, guessingRoom())
	expectNoInternal(t, e)
	if n := ft.countTag(t, "request_ai_action"); n != 1 {
		t.Fatalf("sent %d request_ai_action after game end, want the original 1", n)
	}
}

func TestAutoplayDisarmsWithoutAgent(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	room := guessingRoom()
	for i := range room.Players {
		room.Players[i].IsAI = false
	}
	install(e, room)

	e.handleCommand(StartAutoplay{})

	if e.auto.Armed() {
		t.Fatal("autoplay should auto-disarm with no agent to drive")
	}
	expectNoInternal(t, e)
	if n := ft.countTag(t, "request_ai_action"); n != 0 {
		t.Fatalf("sent %d request_ai_action, want 0", n)
	}
}

func TestBusyLifecycle(t *testing.T) {
	terminal := []struct {
		name string
		ev   protocol.ServerEvent
	}{
		{"clue_given", protocol.ClueGiven{Team: game.TeamRed, Word: "water", Number: 2}},
		{"guess_made", protocol.GuessMade{Team: game.TeamRed, Position: 0, Result: protocol.GuessResult{Word: "ocean", Correct: true}}},
		{"turn_passed", protocol.TurnPassed{Team: game.TeamRed}},
		{"error", protocol.ServerError{Message: "nope"}},
	}
	for _, tc := range terminal {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestEngine(t, "host")
			e.dispatch(protocol.AIThinking{PlayerID: "agent-1", Action: "guessing"})
			if !e.auto.Busy() {
				t.Fatal("ai_thinking should set the busy guard")
			}
			e.dispatch(tc.ev)
			if e.auto.Busy() {
				t.Fatal("terminal event should clear the busy guard")
			}
		})
	}
}

func TestServerErrorDisarmsAutoplay(t *testing.T) {
	e, _ := newTestEngine(t, "host")
	install(e, guessingRoom())
	e.handleCommand(StartAutoplay{})
	e.handleInternal(waitInternal(t, e))

	e.dispatch(protocol.ServerError{Message: "ai request failed"})

	if e.auto.Armed() || e.auto.Busy() {
		t.Fatal("error push must stop the autoplay loop")
	}
}

func TestStallWatchdogRecoversAutoplay(t *testing.T) {
	ft := newFakeTransport()
	e := New(ft, nil, Options{
		PlayerID:      "host",
		AutoplayDelay: time.Millisecond,
		StallTimeout:  10 * time.Millisecond,
		Logger:        zerolog.Nop(),
	})
	install(e, guessingRoom())
	e.handleCommand(StartAutoplay{})
	e.handleInternal(waitInternal(t, e))

	// no terminal event arrives; the watchdog posts a stall message
	m := waitInternal(t, e)
	if _, ok := m.(stallExpired); !ok {
		t.Fatalf("internal message is %T, want stallExpired", m)
	}
	e.handleInternal(m)

	if e.auto.Busy() {
		t.Fatal("stall handling should clear the busy guard")
	}
	if !e.auto.Armed() {
		t.Fatal("stall handling should keep autoplay armed")
	}
	// recovery schedules a fresh trigger
	if _, ok := waitInternal(t, e).(triggerAgent); !ok {
		t.Fatal("expected a rescheduled trigger after the stall")
	}
}

func TestUnknownAndMalformedFramesAreIgnored(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	install(e, guessingRoom())
	before := e.store.Generation()

	e.handleFrame([]byte(`{"type":"telemetry_ping","x":1}`))
	e.handleFrame([]byte(`{nope`))

	if e.store.Generation() != before {
		t.Fatal("bad frames must not touch the snapshot")
	}
	if got := ft.tags(t); len(got) != 0 {
		t.Fatalf("bad frames sent %v, want nothing", got)
	}
}

func TestStartGameGuards(t *testing.T) {
	lobby := guessingRoom()
	lobby.Game = game.State{Phase: game.PhaseLobby}

	t.Run("non host suppressed", func(t *testing.T) {
		e, ft := newTestEngine(t, "red-sm")
		install(e, lobby)
		e.handleCommand(StartGame{})
		if n := ft.countTag(t, "start_game"); n != 0 {
			t.Fatalf("non-host sent %d start_game, want 0", n)
		}
	})

	t.Run("unready lobby suppressed", func(t *testing.T) {
		e, ft := newTestEngine(t, "host")
		room := lobby
		room.Players = []game.Player{{ID: "host", Name: "hal", Team: game.TeamBlue, Role: game.RoleSpymaster}}
		install(e, room)
		e.handleCommand(StartGame{})
		if n := ft.countTag(t, "start_game"); n != 0 {
			t.Fatalf("unready lobby sent %d start_game, want 0", n)
		}
	})

	t.Run("host with full lobby sends", func(t *testing.T) {
		e, ft := newTestEngine(t, "host")
		install(e, lobby)
		e.handleCommand(StartGame{})
		if n := ft.countTag(t, "start_game"); n != 1 {
			t.Fatalf("sent %d start_game, want 1", n)
		}
	})
}

func TestGiveClueGuards(t *testing.T) {
	room := guessingRoom()
	room.Game.TurnPhase = game.TurnGivingClue

	tests := []struct {
		name     string
		playerID string
		cmd      GiveClue
		want     int
	}{
		{"empty word", "red-sm", GiveClue{Word: "   "}, 0},
		{"multi word", "red-sm", GiveClue{Word: "two words", Number: 1}, 0},
		{"not the spymaster", "host", GiveClue{Word: "water", Number: 2}, 0},
		{"eligible spymaster", "red-sm", GiveClue{Word: "water", Number: 2}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, ft := newTestEngine(t, tc.playerID)
			install(e, room)
			e.handleCommand(tc.cmd)
			if n := ft.countTag(t, "give_clue"); n != tc.want {
				t.Fatalf("sent %d give_clue, want %d", n, tc.want)
			}
		})
	}
}

func TestGiveClueClampsNumber(t *testing.T) {
	room := guessingRoom()
	room.Game.TurnPhase = game.TurnGivingClue
	e, ft := newTestEngine(t, "red-sm")
	install(e, room)

	e.handleCommand(GiveClue{Word: "water", Number: 0})

	var got struct {
		Word   string `json:"word"`
		Number int    `json:"number"`
	}
	if len(ft.sent) != 1 {
		t.Fatalf("sent %d payloads, want 1", len(ft.sent))
	}
	if err := json.Unmarshal(ft.sent[0], &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Word != "water" || got.Number != 1 {
		t.Fatalf("clue %q/%d on the wire, want water/1", got.Word, got.Number)
	}
}

func TestGuessGuards(t *testing.T) {
	room := guessingRoom()
	// put the host on the guessing team so CanGuess holds
	room.Players[0].Team = game.TeamRed
	room.Players[0].Role = game.RoleOperative

	tests := []struct {
		name string
		cmd  Guess
		want int
	}{
		{"unrevealed card sends", Guess{Position: 0}, 1},
		{"revealed card suppressed", Guess{Position: 1}, 0},
		{"missing position suppressed", Guess{Position: 99}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, ft := newTestEngine(t, "host")
			install(e, room)
			e.handleCommand(tc.cmd)
			if n := ft.countTag(t, "make_guess"); n != tc.want {
				t.Fatalf("sent %d make_guess, want %d", n, tc.want)
			}
		})
	}

	t.Run("off turn suppressed", func(t *testing.T) {
		e, ft := newTestEngine(t, "blue-sm")
		install(e, room)
		e.handleCommand(Guess{Position: 0})
		if n := ft.countTag(t, "make_guess"); n != 0 {
			t.Fatalf("sent %d make_guess, want 0", n)
		}
	})
}

func TestTriggerAgentIsSingleFlight(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	install(e, guessingRoom())

	e.handleCommand(TriggerAgent{})
	e.handleCommand(TriggerAgent{})

	if n := ft.countTag(t, "request_ai_action"); n != 1 {
		t.Fatalf("sent %d request_ai_action, want 1", n)
	}
	if !e.auto.Busy() {
		t.Fatal("manual trigger should set the busy guard")
	}
}

func TestLeaveEndsSession(t *testing.T) {
	e, ft := newTestEngine(t, "host")
	install(e, guessingRoom())

	e.handleCommand(Leave{})

	if n := ft.countTag(t, "leave_room"); n != 1 {
		t.Fatalf("sent %d leave_room, want 1", n)
	}
	if _, ok := e.store.Current(); ok {
		t.Fatal("leaving must clear the snapshot")
	}
	if e.CurrentScreen() != ScreenLanding {
		t.Fatalf("screen = %q, want landing", e.CurrentScreen())
	}
	if !e.quit {
		t.Fatal("leave should stop the loop")
	}
}

func TestRunReturnsOnTransportError(t *testing.T) {
	e, ft := newTestEngine(t, "host")

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	ft.events <- ws.Event{Err: errors.New("read tcp: reset")}

	select {
	case err := <-done:
		if !errors.Is(err, ErrConnectionLost) {
			t.Fatalf("Run returned %v, want ErrConnectionLost", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after a transport error")
	}
}

func TestRunReturnsWhenTransportCloses(t *testing.T) {
	e, ft := newTestEngine(t, "host")

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	close(ft.events)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil on clean close", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the event channel closed")
	}
}

func TestRunExitsOnGameEnd(t *testing.T) {
	ft := newFakeTransport()
	e := New(ft, nil, Options{
		PlayerID:      "host",
		ExitOnGameEnd: true,
		Logger:        zerolog.Nop(),
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	ft.events <- ws.Event{Data: []byte(`{"type":"game_ended","winner":"red"}`)}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after game_ended")
	}
}

package client

import (
	"strings"

	"codenames-client/internal/protocol"
)

// dispatch applies one server event. Full state only ever arrives through
// game_state; every other state-changing event just requests a fresh
// snapshot, so there is no merge logic anywhere.
func (e *Engine) dispatch(ev protocol.ServerEvent) {
	switch m := ev.(type) {
	case protocol.Connected:
		if e.playerID == "" {
			e.setIdentity(m.PlayerID)
		}

	case protocol.RoomJoined:
		e.roomID = m.RoomID
		e.setIdentity(m.PlayerID)
		e.setScreen(ScreenLobby)
		e.requestState()

	case protocol.GameState:
		room := m.Room
		e.store.Replace(&room)
		e.roomID = room.RoomID
		e.reconcile()

	case protocol.PlayerJoined:
		e.notifyf("%s joined", m.Player.Name)
		e.requestState()

	case protocol.PlayerLeft:
		e.notifyf("a player left")
		e.requestState()

	case protocol.PlayerUpdated:
		e.requestState()

	case protocol.GameStarted:
		e.setScreen(ScreenGame)
		e.notifyf("game started")
		e.requestState()

	case protocol.ClueGiven:
		e.auto.ClearBusy()
		e.notifyf("%s spymaster: %q %d", strings.ToUpper(string(m.Team)), m.Word, m.Number)
		e.requestState()
		e.reconcileAutoplay()

	case protocol.GuessMade:
		e.auto.ClearBusy()
		if m.Result.Correct {
			e.notifyf("%s guessed %q: correct", strings.ToUpper(string(m.Team)), m.Result.Word)
		} else {
			e.notifyf("%s guessed %q: wrong - %s", strings.ToUpper(string(m.Team)), m.Result.Word, m.Result.Color)
		}
		e.requestState()
		e.reconcileAutoplay()

	case protocol.TurnPassed:
		e.auto.ClearBusy()
		e.notifyf("%s ended their turn", strings.ToUpper(string(m.Team)))
		e.requestState()
		e.reconcileAutoplay()

	case protocol.GameEnded:
		e.auto.ClearBusy()
		e.auto.Disarm()
		e.notifyf("%s TEAM WINS", strings.ToUpper(string(m.Winner)))
		if e.exitOnGameEnd {
			e.quit = true
		}

	case protocol.ChatMessage:
		e.chat = append(e.chat, m)
		e.log.Info().Str("from", m.PlayerName).Str("at", m.Timestamp).Msg(m.Message)

	case protocol.AIThinking:
		e.auto.SetBusy()
		e.notifyf("AI is %s...", m.Action)

	case protocol.GameReset:
		e.setScreen(ScreenLobby)
		e.notifyf("game reset")
		e.requestState()

	case protocol.ServerError:
		e.auto.ClearBusy()
		e.auto.Disarm()
		e.notifyError(m.Message)
	}
}

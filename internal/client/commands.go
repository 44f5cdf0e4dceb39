package client

import (
	"strings"

	"codenames-client/internal/game"
	"codenames-client/internal/protocol"
)

// Command is a user intent fed into the engine loop. Preconditions are
// checked against the current snapshot before anything goes on the wire;
// an ineligible action is suppressed locally and never reaches the server.
type Command interface{ isClientCommand() }

type JoinTeam struct {
	Team game.Team
	Role game.Role // optional, sent as a second message when set
}

// ChooseRole changes role without touching team assignment.
type ChooseRole struct {
	Role game.Role
}

type StartGame struct{}

type GiveClue struct {
	Word   string
	Number int
}

type Guess struct{ Position int }

type PassTurn struct{}

// TriggerAgent manually requests the active agent's action.
type TriggerAgent struct{}

type StartAutoplay struct{}
type StopAutoplay struct{}

type Chat struct{ Message string }

type ResetGame struct{}

type RefreshState struct{}

// Leave tells the server we are gone and ends the session.
type Leave struct{}

func (JoinTeam) isClientCommand()      {}
func (ChooseRole) isClientCommand()    {}
func (StartGame) isClientCommand()     {}
func (GiveClue) isClientCommand()      {}
func (Guess) isClientCommand()         {}
func (PassTurn) isClientCommand()      {}
func (TriggerAgent) isClientCommand()  {}
func (StartAutoplay) isClientCommand() {}
func (StopAutoplay) isClientCommand()  {}
func (Chat) isClientCommand()          {}
func (ResetGame) isClientCommand()     {}
func (RefreshState) isClientCommand()  {}
func (Leave) isClientCommand()         {}

func (e *Engine) handleCommand(cmd Command) {
	switch c := cmd.(type) {
	case JoinTeam:
		e.sendCommand(protocol.SetTeam{Team: c.Team})
		if c.Role != "" {
			e.sendCommand(protocol.SetRole{Role: c.Role})
		}

	case ChooseRole:
		e.sendCommand(protocol.SetRole{Role: c.Role})

	case StartGame:
		room, ok := e.store.Current()
		if !ok {
			e.notifyf("no room state yet, try again")
			return
		}
		if room.HostID != e.playerID {
			e.notifyf("only the host can start the game")
			return
		}
		if !room.CanStart() {
			e.notifyf("need two players and a spymaster on each team")
			return
		}
		e.sendCommand(protocol.StartGame{})

	case GiveClue:
		word := strings.TrimSpace(c.Word)
		if word == "" {
			e.notifyf("clue word required")
			return
		}
		if strings.ContainsRune(word, ' ') {
			e.notifyf("clue must be a single word")
			return
		}
		if !e.resolveActions().CanGiveClue {
			e.notifyf("you cannot give a clue right now")
			return
		}
		number := c.Number
		if number < 1 {
			number = 1
		}
		e.sendCommand(protocol.GiveClue{Word: word, Number: number})

	case Guess:
		if !e.resolveActions().CanGuess {
			e.notifyf("you cannot guess right now")
			return
		}
		room, _ := e.store.Current()
		card, ok := room.Game.CardAt(c.Position)
		if !ok {
			e.notifyf("no card at position %d", c.Position)
			return
		}
		if card.Revealed {
			return
		}
		e.sendCommand(protocol.MakeGuess{Position: c.Position})

	case PassTurn:
		if !e.resolveActions().CanPass {
			e.notifyf("you cannot pass right now")
			return
		}
		e.sendCommand(protocol.PassTurn{})

	case TriggerAgent:
		acts := e.resolveActions()
		if !acts.CanTriggerAgent || e.auto.Busy() {
			return
		}
		e.auto.SetBusy()
		e.log.Info().Str("agent_id", acts.ActiveAgentID).Str("agent", acts.ActiveAgentName).Msg("requesting agent action")
		e.sendCommand(protocol.RequestAIAction{PlayerID: acts.ActiveAgentID})

	case StartAutoplay:
		e.auto.Arm()
		e.notifyf("autoplay on")
		e.reconcileAutoplay()

	case StopAutoplay:
		e.auto.Disarm()
		e.notifyf("autoplay off")

	case Chat:
		msg := strings.TrimSpace(c.Message)
		if msg == "" {
			return
		}
		e.sendCommand(protocol.Chat{Message: msg})

	case ResetGame:
		e.sendCommand(protocol.ResetGame{})

	case RefreshState:
		e.requestState()

	case Leave:
		e.sendCommand(protocol.LeaveRoom{})
		e.store.Clear()
		e.actionsValid = false
		e.auto.Disarm()
		e.setScreen(ScreenLanding)
		e.quit = true
	}
}

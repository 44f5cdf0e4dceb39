package protocol

import (
	"encoding/json"

	"codenames-client/internal/game"
)

// Command is the closed set of messages the client can send. Every variant
// is fire-and-forget; correctness relies on the server pushing a follow-up
// event rather than on a reply to the send itself.
type Command interface{ isCommand() }

type JoinRoom struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
	// PlayerID carries a prior identity when rejoining; omitted on a
	// first join so the server assigns one.
	PlayerID string `json:"player_id,omitempty"`
}

type LeaveRoom struct{}

type SetTeam struct {
	Team game.Team `json:"team"`
}

type SetRole struct {
	Role game.Role `json:"role"`
}

type StartGame struct{}

type GiveClue struct {
	Word   string `json:"word"`
	Number int    `json:"number"`
}

type MakeGuess struct {
	Position int `json:"position"`
}

type PassTurn struct{}

type RequestAIAction struct {
	PlayerID string `json:"player_id"`
}

type Chat struct {
	Message string `json:"message"`
}

type RequestState struct{}

type ResetGame struct{}

func (JoinRoom) isCommand()        {}
func (LeaveRoom) isCommand()       {}
func (SetTeam) isCommand()         {}
func (SetRole) isCommand()         {}
func (StartGame) isCommand()       {}
func (GiveClue) isCommand()        {}
func (MakeGuess) isCommand()       {}
func (PassTurn) isCommand()        {}
func (RequestAIAction) isCommand() {}
func (Chat) isCommand()            {}
func (RequestState) isCommand()    {}
func (ResetGame) isCommand()       {}

// Tag returns the wire tag for a command.
func Tag(c Command) string {
	switch c.(type) {
	case JoinRoom:
		return "join_room"
	case LeaveRoom:
		return "leave_room"
	case SetTeam:
		return "set_team"
	case SetRole:
		return "set_role"
	case StartGame:
		return "start_game"
	case GiveClue:
		return "give_clue"
	case MakeGuess:
		return "make_guess"
	case PassTurn:
		return "pass_turn"
	case RequestAIAction:
		return "request_ai_action"
	case Chat:
		return "chat"
	case RequestState:
		return "request_state"
	case ResetGame:
		return "reset_game"
	default:
		return ""
	}
}

// EncodeCommand marshals a command with its type tag injected.
func EncodeCommand(c Command) ([]byte, error) {
	type envelope struct {
		Type string `json:"type"`
	}
	switch v := c.(type) {
	case JoinRoom:
		return json.Marshal(struct {
			envelope
			JoinRoom
		}{envelope{Tag(c)}, v})
	case SetTeam:
		return json.Marshal(struct {
			envelope
			SetTeam
		}{envelope{Tag(c)}, v})
	case SetRole:
		return json.Marshal(struct {
			envelope
			SetRole
		}{envelope{Tag(c)}, v})
	case GiveClue:
		return json.Marshal(struct {
			envelope
			GiveClue
		}{envelope{Tag(c)}, v})
	case MakeGuess:
		return json.Marshal(struct {
			envelope
			MakeGuess
		}{envelope{Tag(c)}, v})
	case RequestAIAction:
		return json.Marshal(struct {
			envelope
			RequestAIAction
		}{envelope{Tag(c)}, v})
	case Chat:
		return json.Marshal(struct {
			envelope
			Chat
		}{envelope{Tag(c)}, v})
	case LeaveRoom, StartGame, PassTurn, RequestState, ResetGame:
		return json.Marshal(envelope{Tag(c)})
	default:
		return nil, ErrUnknownType
	}
}

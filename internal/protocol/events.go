package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"codenames-client/internal/game"
)

// ErrUnknownType marks an inbound tag this client does not understand.
// Callers treat it as a no-op so newer servers stay compatible.
var ErrUnknownType = errors.New("unknown message type")

// ServerEvent is the closed set of messages the server can push.
type ServerEvent interface{ isServerEvent() }

type Connected struct {
	PlayerID string `json:"player_id"`
}

type RoomJoined struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// GameState is the only event carrying a full snapshot.
type GameState struct {
	Room game.Room `json:"room"`
}

type PlayerJoined struct {
	Player game.Player `json:"player"`
}

type PlayerLeft struct {
	PlayerID string `json:"player_id"`
}

type PlayerUpdated struct {
	Player game.Player `json:"player"`
}

type GameStarted struct{}

type ClueGiven struct {
	Team   game.Team `json:"team"`
	Word   string    `json:"word"`
	Number int       `json:"number"`
}

type GuessResult struct {
	Word     string    `json:"word"`
	Color    string    `json:"color"`
	Correct  bool      `json:"correct"`
	GameOver bool      `json:"game_over"`
	Winner   game.Team `json:"winner,omitempty"`
}

type GuessMade struct {
	Team     game.Team   `json:"team"`
	Position int         `json:"position"`
	Result   GuessResult `json:"result"`
}

type TurnPassed struct {
	Team game.Team `json:"team"`
}

type GameEnded struct {
	Winner game.Team `json:"winner"`
}

type ChatMessage struct {
	PlayerName string `json:"player_name"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

type AIThinking struct {
	PlayerID string `json:"player_id"`
	Action   string `json:"action"`
}

type GameReset struct{}

type ServerError struct {
	Message string `json:"message"`
}

func (Connected) isServerEvent()     {}
func (RoomJoined) isServerEvent()    {}
func (GameState) isServerEvent()     {}
func (PlayerJoined) isServerEvent()  {}
func (PlayerLeft) isServerEvent()    {}
func (PlayerUpdated) isServerEvent() {}
func (GameStarted) isServerEvent()   {}
func (ClueGiven) isServerEvent()     {}
func (GuessMade) isServerEvent()     {}
func (TurnPassed) isServerEvent()    {}
func (GameEnded) isServerEvent()     {}
func (ChatMessage) isServerEvent()   {}
func (AIThinking) isServerEvent()    {}
func (GameReset) isServerEvent()     {}
func (ServerError) isServerEvent()   {}

// DecodeServer turns a raw frame into its typed event. Unknown tags return
// ErrUnknownType; malformed JSON returns a decode error.
func DecodeServer(raw []byte) (ServerEvent, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode head: %w", err)
	}

	switch head.Type {
	case "connected":
		return decodeAs[Connected](raw, head.Type)
	case "room_joined":
		return decodeAs[RoomJoined](raw, head.Type)
	case "game_state":
		return decodeAs[GameState](raw, head.Type)
	case "player_joined":
		return decodeAs[PlayerJoined](raw, head.Type)
	case "player_left":
		return decodeAs[PlayerLeft](raw, head.Type)
	case "player_updated":
		return decodeAs[PlayerUpdated](raw, head.Type)
	case "game_started":
		return GameStarted{}, nil
	case "clue_given":
		return decodeAs[ClueGiven](raw, head.Type)
	case "guess_made":
		return decodeAs[GuessMade](raw, head.Type)
	case "turn_passed":
		return decodeAs[TurnPassed](raw, head.Type)
	case "game_ended":
		return decodeAs[GameEnded](raw, head.Type)
	case "chat_message":
		return decodeAs[ChatMessage](raw, head.Type)
	case "ai_thinking":
		return decodeAs[AIThinking](raw, head.Type)
	case "game_reset":
		return GameReset{}, nil
	case "error":
		return decodeAs[ServerError](raw, head.Type)
	default:
		return nil, fmt.Errorf("%q: %w", head.Type, ErrUnknownType)
	}
}

func decodeAs[T ServerEvent](raw []byte, tag string) (ServerEvent, error) {
	var ev T
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return ev, nil
}

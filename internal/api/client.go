// Package api is the HTTP client for the game server's room directory and
// model catalog. The engine only cares about the identifiers these calls
// return; all game rules live server-side.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codenames-client/internal/game"
)

// ErrAPI wraps a server-reported failure (success=false in the envelope).
var ErrAPI = errors.New("api error")

type Client struct {
	base string
	http *http.Client
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is the {success, data, error} wrapper on every response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type RoomListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	Phase       string `json:"phase"`
}

type CreatedRoom struct {
	RoomID string `json:"room_id"`
	HostID string `json:"host_id"`
}

type AIPlayer struct {
	Name   string    `json:"name"`
	Team   game.Team `json:"team"`
	Role   game.Role `json:"role"`
	Model  string    `json:"model"`
	APIKey string    `json:"api_key,omitempty"`
}

type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

func (c *Client) ListRooms(ctx context.Context) ([]RoomListItem, error) {
	var rooms []RoomListItem
	if err := c.do(ctx, http.MethodGet, "/api/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) CreateRoom(ctx context.Context, name, hostName string) (CreatedRoom, error) {
	req := map[string]string{"name": name, "host_name": hostName}
	var created CreatedRoom
	if err := c.do(ctx, http.MethodPost, "/api/rooms", req, &created); err != nil {
		return CreatedRoom{}, err
	}
	return created, nil
}

// AddAIPlayer registers an autonomous participant in a room. The returned
// roster entry carries the server-assigned player id.
func (c *Client) AddAIPlayer(ctx context.Context, roomID string, p AIPlayer) (game.Player, error) {
	var added game.Player
	path := fmt.Sprintf("/api/rooms/%s/ai-player", roomID)
	if err := c.do(ctx, http.MethodPost, path, p, &added); err != nil {
		return game.Player{}, err
	}
	return added, nil
}

func (c *Client) RemovePlayer(ctx context.Context, roomID, playerID string) error {
	path := fmt.Sprintf("/api/rooms/%s/players/%s", roomID, playerID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var models []Model
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%s %s: %s: %w", method, path, msg, ErrAPI)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

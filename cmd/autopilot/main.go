// Autopilot creates a room, fills every seat with an AI player, and lets
// the autoplay loop run the whole game while the host just watches.
package main

import (
	"context"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"codenames-client/internal/api"
	"codenames-client/internal/client"
	"codenames-client/internal/config"
	"codenames-client/internal/game"
	"codenames-client/internal/logging"
	"codenames-client/internal/protocol"
	"codenames-client/internal/ws"
)

type seat struct {
	team   game.Team
	role   game.Role
	search string
}

var seats = []seat{
	{game.TeamRed, game.RoleSpymaster, "anthropic/claude"},
	{game.TeamRed, game.RoleOperative, "google/gemini"},
	{game.TeamBlue, game.RoleSpymaster, "x-ai/grok"},
	{game.TeamBlue, game.RoleOperative, "openai/gpt"},
}

func main() {
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadAutopilot()
	if err != nil {
		log.Fatal().Err(err).Msg("load autopilot config failed")
	}

	ctx := context.Background()
	rooms := api.New(cfg.ServerURL)

	created, err := rooms.CreateRoom(ctx, cfg.RoomName, cfg.HostName)
	if err != nil {
		log.Fatal().Err(err).Msg("create room failed")
	}
	log.Info().Str("room_id", created.RoomID).Msg("room created")

	models, err := rooms.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("model catalog unavailable, using fallback model")
	}
	for _, s := range seats {
		model := pickModel(models, s.search, cfg.FallbackModel)
		added, err := rooms.AddAIPlayer(ctx, created.RoomID, api.AIPlayer{
			Name:   botName(s.search),
			Team:   s.team,
			Role:   s.role,
			Model:  model,
			APIKey: cfg.OpenRouterAPIKey,
		})
		if err != nil {
			log.Fatal().Err(err).Str("team", string(s.team)).Str("role", string(s.role)).Msg("add ai player failed")
		}
		log.Info().Str("player_id", added.ID).Str("model", model).
			Str("team", string(s.team)).Str("role", string(s.role)).Msg("ai player added")
		// spread the adds out so roster order stays deterministic
		time.Sleep(200 * time.Millisecond)
	}

	wsURL, err := ws.URLFromHTTP(cfg.ServerURL)
	if err != nil {
		log.Fatal().Err(err).Msg("bad server url")
	}
	join, err := protocol.EncodeCommand(protocol.JoinRoom{
		RoomID:     created.RoomID,
		PlayerName: cfg.HostName,
		PlayerID:   created.HostID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("encode join failed")
	}
	conn, err := ws.Dial(ctx, wsURL, join)
	if err != nil {
		log.Fatal().Err(err).Msg("connect failed")
	}
	defer conn.Close()

	commands := make(chan client.Command, 8)
	engine := client.New(conn, commands, client.Options{
		PlayerID:      created.HostID,
		RoomID:        created.RoomID,
		AutoplayDelay: time.Duration(cfg.AutoplayDelayMS) * time.Millisecond,
		StallTimeout:  time.Duration(cfg.AutoplayStallSeconds) * time.Second,
		ExitOnGameEnd: true,
		Logger:        log.With().Str("conn_id", conn.ID()).Logger(),
	})

	go func() {
		// give the server a beat between steps; each command's effect
		// arrives back as a push before the next one depends on it
		commands <- client.RefreshState{}
		time.Sleep(500 * time.Millisecond)
		commands <- client.StartGame{}
		time.Sleep(500 * time.Millisecond)
		commands <- client.StartAutoplay{}
	}()

	if err := engine.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("autopilot run failed")
	}
	log.Info().Msg("game finished")
}

// pickModel finds the first catalog entry whose id or name contains the
// search string, falling back when nothing matches.
func pickModel(models []api.Model, search, fallback string) string {
	needle := strings.ToLower(search)
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.ID), needle) ||
			strings.Contains(strings.ToLower(m.Name), needle) {
			return m.ID
		}
	}
	return fallback
}

func botName(search string) string {
	if _, tail, ok := strings.Cut(search, "/"); ok {
		return tail + " bot"
	}
	return search + " bot"
}

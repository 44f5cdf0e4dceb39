package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
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

func main() {
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("load client config failed")
	}

	ctx := context.Background()
	rooms := api.New(cfg.ServerURL)

	roomID := cfg.RoomID
	playerID := ""
	if roomID == "" {
		if open, err := rooms.ListRooms(ctx); err == nil {
			for _, r := range open {
				log.Info().Str("room_id", r.ID).Str("name", r.Name).
					Int("players", r.PlayerCount).Str("phase", r.Phase).Msg("open room")
			}
		}
		created, err := rooms.CreateRoom(ctx, cfg.RoomName, cfg.PlayerName)
		if err != nil {
			log.Fatal().Err(err).Msg("create room failed")
		}
		roomID, playerID = created.RoomID, created.HostID
		log.Info().Str("room_id", roomID).Str("name", cfg.RoomName).Msg("room created")
	} else if _, err := uuid.Parse(roomID); err != nil {
		log.Fatal().Str("room_id", roomID).Msg("ROOM_ID is not a valid room id")
	}

	wsURL, err := ws.URLFromHTTP(cfg.ServerURL)
	if err != nil {
		log.Fatal().Err(err).Msg("bad server url")
	}
	join, err := protocol.EncodeCommand(protocol.JoinRoom{
		RoomID:     roomID,
		PlayerName: cfg.PlayerName,
		PlayerID:   playerID,
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
	go readCommands(commands)

	engine := client.New(conn, commands, client.Options{
		PlayerID:      playerID,
		RoomID:        roomID,
		AutoplayDelay: time.Duration(cfg.AutoplayDelayMS) * time.Millisecond,
		StallTimeout:  time.Duration(cfg.AutoplayStallSeconds) * time.Second,
		Logger:        log.With().Str("conn_id", conn.ID()).Logger(),
	})
	if err := engine.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("session ended")
	}
}

// readCommands turns stdin lines into engine commands. Closing stdin ends
// the session.
func readCommands(out chan<- client.Command) {
	defer close(out)
	printHelp()
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "help":
			printHelp()
		case "team":
			if len(fields) < 2 {
				fmt.Println("usage: team red|blue [spymaster|operative]")
				continue
			}
			cmd := client.JoinTeam{Team: game.Team(fields[1])}
			if len(fields) > 2 {
				cmd.Role = game.Role(fields[2])
			}
			out <- cmd
		case "role":
			if len(fields) < 2 {
				fmt.Println("usage: role spymaster|operative")
				continue
			}
			out <- client.ChooseRole{Role: game.Role(fields[1])}
		case "start":
			out <- client.StartGame{}
		case "clue":
			if len(fields) < 2 {
				fmt.Println("usage: clue <word> [number]")
				continue
			}
			number := 1
			if len(fields) > 2 {
				if n, err := strconv.Atoi(fields[2]); err == nil {
					number = n
				}
			}
			out <- client.GiveClue{Word: fields[1], Number: number}
		case "guess":
			if len(fields) < 2 {
				fmt.Println("usage: guess <position>")
				continue
			}
			pos, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("position must be a number")
				continue
			}
			out <- client.Guess{Position: pos}
		case "pass":
			out <- client.PassTurn{}
		case "ai":
			out <- client.TriggerAgent{}
		case "auto":
			out <- client.StartAutoplay{}
		case "stop":
			out <- client.StopAutoplay{}
		case "say":
			out <- client.Chat{Message: strings.Join(fields[1:], " ")}
		case "refresh":
			out <- client.RefreshState{}
		case "reset":
			out <- client.ResetGame{}
		case "leave", "quit":
			out <- client.Leave{}
			return
		default:
			fmt.Printf("unknown command %q, try help\n", fields[0])
		}
	}
}

func printHelp() {
	fmt.Print(`commands:
  team red|blue [spymaster|operative]
  role spymaster|operative
  start | reset | leave
  clue <word> [number] | guess <position> | pass
  ai | auto | stop
  say <message> | refresh | help
`)
}

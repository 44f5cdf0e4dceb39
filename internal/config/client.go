package config

import "github.com/caarlos0/env/v11"

type ClientConfig struct {
	ServerURL  string `env:"SERVER_URL" envDefault:"http://localhost:3000"`
	PlayerName string `env:"PLAYER_NAME,required,notEmpty"`

	// RoomID joins an existing room; empty means create RoomName and
	// host it.
	RoomID   string `env:"ROOM_ID"`
	RoomName string `env:"ROOM_NAME" envDefault:"Codenames"`

	// OpenRouterAPIKey is passed through when adding AI players; the
	// client never calls the model provider itself.
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`

	AutoplayDelayMS      int `env:"AUTOPLAY_DELAY_MS" envDefault:"500"`
	AutoplayStallSeconds int `env:"AUTOPLAY_STALL_SECONDS" envDefault:"0"`
}

func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	err := env.Parse(&cfg)
	return cfg, err
}

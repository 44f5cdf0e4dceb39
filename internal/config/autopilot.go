package config

import "github.com/caarlos0/env/v11"

type AutopilotConfig struct {
	ServerURL string `env:"SERVER_URL" envDefault:"http://localhost:3000"`
	HostName  string `env:"HOST_NAME" envDefault:"autopilot"`
	RoomName  string `env:"ROOM_NAME" envDefault:"Autopilot Match"`

	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`

	// FallbackModel is used when no catalog entry matches a seat's
	// preferred model search.
	FallbackModel string `env:"FALLBACK_MODEL" envDefault:"openai/gpt-4o-mini"`

	AutoplayDelayMS int `env:"AUTOPLAY_DELAY_MS" envDefault:"500"`
	// A headless run wants the stall watchdog on, or a dropped agent
	// response would hang it forever.
	AutoplayStallSeconds int `env:"AUTOPLAY_STALL_SECONDS" envDefault:"120"`
}

func LoadAutopilot() (AutopilotConfig, error) {
	var cfg AutopilotConfig
	err := env.Parse(&cfg)
	return cfg, err
}

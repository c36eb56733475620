package internal

import "time"

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8000"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	TeamName       string `env:"TEAM_NAME,default=Eagles"`
	PulseBaseURL   string `env:"PULSE_BASE_URL,default=http://localhost:1339"`
	RosterSize     int    `env:"ROSTER_SIZE,default=10"`
	InitialPlayers int    `env:"INITIAL_PLAYERS,default=5"`

	TickInterval  time.Duration `env:"TICK_INTERVAL,default=1s"`
	EventMinDelay time.Duration `env:"EVENT_MIN_DELAY,default=5s"`
	EventMaxDelay time.Duration `env:"EVENT_MAX_DELAY,default=8s"`

	SendTimeout     time.Duration `env:"SEND_TIMEOUT,default=2s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=5s"`

	OpenAIKey   string `env:"OPENAI_API_KEY"`
	OpenAIURL   string `env:"OPENAI_URL,default=https://api.openai.com/v1/chat/completions"`
	OpenAIModel string `env:"OPENAI_MODEL,default=gpt-4o-mini"`
}

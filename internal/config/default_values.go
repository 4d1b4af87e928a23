package config

const (
	DefaultAddr      = "127.0.0.1:3100"
	DefaultAPIPrefix = "/api"

	DefaultAgentName        = "Clawdia"
	DefaultVersion          = "1.0.0"
	DefaultVersionTimeoutMS = 2000

	DefaultLocale         = "ru"
	DefaultRefreshSeconds = 30
)

package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string

	DataFile     string
	QueryLogRoot string

	QueryLimit      int
	HistoryLimit    int
	SendRatePerSec  float64
	SendBurst       int
	DiscordToken    string
	DiscordAPI      string
	DiscordWSURL    string
	DiscordPresence string
}

func FromEnv() Config {
	return Config{
		Environment:     stringOrDefault("SPIREBOT_ENV", "development"),
		HTTPAddr:        stringOrDefault("SPIREBOT_HTTP_ADDR", ":8080"),
		DataFile:        stringOrDefault("SPIREBOT_DATA_FILE", "data/records.json"),
		QueryLogRoot:    strings.TrimSpace(os.Getenv("SPIREBOT_QUERY_LOG_ROOT")),
		QueryLimit:      intOrDefault("SPIREBOT_QUERY_LIMIT", 10),
		HistoryLimit:    intOrDefault("SPIREBOT_HISTORY_LIMIT", 100),
		SendRatePerSec:  floatOrDefault("SPIREBOT_SEND_RATE_PER_SECOND", 5),
		SendBurst:       intOrDefault("SPIREBOT_SEND_BURST", 5),
		DiscordToken:    os.Getenv("SPIREBOT_DISCORD_TOKEN"),
		DiscordAPI:      stringOrDefault("SPIREBOT_DISCORD_API_BASE", "https://discord.com/api/v10"),
		DiscordWSURL:    stringOrDefault("SPIREBOT_DISCORD_GATEWAY_URL", "wss://gateway.discord.gg/?v=10&encoding=json"),
		DiscordPresence: stringOrDefault("SPIREBOT_DISCORD_PRESENCE", "Downfall | <help>"),
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func floatOrDefault(name string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

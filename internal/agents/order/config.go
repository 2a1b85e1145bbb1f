package order

import "time"

type Config struct {
	MenuLimit int
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MenuLimit: 10,
		Timeout:   10 * time.Second,
	}
}

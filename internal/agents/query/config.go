package query

import "time"

type Config struct {
	DisplayLimit int
	SearchLimit  int
	CacheTTL     time.Duration
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DisplayLimit: 5,
		SearchLimit:  20,
		CacheTTL:     5 * time.Minute,
		Timeout:      5 * time.Second,
	}
}

package wishlist

import "time"

type Config struct {
	DisplayLimit int
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DisplayLimit: 10,
		Timeout:      5 * time.Second,
	}
}

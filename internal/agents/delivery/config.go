package delivery

import "time"

// Config holds the simulated status thresholds, measured from placement.
type Config struct {
	PlacedFor         time.Duration
	PreparingUntil    time.Duration
	OutForDeliveryEnd time.Duration
	PersistStatus     bool
	Timeout           time.Duration
}

func LoadConfig() *Config {
	return &Config{
		PlacedFor:         2 * time.Minute,
		PreparingUntil:    15 * time.Minute,
		OutForDeliveryEnd: 35 * time.Minute,
		PersistStatus:     true,
		Timeout:           5 * time.Second,
	}
}

package clarifier

type Config struct {
	MaxQuestions int
}

func LoadConfig() *Config {
	return &Config{
		MaxQuestions: 3,
	}
}

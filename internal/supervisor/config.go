package supervisor

type Config struct {
	// DisplayLimit caps rendered lists: query results, sorted and filtered menus.
	DisplayLimit        int
	UsualsLimit         int
	MenuLimit           int
	RecommendationLimit int
}

func DefaultConfig() Config {
	return Config{
		DisplayLimit:        5,
		UsualsLimit:         5,
		MenuLimit:           10,
		RecommendationLimit: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DisplayLimit <= 0 {
		c.DisplayLimit = d.DisplayLimit
	}
	if c.UsualsLimit <= 0 {
		c.UsualsLimit = d.UsualsLimit
	}
	if c.MenuLimit <= 0 {
		c.MenuLimit = d.MenuLimit
	}
	if c.RecommendationLimit <= 0 {
		c.RecommendationLimit = d.RecommendationLimit
	}
	return c
}

package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/wayfinder/data/db/floorplans.db"
	}
	if cfg.Storage.RoomIndexPath == "" {
		cfg.Storage.RoomIndexPath = "/usr/local/var/wayfinder/data/indices/rooms"
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "WAYFINDER_GENERATION_API_KEY"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gpt-4o-mini"
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 120
	}
	if cfg.Generation.BatchSize == 0 {
		cfg.Generation.BatchSize = 10
	}
	if len(cfg.Import.Extensions) == 0 {
		cfg.Import.Extensions = []string{".json"}
	}
}

package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Corpus.MinDocFreq == 0 {
		cfg.Corpus.MinDocFreq = 2
	}
	if cfg.Corpus.Extensions == nil {
		cfg.Corpus.Extensions = []string{".txt", ".md"}
	}
	if cfg.Space.Rank == 0 {
		cfg.Space.Rank = 2
	}
	if cfg.Space.DefaultThreshold == 0 {
		cfg.Space.DefaultThreshold = 0.9
	}
	if cfg.Space.RebuildAfter == 0 {
		cfg.Space.RebuildAfter = 100
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = cfg.Corpus.Extensions
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}

package config

const (
	defaultDataDir           = "~/.local/share/rolodex"
	defaultLogDir            = "~/.local/share/rolodex/logs"
	defaultRegion            = "1"
	defaultCacheCapacity     = 4096
	defaultCacheTTLSeconds   = 900
	defaultDedupeThreshold   = 0.75
	defaultIdentifierWeight  = 0.5
	defaultNameWeight        = 0.35
	defaultChatWeight        = 0.15
	defaultMinNameSimilarity = 0.55
	defaultSweepInterval     = 900
	defaultSweepConcurrency  = 4
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Identity: Identity{
			DefaultRegion: defaultRegion,
		},
		Cache: Cache{
			Capacity:   defaultCacheCapacity,
			TTLSeconds: defaultCacheTTLSeconds,
		},
		Dedupe: Dedupe{
			Threshold:         defaultDedupeThreshold,
			IdentifierWeight:  defaultIdentifierWeight,
			NameWeight:        defaultNameWeight,
			ChatWeight:        defaultChatWeight,
			MinNameSimilarity: defaultMinNameSimilarity,
		},
		Sweep: Sweep{
			IntervalSeconds: defaultSweepInterval,
			Concurrency:     defaultSweepConcurrency,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

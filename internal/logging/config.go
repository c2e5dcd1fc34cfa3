package logging

// Config contains the configurable items for this package
type Config struct {
	Environment string
	// Level overrides the environment's default level when non-empty.
	Level string
	// File, when set, receives a copy of every entry and is rotated by size.
	File string
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
	}
}

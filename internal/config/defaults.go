package config

const (
	defaultAddr        = ":8080"
	defaultStaticDir   = "web/dist"
	defaultDriver      = "sqlite3"
	defaultDBPath      = "data/studio.db"
	defaultUploadsDir  = "data/uploads"
	defaultOutputsDir  = "data/outputs"
	defaultAPIBaseURL  = "http://localhost:8080/api"
	defaultAPITimeout  = 30
	defaultNtfyTimeout = 10
	defaultLogFormat   = "auto"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:      defaultAddr,
			StaticDir: defaultStaticDir,
		},
		Storage: Storage{
			Driver: defaultDriver,
			Path:   defaultDBPath,
		},
		Vault: Vault{
			UploadsDir: defaultUploadsDir,
			OutputsDir: defaultOutputsDir,
		},
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

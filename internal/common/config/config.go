package config

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig               `mapstructure:"app"`
	API     APIConfig               `mapstructure:"api"`
	Camunda CamundaConfig           `mapstructure:"camunda"`
	Redis   RedisConfig             `mapstructure:"redis"`
	Auth    AuthConfig              `mapstructure:"auth"`
	Workers map[string]WorkerConfig `mapstructure:"workers"`
	Logging LoggingConfig           `mapstructure:"logging"`
	Metrics MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig points the client at the professionals REST API.
type APIConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Resource string `mapstructure:"resource"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds, 0 leaves it to the transport
}

type CamundaConfig struct {
	BrokerAddress     string `mapstructure:"broker_address"`
	UsePlaintext      bool   `mapstructure:"use_plaintext"`
	ConnectionTimeout int    `mapstructure:"connection_timeout"` // milliseconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// AuthConfig holds the operator login used by the CLI and where the
// session flag is kept.
type AuthConfig struct {
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	SessionStore string `mapstructure:"session_store"` // redis or memory
	SessionKey   string `mapstructure:"session_key"`
	SessionTTL   int    `mapstructure:"session_ttl"` // milliseconds, 0 never expires
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

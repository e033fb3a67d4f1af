package settings

type Config struct {
	Server    Server    `mapstructure:"server"`
	Logger    Logger    `mapstructure:"logger"`
	MongoDB   MongoDB   `mapstructure:"mongodb"`
	RateLimit RateLimit `mapstructure:"rate_limit"`
	Upstream  Upstream  `mapstructure:"upstream"`
	Turnstile Turnstile `mapstructure:"turnstile"`
}

// Server is the configuration for the HTTP server
type Server struct {
	Mode            string `mapstructure:"mode"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // Seconds
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxSize     int    `mapstructure:"max_size"`
	Compress    bool   `mapstructure:"compress"`
}

// MongoDB is the configuration for the backing store
type MongoDB struct {
	Host            string `mapstructure:"host"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxPoolSize     uint64 `mapstructure:"max_pool_size"`
	MinPoolSize     uint64 `mapstructure:"min_pool_size"`
	MaxConnIdleTime uint64 `mapstructure:"max_conn_idle_time"`
	Port            int    `mapstructure:"port"`
	Timeout         int    `mapstructure:"timeout"` // Seconds
}

// Budget is one endpoint's rate-limit allowance per client.
type Budget struct {
	Limit  int `mapstructure:"limit"`
	Window int `mapstructure:"window"` // Seconds
}

// RateLimit holds the per-endpoint-kind budgets.
type RateLimit struct {
	Shards     int    `mapstructure:"shards"`
	Form       Budget `mapstructure:"form"`
	Newsletter Budget `mapstructure:"newsletter"`
	Lookup     Budget `mapstructure:"lookup"`
}

// Upstream is the configuration for the geocoding/places provider
type Upstream struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	Timeout     int    `mapstructure:"timeout"`      // Milliseconds per attempt
	MaxRetries  int    `mapstructure:"max_retries"`  // Extra attempts after the first
	BackoffBase int    `mapstructure:"backoff_base"` // Milliseconds
	GeocodeTTL  int    `mapstructure:"geocode_ttl"`  // Seconds
	PlacesTTL   int    `mapstructure:"places_ttl"`   // Seconds
	PlacesLimit int    `mapstructure:"places_limit"` // Max results per query
}

// Turnstile is the configuration for the bot-verification provider
type Turnstile struct {
	Secret    string `mapstructure:"secret"`
	VerifyURL string `mapstructure:"verify_url"`
	Timeout   int    `mapstructure:"timeout"` // Milliseconds
}

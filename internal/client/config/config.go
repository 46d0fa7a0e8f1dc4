package config

import "time"

// Config holds runtime settings for the exoscope client.
//
// Fields:
//   - APIBaseURL: base URL of the research API, including the version prefix.
//   - DatabasePath: SQLite file holding the persisted token and dataset snapshots.
//   - RequestTimeout: per-request timeout for API calls.
//   - OnlineCheckInterval: how often the REPL probes API reachability.
//   - LogLevel / LogFormat: zap level name and "console" or "json".
//   - StabilityAPIKey / StabilityEndpoint: image-generation service settings.
//   - TextureDir: where generated textures are written (empty = user cache dir).
//   - S3*: optional S3-compatible bucket that textures can be exported to.
type Config struct {
	APIBaseURL          string
	DatabasePath        string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	LogLevel            string
	LogFormat           string
	StabilityAPIKey     string
	StabilityEndpoint   string
	TextureDir          string
	S3Bucket            string
	S3Region            string
	S3BaseEndpoint      string
	S3AccessKey         string
	S3SecretKey         string
}

// DefaultStabilityEndpoint is the SD3 generation endpoint.
const DefaultStabilityEndpoint = "https://api.stability.ai/v2beta/stable-image/generate/sd3"

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api/v1"
	c.DatabasePath = "exoscope.db"
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 10 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "console"
	c.StabilityEndpoint = DefaultStabilityEndpoint
	c.S3Region = "us-east-1"
}

// ExportEnabled reports whether texture export to object storage is configured.
func (c *Config) ExportEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig constructs a Config from defaults, then overlays the JSON file
// named by -c/-config, environment variables and finally flags from args.
// Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

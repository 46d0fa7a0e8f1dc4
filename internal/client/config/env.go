package config

import "os"

// Environment variables read by parseEnv.
const (
	EnvAPIBaseURL        = "EXOSCOPE_API_URL"
	EnvDatabasePath      = "EXOSCOPE_DB"
	EnvLogLevel          = "EXOSCOPE_LOG_LEVEL"
	EnvLogFormat         = "EXOSCOPE_LOG_FORMAT"
	EnvStabilityAPIKey   = "STABILITY_API_KEY"
	EnvStabilityEndpoint = "EXOSCOPE_STABILITY_ENDPOINT"
	EnvTextureDir        = "EXOSCOPE_TEXTURE_DIR"
	EnvS3Bucket          = "EXOSCOPE_S3_BUCKET"
	EnvS3Region          = "EXOSCOPE_S3_REGION"
	EnvS3BaseEndpoint    = "EXOSCOPE_S3_ENDPOINT"
	EnvS3AccessKey       = "EXOSCOPE_S3_ACCESS_KEY"
	EnvS3SecretKey       = "EXOSCOPE_S3_SECRET_KEY"
)

func parseEnv(cfg *Config) {
	for name, dst := range map[string]*string{
		EnvAPIBaseURL:        &cfg.APIBaseURL,
		EnvDatabasePath:      &cfg.DatabasePath,
		EnvLogLevel:          &cfg.LogLevel,
		EnvLogFormat:         &cfg.LogFormat,
		EnvStabilityAPIKey:   &cfg.StabilityAPIKey,
		EnvStabilityEndpoint: &cfg.StabilityEndpoint,
		EnvTextureDir:        &cfg.TextureDir,
		EnvS3Bucket:          &cfg.S3Bucket,
		EnvS3Region:          &cfg.S3Region,
		EnvS3BaseEndpoint:    &cfg.S3BaseEndpoint,
		EnvS3AccessKey:       &cfg.S3AccessKey,
		EnvS3SecretKey:       &cfg.S3SecretKey,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
}

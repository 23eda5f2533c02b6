package config

import "os"

// CorrelationHeader is the HTTP header carrying the request correlation id.
// Auto-assigned by the API middleware when absent.
const CorrelationHeader = "X-Correlation-ID"

// EnvConfig holds process-level settings sourced from the environment.
// These are deployment concerns (endpoints, credentials, paths); analysis
// tunables live in TuningConfig.
type EnvConfig struct {
	ArtifactEndpoint  string // object store endpoint URL
	ArtifactAccessKey string
	ArtifactSecretKey string
	BrokerURL         string // job broker URL
	DatabaseURL       string // sqlite path or DSN
	ModelPath         string // phase classifier model file
	LogJSON           bool   // emit structured JSON logs when true
}

// EnvFromOS reads the environment into an EnvConfig. Missing variables keep
// their zero values; callers decide which settings are mandatory.
func EnvFromOS() EnvConfig {
	return EnvConfig{
		ArtifactEndpoint:  os.Getenv("TACTICS_ARTIFACT_ENDPOINT"),
		ArtifactAccessKey: os.Getenv("TACTICS_ARTIFACT_ACCESS_KEY"),
		ArtifactSecretKey: os.Getenv("TACTICS_ARTIFACT_SECRET_KEY"),
		BrokerURL:         os.Getenv("TACTICS_BROKER_URL"),
		DatabaseURL:       os.Getenv("TACTICS_DATABASE_URL"),
		ModelPath:         os.Getenv("TACTICS_MODEL_PATH"),
		LogJSON:           os.Getenv("TACTICS_LOG_FORMAT") == "json",
	}
}

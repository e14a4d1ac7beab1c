package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"radiocast"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"RADIOCAST_ADDRESS" default:":3443"`
	MetricsAddress  string `envconfig:"RADIOCAST_METRICS_ADDRESS" default:":8080"`
	BaseUrl         string `envconfig:"RADIOCAST_BASE_URL" default:"https://localhost:3443"`
	LogLevel        string `envconfig:"RADIOCAST_LOG_LEVEL" default:"info"`
	MigrationFolder string `envconfig:"RADIOCAST_MIGRATIONS_FOLDER" default:""`
	Region          string `envconfig:"RADIOCAST_REGION" default:"Valparaíso"`

	Dispatch  dispatchConfig
	Humanizer humanizerConfig
	TTS       ttsConfig
	Assets    assetsConfig
	Scraper   scraperConfig
	Voice     voiceConfig
}

// dispatchConfig selects how background jobs run. "local" executes them
// on a goroutine inside the API process, "remote" fires a request at a
// worker deployment and forgets about it.
type dispatchConfig struct {
	Mode      string `envconfig:"RADIOCAST_DISPATCH_MODE" default:"local"`
	WorkerUrl string `envconfig:"RADIOCAST_WORKER_URL" default:"http://localhost:9443"`
}

type humanizerConfig struct {
	Endpoint string `envconfig:"RADIOCAST_HUMANIZER_ENDPOINT" default:""`
	ApiKey   string `envconfig:"RADIOCAST_HUMANIZER_API_KEY" default:""`
	Model    string `envconfig:"RADIOCAST_HUMANIZER_MODEL" default:"gpt-4o-mini"`
}

type ttsConfig struct {
	Endpoint string `envconfig:"RADIOCAST_TTS_ENDPOINT" default:""`
	ApiKey   string `envconfig:"RADIOCAST_TTS_API_KEY" default:""`
}

type assetsConfig struct {
	Endpoint        string `envconfig:"RADIOCAST_ASSETS_ENDPOINT" default:""`
	AccessKey       string `envconfig:"RADIOCAST_ASSETS_ACCESS_KEY" default:""`
	SecretKey       string `envconfig:"RADIOCAST_ASSETS_SECRET_KEY" default:""`
	Bucket          string `envconfig:"RADIOCAST_ASSETS_BUCKET" default:"newscasts"`
	UseSSL          bool   `envconfig:"RADIOCAST_ASSETS_USE_SSL" default:"true"`
	PublicUrlPrefix string `envconfig:"RADIOCAST_ASSETS_PUBLIC_URL_PREFIX" default:""`
}

type scraperConfig struct {
	BatchSize         int `envconfig:"RADIOCAST_SCRAPER_BATCH_SIZE" default:"5"`
	BatchDelayMs      int `envconfig:"RADIOCAST_SCRAPER_BATCH_DELAY_MS" default:"1000"`
	RequestTimeoutSec int `envconfig:"RADIOCAST_SCRAPER_REQUEST_TIMEOUT_SEC" default:"15"`
}

type voiceConfig struct {
	DefaultVoice string `envconfig:"RADIOCAST_DEFAULT_VOICE" default:"es-US-Neural2-B"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

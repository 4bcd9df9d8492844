package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/simviz/sceneclient/internal/otel"
	"github.com/simviz/sceneclient/internal/storage"
)

// Config is the resolved client configuration.
type Config struct {
	LogLevel string `json:"logLevel" mapstructure:"logLevel"`
	LogsDir  string `json:"logsDir" mapstructure:"logsDir"`

	Server struct {
		Host           string `json:"host" mapstructure:"host"`
		Port           int    `json:"port" mapstructure:"port"`
		ReadTimeoutSec int    `json:"readTimeoutSec" mapstructure:"readTimeoutSec"`
		TickRateHz     int    `json:"tickRateHz" mapstructure:"tickRateHz"`
	} `json:"server" mapstructure:"server"`

	ResourceDirs  []string `json:"resourceDirs" mapstructure:"resourceDirs"`
	AppearanceXML string   `json:"appearanceXml" mapstructure:"appearanceXml"`

	Contacts struct {
		ShowPoints bool `json:"showPoints" mapstructure:"showPoints"`
		ShowForces bool `json:"showForces" mapstructure:"showForces"`
	} `json:"contacts" mapstructure:"contacts"`

	Storage storage.Config `json:"storage" mapstructure:"storage"`

	API struct {
		Enabled   bool   `json:"enabled" mapstructure:"enabled"`
		ServerURL string `json:"serverUrl" mapstructure:"serverUrl"`
		APIKey    string `json:"apiKey" mapstructure:"apiKey"`
	} `json:"api" mapstructure:"api"`

	Influx struct {
		Enabled  bool   `json:"enabled" mapstructure:"enabled"`
		Host     string `json:"host" mapstructure:"host"`
		Port     string `json:"port" mapstructure:"port"`
		Protocol string `json:"protocol" mapstructure:"protocol"`
		Token    string `json:"token" mapstructure:"token"`
		Org      string `json:"org" mapstructure:"org"`
	} `json:"influx" mapstructure:"influx"`

	Graylog struct {
		Enabled bool   `json:"enabled" mapstructure:"enabled"`
		Address string `json:"address" mapstructure:"address"`
	} `json:"graylog" mapstructure:"graylog"`

	Otel otel.Config `json:"otel" mapstructure:"otel"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. A missing
// config file is not an error; defaults apply.
func Load(configDir string) (*Config, error) {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeoutSec", 10)
	viper.SetDefault("server.tickRateHz", 60)

	viper.SetDefault("resourceDirs", []string{})
	viper.SetDefault("appearanceXml", "")

	viper.SetDefault("contacts.showPoints", false)
	viper.SetDefault("contacts.showForces", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", ".")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "sceneclient.db")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "sceneclient")
	viper.SetDefault("storage.websocket.url", "")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "sceneclient-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "sceneclient")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("sceneclient.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %v", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}
	return &cfg, nil
}

// GetStorageConfig returns the storage backend selection.
func GetStorageConfig() storage.Config {
	var sc storage.Config
	_ = viper.UnmarshalKey("storage", &sc)
	return sc
}

// GetOTelConfig returns the OTel exporter settings. LogWriter and
// MetricWriter are left nil; the caller wires file targets.
func GetOTelConfig() otel.Config {
	var oc otel.Config
	_ = viper.UnmarshalKey("otel", &oc)
	return oc
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

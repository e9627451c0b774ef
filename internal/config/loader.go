package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"textile-backoffice/internal/db"
)

// Config is the full application configuration.
type Config struct {
	Database db.Config
	Server   ServerConfig
	Blob     BlobConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// BlobConfig holds blob store settings.
type BlobConfig struct {
	Dir    string
	Secret string
	URLTTL time.Duration
	Fanout int
}

// AuthConfig holds the shared API token. Empty means open (development).
type AuthConfig struct {
	Token string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string
	Environment string
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Database: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Blob: BlobConfig{
			Dir:    "./blobs",
			URLTTL: 15 * time.Minute,
			Fanout: 4,
		},
		Log: LogConfig{Level: "info", Environment: "development"},
	}
}

// Load reads config.yaml from configPath with environment overrides
// (APP_DATABASE_HOST, APP_BLOB_SECRET, ...), falling back to defaults when
// the file is absent.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("blob.dir")
	v.BindEnv("blob.secret")
	v.BindEnv("auth.token")
	v.BindEnv("log.level")
	v.BindEnv("log.environment")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Use defaults + env.
		fmt.Println("No config.yaml found, using defaults and env vars")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("blob.dir") {
		cfg.Blob.Dir = v.GetString("blob.dir")
	}
	if v.IsSet("blob.secret") {
		cfg.Blob.Secret = v.GetString("blob.secret")
	}
	if v.IsSet("blob.url_ttl") {
		cfg.Blob.URLTTL = v.GetDuration("blob.url_ttl")
	}
	if v.IsSet("blob.fanout") {
		cfg.Blob.Fanout = v.GetInt("blob.fanout")
	}
	if v.IsSet("auth.token") {
		cfg.Auth.Token = v.GetString("auth.token")
	}
	if v.IsSet("log.level") {
		cfg.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.environment") {
		cfg.Log.Environment = v.GetString("log.environment")
	}

	return cfg, nil
}

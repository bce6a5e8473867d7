// server/config/config.go
package config

import (
	"time"

	"github.com/spf13/viper"
)

// --- Sub-structs mirroring config.yaml ---

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type MongoConfig struct {
	URI             string        `mapstructure:"uri"`
	DBName          string        `mapstructure:"dbName"`
	ConnectTimeout  time.Duration `mapstructure:"connectTimeout"`
	ConnectAttempts uint          `mapstructure:"connectAttempts"`
}

type StoreConfig struct {
	// Driver is "mongo" or "memory".
	Driver string `mapstructure:"driver"`
}

type FeedbackConfig struct {
	DefaultListLimit   int  `mapstructure:"defaultListLimit"`
	AllowUnboundedList bool `mapstructure:"allowUnboundedList"`
}

type StatsConfig struct {
	LeaderboardSize int `mapstructure:"leaderboardSize"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// --- Root Config ---

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Store    StoreConfig    `mapstructure:"store"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Log      LogConfig      `mapstructure:"log"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("mongo.dbName", "swachh_scan")
	v.SetDefault("mongo.connectTimeout", 10*time.Second)
	v.SetDefault("mongo.connectAttempts", 5)
	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("feedback.defaultListLimit", 100)
	v.SetDefault("feedback.allowUnboundedList", false)
	v.SetDefault("stats.leaderboardSize", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads config.yaml from path (if present) and applies environment overrides.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)
	v.AutomaticEnv()

	// The first name wins when several are set.
	v.BindEnv("mongo.uri", "MONGO_URI", "DATABASE_URL")
	v.BindEnv("mongo.dbName", "MONGO_DBNAME", "DATABASE_NAME")
	v.BindEnv("mongo.connectTimeout", "MONGO_CONNECT_TIMEOUT")
	v.BindEnv("mongo.connectAttempts", "MONGO_CONNECT_ATTEMPTS")
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("server.allowedOrigins", "API_ALLOWED_ORIGINS")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("feedback.defaultListLimit", "FEEDBACK_DEFAULT_LIST_LIMIT")
	v.BindEnv("feedback.allowUnboundedList", "FEEDBACK_ALLOW_UNBOUNDED_LIST")
	v.BindEnv("stats.leaderboardSize", "STATS_LEADERBOARD_SIZE")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	// A missing config.yaml is fine; env vars and defaults are enough.
	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Kuro      KuroConfig      `mapstructure:"kuro"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"db_name"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type LogConfig struct {
	Dir     string `mapstructure:"dir"`
	MaxDays int    `mapstructure:"max_days"`
}

type BroadcastConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	AdminKey   string `mapstructure:"admin_key"`
}

type KuroConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	RateLimitQPS int    `mapstructure:"rate_limit_qps"`
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// 设置环境变量映射
	viper.SetEnvPrefix("")
	viper.AutomaticEnv()

	// 设置默认值
	viper.SetDefault("PORT", "6386")
	viper.SetDefault("HTTP_READ_TIMEOUT", "10s")
	viper.SetDefault("HTTP_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_NAME", "roversign")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 20)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("LOG_DIR", "logs")
	viper.SetDefault("LOG_MAX_DAYS", 7)
	viper.SetDefault("KURO_BASE_URL", "https://api.kurobbs.com")
	viper.SetDefault("KURO_RATE_LIMIT_QPS", 4)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("配置文件读取失败，使用环境变量: %v", err)
	}

	var config Config

	// 映射环境变量到配置结构
	config.Server.Port = viper.GetString("PORT")
	config.Server.ReadTimeout = viper.GetDuration("HTTP_READ_TIMEOUT")
	config.Server.WriteTimeout = viper.GetDuration("HTTP_WRITE_TIMEOUT")

	config.Database.Host = viper.GetString("DB_HOST")
	config.Database.Port = viper.GetString("DB_PORT")
	config.Database.User = viper.GetString("DB_USER")
	config.Database.Password = viper.GetString("DB_PASSWORD")
	config.Database.DBName = viper.GetString("DB_NAME")
	config.Database.MaxOpenConns = viper.GetInt("DB_MAX_OPEN_CONNS")
	config.Database.MaxIdleConns = viper.GetInt("DB_MAX_IDLE_CONNS")

	config.Log.Dir = viper.GetString("LOG_DIR")
	config.Log.MaxDays = viper.GetInt("LOG_MAX_DAYS")

	config.Broadcast.WebhookURL = viper.GetString("BROADCAST_WEBHOOK_URL")
	config.Broadcast.AdminKey = viper.GetString("ADMIN_KEY")

	config.Kuro.BaseURL = viper.GetString("KURO_BASE_URL")
	config.Kuro.RateLimitQPS = viper.GetInt("KURO_RATE_LIMIT_QPS")

	return &config
}

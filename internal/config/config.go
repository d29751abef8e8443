package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	DB            DBConfig
	Redis         RedisConfig
	OpenAI        OpenAIConfig
	Queue         QueueConfig
	Notifications NotificationConfig
	Auth          AuthConfig
	Logger        LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// GetDSN returns the Postgres connection string for lib/pq.
func (c DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

type QueueConfig struct {
	Stream       string
	Group        string
	Consumer     string
	BlockTimeout time.Duration
	MinIdle      time.Duration
	Workers      int
}

type NotificationConfig struct {
	Channel          string
	SubscriptionsKey string
}

type AuthConfig struct {
	JWTSecret string
}

type LoggerConfig struct {
	Level string
	Env   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("server.body_limit_mb", 10)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("openai.model", "gpt-3.5-turbo")
	viper.SetDefault("openai.request_timeout", 30)
	viper.SetDefault("queue.stream", "quiz:generation")
	viper.SetDefault("queue.group", "quiz-generators")
	viper.SetDefault("queue.block_timeout", 5)
	viper.SetDefault("queue.min_idle", 60)
	viper.SetDefault("queue.workers", 2)
	viper.SetDefault("notifications.channel", "quiz:notifications")
	viper.SetDefault("notifications.subscriptions_key", "quiz:subscriptions")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	hostname, _ := os.Hostname()
	viper.SetDefault("queue.consumer", hostname)

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
			BodyLimit:    viper.GetInt("server.body_limit_mb") * 1024 * 1024,
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         viper.GetString("openai.api_key"),
			Model:          viper.GetString("openai.model"),
			RequestTimeout: viper.GetDuration("openai.request_timeout") * time.Second,
		},
		Queue: QueueConfig{
			Stream:       viper.GetString("queue.stream"),
			Group:        viper.GetString("queue.group"),
			Consumer:     viper.GetString("queue.consumer"),
			BlockTimeout: viper.GetDuration("queue.block_timeout") * time.Second,
			MinIdle:      viper.GetDuration("queue.min_idle") * time.Second,
			Workers:      viper.GetInt("queue.workers"),
		},
		Notifications: NotificationConfig{
			Channel:          viper.GetString("notifications.channel"),
			SubscriptionsKey: viper.GetString("notifications.subscriptions_key"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("auth.jwt_secret"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Environment overrides for containerized deployments
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}

	return config, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	YouTube    YouTubeConfig    `mapstructure:"youtube"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Moderation ModerationConfig `mapstructure:"moderation"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type YouTubeConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
	LiveChatID  string `mapstructure:"live_chat_id"`
	MaxResults  int    `mapstructure:"max_results"`
}

type ClassifierConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	ApiKey      string  `mapstructure:"api_key"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type ModerationConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	ErrorBackoff    time.Duration `mapstructure:"error_backoff"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	DedupWindow     int           `mapstructure:"dedup_window"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("⚠️ Warning: Could not load main config file: %v", err)
	}

	setDefaultValues()

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(out, decodeHook); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Classifier.Provider == "" {
		globalConfig.Classifier.Provider = "groq"
	}
	if globalConfig.Moderation.PollInterval == 0 {
		globalConfig.Moderation.PollInterval = 2 * time.Second
	}
	if globalConfig.Moderation.ErrorBackoff == 0 {
		globalConfig.Moderation.ErrorBackoff = 5 * time.Second
	}
	if globalConfig.Moderation.CleanupInterval == 0 {
		globalConfig.Moderation.CleanupInterval = time.Hour
	}
	if globalConfig.Moderation.DedupWindow == 0 {
		globalConfig.Moderation.DedupWindow = 1000
	}
}

func GetConfig() *Config {
	return &globalConfig
}

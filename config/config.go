/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "8000"

	DEFAULT_PRIMARY_MODEL   = "meta-llama/llama-3.3-70b-instruct:free"
	DEFAULT_SECONDARY_MODEL = "meta-llama/llama-3.1-405b-instruct:free"
	DEFAULT_FALLBACK_MODEL  = "google/gemma-2-9b-it:free"
	DEFAULT_COMPLETION_URL  = "https://openrouter.ai/api/v1/chat/completions"
	DEFAULT_TELEGRAM_URL    = "https://api.telegram.org"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL            bool     `json:"ssl" envconfig:"STOREFRONT_SERVER_SSL"`
	Domain         string   `json:"domain" envconfig:"STOREFRONT_SERVER_SSL_DOMAIN"`
	Email          string   `json:"ssl_email" envconfig:"STOREFRONT_SERVER_SSL_EMAIL"`
	Port           string   `json:"port" envconfig:"PORT"`
	AllowedOrigins []string `json:"allowed_origins" envconfig:"CORS_ALLOWED_ORIGINS"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"DATABASE_URL"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"REDIS_URL"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"REDIS_SKIP_TLS_VERIFY"`
}

// AssistantConfig configures the chat completion backend. Up to three keys
// and three models are supported; blank keys are ignored.
type AssistantConfig struct {
	APIKey1        string  `json:"api_key_1" envconfig:"OPENROUTER_API_KEY_1"`
	APIKey2        string  `json:"api_key_2" envconfig:"OPENROUTER_API_KEY_2"`
	APIKey3        string  `json:"api_key_3" envconfig:"OPENROUTER_API_KEY_3"`
	PrimaryModel   string  `json:"primary_model" envconfig:"OPENROUTER_MODEL_PRIMARY"`
	SecondaryModel string  `json:"secondary_model" envconfig:"OPENROUTER_MODEL_SECONDARY"`
	FallbackModel  string  `json:"fallback_model" envconfig:"OPENROUTER_MODEL_FALLBACK"`
	BaseURL        string  `json:"base_url" envconfig:"OPENROUTER_BASE_URL"`
	MaxRetries     int     `json:"max_retries" envconfig:"OPENROUTER_MAX_RETRIES"`
	TimeoutSec     int     `json:"timeout_sec" envconfig:"OPENROUTER_TIMEOUT_SEC"`
	MaxTokens      int     `json:"max_tokens" envconfig:"OPENROUTER_MAX_TOKENS"`
	Temperature    float64 `json:"temperature" envconfig:"OPENROUTER_TEMPERATURE"`
	// SweepPasses bounds how many times each model and each key may be
	// picked within one call. It does not guarantee every pair is tried.
	SweepPasses int `json:"sweep_passes" envconfig:"OPENROUTER_SWEEP_PASSES"`
}

// APIKeys returns the configured keys in slot order, blanks included.
func (a AssistantConfig) APIKeys() []string {
	return []string{a.APIKey1, a.APIKey2, a.APIKey3}
}

// Models returns the primary, secondary and fallback model ids.
func (a AssistantConfig) Models() []string {
	return []string{a.PrimaryModel, a.SecondaryModel, a.FallbackModel}
}

type SMTPConfig struct {
	Host      string `json:"host" envconfig:"SMTP_HOST"`
	Port      int    `json:"port" envconfig:"SMTP_PORT"`
	Email     string `json:"email" envconfig:"SMTP_EMAIL"`
	Password  string `json:"password" envconfig:"SMTP_PASSWORD"`
	Recipient string `json:"recipient" envconfig:"RECIPIENT_EMAIL"`
	// TimeoutSec bounds one message submission, dial included.
	TimeoutSec int `json:"timeout_sec" envconfig:"SMTP_TIMEOUT_SEC"`
}

type TelegramConfig struct {
	BotToken string `json:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `json:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	BaseURL  string `json:"base_url" envconfig:"TELEGRAM_BASE_URL"`
}

type AuthConfig struct {
	SecretKey          string `json:"secret_key" envconfig:"SECRET_KEY"`
	TokenExpiryMinutes int    `json:"token_expiry_minutes" envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES"`
}

type UploadConfig struct {
	Dir string `json:"dir" envconfig:"STOREFRONT_UPLOAD_DIR"`
}

type QueueConfig struct {
	NotificationQueue string `json:"notification_queue" envconfig:"STOREFRONT_NOTIFICATION_QUEUE"`
	WebhookQueue      string `json:"webhook_queue" envconfig:"STOREFRONT_WEBHOOK_QUEUE"`
	Concurrency       int    `json:"concurrency" envconfig:"STOREFRONT_QUEUE_CONCURRENCY"`
	MonitoringPort    string `json:"monitoring_port" envconfig:"STOREFRONT_QUEUE_MONITORING_PORT"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"STOREFRONT_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"STOREFRONT_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"STOREFRONT_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url" envconfig:"ORDER_WEBHOOK_URL"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName     string           `json:"project_name" envconfig:"STOREFRONT_PROJECT_NAME"`
	EnableTelemetry bool             `json:"enable_telemetry" envconfig:"STOREFRONT_ENABLE_TELEMETRY"`
	Server          ServerConfig     `json:"server"`
	DataSource      DataSourceConfig `json:"data_source"`
	Redis           RedisConfig      `json:"redis"`
	Assistant       AssistantConfig  `json:"assistant"`
	SMTP            SMTPConfig       `json:"smtp"`
	Telegram        TelegramConfig   `json:"telegram"`
	Auth            AuthConfig       `json:"auth"`
	Uploads         UploadConfig     `json:"uploads"`
	Queue           QueueConfig      `json:"queue"`
	Notification    Notification     `json:"notification"`
	RateLimit       RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// .env is optional; variables already in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	// override config from environment variables
	err = envconfig.Process("storefront", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return nil
}

// InitConfig loads the json file at configFile, overrides it from .env and
// the environment, applies defaults and stores the result.
//
// Parameters:
// - configFile string: path to the json configuration. A missing file is fine.
//
// Returns:
// - error: a read, parse or validation error.
func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

// Fetch returns the configuration stored by InitConfig or MockConfig.
func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded. Create a json file called storefront.json or set the environment variables ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "SmartTech E-commerce API"
	}

	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}
	// some hosts hand out postgres:// urls; lib/pq accepts both but migrations expect postgresql://
	if strings.HasPrefix(cnf.DataSource.Dns, "postgres://") {
		cnf.DataSource.Dns = "postgresql://" + strings.TrimPrefix(cnf.DataSource.Dns, "postgres://")
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	cnf.Assistant.addDefaults()

	if cnf.SMTP.Port == 0 {
		cnf.SMTP.Port = 587
	}
	if cnf.SMTP.TimeoutSec <= 0 {
		cnf.SMTP.TimeoutSec = 60
	}
	if cnf.Telegram.BaseURL == "" {
		cnf.Telegram.BaseURL = DEFAULT_TELEGRAM_URL
	}

	if cnf.Auth.SecretKey == "" {
		log.Println("Warning: SECRET_KEY is empty. Admin tokens cannot be issued until it is set.")
	}
	if cnf.Auth.TokenExpiryMinutes <= 0 {
		cnf.Auth.TokenExpiryMinutes = 30
	}

	if cnf.Uploads.Dir == "" {
		cnf.Uploads.Dir = "static"
	}

	if cnf.Queue.NotificationQueue == "" {
		cnf.Queue.NotificationQueue = "notifications"
	}
	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = "webhooks"
	}
	if cnf.Queue.Concurrency <= 0 {
		cnf.Queue.Concurrency = 2
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = "5004"
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// WithDefaults returns a copy with every unset field given its default, for
// callers that build an AssistantConfig without loading the configuration.
func (a AssistantConfig) WithDefaults() AssistantConfig {
	a.addDefaults()
	return a
}

func (a *AssistantConfig) addDefaults() {
	if a.PrimaryModel == "" {
		a.PrimaryModel = DEFAULT_PRIMARY_MODEL
	}
	if a.SecondaryModel == "" {
		a.SecondaryModel = DEFAULT_SECONDARY_MODEL
	}
	if a.FallbackModel == "" {
		a.FallbackModel = DEFAULT_FALLBACK_MODEL
	}
	if a.BaseURL == "" {
		a.BaseURL = DEFAULT_COMPLETION_URL
	}
	if a.MaxRetries <= 0 {
		a.MaxRetries = 3
	}
	if a.TimeoutSec <= 0 {
		a.TimeoutSec = 30
	}
	if a.MaxTokens <= 0 {
		a.MaxTokens = 500
	}
	if a.Temperature == 0 {
		a.Temperature = 0.7
	}
	if a.SweepPasses <= 0 {
		a.SweepPasses = 2
	}
}

// Masked returns a copy of the configuration safe to print.
func (cnf Configuration) Masked() Configuration {
	mask := func(s string) string {
		if len(s) <= 4 {
			if s == "" {
				return ""
			}
			return "****"
		}
		return s[:4] + "****"
	}
	cnf.Assistant.APIKey1 = mask(cnf.Assistant.APIKey1)
	cnf.Assistant.APIKey2 = mask(cnf.Assistant.APIKey2)
	cnf.Assistant.APIKey3 = mask(cnf.Assistant.APIKey3)
	cnf.SMTP.Password = mask(cnf.SMTP.Password)
	cnf.Telegram.BotToken = mask(cnf.Telegram.BotToken)
	cnf.Auth.SecretKey = mask(cnf.Auth.SecretKey)
	cnf.DataSource.Dns = mask(cnf.DataSource.Dns)
	return cnf
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}

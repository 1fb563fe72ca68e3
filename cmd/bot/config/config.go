package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// ColumnWidths определяет ширину колонок для текстового вывода.
type ColumnWidths struct {
	Sender int `yaml:"sender" env:"BOT_RENDER_SENDER"`
	Word   int `yaml:"word" env:"BOT_RENDER_WORD"`
}

// BotConfig содержит конфигурацию для Telegram-бота
type BotConfig struct {
	Token                  string `yaml:"token" env:"BOT_TOKEN"`
	BackendURL             string `yaml:"backend_url" env:"BOT_BACKEND_URL"`
	PollingIntervalSeconds int    `yaml:"polling_interval_seconds" env:"BOT_POLLING_INTERVAL_SECONDS"`
	// ExcelThreshold - число сообщений в анализе, начиная с которого к сводке прикладывается xlsx.
	ExcelThreshold     int          `yaml:"excel_threshold" env:"BOT_EXCEL_THRESHOLD"`
	HTTPTimeoutSeconds int          `yaml:"http_timeout_seconds" env:"BOT_HTTP_TIMEOUT_SECONDS"`
	TopWords           int          `yaml:"top_words" env:"BOT_TOP_WORDS"`
	MessageWidth       int          `yaml:"message_width" env:"BOT_MESSAGE_WIDTH"`
	Render             ColumnWidths `yaml:"render"`
}

// Logging содержит настройки логирования бота
type Logging struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Config является оберткой для соответствия структуре YAML файла.
type Config struct {
	Bot     BotConfig `yaml:"bot"`
	Logging Logging   `yaml:"logging"`
}

// LoadBotConfig загружает конфигурацию бота из файла и переменных окружения.
// Отсутствие файла допустимо: тогда токен обычно задается через BOT_TOKEN.
func LoadBotConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read bot config file %s: %w", filename, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bot config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bot config from env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	b := &c.Bot
	if b.BackendURL == "" {
		b.BackendURL = DefaultBackendURL
	}
	if b.PollingIntervalSeconds == 0 {
		b.PollingIntervalSeconds = DefaultPollingIntervalSeconds
	}
	if b.ExcelThreshold == 0 {
		b.ExcelThreshold = DefaultExcelThreshold
	}
	if b.HTTPTimeoutSeconds == 0 {
		b.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
	if b.TopWords == 0 {
		b.TopWords = DefaultTopWords
	}
	if b.MessageWidth == 0 {
		b.MessageWidth = DefaultMessageWidth
	}
	if b.Render.Sender == 0 {
		b.Render.Sender = DefaultSenderColumnWidth
	}
	if b.Render.Word == 0 {
		b.Render.Word = DefaultWordColumnWidth
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// Validate проверяет корректность конфигурации бота.
func (c *BotConfig) Validate() error {
	if c.Token == "" || c.Token == "YOUR_TELEGRAM_BOT_TOKEN" {
		return fmt.Errorf("bot.token is not configured")
	}
	if c.BackendURL == "" {
		return fmt.Errorf("bot.backend_url cannot be empty")
	}
	if c.PollingIntervalSeconds <= 0 {
		return fmt.Errorf("bot.polling_interval_seconds must be positive")
	}
	if c.ExcelThreshold <= 0 {
		return fmt.Errorf("bot.excel_threshold must be positive")
	}
	if c.TopWords <= 0 {
		return fmt.Errorf("bot.top_words must be positive")
	}
	return nil
}

// ValidateFull проверяет всю конфигурацию, включая логирование.
func (c *Config) ValidateFull() error {
	if err := c.Bot.Validate(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	return nil
}

// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"telegram-chat-stats/internal/core/services"
)

// DefaultConfigFile - файл конфигурации, который читается, если путь не задан.
const DefaultConfigFile = "config.yml"

// Server содержит конфигурацию сервера
type Server struct {
	Host            string        `json:"host" yaml:"host" env:"SERVER_HOST"`
	Port            int           `json:"port" yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	MaxUploadSizeMB int64         `json:"max_upload_size_mb" yaml:"max_upload_size_mb" env:"SERVER_MAX_UPLOAD_SIZE_MB"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" env:"SERVER_CLEANUP_INTERVAL"`
}

// Processing содержит конфигурацию обработки
type Processing struct {
	TaskTimeout      time.Duration `json:"task_timeout" yaml:"task_timeout" env:"TASK_TIMEOUT"` // 0 - без ограничений
	CacheTTL         time.Duration `json:"cache_ttl" yaml:"cache_ttl" env:"CACHE_TTL"`
	SkipInvalidDates bool          `json:"skip_invalid_dates" yaml:"skip_invalid_dates" env:"SKIP_INVALID_DATES"`
	Timezone         string        `json:"timezone" yaml:"timezone" env:"TIMEZONE"`
}

// Analytics содержит параметры статистики
type Analytics struct {
	InputPath       string   `json:"input_path" yaml:"input_path" env:"INPUT_PATH"`
	ExcludedSenders []string `json:"excluded_senders" yaml:"excluded_senders" env:"EXCLUDED_SENDERS" envSeparator:";"`
	StopwordsFile   string   `json:"stopwords_file" yaml:"stopwords_file" env:"STOPWORDS_FILE"`
	TopWords        int      `json:"top_words" yaml:"top_words" env:"TOP_WORDS"`
	TopSenders      int      `json:"top_senders" yaml:"top_senders" env:"TOP_SENDERS"`
	TopLengths      int      `json:"top_lengths" yaml:"top_lengths" env:"TOP_LENGTHS"`
	HistogramBins   int      `json:"histogram_bins" yaml:"histogram_bins" env:"HISTOGRAM_BINS"`
	CloudMaxWords   int      `json:"cloud_max_words" yaml:"cloud_max_words" env:"CLOUD_MAX_WORDS"`
	BurstDays       int      `json:"burst_days" yaml:"burst_days" env:"BURST_DAYS"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `json:"level" yaml:"level" env:"LOG_LEVEL"`    // debug, info, warn, error
	Format string `json:"format" yaml:"format" env:"LOG_FORMAT"` // text, json
}

// Daemon содержит параметры запуска в фоне
type Daemon struct {
	PidFile string `json:"pid_file" yaml:"pid_file" env:"DAEMON_PID_FILE"`
	LogFile string `json:"log_file" yaml:"log_file" env:"DAEMON_LOG_FILE"`
	WorkDir string `json:"work_dir" yaml:"work_dir" env:"DAEMON_WORK_DIR"`
}

// Config содержит конфигурацию приложения
type Config struct {
	Server     Server     `json:"server" yaml:"server"`
	Processing Processing `json:"processing" yaml:"processing"`
	Analytics  Analytics  `json:"analytics" yaml:"analytics"`
	Logging    Logging    `json:"logging" yaml:"logging"`
	Daemon     Daemon     `json:"daemon" yaml:"daemon"`
}

// defaultConfig возвращает конфигурацию со значениями по умолчанию
func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadSizeMB: DefaultMaxUploadSizeMB,
			CleanupInterval: DefaultCleanupInterval,
		},
		Processing: Processing{
			TaskTimeout: DefaultTaskTimeout,
			CacheTTL:    DefaultCacheTTL,
			Timezone:    DefaultTimezone,
		},
		Analytics: Analytics{
			InputPath:       DefaultInputPath,
			ExcludedSenders: append([]string(nil), DefaultExcludedSenders...),
			TopWords:        DefaultTopWords,
			TopSenders:      DefaultTopSenders,
			TopLengths:      DefaultTopLengths,
			HistogramBins:   DefaultHistogramBins,
			CloudMaxWords:   DefaultCloudMaxWords,
			BurstDays:       DefaultBurstDays,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Daemon: Daemon{
			PidFile: DefaultPidFile,
			LogFile: DefaultLogFile,
		},
	}
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем config.yml,
// затем .env и переменные окружения. Пустой path означает DefaultConfigFile.
func LoadConfig(path string) (*Config, error) {
	// Отсутствие .env файла допустимо.
	_ = godotenv.Load()

	if path == "" {
		path = DefaultConfigFile
	}

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}

	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла на cfg. Отсутствие файла не ошибка.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return nil
}

// loadFromEnv накладывает заданные переменные окружения на cfg
func loadFromEnv(cfg *Config) error {
	return env.Parse(cfg)
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Location возвращает часовой пояс для дат без смещения
func (c *Config) Location() (*time.Location, error) {
	if c.Processing.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Processing.Timezone)
	if err != nil {
		return nil, fmt.Errorf("неизвестный часовой пояс %q: %w", c.Processing.Timezone, err)
	}
	return loc, nil
}

// ReportOptions возвращает размеры рейтингов для сервиса отчетов
func (c *Config) ReportOptions() services.ReportOptions {
	return services.ReportOptions{
		TopSenders:    c.Analytics.TopSenders,
		TopWords:      c.Analytics.TopWords,
		TopLengths:    c.Analytics.TopLengths,
		HistogramBins: c.Analytics.HistogramBins,
		BurstDays:     c.Analytics.BurstDays,
		CloudMaxWords: c.Analytics.CloudMaxWords,
	}
}

// NormalizerOptions возвращает параметры нормализатора из конфигурации
func (c *Config) NormalizerOptions() ([]services.NormalizerOption, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	return []services.NormalizerOption{
		services.WithExclusionPatterns(c.Analytics.ExcludedSenders),
		services.WithLocation(loc),
		services.WithSkipInvalidDates(c.Processing.SkipInvalidDates),
	}, nil
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}

	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb должно быть положительным")
	}

	if c.Server.CleanupInterval <= 0 {
		return fmt.Errorf("server.cleanup_interval должно быть положительным")
	}

	if c.Processing.TaskTimeout < 0 {
		return fmt.Errorf("processing.task_timeout должно быть неотрицательным (0 для отсутствия ограничений)")
	}

	if c.Processing.CacheTTL <= 0 {
		return fmt.Errorf("processing.cache_ttl должно быть положительным")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("processing.timezone: %w", err)
	}

	if _, err := services.CompilePatterns(c.Analytics.ExcludedSenders); err != nil {
		return fmt.Errorf("analytics.excluded_senders: %w", err)
	}

	if c.Analytics.TopWords <= 0 || c.Analytics.TopSenders <= 0 || c.Analytics.TopLengths <= 0 {
		return fmt.Errorf("analytics.top_* должны быть положительными")
	}

	if c.Analytics.HistogramBins <= 0 {
		return fmt.Errorf("analytics.histogram_bins должно быть положительным")
	}

	if c.Analytics.CloudMaxWords <= 0 {
		return fmt.Errorf("analytics.cloud_max_words должно быть положительным")
	}

	if c.Analytics.BurstDays <= 0 {
		return fmt.Errorf("analytics.burst_days должно быть положительным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                         string        `env:"HTTP_ADDR" envDefault:":8080"`
	Bucket                       string        `env:"BUCKET"`
	LogKey                       string        `env:"SUBMISSIONS_KEY" envDefault:"submissions.csv"`
	S3UsePathStyle               bool          `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	NotificationAddress          string        `env:"NOTIFY_EMAIL"`
	NotificationTimeout          time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"3s"`
	HoneypotField                string        `env:"HONEYPOT_FIELD" envDefault:"website"`
	LenientLogReads              bool          `env:"LENIENT_LOG_READS" envDefault:"false"`
	ConditionalWrites            bool          `env:"CONDITIONAL_WRITES" envDefault:"false"`
	WriteConflictAttempts        int           `env:"WRITE_CONFLICT_ATTEMPTS" envDefault:"3"`
	MongoURI                     string        `env:"MONGO_URI"`
	MongoDatabase                string        `env:"MONGO_DB" envDefault:"intake"`
	FailedNotificationCollection string        `env:"FAILED_NOTIFICATION_COLLECTION" envDefault:"failed_notifications"`
	MongoConnectTimeout          time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
	LogLevel                     string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat                    string        `env:"LOG_FORMAT" envDefault:"text"`

	Logger *logrus.Logger `env:"-"`
}

// Load reads environment variables and returns a fully populated Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	cfg.NotificationAddress = strings.TrimSpace(cfg.NotificationAddress)
	cfg.HoneypotField = strings.TrimSpace(cfg.HoneypotField)
	cfg.MongoURI = strings.TrimSpace(cfg.MongoURI)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	logger, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return Config{}, err
	}
	cfg.Logger = logger

	cfg.Logger.WithFields(logrus.Fields{
		"bucket":             cfg.Bucket,
		"key":                cfg.LogKey,
		"notify":             cfg.NotificationAddress != "",
		"conditional_writes": cfg.ConditionalWrites,
		"lenient_reads":      cfg.LenientLogReads,
		"outbox":             cfg.MongoURI != "",
	}).Info("loaded config")

	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.Bucket == "" {
		return errors.New("BUCKET must be configured")
	}
	if strings.TrimSpace(cfg.LogKey) == "" {
		return errors.New("SUBMISSIONS_KEY must not be empty")
	}
	if cfg.HoneypotField == "" {
		return errors.New("HONEYPOT_FIELD must not be empty")
	}
	if cfg.WriteConflictAttempts < 1 {
		return fmt.Errorf("WRITE_CONFLICT_ATTEMPTS must be at least 1, got %d", cfg.WriteConflictAttempts)
	}
	return nil
}

// NewLogger builds the process logger. format is "text" or "json".
func NewLogger(level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.Out = os.Stdout

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		logger.Formatter = &logrus.TextFormatter{
			DisableLevelTruncation: true,
			PadLevelText:           true,
			TimestampFormat:        "2006/01/02 15:04:05",
			FullTimestamp:          true,
		}
	case "json":
		logger.Formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", format)
	}

	return logger, nil
}

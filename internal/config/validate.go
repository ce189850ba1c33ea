package config

import (
	"errors"
	"fmt"

	"subsync/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	if c.Segmentation.MaxDurationSeconds <= 0 {
		return errors.New("segmentation.max_duration_seconds must be positive")
	}
	if c.Segmentation.MinGapSeconds <= 0 {
		return errors.New("segmentation.min_gap_seconds must be positive")
	}
	if c.Segmentation.MaxChars <= 0 {
		return errors.New("segmentation.max_chars must be positive")
	}
	if c.Segmentation.ReadingRateWPS <= 0 {
		return errors.New("segmentation.reading_rate_wps must be positive")
	}
	if c.Segmentation.FallbackGapSeconds < 0 {
		return errors.New("segmentation.fallback_gap_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.BatchSize <= 0 {
		return errors.New("translation.batch_size must be positive")
	}
	if c.Translation.Workers <= 0 {
		return errors.New("translation.workers must be positive")
	}
	if c.Translation.BatchTimeoutSeconds <= 0 {
		return errors.New("translation.batch_timeout_seconds must be positive")
	}
	for _, lang := range c.Translation.TargetLanguages {
		if language.ToISO2(lang) == "" {
			return fmt.Errorf("translation.target_languages: unrecognized language %q", lang)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

package config

const (
	defaultDataDir   = "~/.local/share/subsync/data"
	defaultExportDir = "~/.local/share/subsync/export"
	defaultLogDir    = "~/.local/share/subsync/logs"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultMaxDurationSeconds = 6.0
	defaultMinGapSeconds      = 1.0
	defaultMaxChars           = 84
	defaultReadingRateWPS     = 2.5
	defaultFallbackGapSeconds = 0.5

	defaultTranslationBatchSize    = 50
	defaultTranslationWorkers      = 4
	defaultTranslationBatchTimeout = 120

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/subsync/subsync"
	defaultLLMTitle          = "Subsync Translator"
	defaultLLMTimeoutSeconds = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
		},
		Segmentation: Segmentation{
			MaxDurationSeconds: defaultMaxDurationSeconds,
			MinGapSeconds:      defaultMinGapSeconds,
			MaxChars:           defaultMaxChars,
			ReadingRateWPS:     defaultReadingRateWPS,
			FallbackGapSeconds: defaultFallbackGapSeconds,
		},
		Translation: Translation{
			BatchSize:           defaultTranslationBatchSize,
			Workers:             defaultTranslationWorkers,
			BatchTimeoutSeconds: defaultTranslationBatchTimeout,
			TargetLanguages:     []string{"en", "de", "he"},
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

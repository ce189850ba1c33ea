package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subsync/internal/config"
	"subsync/internal/logging"
	"subsync/internal/pipeline"
	"subsync/internal/segstore"
	"subsync/internal/services/llm"
	"subsync/internal/transcript"
	"subsync/internal/translate"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withRunner opens the segment store for one command invocation, builds the
// pipeline runner around it, and closes the store when the command finishes.
func (c *commandContext) withRunner(cmd *cobra.Command, fn func(ctx context.Context, runner *pipeline.Runner) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	store, err := segstore.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var translator translate.Translator
	var classifier translate.Classifier
	if cfg.LLM.APIKey != "" {
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
		translator = client
		classifier = client
	}

	runner, err := pipeline.New(cfg, store, transcript.NewFileProvider(), translator, classifier, logger)
	if err != nil {
		return err
	}
	return fn(cmd.Context(), runner)
}

// withStore opens the segment store for commands that read it directly.
func (c *commandContext) withStore(cmd *cobra.Command, fn func(ctx context.Context, store *segstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := segstore.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cmd.Context(), store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

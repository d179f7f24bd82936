// Package runtimeinit is the shared startup path for the resident app
// and the one-shot CLI: configuration, logging, model client, clipboard.
package runtimeinit

import (
	"fmt"
	"log"

	"screen-capture-llm/src/clipboard"
	"screen-capture-llm/src/config"
	"screen-capture-llm/src/llm"
	"screen-capture-llm/src/logutil"
)

type Options struct {
	SetupLogging func(bool)
	// InitClipboard is off for stdout-only invocations. Clipboard
	// failure is not fatal; it just disables result copying.
	InitClipboard bool
}

func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required. Checked key file %s and OPENROUTER_API_KEY env var", cfg.APIKeyPath)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("MODEL is required. Please set it in your .env file")
	}

	llm.Init(&llm.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Providers: cfg.Providers,
	})
	if err := llm.Ping(); err != nil {
		return nil, fmt.Errorf("startup check failed: %w", err)
	}
	log.Printf("LLM ping succeeded (model %s, key %s)", cfg.Model, logutil.RedactKey(cfg.APIKey))

	if opts.InitClipboard && cfg.CopyResult {
		if err := clipboard.Init(); err != nil {
			log.Printf("clipboard unavailable, result copying disabled: %v", err)
			cfg.CopyResult = false
		}
	}

	return cfg, nil
}

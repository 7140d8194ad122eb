// internal/config/load.go
//
// Typed config from resolved settings.
//
/*
Context
--------
`Load()` unmarshals the `webhook`, `log`, and `vault` sections of a
resolved *settings.Settings into Config, fills runtime paths, and
validates.  Any failure aborts startup; the server never runs on partial
configuration.

Instrumentation
---------------
  • ERROR – unmarshal and validation failures.
  • INFO  – "config loaded" with listener and command highlights.
*/
package config

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yanizio/reviewhook/internal/settings"
)

// Load builds a validated Config from s.  root is the installation root;
// it anchors the default log directory.
func Load(s *settings.Settings, root string) (*Config, error) {
	var cfg Config
	if err := s.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.Root = root
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = filepath.Join(root, "logs")
	} else if !filepath.IsAbs(cfg.Log.Dir) {
		cfg.Log.Dir = filepath.Join(root, cfg.Log.Dir)
	}

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, fmt.Errorf("validate config: %w", err)
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.Webhook.ListenAddr,
		"trigger", cfg.Webhook.Trigger,
		"command", cfg.Webhook.Command,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

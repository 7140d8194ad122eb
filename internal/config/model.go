// internal/config/model.go
//
// Typed view of the server's own settings sections.
//
// Context
// -------
// The review CLI reads the merged settings tree untyped.  The webhook
// server needs a handful of values with real types, so `Load` unmarshals
// three sections of the same tree into these structs:
//
//   • `webhook` – listener, trigger phrase, command line, and limits,
//   • `log`     – level and directory,
//   • `vault`   – optional KV-v2 secret path.
//
// Defaults live in `settings/configuration.toml`, not here.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`; durations accept "30s" style strings.
//   • `Paths` is filled at runtime; settings files must not try to set it.
package config

import "time"

//
// Webhook section
//

// Webhook holds listener and review-run tunables.
type Webhook struct {
	ListenAddr        string        `koanf:"listen_addr"         validate:"required,hostname_port"`
	Trigger           string        `koanf:"trigger"             validate:"required"`
	Command           []string      `koanf:"command"             validate:"required,min=1,dive,required"`
	RunTimeout        time.Duration `koanf:"run_timeout"`
	MaxConcurrentRuns int           `koanf:"max_concurrent_runs" validate:"min=1"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RateLimit         RateLimit     `koanf:"rate_limit"`
}

// RateLimit configures the token bucket in front of the webhook routes.
// RPS == 0 disables limiting.
type RateLimit struct {
	RPS   float64 `koanf:"rps"   validate:"gte=0"`
	Burst int     `koanf:"burst" validate:"gte=0"`
}

//
// Log section
//

type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `koanf:"dir"`
}

//
// Vault section
//

// Vault names the KV-v2 secret merged at bootstrap.  Empty disables it.
type Vault struct {
	SecretPath string `koanf:"secret_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime.
type Paths struct {
	Root string // installation root holding settings/
}

//
// Root aggregate
//

// Config is built once from the published settings.
type Config struct {
	Webhook Webhook `koanf:"webhook"`
	Log     Log     `koanf:"log"`
	Vault   Vault   `koanf:"vault"`
	Paths   Paths   `koanf:"-"`
}

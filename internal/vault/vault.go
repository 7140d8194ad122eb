// internal/vault/vault.go
//
// Vault client wrapper used as a bootstrap secret source.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK for one job: read a KV-v2 secret
//     whose keys follow the `SECTION__KEY` naming used for environment
//     secrets, so settings.Bootstrap can flatten and merge it.
//   - Only constructed when VAULT_ADDR is set.  Reads happen once, before
//     the server starts, so there is no token renewal loop.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New()                           // during boot.
//  2. data, err := cli.ReadSecret(ctx, "secret/review") // via Bootstrap.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

//
// SECTION 1.  Public façade
//

// Client reads KV-v2 secrets.  Zero value is invalid.
type Client struct {
	api *vault.Client
}

// Enabled reports whether the environment points at a Vault server.
func Enabled() bool { return os.Getenv(vault.EnvVaultAddress) != "" }

// New constructs a client from the standard environment.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token (falls back to ~/.vault-token).
func New() (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	return NewWithConfig(cfg, os.Getenv(vault.EnvVaultToken))
}

// NewWithConfig builds a client from an explicit config and token.  An
// empty token keeps whatever the SDK picked up.
func NewWithConfig(cfg *vault.Config, token string) (*Client, error) {
	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if token != "" {
		apiCli.SetToken(token)
	}
	return &Client{api: apiCli}, nil
}

// ReadSecret returns every key of the KV-v2 secret at secretPath
// ("<mount>/<path>").  Non-string values are rejected so that numbers and
// booleans do not silently change type on their way into settings.
func (c *Client) ReadSecret(ctx context.Context, secretPath string) (map[string]string, error) {
	mount, rel := splitMount(secretPath)
	if mount == "" || rel == "" {
		return nil, errors.New("secret path must be <mount>/<path>")
	}

	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	out := make(map[string]string, len(sec.Data))
	for key, raw := range sec.Data {
		sval, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("value at %s#%s is not a string", secretPath, key)
		}
		out[key] = sval
	}
	return out, nil
}

//
// SECTION 2.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(strings.Trim(p, "/"), "/")
	return
}

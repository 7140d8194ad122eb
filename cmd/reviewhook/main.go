// cmd/reviewhook/main.go
//
// reviewhook – webhook front-end and settings inspector for the review CLI.
//
// Commands
// --------
//
//	reviewhook serve              run the webhook server
//	reviewhook settings get PATH  print one resolved value or table
//	reviewhook settings dump      print the whole resolved tree as TOML
//	reviewhook settings sources   list merged sources in order
//	reviewhook settings root      show the repository root and manifest
//
// Every command resolves settings the same way: static files under the
// installation root, `PR_AGENT_*` environment secrets, an optional Vault
// secret (when VAULT_ADDR is set), then the `[tool.pr-agent]` table of
// the repository's pyproject.toml.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanizio/reviewhook/internal/settings"
	"github.com/yanizio/reviewhook/internal/vault"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	root     string
	workDir  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "reviewhook",
		Short:         "Webhook front-end and settings resolver for the review CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.root, "root", "", "installation root holding settings/ (default $"+settings.RootEnv+" or discovered)")
	f.StringVar(&opts.workDir, "workdir", "", "directory whose repository supplies the local override (default cwd)")
	f.StringVar(&opts.logLevel, "log-level", "warn", "console log level while resolving settings")

	cmd.AddCommand(newServeCmd(opts), newSettingsCmd(opts))
	return cmd
}

// bootstrap resolves and publishes settings, returning them with the
// installation root used.
func (o *rootOptions) bootstrap(ctx context.Context) (*settings.Settings, string, error) {
	root := o.root
	if root == "" {
		root = settings.InstallRoot()
	}

	bopts := settings.Options{Root: root, WorkDir: o.workDir}
	if vault.Enabled() {
		cli, err := vault.New()
		if err != nil {
			return nil, root, err
		}
		bopts.Secrets = cli
	}

	s, err := settings.Bootstrap(ctx, bopts)
	return s, root, err
}

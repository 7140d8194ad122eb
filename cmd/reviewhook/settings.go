package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yanizio/reviewhook/internal/logger"
	"github.com/yanizio/reviewhook/internal/settings"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect resolved settings",
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.Console(opts.logLevel)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get PATH",
			Short: "Print the value or table at a dotted path",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, _, err := opts.bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				if !s.Exists(args[0]) {
					return fmt.Errorf("%s is not set", args[0])
				}
				return printValue(cmd, s.Get(args[0]))
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Print the whole resolved tree as TOML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, _, err := opts.bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				b, err := s.TOML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			},
		},
		&cobra.Command{
			Use:   "sources",
			Short: "List merged sources, lowest precedence first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, _, err := opts.bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				for i, src := range s.Sources() {
					fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, src)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "root",
			Short: "Show the repository root and local override manifest",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				wd := opts.workDir
				if wd == "" {
					wd, _ = os.Getwd()
				}
				out := cmd.OutOrStdout()
				root, ok := settings.FindRepositoryRoot(wd)
				if !ok {
					fmt.Fprintln(out, "no repository root found")
					return nil
				}
				fmt.Fprintf(out, "root:     %s\n", root)
				manifest := filepath.Join(root, settings.ManifestName)
				if fi, err := os.Stat(manifest); err == nil && fi.Mode().IsRegular() {
					fmt.Fprintf(out, "manifest: %s [%s]\n", manifest, settings.ManifestSection)
				} else {
					fmt.Fprintln(out, "manifest: none")
				}
				return nil
			},
		},
	)
	return cmd
}

func printValue(cmd *cobra.Command, v any) error {
	out := cmd.OutOrStdout()
	if m, ok := v.(map[string]any); ok {
		b, err := settings.TOMLParser().Marshal(m)
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	}
	_, err := fmt.Fprintln(out, v)
	return err
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"torchkiln-cli/internal/config"
	"torchkiln-cli/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `torchkiln config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage torchkiln configuration",
		Long: `Manage torchkiln configuration.

Configuration is stored in:
  - Linux: ~/.config/torchkiln/config.cue
  - macOS: ~/Library/Application Support/torchkiln/config.cue
  - Windows: %APPDATA%\torchkiln\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{})
			if err != nil {
				return err
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	keyStyle := ValueStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	// The provider does not cache resolved paths; derive the config file
	// location from the standard config directory.
	if cfgDir, dirErr := config.ConfigDir(); dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	}
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("container_engine"), valueStyle.Render(cfg.ContainerEngine.String()))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("index_url"), valueStyle.Render(orDefault(cfg.IndexURL.String())))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("registry_url"), valueStyle.Render(orDefault(cfg.RegistryURL.String())))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("build.container_name"), valueStyle.Render(cfg.Build.ContainerName))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("build.image_repo"), valueStyle.Render(cfg.Build.ImageRepo))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("build.keep_container"), valueStyle.Render(fmt.Sprintf("%v", cfg.Build.KeepContainer)))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("build.remove_base_image"), valueStyle.Render(fmt.Sprintf("%v", cfg.Build.RemoveBaseImage)))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func orDefault(v string) string {
	if v == "" {
		return "(built-in default)"
	}
	return v
}

func initConfig(app *App) error {
	if err := config.CreateDefaultConfig(); err != nil {
		return err
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Fprintln(app.stdout, SuccessStyle.Render("Configuration ready: ")+cfgPath)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}

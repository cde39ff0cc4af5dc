// ABOUTME: CLI commands for viewing and editing the configuration.
// ABOUTME: Covers source roots, export dir, data dir, timezone, and fields.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nmoreno/salud/internal/config"
)

var (
	cfgAccRoot   string
	cfgFitRoot   string
	cfgExportDir string
	cfgDataDir   string
	cfgTimezone  string
	cfgFields    []string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change settings",
	Long: `View or change settings: source directories, export directory,
data directory, timezone, and the exported field selection.

COMMANDS:

  show        Print the current configuration
  set         Change one or more settings

Configuration is stored at ~/.config/salud/config.json.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint)

		fmt.Printf("%s\n\n", faint.Sprintf("config: %s", config.GetConfigPath()))

		fmt.Printf("acc-root:   %s\n", orUnset(cfg.GetAccRoot()))
		fmt.Printf("fit-root:   %s\n", orUnset(cfg.GetFitRoot()))
		fmt.Printf("export-dir: %s\n", cfg.GetExportDir())
		fmt.Printf("data-dir:   %s\n", cfg.GetDataDir())
		tz := cfg.Timezone
		if tz == "" {
			tz = config.DefaultTimezone
		}
		fmt.Printf("timezone:   %s\n", tz)
		fmt.Printf("fields:     %s\n", strings.Join(cfg.GetFields(), ","))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more settings",
	Long: `Change one or more settings and save the configuration.

EXAMPLES:

  salud config set --acc-root ~/salud/glucosa --fit-root ~/salud/fit/Takeout/Fit
  salud config set --timezone America/Argentina/Buenos_Aires
  salud config set --fields date,datetime,glucose_mg_dl,steps`,
	RunE: func(cmd *cobra.Command, args []string) error {
		changed := false
		if cmd.Flags().Changed("acc-root") {
			cfg.AccRoot = cfgAccRoot
			changed = true
		}
		if cmd.Flags().Changed("fit-root") {
			cfg.FitRoot = cfgFitRoot
			changed = true
		}
		if cmd.Flags().Changed("export-dir") {
			cfg.ExportDir = cfgExportDir
			changed = true
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = cfgDataDir
			changed = true
		}
		if cmd.Flags().Changed("timezone") {
			cfg.Timezone = cfgTimezone
			if _, err := cfg.Location(); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", cfgTimezone, err)
			}
			changed = true
		}
		if cmd.Flags().Changed("fields") {
			cfg.Fields = cfgFields
			changed = true
		}

		if !changed {
			color.Yellow("Nothing to change. See 'salud config set --help'.")
			return nil
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Configuration saved")
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return color.New(color.Faint).Sprint("(not set)")
	}
	return s
}

func init() {
	configSetCmd.Flags().StringVar(&cfgAccRoot, "acc-root", "", "directory with accuchek_*.json exports")
	configSetCmd.Flags().StringVar(&cfgFitRoot, "fit-root", "", "Google Fit Takeout root directory")
	configSetCmd.Flags().StringVar(&cfgExportDir, "export-dir", "", "default directory for exports")
	configSetCmd.Flags().StringVar(&cfgDataDir, "data-dir", "", "directory for the SQLite database")
	configSetCmd.Flags().StringVar(&cfgTimezone, "timezone", "", "IANA timezone for reading timestamps")
	configSetCmd.Flags().StringSliceVar(&cfgFields, "fields", nil, "columns for markdown/csv exports")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wayfinder",
	Short: "Wayfinder guides people through a building with an assistive robot",
	Long: `Wayfinder plans accessible routes over a building map and walks users there,
holding their hand. Letting go of the hand stops the robot at any time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
		if cmd.Flags().Changed("map") {
			cfg.MapPath, _ = cmd.Flags().GetString("map")
		}
		if cmd.Flags().Changed("users") {
			cfg.UsersPath, _ = cmd.Flags().GetString("users")
		}
		level := cfg.LogLevel
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = "debug"
		}
		logger = logging.New(logging.Parse(level))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "wayfinder.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("map", "", "Map file, overrides map_path")
	rootCmd.PersistentFlags().String("users", "", "Users file or database, overrides users_path")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

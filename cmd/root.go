package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wayseat/wayseat/internal/config"
	"github.com/wayseat/wayseat/internal/logger"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "wayseat",
		Short: "Wayseat - pollable Wayland seat input",
		Long: `Wayseat discovers the input seats a Wayland compositor advertises and
exposes their keys, buttons, cursor axes and scroll axes as pollable
controls, the way a game's controller interface consumes them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config.SetConfigPath(configPath)
			}
			if err := config.Init(); err != nil {
				return err
			}
			if logLevel != "" {
				logger.SetLevel(logLevel)
			} else if lvl := config.Get().Logging.LogLevel; lvl != "" {
				logger.SetLevel(lvl)
			}
			return nil
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

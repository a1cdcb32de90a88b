// Package cmd wires the typecodec demonstration CLI: cobra for command
// dispatch, config.Load for environment/file-driven settings. It is a
// thin driver over internal/codec and internal/store, not where the
// codec logic lives.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solatis/typecodec/cmd/typecodec/config"
)

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "typecodec",
	Short: "typecodec exercises the typed value codec layer from the command line",
	Long:  `typecodec encodes, decodes, and persists row-map cells through the typed value codec layer.`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if dbURL != "" {
			loaded.DBURL = dbURL
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		if logFormat != "" {
			loaded.LogFormat = logFormat
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")

	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(slugidCmd)
	rootCmd.AddCommand(storeCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

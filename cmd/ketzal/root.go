package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ketzal",
	Short: "Embedded HTTP/1.1 server",
	Long: `ketzal runs a demo application on top of the embedded HTTP/1.1 server:
a few routes, the bundled middlewares and Prometheus metrics.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a non-zero code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file path")
	rootCmd.PersistentFlags().StringSlice("env", []string{".env"}, "dotenv files to load")
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("dev", false, "human-friendly console logging")
}

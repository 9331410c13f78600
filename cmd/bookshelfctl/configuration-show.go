package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show bookshelf configuration attributes and their sources",
	Long: `Show bookshelf configuration attributes and their sources.

Values come from the built-in defaults, the config file and BOOKSHELF_*
environment variables, in that order of precedence. A running server only
sees the values that were in place when it started.

Config file location: /etc/bookshelf/bookshelf.yml (or BOOKSHELF_CONFIG_PATH)

Example:
  bookshelfctl configuration show
  bookshelfctl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := showConfiguration(os.Stdout, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

var configurationCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the bookshelf configuration",
	Long: `Validate the configuration the server would start with, including the
environment variables it requires.

Example:
  bookshelfctl configuration check`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkConfiguration(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration is invalid: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationCmd.AddCommand(configurationCheckCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(w io.Writer, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch output {
	case "json":
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, jsonOutput)
		return err
	case "text", "":
		_, err = fmt.Fprint(w, cfg.FormatText())
		return err
	}
	return fmt.Errorf("unknown output format %q", output)
}

func checkConfiguration(w io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Config file: %s\n", cfg.ConfigFilePath())

	if err := cfg.Validate(); err != nil {
		return err
	}
	if config.TokenSecret() == "" {
		return fmt.Errorf("%s environment variable is required", config.EnvTokenSecret)
	}

	_, _ = fmt.Fprintln(w, "Configuration is valid")
	return nil
}

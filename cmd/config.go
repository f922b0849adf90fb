package cmd

import (
	"fmt"
	"os"

	"audio-segment-downloader/infrastructure/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long: `Inspect the configuration in effect.

Examples:
  audio-segment-downloader config show
  audio-segment-downloader config path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long:  `Print the configuration after defaults are applied to the config file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfigShowWithDependencies(cfg, DefaultOutput)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location and whether it exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfigPathWithDependencies(cfgFile, DefaultOutput)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// RunConfigShowWithDependencies writes cfg as YAML
func RunConfigShowWithDependencies(c *config.Config, out OutputWriter) error {
	if c == nil {
		c = config.Default()
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// RunConfigPathWithDependencies reports where configuration is read from
func RunConfigPathWithDependencies(path string, out OutputWriter) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "%s (not found, using defaults)\n", path)
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	fmt.Fprintln(out, path)
	return nil
}

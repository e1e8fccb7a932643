package cmd

import (
	"fmt"

	"github.com/HamStudy/logview/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration logview would run with after merging defaults,
LOGVIEW_* environment variables and config.yaml.`,
	Example: `
# Show the effective configuration
logview config

# Write it to config.yaml in the config directory
logview config --init
  `,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, loader, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		file := config.FromCore(cfg)
		file.Filters = loader.Get().Filters

		if initFile, _ := cmd.Flags().GetBool("init"); initFile {
			loader.Set(file)
			if err := loader.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", loader.Path())
			return nil
		}

		data, err := yaml.Marshal(file)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", loader.Path(), data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().Bool("init", false, "Write the effective configuration to config.yaml")
}

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  tubelens paths`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config directory: %s\n", config.ConfigDir)
		fmt.Printf("Data directory: %s\n", config.DataDir)
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("Config file: %s\n", filepath.Join(config.ConfigDir, "config.toml"))
		fmt.Printf("Prompt file: %s\n", filepath.Join(config.ConfigDir, "prompt.txt"))
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

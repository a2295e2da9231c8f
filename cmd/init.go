package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jmurray2011/sumoknife/internal/output"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sumoknife configuration",
	Long: `Create default configuration and history files.

Creates platform-appropriate config files:
  Linux/macOS: ~/.sumoknife/config.yaml, ~/.sumoknife_history.json
  Windows:     %USERPROFILE%\.sumoknife\config.yaml, %USERPROFILE%\.sumoknife_history.json

Examples:
  # Create default config (won't overwrite existing)
  sumoknife init

  # Force overwrite existing config
  sumoknife init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(home, ".sumoknife", "config.yaml")
	historyPath := filepath.Join(home, ".sumoknife_history.json")

	if err := createFileIfNotExists(configPath, generateDefaultConfig(home), initForce); err != nil {
		return err
	}
	if err := createFileIfNotExists(historyPath, "[]", initForce); err != nil {
		return err
	}

	fmt.Println("Initialized sumoknife configuration:")
	fmt.Printf("  Config:  %s\n", configPath)
	fmt.Printf("  History: %s\n", historyPath)
	fmt.Printf("\nAdd a connection with 'sumoknife connections add' or edit %s.\n", configPath)

	return nil
}

func generateDefaultConfig(home string) string {
	var metadataDir, historyFilePath string

	if runtime.GOOS == "windows" {
		metadataDir = filepath.Join(home, ".sumoknife", "metadata")
		historyFilePath = filepath.Join(home, ".sumoknife_history.json")
	} else {
		metadataDir = "~/.sumoknife/metadata"
		historyFilePath = "~/.sumoknife_history.json"
	}

	return fmt.Sprintf(`# sumoknife configuration

# Saved connections. The endpoint is the API host of your deployment.
connections: {}
#   prod:
#     access_id: suABCDEFGHIJKL
#     access_key: your-access-key
#     endpoint: api.us2.sumologic.com
# default_connection: prod

# Results format, see 'sumoknife formats'
results_format: %s

# Timezone named windows and wall clock times are read in
timezone: UTC

# Default search window, see 'sumoknife windows'
window: Last 15 Minutes

# API settings
timeout: 15s
poll_interval: 1s
batch_delay: 600ms
# rate_limit: 4   # requests per second, 0 for unlimited

# Metadata cache, one directory per access id
# metadata_dir: %s

# log_level: info

# History settings
history_max: 100
# history_file: %s
`, output.DefaultFormat, metadataDir, historyFilePath)
}

func createFileIfNotExists(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("  %s already exists (use --force to overwrite)\n", path)
			return nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("  Created %s\n", path)
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrorpool/mirrorpool/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mirrorpool configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and persists it immediately.

Keys use dot notation, e.g.:
  mirrorpool config set filehost.base_url https://host.example
  mirrorpool config set filehost.api_key  <key>
  mirrorpool config set index.ttl_seconds 300`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	settings := file.LoadSettings(configStore)

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[drive]")
	cmd.Printf("  API Key: %s\n", maskOrUnset(settings.DriveAPIKey))
	cmd.Printf("  OAuth Token: %s\n", maskOrUnset(settings.DriveOAuthToken))
	cmd.Println()

	cmd.Println("[filehost]")
	cmd.Printf("  Base URL: %s\n", orUnset(settings.FilehostBaseURL))
	cmd.Printf("  API Key: %s\n", maskOrUnset(settings.FilehostAPIKey))
	cmd.Printf("  URL Template: %s\n", orUnset(settings.FilehostURLTemplate))
	cmd.Println()

	cmd.Println("[relay]")
	cmd.Printf("  Index TTL: %s\n", settings.IndexTTL)
	cmd.Printf("  Upload Timeout: %s\n", settings.UploadTimeout)
	cmd.Printf("  Listen Address: %s\n", settings.ListenAddr)
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], args[1]
	if err := configStore.Set(key, coerceValue(value)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if isSecretKey(key) {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

// coerceValue stores numeric and boolean literals with their natural TOML
// types so typed getters see them.
func coerceValue(value string) any {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}

func isSecretKey(key string) bool {
	return strings.Contains(key, "api_key") || strings.Contains(key, "token") ||
		strings.Contains(key, "secret")
}

func maskOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

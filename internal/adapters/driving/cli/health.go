package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show relay readiness",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if healthChecker == nil {
		return errors.New("health service not configured")
	}

	report := healthChecker.Check(context.Background())

	credential := "ok"
	if !report.CredentialLoaded {
		credential = "not loaded"
	}
	cmd.Printf("Source credential: %s\n", credential)
	if report.IndexEntries == 0 && report.IndexAge == 0 {
		cmd.Println("Destination index: empty (not fetched yet)")
	} else {
		cmd.Printf("Destination index: %d entries, fetched %s ago\n",
			report.IndexEntries, report.IndexAge.Round(time.Second))
	}
	return nil
}

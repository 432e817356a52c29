package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the destination index cache",
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Discard the cached destination listing",
	Long: `Discards the cached destination file listing so the next duplicate
check fetches a fresh one. Useful after uploading to the destination
outside of mirrorpool.`,
	RunE: runCacheInvalidate,
}

func init() {
	cacheCmd.AddCommand(cacheInvalidateCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheInvalidate(cmd *cobra.Command, _ []string) error {
	if relayer == nil {
		return errors.New("relay service not configured")
	}

	relayer.InvalidateIndex()
	cmd.Println("Destination index invalidated.")
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driving"
)

var mirrorForceFresh bool

var mirrorCmd = &cobra.Command{
	Use:   "mirror <handle>",
	Short: "Mirror one source file to the destination",
	Long: `Mirrors the file identified by the given source handle into the
configured file host.

If a matching file already exists at the destination, no bytes are
transferred and its public URL is printed instead. Use --fresh to skip
the duplicate check and always transfer.`,
	Args: cobra.ExactArgs(1),
	RunE: runMirror,
}

func init() {
	mirrorCmd.Flags().BoolVar(&mirrorForceFresh, "fresh", false, "skip the duplicate check and always transfer")
	rootCmd.AddCommand(mirrorCmd)
}

func runMirror(cmd *cobra.Command, args []string) error {
	if relayer == nil {
		return errors.New("relay service not configured")
	}

	handle := args[0]
	cmd.Printf("Mirroring %s...\n", handle)

	outcome := relayer.Mirror(context.Background(), driving.MirrorRequest{
		Handle:     domain.FileHandle(handle),
		ForceFresh: mirrorForceFresh,
	})

	switch outcome.Status {
	case domain.StatusAlreadyExists:
		cmd.Printf("Already at destination (%s match): %s\n", outcome.MatchKind, outcome.DestinationURL)
	case domain.StatusSuccess:
		cmd.Printf("Mirrored %s (%d bytes)\n", outcome.FileName, outcome.SizeBytes)
		cmd.Printf("Public URL: %s\n", outcome.DestinationURL)
	case domain.StatusFailed:
		return fmt.Errorf("mirror failed: %s", outcome.ErrorMessage)
	}

	return nil
}

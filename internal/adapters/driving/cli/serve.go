package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorpool/mirrorpool/internal/adapters/driving/api"
)

var serveListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay HTTP API",
	Long: `Starts the relay HTTP API and blocks until interrupted.

The listen address comes from the config file (server.listen_addr) and
can be overridden with --listen.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if relayer == nil || healthChecker == nil {
		return errors.New("relay service not configured")
	}

	addr := serveListenAddr
	if addr == "" && configStore != nil {
		addr = configStore.GetString("server.listen_addr")
	}
	if addr == "" {
		addr = "127.0.0.1:8940"
	}

	server := api.New(addr, relayer, healthChecker)
	if err := server.Start(); err != nil {
		return err
	}
	cmd.Printf("Listening on %s. Press Ctrl+C to stop.\n", server.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	cmd.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Stop(ctx)
}

package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextreadapp/nextread-client/internal/logger"
	"github.com/nextreadapp/nextread-client/internal/stub"
)

func newStubServerCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "stub-server",
		Short: "Run an in-memory NextRead backend for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(logger.Config{
				Writer:      os.Stderr,
				Environment: "development",
				Level:       logger.ParseLevel("debug"),
			})

			server := stub.New(log.Logger)
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server,
				ReadHeaderTimeout: 10 * time.Second,
			}

			log.Info("stub backend listening", "addr", addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("stub server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/martijn/clientbook/internal/api"
	"github.com/martijn/clientbook/internal/bridge"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the socket bridge and, if enabled, the API server",
	Long: `Start the local socket bridge used by the desktop front end.

When api_enabled is set, the REST API is served alongside it. Both share
one store, which is opened on the first request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cfg, logger)
		if err != nil {
			return err
		}
		defer services.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bridgeServer := bridge.NewServer(cfg.SocketPath, bridge.NewClientProcessor(services.ClientService), logger)
		if err := bridgeServer.Listen(); err != nil {
			return err
		}

		errs := make(chan error, 2)
		go func() {
			errs <- bridgeServer.Serve(ctx)
		}()
		running := 1

		var apiServer *api.Server
		if cfg.APIEnabled {
			apiServer = api.NewServer(cfg, services.ClientService, services.AuthService, logger)
			go func() {
				errs <- apiServer.Start()
			}()
			running++
		}

		logger.Info("server is ready", "socket", cfg.SocketPath, "api", cfg.APIEnabled)

		var runErr error
		select {
		case runErr = <-errs:
			running--
			stop()
		case <-ctx.Done():
			logger.Info("shutting down gracefully")
		}

		if apiServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := apiServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
				runErr = fmt.Errorf("api shutdown error: %w", err)
			}
		}

		for ; running > 0; running-- {
			if err := <-errs; err != nil && runErr == nil {
				runErr = err
			}
		}

		if runErr != nil {
			return fmt.Errorf("server error: %w", runErr)
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

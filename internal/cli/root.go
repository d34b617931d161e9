package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/infrastructure/memory"
	"github.com/martijn/clientbook/internal/infrastructure/sqlite"
	"github.com/martijn/clientbook/internal/logging"
	"github.com/martijn/clientbook/pkg/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clientbook",
	Short: "Clientbook - client records for small businesses",
	Long: `Clientbook keeps a local book of client records.

It provides:
- Client create, list, lookup, update and delete
- A SQLite store opened lazily on first use
- A local socket bridge for the desktop front end
- An optional REST API with bearer token authentication`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, logFile, err = logging.New(logging.Config{
			Service: "clientbook",
			Version: Version,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			File:    cfg.LogFile,
		})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		logger.Debug("configuration loaded", "config", cfg.ConfigPath, "backend", cfg.Backend)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultConfigPath()+")")
}

// Services holds the shared handle and the services built on it.
type Services struct {
	Handle        *repository.Handle
	ClientService *service.ClientService
	AuthService   *service.AuthService
	Logger        *slog.Logger
}

// initServices wires the services for the configured backend. The store is
// not opened until the first command needs it.
func initServices(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var open repository.Opener
	switch cfg.Backend {
	case config.BackendSQLite:
		open = sqlite.Opener(cfg.DBPath)
	case config.BackendMemory:
		open = memory.Opener()
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}

	handle := repository.NewHandle(open)
	return &Services{
		Handle:        handle,
		ClientService: service.NewClientService(handle, logger),
		AuthService:   service.NewAuthService(handle, cfg.JWTSecretKey, cfg.JWTAlgorithm),
		Logger:        logger,
	}, nil
}

// Close releases the store if it was opened.
func (s *Services) Close() error {
	return s.Handle.Close()
}

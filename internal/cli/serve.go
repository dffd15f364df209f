package cli

import (
	"fmt"

	"jobfit/internal/config"
	"jobfit/internal/errors"
	"jobfit/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for fit analysis sessions",
	Long: `Start an HTTP server that provides REST API endpoints for fit analysis.

Available endpoints:
- POST /analyze: Run a full fit analysis session
- POST /sessions/{id}/revisions: Revise a session's summary with feedback
- GET /sessions/{id}: Fetch the report for a live or persisted session
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.mode", "tls-mode")
	bindFlag("server.tls.certfile", "cert-file")
	bindFlag("server.tls.keyfile", "key-file")
	bindFlag("server.tls.cafile", "ca-file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Validate TLS configuration after applying overrides
	tempConfig := &config.Config{Server: cfg.Server}
	if err := tempConfig.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: int64(cfg.App.MaxFileSize),
		RateLimit:      &cfg.Server.RateLimit,
	}

	// Hot-reload configured prompt template files while the server runs
	watcher, err := startPromptWatcher(cfg, logger)
	if err != nil {
		return err
	}
	if watcher != nil {
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.LogError(err, "Failed to stop prompt file watcher")
			}
		}()
	}

	srv, err := server.NewServer(cfg, serverCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}

// startPromptWatcher begins watching the prompt template files the config
// names. Returns nil without error when no prompt files are configured.
func startPromptWatcher(cfg *config.Config, logger *errors.Logger) (*config.PromptWatcher, error) {
	watcher := config.NewPromptWatcher(cfg, 0, logger)
	if watcher == nil {
		return nil, nil
	}
	if err := watcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start prompt file watcher: %w", err)
	}
	return watcher, nil
}

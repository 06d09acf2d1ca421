package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dochub/dochub/internal/api"
	"github.com/dochub/dochub/internal/config"
	"github.com/dochub/dochub/internal/engine"
	"github.com/dochub/dochub/internal/logging"
	"github.com/dochub/dochub/internal/ws"
)

var servePort int
var serveDevMode bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the DocHub table engine API. The server accepts roster uploads,
serves paginated table reads and broadcasts table lifecycle events over
WebSocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logger, err := logging.Setup(level, cfg.Logging.Directory)
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		devMode := serveDevMode || cfg.Server.DevMode

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hub := ws.NewHub(logger)
		eng := engine.New(cfg, logger, engine.WithEvents(hub))
		if err := eng.Connect(ctx); err != nil {
			return err
		}
		defer eng.Close()

		hub.SetTableListProvider(func() ([]byte, error) {
			tables, err := eng.Tables(context.Background())
			if err != nil {
				return nil, err
			}
			return json.Marshal(tables)
		})
		go hub.Run()

		srv := api.New(eng, logger, port,
			api.WithHub(hub),
			api.WithDevMode(devMode),
		)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		fmt.Fprintf(os.Stderr, "DocHub API: http://localhost:%d\n", port)

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
		case <-ctx.Done():
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8330, "port for the API server")
	serveCmd.Flags().BoolVar(&serveDevMode, "dev", false, "enable CORS for development mode")
	rootCmd.AddCommand(serveCmd)
}

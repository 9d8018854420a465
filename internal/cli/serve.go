package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Cherwin23/HR-Assistant/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HR Assistant HTTP server",
	Long: `Start the HR Assistant HTTP server.
Serves /ask, /reset, /clear-all and /health until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		log.Close()
		return err
	}
	defer a.close()

	srv, err := server.NewServer(server.Options{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, a.assistant, log.GetZerolog())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		zlog := log.GetZerolog()
		zlog.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		return srv.Stop()
	}
}

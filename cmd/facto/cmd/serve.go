package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/facto-ocr/facto/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the extraction API",
	Long: `Start an HTTP server exposing the extraction pipeline.

Endpoints:
  POST /extract     - Extract one document from JSON {"text": ...}
  POST /extract/pdf - Extract from an uploaded PDF (multipart "file")
  POST /batch       - Extract many documents from JSON {"texts": [...]}
  GET  /ws/batch    - WebSocket batch extraction with progress frames
  GET  /health      - Health check
  GET  /metrics     - Prometheus metrics

Examples:
  facto serve
  facto serve --port 8080
  facto serve --host 0.0.0.0 --port 3000 --cors-origin https://app.example.com`,
	SilenceUsage: true,
	RunE:         runServeCommand,
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyPipelineFlags(cfg, cmd)

	host := cfg.Server.Host
	if cmd.Flags().Changed("host") {
		host, _ = cmd.Flags().GetString("host")
	}
	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}
	corsOrigin := cfg.Server.CORSOrigin
	if cmd.Flags().Changed("cors-origin") {
		corsOrigin, _ = cmd.Flags().GetString("cors-origin")
	}
	maxUpload := cfg.Server.MaxUploadMB
	if cmd.Flags().Changed("max-upload-size") {
		maxUpload, _ = cmd.Flags().GetInt("max-upload-size")
	}
	timeout := cfg.Server.TimeoutSec
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetInt("timeout")
	}
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if cmd.Flags().Changed("shutdown-timeout") {
		shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
	}

	p, err := cfg.BuildPipeline()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	srv, err := server.NewServer(server.Config{
		Host:            host,
		Port:            port,
		CORSOrigin:      corsOrigin,
		MaxUploadMB:     int64(maxUpload),
		TimeoutSec:      timeout,
		ShutdownTimeout: shutdownTimeout,
	}, p)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 25, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 60, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().String("locale", "", "locale table to use (fr, en)")
	serveCmd.Flags().String("locale-file", "", "custom locale YAML file")
	serveCmd.Flags().Int("threshold", 0, "minimum score for product lines")
	serveCmd.Flags().Float64("vat-rate", 0, "default VAT rate percent for lines without one")
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appsegment "audio-segment-downloader/application/segment"
	"audio-segment-downloader/infrastructure/config"
	"audio-segment-downloader/infrastructure/filesystem"
	"audio-segment-downloader/infrastructure/web"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	Long: `Serve the download form on / and the /download endpoint.

The listen address defaults to server.addr from the config file.

Example:
  audio-segment-downloader serve --addr 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	return RunServe(cmd.Context(), cfg, addr, logger)
}

// RunServe starts the web interface on addr and blocks until ctx is cancelled
// or SIGINT/SIGTERM is received
func RunServe(ctx context.Context, c *config.Config, addr string, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return ServeWithListener(ctx, c, listener, log)
}

// ServeWithListener serves on an existing listener (for testing)
func ServeWithListener(ctx context.Context, c *config.Config, listener net.Listener, log zerolog.Logger) error {
	fetcher, trimmer := newAdapters(c)
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := trimmer.VerifyInstalled(verifyCtx); err != nil {
		log.Warn().Err(err).Msg("ffmpeg not available, downloads will fail")
	}
	cancel()

	service := appsegment.NewService(
		fetcher,
		trimmer,
		filesystem.NewChecker(),
		c.Paths.WorkDirectory,
		appsegment.WithAudioFormat(fetcher.AudioFormat()),
		appsegment.WithLogger(log),
	)

	return serve(ctx, service, c.Server, listener, log)
}

// serve wires a producer behind the router and runs until ctx is done
func serve(ctx context.Context, producer web.Producer, sc config.ServerConfig, listener net.Listener, log zerolog.Logger) error {
	pool, err := web.NewPipelinePool(sc.MaxConcurrent)
	if err != nil {
		return fmt.Errorf("failed to create pipeline pool: %w", err)
	}
	defer pool.Release()

	gin.SetMode(gin.ReleaseMode)
	handler := web.NewHandler(
		producer,
		sc.OutputDirectory,
		web.WithPool(pool),
		web.WithKeepOutputs(sc.ShouldKeepOutputs()),
		web.WithHandlerLogger(log),
	)

	server := &http.Server{
		Handler:           web.NewRouter(handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	log.Info().
		Str("addr", listener.Addr().String()).
		Int("max_concurrent", sc.MaxConcurrent).
		Msg("web interface listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

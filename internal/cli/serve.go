package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/server"
	"github.com/mgpai22/shortscribe/internal/youtube"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transcript form over HTTP",
	Long: `Start an HTTP server with a small web form and two endpoints:

  POST /generate   JSON transcripts for a channel
  POST /download   the same transcripts as shorts_transcripts.txt
  GET  /health     liveness check

Both POST endpoints accept channel_url, language and max_shorts as form
fields or as a JSON body.

Examples:
  shortscribe serve
  shortscribe serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.ServerAddr
	if cmd.Flags().Changed("addr") {
		addr, _ = cmd.Flags().GetString("addr")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := newSegmentSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	translator, err := newTranslator(ctx, cfg)
	if err != nil {
		return err
	}

	lister := youtube.NewShortsLister(cfg.YtdlpPath, cfg.YtdlpTimeout, logger)
	runner := pipeline.NewRunner(lister, pipeline.NewProcessor(source, logger), logger)

	srv := server.New(runner, server.Options{
		DefaultLanguage:  cfg.Language,
		DefaultMaxShorts: cfg.MaxShorts,
		Translator:       translator,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

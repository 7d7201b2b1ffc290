// Package server exposes the channel batch over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/mgpai22/shortscribe/internal/logging"
	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/translate"
)

const DownloadFileName = "shorts_transcripts.txt"

//go:embed static/index.html
var staticFS embed.FS

// interface for the batch operation behind /generate and /download
type BatchRunner interface {
	Run(ctx context.Context, req pipeline.Request) *pipeline.Report
}

type Options struct {
	DefaultLanguage  string
	DefaultMaxShorts int
	// optional; transcripts are translated after each run when set
	Translator translate.Translator
}

type Server struct {
	app        *fiber.App
	runner     BatchRunner
	translator translate.Translator
	language   string
	maxShorts  int
	logger     *logging.Logger
}

func New(runner BatchRunner, opts Options, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = caption.DefaultLanguage
	}
	if opts.DefaultMaxShorts <= 0 {
		opts.DefaultMaxShorts = pipeline.DefaultMaxShorts
	}

	s := &Server{
		runner:     runner,
		translator: opts.Translator,
		language:   opts.DefaultLanguage,
		maxShorts:  opts.DefaultMaxShorts,
		logger:     logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "shortscribe",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(s.logRequests)

	s.app.Get("/", s.index)
	s.app.Get("/health", s.health)
	s.app.Post("/generate", s.generate)
	s.app.Post("/download", s.download)

	return s
}

// exposed for tests
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.logger.Infow("Listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debugw("Request",
		"id", c.Locals(requestid.ConfigDefault.ContextKey),
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	} else {
		s.logger.Errorw("Request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mgpai22/shortscribe/internal/export"
	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/translate"
)

const msgNoChannelURL = "No channel URL provided."

type batchForm struct {
	ChannelURL string `json:"channel_url"`
	Language   string `json:"language"`
	MaxShorts  *int   `json:"max_shorts"`
}

type generateResponse struct {
	Error       *string           `json:"error"`
	Warning     *string           `json:"warning"`
	ChannelURL  string            `json:"channel_url"`
	MaxShorts   int               `json:"max_shorts"`
	Transcripts []pipeline.Result `json:"transcripts"`
}

func (s *Server) index(c *fiber.Ctx) error {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		return err
	}
	c.Type("html")
	return c.Send(page)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// accepts url-encoded or multipart forms and JSON bodies
func (s *Server) parseRequest(c *fiber.Ctx) (pipeline.Request, error) {
	var form batchForm
	if c.Is("json") {
		if err := json.Unmarshal(c.Body(), &form); err != nil {
			return pipeline.Request{}, fiber.NewError(http.StatusBadRequest, "invalid JSON body")
		}
	} else {
		form.ChannelURL = c.FormValue("channel_url")
		form.Language = c.FormValue("language")
		if v := strings.TrimSpace(c.FormValue("max_shorts")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return pipeline.Request{}, fiber.NewError(http.StatusBadRequest, "max_shorts must be an integer")
			}
			form.MaxShorts = &n
		}
	}

	req := pipeline.Request{
		ChannelURL: form.ChannelURL,
		Language:   strings.TrimSpace(form.Language),
		MaxShorts:  s.maxShorts,
	}
	if req.Language == "" {
		req.Language = s.language
	}
	if form.MaxShorts != nil {
		req.MaxShorts = *form.MaxShorts
	}
	return req, nil
}

func (s *Server) run(c *fiber.Ctx) (*pipeline.Report, error) {
	req, err := s.parseRequest(c)
	if err != nil {
		return nil, err
	}

	report := s.runner.Run(c.UserContext(), req)
	if report.Failed() || s.translator == nil {
		return report, nil
	}

	translated, err := translate.TranslateResults(c.UserContext(), s.translator, report.Results)
	if err != nil {
		s.logger.Warnw("Translation failed, serving original transcripts",
			"run", report.RunID,
			"error", err,
		)
	}
	report.Results = translated
	return report, nil
}

func statusFor(f *pipeline.Failure) int {
	switch f.Kind {
	case pipeline.FailureInvalidRequest:
		return http.StatusBadRequest
	case pipeline.FailureNoVideos:
		return http.StatusNotFound
	case pipeline.FailureDiscovery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) generate(c *fiber.Ctx) error {
	report, err := s.run(c)
	if err != nil {
		return err
	}

	resp := generateResponse{
		ChannelURL:  report.ChannelURL,
		MaxShorts:   report.MaxShorts,
		Transcripts: report.Results,
	}
	if resp.Transcripts == nil {
		resp.Transcripts = []pipeline.Result{}
	}

	status := http.StatusOK
	if report.Failed() {
		msg := report.Failure.Error()
		resp.Error = &msg
		status = statusFor(report.Failure)
	}
	if report.Warning != "" {
		resp.Warning = &report.Warning
	}

	return c.Status(status).JSON(resp)
}

func (s *Server) download(c *fiber.Ctx) error {
	report, err := s.run(c)
	if err != nil {
		return err
	}

	if report.Failed() {
		msg := report.Failure.Error()
		if report.Failure.Kind == pipeline.FailureInvalidRequest {
			msg = msgNoChannelURL
		}
		return c.Status(statusFor(report.Failure)).SendString(msg)
	}

	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+DownloadFileName)
	c.Type("txt", "utf-8")
	return c.SendString(export.RenderText(report.Results))
}

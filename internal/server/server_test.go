package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// returns a canned report and records the request it was given
type fakeRunner struct {
	report *pipeline.Report
	got    pipeline.Request
}

func (r *fakeRunner) Run(ctx context.Context, req pipeline.Request) *pipeline.Report {
	r.got = req
	return r.report
}

func successReport() *pipeline.Report {
	return &pipeline.Report{
		RunID:      "abcd1234",
		ChannelURL: "https://www.youtube.com/@someone",
		MaxShorts:  2,
		Results: []pipeline.Result{
			pipeline.NewResult(1, pipeline.VideoRef{ID: "a", Title: "First"}, pipeline.Transcribed("hello world")),
			pipeline.NewResult(2, pipeline.VideoRef{ID: "b"}, pipeline.Failed("Transcripts are disabled for this video.")),
		},
	}
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	s := New(&fakeRunner{}, Options{}, nil)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))
}

func TestIndexServesForm(t *testing.T) {
	s := New(&fakeRunner{}, Options{}, nil)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, readBody(t, resp), `name="channel_url"`)
}

func TestGenerate(t *testing.T) {
	runner := &fakeRunner{report: successReport()}
	s := New(runner, Options{}, nil)

	resp := postForm(t, s, "/generate", url.Values{
		"channel_url": {"https://www.youtube.com/@someone"},
		"max_shorts":  {"2"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "en", runner.got.Language)
	assert.Equal(t, 2, runner.got.MaxShorts)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
	assert.Nil(t, body["error"])
	assert.Nil(t, body["warning"])
	assert.Equal(t, "https://www.youtube.com/@someone", body["channel_url"])
	assert.EqualValues(t, 2, body["max_shorts"])

	transcripts := body["transcripts"].([]any)
	require.Len(t, transcripts, 2)
	first := transcripts[0].(map[string]any)
	assert.Equal(t, "hello world", first["transcript"])
	assert.Equal(t, true, first["has_transcript"])
	second := transcripts[1].(map[string]any)
	assert.Nil(t, second["transcript"])
	assert.Equal(t, "Transcripts are disabled for this video.", second["error"])
}

func TestGenerateDefaultsAndJSONBody(t *testing.T) {
	runner := &fakeRunner{report: successReport()}
	s := New(runner, Options{DefaultLanguage: "de", DefaultMaxShorts: 7}, nil)

	req := httptest.NewRequest(http.MethodPost, "/generate",
		strings.NewReader(`{"channel_url":"https://www.youtube.com/@x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "https://www.youtube.com/@x", runner.got.ChannelURL)
	assert.Equal(t, "de", runner.got.Language)
	assert.Equal(t, 7, runner.got.MaxShorts)

	req = httptest.NewRequest(http.MethodPost, "/generate",
		strings.NewReader(`{"channel_url":"x","language":"fr","max_shorts":0}`))
	req.Header.Set("Content-Type", "application/json")
	_, err = s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "fr", runner.got.Language)
	assert.Equal(t, 0, runner.got.MaxShorts)
}

func TestGenerateWarning(t *testing.T) {
	report := successReport()
	report.Results = report.Results[1:]
	report.Warning = pipeline.MsgNoTranscripts
	s := New(&fakeRunner{report: report}, Options{}, nil)

	resp := postForm(t, s, "/generate", url.Values{"channel_url": {"x"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
	assert.Equal(t, pipeline.MsgNoTranscripts, body["warning"])
}

func TestBadRequests(t *testing.T) {
	s := New(&fakeRunner{report: successReport()}, Options{}, nil)

	resp := postForm(t, s, "/generate", url.Values{"channel_url": {"x"}, "max_shorts": {"many"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "max_shorts must be an integer")

	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(`{"channel_url":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFailureStatuses(t *testing.T) {
	tests := []struct {
		name         string
		failure      *pipeline.Failure
		wantStatus   int
		wantDownload string
	}{
		{
			name:         "missing channel",
			failure:      &pipeline.Failure{Kind: pipeline.FailureInvalidRequest, Message: pipeline.MsgMissingChannel},
			wantStatus:   http.StatusBadRequest,
			wantDownload: "No channel URL provided.",
		},
		{
			name:         "no videos",
			failure:      &pipeline.Failure{Kind: pipeline.FailureNoVideos, Message: pipeline.MsgNoVideos},
			wantStatus:   http.StatusNotFound,
			wantDownload: pipeline.MsgNoVideos,
		},
		{
			name: "discovery error",
			failure: &pipeline.Failure{
				Kind:    pipeline.FailureDiscovery,
				Message: "Could not list Shorts for this channel",
				Err:     errors.New("yt-dlp exploded"),
			},
			wantStatus:   http.StatusBadGateway,
			wantDownload: "Could not list Shorts for this channel: yt-dlp exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{report: &pipeline.Report{MaxShorts: 50, Failure: tt.failure}}
			s := New(runner, Options{}, nil)

			resp := postForm(t, s, "/generate", url.Values{"channel_url": {"x"}})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var body map[string]any
			require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
			assert.Equal(t, tt.failure.Error(), body["error"])
			assert.Equal(t, []any{}, body["transcripts"])

			resp = postForm(t, s, "/download", url.Values{"channel_url": {"x"}})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantDownload, readBody(t, resp))
		})
	}
}

func TestDownload(t *testing.T) {
	s := New(&fakeRunner{report: successReport()}, Options{}, nil)

	resp := postForm(t, s, "/download", url.Values{"channel_url": {"https://www.youtube.com/@someone"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "attachment; filename=shorts_transcripts.txt", resp.Header.Get("Content-Disposition"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t,
		"Transcript 1:\nhello world\n\nTranscript 2:\nNo transcript available.\n",
		readBody(t, resp),
	)
}

// prefixes every transcript
type prefixTranslator struct{ err error }

func (p prefixTranslator) Translate(
	ctx context.Context,
	items []translate.TranslationItem,
) ([]translate.TranslationResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]translate.TranslationResult, len(items))
	for i, item := range items {
		out[i] = translate.TranslationResult{Index: item.Index, Text: "tr: " + item.Text}
	}
	return out, nil
}

func TestDownloadTranslated(t *testing.T) {
	s := New(&fakeRunner{report: successReport()}, Options{Translator: prefixTranslator{}}, nil)

	resp := postForm(t, s, "/download", url.Values{"channel_url": {"x"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Transcript 1:\ntr: hello world\n")
}

func TestTranslationFailureServesOriginals(t *testing.T) {
	s := New(&fakeRunner{report: successReport()}, Options{Translator: prefixTranslator{err: errors.New("quota")}}, nil)

	resp := postForm(t, s, "/download", url.Values{"channel_url": {"x"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Transcript 1:\nhello world\n")
}

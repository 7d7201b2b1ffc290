package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/mgpai22/shortscribe/internal/logging"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL           = "https://www.youtube.com"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRequestsPerSecond = 2.0

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// marks the start of the player response JSON in watch page HTML
	playerResponseMarker = "ytInitialPlayerResponse = "

	maxWatchPageBytes = 6 * 1024 * 1024
	maxTimedTextBytes = 2 * 1024 * 1024
)

type WatchPageOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	// optional; Timeout is ignored when set
	Client *http.Client
}

// reads caption tracks from the watch page player response
type WatchPageProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger
}

func NewWatchPageProvider(opts WatchPageOptions, logger *logging.Logger) *WatchPageProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultHTTPTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &WatchPageProvider{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	// "asr" = auto-generated
	Kind string `json:"kind"`
}

type timedText struct {
	Lines []struct {
		Text  string  `xml:",chardata"`
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
	} `xml:"text"`
}

func (p *WatchPageProvider) ListTracks(ctx context.Context, videoID string) ([]caption.Track, error) {
	watchURL := p.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	body, err := p.get(ctx, watchURL, maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	if bytes.Contains(body, []byte(`class="g-recaptcha"`)) {
		return nil, fmt.Errorf("watch page returned a captcha: %w", ErrRateLimited)
	}

	idx := bytes.Index(body, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var resp playerResponse
	if err := json.Unmarshal(jsonData, &resp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}

	if resp.Captions == nil {
		if s := resp.PlayabilityStatus; s != nil && s.Status != "" && s.Status != "OK" {
			reason := s.Reason
			if reason == "" {
				reason = s.Status
			}
			return nil, fmt.Errorf("%w: %s", ErrVideoUnavailable, reason)
		}
		return nil, caption.ErrTranscriptsDisabled
	}

	raw := resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(raw) == 0 {
		return nil, caption.ErrNoTracks
	}

	tracks := make([]caption.Track, 0, len(raw))
	for _, t := range raw {
		if t.BaseURL == "" || needsPoToken(t.BaseURL) {
			p.logger.Debugw("Skipping caption track",
				"video", videoID,
				"language", t.LanguageCode,
			)
			continue
		}
		origin := caption.OriginManual
		if t.Kind == "asr" {
			origin = caption.OriginGenerated
		}
		tracks = append(tracks, &timedTextTrack{
			provider: p,
			baseURL:  t.BaseURL,
			language: t.LanguageCode,
			origin:   origin,
		})
	}

	return tracks, nil
}

// tracks carrying exp=xpe only load in a browser
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

func (p *WatchPageProvider) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code %d", res.StatusCode)
	}

	return body, nil
}

type timedTextTrack struct {
	provider *WatchPageProvider
	baseURL  string
	language string
	origin   caption.Origin
}

func (t *timedTextTrack) LanguageCode() string { return t.language }

func (t *timedTextTrack) Origin() caption.Origin { return t.origin }

func (t *timedTextTrack) Fetch(ctx context.Context) ([]caption.Segment, error) {
	body, err := t.provider.get(ctx, t.baseURL, maxTimedTextBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	return parseTimedText(body)
}

func parseTimedText(body []byte) ([]caption.Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]caption.Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		segments = append(segments, caption.Segment{
			// entities arrive double escaped
			Text:     html.UnescapeString(line.Text),
			Start:    line.Start,
			Duration: line.Dur,
		})
	}
	return segments, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

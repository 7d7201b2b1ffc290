package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/mgpai22/shortscribe/internal/logging"
	"github.com/mgpai22/shortscribe/internal/subtitle"
	"golang.org/x/time/rate"
)

type YtdlpOptions struct {
	Path              string
	Timeout           time.Duration
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
}

// reads caption tracks from yt-dlp's video JSON
type YtdlpProvider struct {
	path    string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger
}

func NewYtdlpProvider(opts YtdlpOptions, logger *logging.Logger) *YtdlpProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = DefaultHTTPTimeout
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &YtdlpProvider{
		path:    opts.Path,
		timeout: opts.Timeout,
		client:  &http.Client{Timeout: opts.HTTPTimeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

type subtitleRendition struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

type videoInfo struct {
	ID                string                         `json:"id"`
	Subtitles         map[string][]subtitleRendition `json:"subtitles"`
	AutomaticCaptions map[string][]subtitleRendition `json:"automatic_captions"`
}

func (p *YtdlpProvider) ListTracks(ctx context.Context, videoID string) ([]caption.Track, error) {
	out, err := RunYtdlp(ctx, p.path, p.timeout,
		"-J",
		"--skip-download",
		"--no-warnings",
		"https://www.youtube.com/watch?v="+videoID,
	)
	if err != nil {
		return nil, err
	}

	tracks, err := p.tracksFromInfo(out)
	if err != nil {
		return nil, err
	}

	p.logger.Debugw("Listed caption tracks", "video", videoID, "tracks", len(tracks))
	return tracks, nil
}

func (p *YtdlpProvider) tracksFromInfo(data []byte) ([]caption.Track, error) {
	var info videoInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp JSON: %w", err)
	}

	if info.Subtitles == nil && info.AutomaticCaptions == nil {
		return nil, caption.ErrTranscriptsDisabled
	}

	var tracks []caption.Track
	for _, lang := range sortedKeys(info.Subtitles) {
		if t := p.newTrack(lang, caption.OriginManual, info.Subtitles[lang]); t != nil {
			tracks = append(tracks, t)
		}
	}

	// the "-orig" track is the spoken language; the rest are machine translations
	auto := sortedKeys(info.AutomaticCaptions)
	sort.SliceStable(auto, func(i, j int) bool {
		return strings.HasSuffix(auto[i], "-orig") && !strings.HasSuffix(auto[j], "-orig")
	})
	for _, lang := range auto {
		if t := p.newTrack(lang, caption.OriginGenerated, info.AutomaticCaptions[lang]); t != nil {
			tracks = append(tracks, t)
		}
	}

	if len(tracks) == 0 {
		return nil, caption.ErrNoTracks
	}
	return tracks, nil
}

// picks the first rendition the subtitle package can parse
func (p *YtdlpProvider) newTrack(
	lang string,
	origin caption.Origin,
	renditions []subtitleRendition,
) caption.Track {
	for _, format := range subtitle.Preferred {
		for _, r := range renditions {
			if r.URL != "" && strings.EqualFold(r.Ext, string(format)) {
				return &renditionTrack{
					provider: p,
					url:      r.URL,
					format:   format,
					language: lang,
					origin:   origin,
				}
			}
		}
	}
	return nil
}

func sortedKeys(m map[string][]subtitleRendition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type renditionTrack struct {
	provider *YtdlpProvider
	url      string
	format   subtitle.Format
	language string
	origin   caption.Origin
}

func (t *renditionTrack) LanguageCode() string { return t.language }

func (t *renditionTrack) Origin() caption.Origin { return t.origin }

func (t *renditionTrack) Fetch(ctx context.Context) ([]caption.Segment, error) {
	body, err := t.provider.download(ctx, t.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s subtitles: %w", t.format, err)
	}

	sub, err := subtitle.Parse(bytes.NewReader(body), t.format)
	if err != nil {
		return nil, err
	}
	return sub.Segments(), nil
}

func (p *YtdlpProvider) download(ctx context.Context, rawURL string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", res.StatusCode)
	}

	return io.ReadAll(io.LimitReader(res.Body, maxTimedTextBytes))
}

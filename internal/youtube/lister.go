package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/shortscribe/internal/logging"
	"github.com/mgpai22/shortscribe/internal/pipeline"
)

// lists the Shorts of a channel through yt-dlp's flat playlist extraction
type ShortsLister struct {
	ytdlpPath string
	timeout   time.Duration
	logger    *logging.Logger
}

func NewShortsLister(ytdlpPath string, timeout time.Duration, logger *logging.Logger) *ShortsLister {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ShortsLister{ytdlpPath: ytdlpPath, timeout: timeout, logger: logger}
}

// flat playlist JSON as printed by yt-dlp -J --flat-playlist
type flatPlaylist struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Entries []flatEntry `json:"entries"`
}

type flatEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	UploadDate string `json:"upload_date"`
}

// ShortsURL points a channel URL at its Shorts feed.
func ShortsURL(channelURL string) (string, error) {
	u := strings.TrimSpace(channelURL)
	if u == "" {
		return "", fmt.Errorf("%w: empty channel URL", ErrInvalidURL)
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	u = strings.TrimSuffix(u, "/")
	return u + "/shorts", nil
}

// ListShorts returns up to max Shorts, oldest first.
func (l *ShortsLister) ListShorts(
	ctx context.Context,
	channelURL string,
	max int,
) ([]pipeline.VideoRef, error) {
	shortsURL, err := ShortsURL(channelURL)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--flat-playlist",
		"-J",
		"--no-warnings",
		"--ignore-errors",
	}
	if max > 0 {
		args = append(args, "--playlist-end", strconv.Itoa(max))
	}
	args = append(args, shortsURL)

	l.logger.Debugw("Listing Shorts", "url", shortsURL, "max", max)

	out, err := RunYtdlp(ctx, l.ytdlpPath, l.timeout, args...)
	if err != nil {
		return nil, &ListerError{Source: "ytdlp", Channel: channelURL, Err: err}
	}

	videos, err := parseFlatPlaylist(out, max)
	if err != nil {
		return nil, &ListerError{Source: "ytdlp", Channel: channelURL, Err: err}
	}

	l.logger.Debugw("Listed Shorts", "url", shortsURL, "count", len(videos))
	return videos, nil
}

func parseFlatPlaylist(data []byte, max int) ([]pipeline.VideoRef, error) {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var playlist flatPlaylist
	if err := json.Unmarshal(data, &playlist); err != nil {
		return nil, fmt.Errorf("parse playlist JSON: %w", err)
	}

	videos := make([]pipeline.VideoRef, 0, len(playlist.Entries))
	for _, e := range playlist.Entries {
		if e.ID == "" {
			continue
		}
		u := e.URL
		if u == "" {
			u = "https://youtu.be/" + e.ID
		}
		videos = append(videos, pipeline.VideoRef{
			ID:          e.ID,
			Title:       e.Title,
			URL:         u,
			PublishedAt: e.UploadDate,
		})
		if max > 0 && len(videos) >= max {
			break
		}
	}

	// oldest first; undated entries lead, feed order breaks ties
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedAt < videos[j].PublishedAt
	})

	return videos, nil
}

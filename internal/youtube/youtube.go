// Package youtube lists Shorts for a channel and exposes their caption tracks.
package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidURL        = errors.New("youtube: invalid URL")
	ErrYtdlpNotInstalled = errors.New("youtube: yt-dlp not installed")
	ErrRateLimited       = errors.New("youtube: rate limited")
	ErrVideoUnavailable  = errors.New("youtube: video unavailable")
)

const DefaultYtdlpTimeout = 2 * time.Minute

// ListerError wraps listing errors with context about what failed.
type ListerError struct {
	// "ytdlp"
	Source  string
	Channel string
	Err     error
}

func (e *ListerError) Error() string {
	return "youtube: " + e.Source + " listing " + e.Channel + ": " + e.Err.Error()
}

func (e *ListerError) Unwrap() error { return e.Err }

var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID accepts a bare video ID or a watch, youtu.be or shorts URL.
func ParseVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if videoIDRegex.MatchString(input) {
		return input, nil
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, input)
	}

	var id string
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.Trim(u.Path, "/")
	switch {
	case host == "youtu.be":
		id = path
	case strings.HasSuffix(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			id = v
		} else if rest, ok := strings.CutPrefix(path, "shorts/"); ok {
			id = rest
		} else if rest, ok := strings.CutPrefix(path, "embed/"); ok {
			id = rest
		}
	}

	if !videoIDRegex.MatchString(id) {
		return "", fmt.Errorf("%w: no video ID in %q", ErrInvalidURL, input)
	}
	return id, nil
}

// RunYtdlp runs yt-dlp and returns its stdout. An empty path means yt-dlp
// from PATH and a zero timeout means DefaultYtdlpTimeout.
func RunYtdlp(
	ctx context.Context,
	ytdlpPath string,
	timeout time.Duration,
	args ...string,
) ([]byte, error) {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	if _, err := exec.LookPath(ytdlpPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrYtdlpNotInstalled, ytdlpPath)
	}
	if timeout <= 0 {
		timeout = DefaultYtdlpTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ytdlpPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp timed out after %s: %w", timeout, ctx.Err())
		}
		if msg := lastLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("yt-dlp: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	return stdout.Bytes(), nil
}

// yt-dlp prints its error as the last stderr line
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

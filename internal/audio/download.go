package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/shortscribe/internal/logging"
	"github.com/mgpai22/shortscribe/internal/youtube"
)

// fetches the audio track of a video with yt-dlp and compresses it for speech-to-text
type Downloader struct {
	ytdlpPath   string
	timeout     time.Duration
	compression CompressionOptions
	logger      *logging.Logger
	// replaced in tests
	compress func(ctx context.Context, in, out string, opts CompressionOptions) error
}

func NewDownloader(ytdlpPath string, timeout time.Duration, logger *logging.Logger) *Downloader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{
		ytdlpPath:   ytdlpPath,
		timeout:     timeout,
		compression: DefaultCompressionOptions(),
		logger:      logger,
		compress:    Compress,
	}
}

// Fetch downloads and compresses the audio of videoID. The caller must call
// cleanup once it is done with the file.
func (d *Downloader) Fetch(ctx context.Context, videoID string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "shortscribe-audio-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	out, err := youtube.RunYtdlp(ctx, d.ytdlpPath, d.timeout,
		"-f", "bestaudio/best",
		"--no-playlist",
		"--no-warnings",
		"-o", filepath.Join(dir, "source.%(ext)s"),
		"--print", "after_move:filepath",
		"https://www.youtube.com/watch?v="+videoID,
	)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("download audio: %w", err)
	}

	source := printedPath(string(out))
	if source == "" {
		cleanup()
		return "", nil, fmt.Errorf("download audio: yt-dlp printed no file path")
	}

	target := filepath.Join(dir, "speech."+d.compression.Format)
	if err := d.compress(ctx, source, target, d.compression); err != nil {
		cleanup()
		return "", nil, err
	}

	d.logger.Debugw("Prepared audio", "video", videoID, "path", target)
	return target, cleanup, nil
}

// the file path is the last non-empty line yt-dlp prints
func printedPath(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

package transcribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/mgpai22/shortscribe/internal/logging"
	"github.com/mgpai22/shortscribe/internal/pipeline"
)

// interface for anything that can produce a local audio file for a video
type AudioFetcher interface {
	Fetch(ctx context.Context, videoID string) (path string, cleanup func(), err error)
}

// FallbackSource transcribes a video's speech when it has no usable captions.
// Any other caption error is returned unchanged.
type FallbackSource struct {
	captions    pipeline.SegmentSource
	audio       AudioFetcher
	transcriber Transcriber
	logger      *logging.Logger
}

func NewFallbackSource(
	captions pipeline.SegmentSource,
	audio AudioFetcher,
	transcriber Transcriber,
	logger *logging.Logger,
) *FallbackSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FallbackSource{
		captions:    captions,
		audio:       audio,
		transcriber: transcriber,
		logger:      logger,
	}
}

func (s *FallbackSource) SelectSegments(
	ctx context.Context,
	videoID, language string,
) ([]caption.Segment, error) {
	segments, err := s.captions.SelectSegments(ctx, videoID, language)
	if err == nil || !errors.Is(err, caption.ErrTranscriptUnavailable) {
		return segments, err
	}

	s.logger.Infow("No captions, transcribing speech", "video", videoID, "reason", err)

	segments, ferr := s.transcribe(ctx, videoID)
	if ferr != nil {
		s.logger.Warnw("Speech fallback failed", "video", videoID, "error", ferr)
		return nil, &caption.UnavailableError{
			VideoID: videoID,
			Reason:  fmt.Sprintf("%s (speech fallback failed: %v)", err, ferr),
			Err:     errors.Join(err, ferr),
		}
	}

	return segments, nil
}

func (s *FallbackSource) transcribe(ctx context.Context, videoID string) ([]caption.Segment, error) {
	path, cleanup, err := s.audio.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Segments, nil
}

// Package pipeline drives caption selection and cleaning over an ordered list
// of videos and turns every per-video failure into data.
package pipeline

import (
	"context"
	"fmt"

	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/mgpai22/shortscribe/internal/cleaner"
	"github.com/mgpai22/shortscribe/internal/logging"
)

const EmptyTranscriptMessage = "Transcript is empty after cleaning."

// interface for anything that yields raw segments for a video
type SegmentSource interface {
	SelectSegments(ctx context.Context, videoID, language string) ([]caption.Segment, error)
}

// processes videos one at a time, in input order
type Processor struct {
	source SegmentSource
	logger *logging.Logger
}

func NewProcessor(source SegmentSource, logger *logging.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{source: source, logger: logger}
}

// Process returns exactly one Result per video, in order. The only error is
// for malformed input, checked before any video is touched.
func (p *Processor) Process(
	ctx context.Context,
	videos []VideoRef,
	language string,
) ([]Result, error) {
	for i, v := range videos {
		if v.ID == "" {
			return nil, fmt.Errorf("video %d has no ID", i+1)
		}
	}
	if language == "" {
		language = caption.DefaultLanguage
	}

	results := make([]Result, 0, len(videos))
	for i, video := range videos {
		outcome := p.processOne(ctx, video, language)
		result := NewResult(i+1, video, outcome)

		if reason, failed := result.Error(); failed {
			p.logger.Infow("No transcript",
				"index", result.Index,
				"video", video.ID,
				"reason", reason,
			)
		} else {
			p.logger.Debugw("Transcript ready",
				"index", result.Index,
				"video", video.ID,
			)
		}
		results = append(results, result)
	}

	return results, nil
}

func (p *Processor) processOne(
	ctx context.Context,
	video VideoRef,
	language string,
) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorw("Recovered while processing video",
				"video", video.ID,
				"panic", r,
			)
			outcome = Failed(fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	segments, err := p.source.SelectSegments(ctx, video.ID, language)
	if err != nil {
		return Failed(err.Error())
	}

	text := cleaner.Normalize(segments)
	if text == "" {
		return Failed(EmptyTranscriptMessage)
	}
	return Transcribed(text)
}

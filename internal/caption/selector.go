package caption

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgpai22/shortscribe/internal/logging"
)

const DefaultLanguage = "en"

var errNoMatch = errors.New("no matching track")

// picks one caption track per video and returns its segments
type Selector struct {
	provider Provider
	logger   *logging.Logger
}

func NewSelector(provider Provider, logger *logging.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{provider: provider, logger: logger}
}

// a strategy either produces segments or reports why it could not
type strategy struct {
	name string
	run  func(ctx context.Context, tracks []Track, language string) ([]Segment, error)
}

// human-authored > machine-generated > anything that fetches
var strategies = []strategy{
	{name: "manual", run: matching(OriginManual)},
	{name: "generated", run: matching(OriginGenerated)},
	{name: "any", run: firstFetchable},
}

// SelectSegments returns the segments of the best available track for videoID.
// Every failure is reported as an *UnavailableError.
func (s *Selector) SelectSegments(
	ctx context.Context,
	videoID, language string,
) ([]Segment, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}
	if language == "" {
		language = DefaultLanguage
	}

	tracks, err := s.provider.ListTracks(ctx, videoID)
	if err != nil {
		return nil, &UnavailableError{VideoID: videoID, Reason: err.Error(), Err: err}
	}

	for _, st := range strategies {
		segments, err := st.run(ctx, tracks, language)
		if err == nil {
			s.logger.Debugw("Selected caption track",
				"video", videoID,
				"strategy", st.name,
				"segments", len(segments),
			)
			return segments, nil
		}
		if !errors.Is(err, errNoMatch) {
			s.logger.Debugw("Caption strategy failed",
				"video", videoID,
				"strategy", st.name,
				"error", err,
			)
		}
	}

	return nil, &UnavailableError{VideoID: videoID}
}

func matching(origin Origin) func(context.Context, []Track, string) ([]Segment, error) {
	return func(ctx context.Context, tracks []Track, language string) ([]Segment, error) {
		for _, t := range tracks {
			if t.Origin() == origin && t.LanguageCode() == language {
				return t.Fetch(ctx)
			}
		}
		return nil, errNoMatch
	}
}

// fetch errors are skipped; provider order decides
func firstFetchable(ctx context.Context, tracks []Track, _ string) ([]Segment, error) {
	var errs []error
	for _, t := range tracks {
		segments, err := t.Fetch(ctx)
		if err == nil {
			return segments, nil
		}
		errs = append(errs, fmt.Errorf("%s (%s): %w", t.LanguageCode(), t.Origin(), err))
	}
	if len(errs) == 0 {
		return nil, errNoMatch
	}
	return nil, errors.Join(errs...)
}

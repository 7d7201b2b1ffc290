package caption

import (
	"context"
	"errors"
)

// one timed line of caption text; timing is informational only
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

// how a caption track was produced
type Origin int

const (
	OriginManual Origin = iota
	OriginGenerated
)

func (o Origin) String() string {
	switch o {
	case OriginManual:
		return "manual"
	case OriginGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// one caption source attached to a video. Segments are fetched lazily.
type Track interface {
	LanguageCode() string
	Origin() Origin
	Fetch(ctx context.Context) ([]Segment, error)
}

// interface for listing the caption tracks of a video
type Provider interface {
	// ListTracks returns tracks in provider order. It fails with
	// ErrTranscriptsDisabled or ErrNoTracks when the video exposes no captions.
	ListTracks(ctx context.Context, videoID string) ([]Track, error)
}

var (
	ErrTranscriptsDisabled   = errors.New("transcripts are disabled for this video")
	ErrNoTracks              = errors.New("no transcripts found for this video")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
)

// UnavailableError reports that no caption track could be produced for a video.
// Its message is the provider's message and is shown to users as-is.
type UnavailableError struct {
	VideoID string
	Reason  string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "No usable transcript found."
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool {
	return target == ErrTranscriptUnavailable
}

// StaticTrack is a Track backed by an in-memory fetch function.
type StaticTrack struct {
	Language string
	Kind     Origin
	FetchFn  func(ctx context.Context) ([]Segment, error)
}

func (t *StaticTrack) LanguageCode() string { return t.Language }

func (t *StaticTrack) Origin() Origin { return t.Kind }

func (t *StaticTrack) Fetch(ctx context.Context) ([]Segment, error) {
	if t.FetchFn == nil {
		return nil, errors.New("track has no fetch function")
	}
	return t.FetchFn(ctx)
}

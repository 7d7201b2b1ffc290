package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mgpai22/shortscribe/internal/logging"
)

const (
	DefaultMaxShorts = 50
	MaxShortsLimit   = 500
)

// user-facing batch messages
const (
	MsgMissingChannel = "Please provide a YouTube channel URL."
	MsgNoVideos       = "No Shorts videos found for this channel, or the channel could not be resolved."
	MsgNoTranscripts  = "No transcripts were found for any Shorts on this channel."
)

// interface for the collaborator that turns a channel into videos
type Discoverer interface {
	ListShorts(ctx context.Context, channelURL string, max int) ([]VideoRef, error)
}

type FailureKind int

const (
	FailureInvalidRequest FailureKind = iota + 1
	FailureDiscovery
	FailureNoVideos
)

func (k FailureKind) String() string {
	switch k {
	case FailureInvalidRequest:
		return "invalid_request"
	case FailureDiscovery:
		return "discovery"
	case FailureNoVideos:
		return "no_videos"
	default:
		return "unknown"
	}
}

// Failure is a batch-level failure; the pipeline never ran.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

type Request struct {
	ChannelURL string
	Language   string
	MaxShorts  int
}

// Report is what Run returns. Failure is set only when no video was processed.
type Report struct {
	RunID      string
	ChannelURL string
	MaxShorts  int
	Results    []Result
	Failure    *Failure
	// set when results exist but none of them has a transcript
	Warning string
}

func (r *Report) Failed() bool { return r.Failure != nil }

// ClampMaxShorts keeps the requested count within [1, MaxShortsLimit].
func ClampMaxShorts(n int) int {
	if n <= 0 {
		return 1
	}
	if n > MaxShortsLimit {
		return MaxShortsLimit
	}
	return n
}

// runs discovery followed by the pipeline for one channel
type Runner struct {
	discoverer Discoverer
	processor  *Processor
	logger     *logging.Logger
}

func NewRunner(discoverer Discoverer, processor *Processor, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{discoverer: discoverer, processor: processor, logger: logger}
}

func (r *Runner) Run(ctx context.Context, req Request) *Report {
	report := &Report{
		RunID:      uuid.NewString()[:8],
		ChannelURL: strings.TrimSpace(req.ChannelURL),
		MaxShorts:  ClampMaxShorts(req.MaxShorts),
	}
	logger := r.logger.With("run", report.RunID)

	if report.ChannelURL == "" {
		report.Failure = &Failure{Kind: FailureInvalidRequest, Message: MsgMissingChannel}
		return report
	}

	logger.Infow("Discovering Shorts",
		"channel", report.ChannelURL,
		"max_shorts", report.MaxShorts,
	)

	videos, err := r.discoverer.ListShorts(ctx, report.ChannelURL, report.MaxShorts)
	if err != nil {
		logger.Warnw("Discovery failed", "channel", report.ChannelURL, "error", err)
		report.Failure = &Failure{
			Kind:    FailureDiscovery,
			Message: "Could not list Shorts for this channel",
			Err:     err,
		}
		return report
	}
	if len(videos) == 0 {
		report.Failure = &Failure{Kind: FailureNoVideos, Message: MsgNoVideos}
		return report
	}
	if len(videos) > report.MaxShorts {
		videos = videos[:report.MaxShorts]
	}

	logger.Infow("Fetching transcripts", "videos", len(videos))

	results, err := r.processor.Process(ctx, videos, req.Language)
	if err != nil {
		report.Failure = &Failure{
			Kind:    FailureDiscovery,
			Message: "Discovery returned malformed videos",
			Err:     err,
		}
		return report
	}
	report.Results = results

	found := 0
	for _, res := range results {
		if res.HasTranscript() {
			found++
		}
	}
	if found == 0 {
		report.Warning = MsgNoTranscripts
	}

	logger.Infow("Run complete",
		"videos", len(results),
		"transcripts", found,
	)

	return report
}

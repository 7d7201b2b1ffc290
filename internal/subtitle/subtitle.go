package subtitle

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/shortscribe/internal/caption"
)

// represents single subtitle cue
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents complete subtitle track
type Subtitle struct {
	Entries  []Entry
	Language string
	Format   Format
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// rendition preference when a track is offered in several formats
var Preferred = []Format{FormatVTT, FormatSRT}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatSRT, FormatVTT:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format: %s", s)
	}
}

// Parse reads a subtitle document in the given format.
func Parse(r io.Reader, format Format) (*Subtitle, error) {
	switch format {
	case FormatSRT:
		return ParseSRT(r)
	case FormatVTT:
		return ParseVTT(r)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
}

// karaoke timestamps and styling spans YouTube puts inside VTT cues
var cueTagRegex = regexp.MustCompile(
	`<\d{2,}:\d{2}:\d{2}\.\d{3}>|<\d{2}:\d{2}\.\d{3}>|</?(?:c|i|b|u|v|lang|ruby|rt)(?:[.\s][^>]*)?>`,
)

// converts cues into caption segments, one per non-empty cue line, with
// inline cue tags removed
func (s *Subtitle) Segments() []caption.Segment {
	segments := make([]caption.Segment, 0, len(s.Entries))
	for _, e := range s.Entries {
		start := e.StartTime.Seconds()
		duration := (e.EndTime - e.StartTime).Seconds()
		if duration < 0 {
			duration = 0
		}
		for _, line := range strings.Split(e.Text, "\n") {
			line = strings.TrimSpace(cueTagRegex.ReplaceAllString(line, ""))
			if line == "" {
				continue
			}
			segments = append(segments, caption.Segment{
				Text:     line,
				Start:    start,
				Duration: duration,
			})
		}
	}
	return segments
}

func parseTimestamp(
	hours, minutes, seconds, millis string,
) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

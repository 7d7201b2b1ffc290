package pipeline

import "encoding/json"

// one input video, supplied by discovery or the caller
type VideoRef struct {
	ID    string `json:"video_id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	// upload date as YYYYMMDD when known
	PublishedAt string `json:"published_at,omitempty"`
}

// Outcome is either a transcript or the reason there is none.
type Outcome struct {
	text   string
	reason string
	ok     bool
}

// an empty text is never a transcript
func Transcribed(text string) Outcome {
	if text == "" {
		return Failed(EmptyTranscriptMessage)
	}
	return Outcome{text: text, ok: true}
}

func Failed(reason string) Outcome {
	return Outcome{reason: reason}
}

// Result is the per-video record returned by Process. It is immutable.
type Result struct {
	Index   int
	Title   string
	URL     string
	outcome Outcome
}

func NewResult(index int, video VideoRef, outcome Outcome) Result {
	return Result{
		Index:   index,
		Title:   video.Title,
		URL:     video.URL,
		outcome: outcome,
	}
}

func (r Result) Transcript() (string, bool) {
	if !r.outcome.ok {
		return "", false
	}
	return r.outcome.text, true
}

func (r Result) Error() (string, bool) {
	if r.outcome.ok {
		return "", false
	}
	return r.outcome.reason, true
}

func (r Result) HasTranscript() bool {
	return r.outcome.ok
}

// returns a copy of r with a new transcript, keeping index, title and url
func (r Result) WithTranscript(text string) Result {
	r.outcome = Transcribed(text)
	return r
}

type resultJSON struct {
	Index         int     `json:"index"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Transcript    *string `json:"transcript"`
	HasTranscript bool    `json:"has_transcript"`
	Error         *string `json:"error"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Index:         r.Index,
		Title:         r.Title,
		URL:           r.URL,
		HasTranscript: r.HasTranscript(),
	}
	if text, ok := r.Transcript(); ok {
		out.Transcript = &text
	}
	if reason, ok := r.Error(); ok {
		out.Error = &reason
	}
	return json.Marshal(out)
}

// reads a result written by MarshalJSON; a record with neither transcript
// nor error decodes as an empty transcript
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	r.Index = in.Index
	r.Title = in.Title
	r.URL = in.URL
	switch {
	case in.Transcript != nil:
		r.outcome = Transcribed(*in.Transcript)
	case in.Error != nil:
		r.outcome = Failed(*in.Error)
	default:
		r.outcome = Failed(EmptyTranscriptMessage)
	}
	return nil
}

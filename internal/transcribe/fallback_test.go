package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	segments []caption.Segment
	err      error
}

func (s stubSource) SelectSegments(ctx context.Context, videoID, language string) ([]caption.Segment, error) {
	return s.segments, s.err
}

type stubAudio struct {
	err       error
	fetched   int
	cleanedUp int
}

func (a *stubAudio) Fetch(ctx context.Context, videoID string) (string, func(), error) {
	a.fetched++
	if a.err != nil {
		return "", nil, a.err
	}
	return "/tmp/" + videoID + ".mp3", func() { a.cleanedUp++ }, nil
}

type stubTranscriber struct {
	result *Result
	err    error
	paths  []string
}

func (t *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	t.paths = append(t.paths, audioPath)
	return t.result, t.err
}

var unavailable = &caption.UnavailableError{
	VideoID: "abc",
	Reason:  caption.ErrTranscriptsDisabled.Error(),
	Err:     caption.ErrTranscriptsDisabled,
}

func TestFallbackSourceUsesCaptionsFirst(t *testing.T) {
	audio := &stubAudio{}
	src := NewFallbackSource(
		stubSource{segments: []caption.Segment{{Text: "from captions"}}},
		audio,
		&stubTranscriber{},
		nil,
	)

	segments, err := src.SelectSegments(context.Background(), "abc", "en")
	require.NoError(t, err)
	assert.Equal(t, "from captions", segments[0].Text)
	assert.Zero(t, audio.fetched)
}

func TestFallbackSourceTranscribesWhenUnavailable(t *testing.T) {
	audio := &stubAudio{}
	transcriber := &stubTranscriber{result: &Result{
		Segments: []caption.Segment{{Text: "spoken words"}},
	}}
	src := NewFallbackSource(stubSource{err: unavailable}, audio, transcriber, nil)

	segments, err := src.SelectSegments(context.Background(), "abc", "en")
	require.NoError(t, err)
	assert.Equal(t, "spoken words", segments[0].Text)
	assert.Equal(t, []string{"/tmp/abc.mp3"}, transcriber.paths)
	assert.Equal(t, 1, audio.cleanedUp)
}

func TestFallbackSourceKeepsOtherErrors(t *testing.T) {
	audio := &stubAudio{}
	boom := errors.New("context canceled")
	src := NewFallbackSource(stubSource{err: boom}, audio, &stubTranscriber{}, nil)

	_, err := src.SelectSegments(context.Background(), "abc", "en")
	assert.Same(t, boom, err)
	assert.Zero(t, audio.fetched)
}

func TestFallbackSourceFailure(t *testing.T) {
	tests := []struct {
		name        string
		audio       *stubAudio
		transcriber *stubTranscriber
		wantCleanup int
	}{
		{
			name:        "download fails",
			audio:       &stubAudio{err: errors.New("private video")},
			transcriber: &stubTranscriber{},
		},
		{
			name:        "transcription fails",
			audio:       &stubAudio{},
			transcriber: &stubTranscriber{err: errors.New("quota exceeded")},
			wantCleanup: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewFallbackSource(stubSource{err: unavailable}, tt.audio, tt.transcriber, nil)

			_, err := src.SelectSegments(context.Background(), "abc", "en")
			require.Error(t, err)
			assert.ErrorIs(t, err, caption.ErrTranscriptUnavailable)
			assert.ErrorIs(t, err, caption.ErrTranscriptsDisabled)
			assert.Contains(t, err.Error(), caption.ErrTranscriptsDisabled.Error())
			assert.Contains(t, err.Error(), "speech fallback failed")
			assert.Equal(t, tt.wantCleanup, tt.audio.cleanedUp)
		})
	}
}

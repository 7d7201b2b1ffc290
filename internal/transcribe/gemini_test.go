package transcribe

import (
	"context"
	"testing"

	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTranscriptSegments(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []caption.Segment
		wantErr bool
	}{
		{
			name:  "bare array",
			input: `[{"start": 0.0, "end": 1.5, "text": " wait for it "}, {"start": 1.5, "end": 4.0, "text": "there it is"}]`,
			want: []caption.Segment{
				{Text: "wait for it", Start: 0, Duration: 1.5},
				{Text: "there it is", Start: 1.5, Duration: 2.5},
			},
		},
		{
			name: "prose around the array",
			input: `Sure! Here is the transcript of the Short:
			[{"start": 2.0, "end": 3.0, "text": "subscribe"}]
			Let me know if you need anything else.`,
			want: []caption.Segment{{Text: "subscribe", Start: 2, Duration: 1}},
		},
		{
			name:  "segments key",
			input: `{"language": "en", "segments": [{"start": 0, "end": 2, "text": "hi"}]}`,
			want:  []caption.Segment{{Text: "hi", Duration: 2}},
		},
		{
			name:  "nested under an unknown key",
			input: `{"result": {"transcript": [{"start": 0, "end": 1, "text": "deep"}]}}`,
			want:  []caption.Segment{{Text: "deep", Duration: 1}},
		},
		{
			name:  "unrelated JSON before the transcript",
			input: `{"status": "ok"} [{"start": 0, "end": 1, "text": "second value"}]`,
			want:  []caption.Segment{{Text: "second value", Duration: 1}},
		},
		{
			name:  "end before start clamps duration",
			input: `[{"start": 5.0, "end": 4.0, "text": "backwards"}]`,
			want:  []caption.Segment{{Text: "backwards", Start: 5}},
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "all-zero segments",
			input:   `[{"start": 0, "end": 0, "text": ""}]`,
			wantErr: true,
		},
		{
			name:    "plain refusal",
			input:   `I could not hear any speech in this audio.`,
			wantErr: true,
		},
		{
			name:    "truncated JSON",
			input:   `[{"start": 0.0, "end": 2.0, "text": "cut off`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractTranscriptSegments(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`[{"text": "a"}]`, `[{"text": "a"}]`},
		{"```json\n[{\"text\": \"a\"}]\n```", `[{"text": "a"}]`},
		{"\n  ```\n[]\n```  \n", `[]`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanJSONResponse(tt.input))
	}
}

func TestValidateSegments(t *testing.T) {
	assert.False(t, validateSegments(nil))
	assert.False(t, validateSegments([]transcriptSegment{{}, {}}))
	assert.True(t, validateSegments([]transcriptSegment{{}, {End: 0.5}}))
	assert.True(t, validateSegments([]transcriptSegment{{Text: "x"}}))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
}

func TestBuildTranscriptionPrompt(t *testing.T) {
	tr := &GeminiTranscriber{options: Options{Language: "es", Prompt: "Channel is about cooking."}}
	prompt := tr.buildTranscriptionPrompt()

	assert.Contains(t, prompt, "The audio is in es.")
	assert.Contains(t, prompt, "Channel is about cooking.")
	assert.Contains(t, prompt, "'start', 'end', and 'text'")

	assert.NotContains(t, (&GeminiTranscriber{}).buildTranscriptionPrompt(), "The audio is in")
}

func TestNewGeminiTranscriberRequiresKey(t *testing.T) {
	_, err := NewGeminiTranscriber(context.Background(), "", Options{})
	assert.Error(t, err)
}

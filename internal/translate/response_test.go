package translate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResults(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    int
		texts   []string
		wantErr string
	}{
		{
			name:  "bare array",
			reply: `[{"index": 0, "text": "hola a todos"}, {"index": 1, "text": "parte dos"}]`,
			want:  2,
			texts: []string{"hola a todos", "parte dos"},
		},
		{
			name:  "json fence",
			reply: "```json\n[{\"index\": 0, \"text\": \"こんにちは\"}]\n```",
			want:  1,
			texts: []string{"こんにちは"},
		},
		{
			name:  "plain fence with prose",
			reply: "Sure! Here you go:\n```\n[{\"index\": 3, \"text\": \"Bonjour\"}]\n```\nAnything else?",
			want:  1,
			texts: []string{"Bonjour"},
		},
		{
			name:  "prose with brackets before the array",
			reply: `Translated [2 items]: [{"index": 0, "text": "eins"}, {"index": 1, "text": "zwei"}]`,
			want:  2,
			texts: []string{"eins", "zwei"},
		},
		{
			name:  "results wrapper",
			reply: `{"results": [{"index": 0, "text": "Übersetzt"}]}`,
			want:  1,
			texts: []string{"Übersetzt"},
		},
		{
			name:  "unknown wrapper key",
			reply: `{"meta": {"model": "x"}, "output": [{"index": 0, "text": "Переведено"}]}`,
			want:  1,
			texts: []string{"Переведено"},
		},
		{
			name:  "stray backslash",
			reply: `[{"index": 0, "text": "first line\Nsecond line"}]`,
			want:  1,
			texts: []string{`first line\Nsecond line`},
		},
		{
			name:  "valid escapes untouched",
			reply: `[{"index": 0, "text": "say \"hi\"\nthen go"}]`,
			want:  1,
			texts: []string{"say \"hi\"\nthen go"},
		},
		{
			name:    "count mismatch",
			reply:   "```json\n[{\"index\": 0, \"text\": \"hola\"}]\n```",
			want:    2,
			wantErr: "expected 2 results, got 1",
		},
		{
			name:    "empty array",
			reply:   `[]`,
			want:    0,
			wantErr: "no valid translation JSON",
		},
		{
			name:    "only blank texts",
			reply:   `[{"index": 0, "text": ""}]`,
			want:    1,
			wantErr: "no valid translation JSON",
		},
		{
			name:    "truncated",
			reply:   `[{"index": 0, "text": "cut off`,
			want:    1,
			wantErr: "failed to parse JSON response",
		},
		{
			name:    "no json",
			reply:   "I cannot translate this.",
			want:    1,
			wantErr: "no valid translation JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := parseResults(tt.reply, tt.want)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			got := make([]string, len(results))
			for i, r := range results {
				got[i] = r.Text
			}
			assert.Equal(t, tt.texts, got)
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `[{"index": 0}]`, stripFences("  \n```json\n[{\"index\": 0}]\n```\n "))
	assert.Equal(t, `[1]`, stripFences("```\n[1]\n```"))
	assert.Equal(t, `[1]`, stripFences("[1]"))
}

func TestEscapeStrayBackslashes(t *testing.T) {
	assert.Equal(t, `a\\Nb`, escapeStrayBackslashes(`a\Nb`))
	assert.Equal(t, `a\nb \u00e9 \"`, escapeStrayBackslashes(`a\nb \u00e9 \"`))
	assert.Equal(t, `end\`, escapeStrayBackslashes(`end\`))
	assert.Equal(t, "plain", escapeStrayBackslashes("plain"))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "ab...", clip("abcdef", 2))
}

func TestBuildPrompt(t *testing.T) {
	items := []TranslationItem{
		{Index: 0, Text: "day one of learning to juggle"},
		{Index: 1, Text: "like if you want day two"},
	}

	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "with input language",
			opts: Options{InputLanguage: "English", TargetLanguage: "Japanese"},
			want: []string{
				"following English video transcripts to Japanese",
				"day one of learning to juggle",
				`"index": 1`,
			},
		},
		{
			name:    "without input language",
			opts:    Options{TargetLanguage: "Spanish"},
			want:    []string{"following video transcripts to Spanish"},
			notWant: []string{"English", "Additional instructions"},
		},
		{
			name: "extra instructions",
			opts: Options{TargetLanguage: "Hindi", Prompt: "keep slang"},
			want: []string{"Additional instructions: keep slang"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildPrompt(tt.opts, items)
			for _, w := range tt.want {
				if !strings.Contains(prompt, w) {
					t.Errorf("prompt missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(prompt, w) {
					t.Errorf("prompt should not contain %q", w)
				}
			}
		})
	}
}

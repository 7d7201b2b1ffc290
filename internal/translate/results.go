package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgpai22/shortscribe/internal/pipeline"
)

// TranslateResults translates every result that carries a transcript and
// returns a new slice in the same order. Results without a transcript pass
// through untouched. On error the input results are returned unchanged.
func TranslateResults(
	ctx context.Context,
	translator Translator,
	results []pipeline.Result,
) ([]pipeline.Result, error) {
	var items []TranslationItem
	for i, r := range results {
		if text, ok := r.Transcript(); ok {
			items = append(items, TranslationItem{Index: i, Text: text})
		}
	}
	if len(items) == 0 {
		return results, nil
	}

	translated, err := translator.Translate(ctx, items)
	if err != nil {
		return results, fmt.Errorf("failed to translate transcripts: %w", err)
	}

	out := make([]pipeline.Result, len(results))
	copy(out, results)
	for _, tr := range translated {
		if tr.Index < 0 || tr.Index >= len(out) || !out[tr.Index].HasTranscript() {
			return results, fmt.Errorf("translation returned unknown index %d", tr.Index)
		}
		// a blank translation keeps the original transcript
		if text := strings.TrimSpace(tr.Text); text != "" {
			out[tr.Index] = out[tr.Index].WithTranscript(text)
		}
	}

	return out, nil
}

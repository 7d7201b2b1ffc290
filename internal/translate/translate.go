// Package translate rewrites finished transcripts into another language using
// an LLM provider. Transcripts are sent in JSON batches keyed by index.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// single transcript to translate
type TranslationItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated transcript
type TranslationResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for text translation
type Translator interface {
	Translate(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// transcripts are whole paragraphs, so batches stay small
const DefaultBatchSize = 10

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BaseURL        string // overrides the provider's API endpoint
	BatchSize      int    // items per API request (default 10)
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

type batchFunc func(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error)

// sends items in batches of size, one request at a time, and returns the
// merged results ordered by index
func translateInBatches(
	ctx context.Context,
	items []TranslationItem,
	size int,
	translate batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}
	if len(items) <= size {
		return translate(ctx, items)
	}

	var allResults []TranslationResult
	for i := 0; i < len(items); i += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := i + size
		if end > len(items) {
			end = len(items)
		}

		results, err := translate(ctx, items[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i/size, err)
		}
		allResults = append(allResults, results...)
	}

	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].Index < allResults[j].Index
	})

	return allResults, nil
}

// returns the raw model reply for one prompt
type completeFunc func(ctx context.Context, prompt string) (string, error)

// renders a prompt per batch, sends it through complete and parses the
// JSON reply
func translateWith(
	ctx context.Context,
	opts Options,
	items []TranslationItem,
	provider Provider,
	complete completeFunc,
) ([]TranslationResult, error) {
	return translateInBatches(
		ctx,
		items,
		opts.batchSize(),
		func(ctx context.Context, batch []TranslationItem) ([]TranslationResult, error) {
			reply, err := complete(ctx, BuildPrompt(opts, batch))
			if err != nil {
				return nil, fmt.Errorf("%s translation failed: %w", provider, err)
			}
			if strings.TrimSpace(reply) == "" {
				return nil, fmt.Errorf("no text in %s response", provider)
			}
			return parseResults(reply, len(batch))
		},
	)
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []TranslationItem) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s video transcripts to %s.\n\n",
			opts.InputLanguage,
			opts.TargetLanguage,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following video transcripts to %s.\n\n",
			opts.TargetLanguage,
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Translate the whole text of each transcript, preserving the meaning.\n",
	)
	sb.WriteString(
		"2. Each transcript is spoken language; keep it natural and informal where the source is.\n",
	)
	sb.WriteString("3. Do not summarize or shorten a transcript.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString(
		"6. The 'index' values must match the input indices exactly.\n",
	)
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}

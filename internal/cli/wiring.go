package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgpai22/shortscribe/internal/audio"
	"github.com/mgpai22/shortscribe/internal/caption"
	"github.com/mgpai22/shortscribe/internal/config"
	"github.com/mgpai22/shortscribe/internal/export"
	"github.com/mgpai22/shortscribe/internal/logging"
	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/transcribe"
	"github.com/mgpai22/shortscribe/internal/translate"
	"github.com/mgpai22/shortscribe/internal/youtube"
)

func newCaptionProvider(c *config.Config, log *logging.Logger) (caption.Provider, error) {
	switch c.Provider {
	case config.ProviderWatchPage:
		return youtube.NewWatchPageProvider(youtube.WatchPageOptions{
			Timeout:           c.HTTPTimeout,
			RequestsPerSecond: c.RequestsPerSecond,
		}, log), nil
	case config.ProviderYtdlp:
		return youtube.NewYtdlpProvider(youtube.YtdlpOptions{
			Path:              c.YtdlpPath,
			Timeout:           c.YtdlpTimeout,
			HTTPTimeout:       c.HTTPTimeout,
			RequestsPerSecond: c.RequestsPerSecond,
		}, log), nil
	default:
		return nil, fmt.Errorf("unsupported caption provider: %s", c.Provider)
	}
}

// builds the per-video segment source: the caption selector, wrapped in the
// speech fallback when one is configured
func newSegmentSource(
	ctx context.Context,
	c *config.Config,
	log *logging.Logger,
) (pipeline.SegmentSource, error) {
	provider, err := newCaptionProvider(c, log)
	if err != nil {
		return nil, err
	}
	selector := caption.NewSelector(provider, log)

	if !c.SpeechFallbackEnabled() {
		return selector, nil
	}

	transcriber, err := transcribe.Factory(
		ctx,
		transcribe.Provider(c.SpeechFallback),
		c.APIKey(c.SpeechFallback),
		transcribe.Options{Language: c.Language, Model: c.SpeechModel},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	log.Infow("Speech fallback enabled", "provider", c.SpeechFallback)

	downloader := audio.NewDownloader(c.YtdlpPath, c.YtdlpTimeout, log)
	return transcribe.NewFallbackSource(selector, downloader, transcriber, log), nil
}

// returns nil when translation is not configured
func newTranslator(ctx context.Context, c *config.Config) (translate.Translator, error) {
	if c.TranslateTo == "" {
		return nil, nil
	}

	translator, err := translate.Factory(
		ctx,
		translate.Provider(c.TranslateProvider),
		c.APIKey(c.TranslateProvider),
		translate.Options{
			TargetLanguage: c.TranslateTo,
			Model:          c.TranslateModel,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}
	return translator, nil
}

// translates results when a translator is configured; on failure the
// untranslated results are kept
func maybeTranslate(
	ctx context.Context,
	c *config.Config,
	results []pipeline.Result,
) []pipeline.Result {
	translator, err := newTranslator(ctx, c)
	if err != nil {
		logger.Warnw("Skipping translation", "error", err)
		return results
	}
	if translator == nil {
		return results
	}

	logger.Infow("Translating transcripts", "target_language", c.TranslateTo)

	translated, err := translate.TranslateResults(ctx, translator, results)
	if err != nil {
		logger.Warnw("Translation failed, keeping original transcripts", "error", err)
	}
	return translated
}

// picks the export format: an explicit flag wins, otherwise the output
// file's extension decides
func resolveFormat(flag, outputPath string) (export.Format, error) {
	if flag != "" {
		switch format := export.Format(flag); format {
		case export.FormatText, export.FormatJSON:
			return format, nil
		default:
			return "", fmt.Errorf("unsupported format %q: use text or json", flag)
		}
	}
	if outputPath == "" {
		return export.FormatText, nil
	}
	return export.FormatFromExtension(outputPath), nil
}

// writes results to outputPath, or to stdout when it is empty
func writeResults(
	stdout io.Writer,
	results []pipeline.Result,
	format export.Format,
	outputPath string,
) error {
	writer, err := export.NewWriter(format)
	if err != nil {
		return err
	}

	if outputPath == "" {
		return writer.Write(stdout, results)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writer.Write(f, results); err != nil {
		f.Close()
		return fmt.Errorf("failed to write transcripts: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write transcripts: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(os.Stderr, "Transcripts written: %s\n", absOutput)
	return nil
}

func countTranscripts(results []pipeline.Result) int {
	n := 0
	for _, r := range results {
		if r.HasTranscript() {
			n++
		}
	}
	return n
}

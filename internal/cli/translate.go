package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [transcripts.json]",
	Short: "Translate saved transcripts to another language using AI",
	Long: `Translate transcripts previously saved with --format json.

Only entries that have a transcript are sent to the provider; entries
without one are written back unchanged.

Examples:
  shortscribe translate transcripts.json --target-language japanese
  shortscribe translate transcripts.json -t es --provider anthropic -o spanish.txt
  shortscribe translate transcripts.json -l english -t german --batch-size 5`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("base-url", "", "Custom API endpoint for the provider")
	translateCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of transcripts per API request")
	translateCmd.Flags().
		StringP("format", "f", "", "Output format (text, json); inferred from -o when empty")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func readResults(path string) ([]pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var results []pipeline.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return results, nil
}

// <name>.<lang>.json next to the input
func defaultTranslatedPath(inputPath, targetLang string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	lang := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(targetLang), " ", "-"))
	return fmt.Sprintf("%s.%s.json", base, lang)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	targetLang, _ := cmd.Flags().GetString("target-language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	baseURL, _ := cmd.Flags().GetString("base-url")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	inputLang := ""
	if cmd.Flags().Changed("language") {
		inputLang = cfg.Language
	}

	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	if apiKey == "" {
		apiKey = cfg.APIKey(providerStr)
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s_API_KEY environment variable",
			strings.ToUpper(providerStr),
		)
	}

	if outputPath == "" {
		outputPath = defaultTranslatedPath(inputPath, targetLang)
	}
	format, err := resolveFormat(formatStr, outputPath)
	if err != nil {
		return err
	}

	results, err := readResults(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read transcripts: %w", err)
	}

	translator, err := translate.Factory(ctx, translate.Provider(providerStr), apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BaseURL:        baseURL,
		BatchSize:      batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating transcripts",
		"input", inputPath,
		"output", outputPath,
		"transcripts", countTranscripts(results),
		"target_language", targetLang,
		"provider", providerStr,
	)

	translated, err := translate.TranslateResults(ctx, translator, results)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	return writeResults(cmd.OutOrStdout(), translated, format, outputPath)
}

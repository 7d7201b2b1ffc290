package cli

import (
	"fmt"

	"github.com/mgpai22/shortscribe/internal/config"
	"github.com/mgpai22/shortscribe/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shortscribe",
	Short: "Clean transcripts for YouTube Shorts",
	Long: `shortscribe collects the Shorts of a YouTube channel, picks the best
caption track for each one and turns it into plain, readable text.

Manual captions are preferred over auto-generated ones. Videos without
captions can optionally be transcribed from their audio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVar(&configPath, "config", "", "Config file (default shortscribe.yaml)")
	flags.StringP("output", "o", "", "Output file path (default stdout)")
	flags.StringP("language", "l", "", "Preferred caption language code (e.g., en, es, fr)")

	flags.String("caption-provider", "", "Caption source (watchpage, ytdlp)")
	flags.String("ytdlp-path", "", "Path to the yt-dlp binary")
	flags.Float64("rps", 0, "Maximum requests per second to YouTube (0 disables throttling)")
	flags.String("speech-fallback", "", "Transcribe audio when a Short has no captions (gemini, openai)")
	flags.String("speech-model", "", "Model for the speech fallback")
	flags.String("translate-to", "", "Translate transcripts to this language")
	flags.String("translate-provider", "", "Translation provider (gemini, openai, anthropic)")
	flags.String("translate-model", "", "Model to use for translation")
}

// flags given on the command line win over every other config source
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	strs := map[string]*string{
		"language":           &c.Language,
		"caption-provider":   &c.Provider,
		"ytdlp-path":         &c.YtdlpPath,
		"speech-fallback":    &c.SpeechFallback,
		"speech-model":       &c.SpeechModel,
		"translate-to":       &c.TranslateTo,
		"translate-provider": &c.TranslateProvider,
		"translate-model":    &c.TranslateModel,
	}
	for name, dst := range strs {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("rps") {
		c.RequestsPerSecond, _ = flags.GetFloat64("rps")
	}
}

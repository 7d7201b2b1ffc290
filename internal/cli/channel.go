package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/youtube"
	"github.com/spf13/cobra"
)

var channelCmd = &cobra.Command{
	Use:   "channel [channel_url]",
	Short: "Fetch clean transcripts for a channel's Shorts",
	Long: `List the Shorts of a YouTube channel, oldest first, and fetch a clean
transcript for each one.

Every Short gets an entry in the output, in order. Shorts without a usable
transcript are reported as "No transcript available." and never stop the run.

Examples:
  shortscribe channel https://www.youtube.com/@somechannel
  shortscribe channel @somechannel --max-shorts 10 -l es
  shortscribe channel @somechannel -o transcripts.json
  shortscribe channel @somechannel --speech-fallback gemini --translate-to english`,
	Args: cobra.ExactArgs(1),
	RunE: runChannel,
}

func init() {
	rootCmd.AddCommand(channelCmd)

	channelCmd.Flags().
		IntP("max-shorts", "n", 0, "Maximum number of Shorts to process, 1-500 (default from config, 50)")
	channelCmd.Flags().
		StringP("format", "f", "", "Output format (text, json); inferred from -o when empty")
}

func runChannel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	maxShorts := cfg.MaxShorts
	if cmd.Flags().Changed("max-shorts") {
		maxShorts, _ = cmd.Flags().GetInt("max-shorts")
	}
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := resolveFormat(formatStr, outputPath)
	if err != nil {
		return err
	}

	source, err := newSegmentSource(ctx, cfg, logger)
	if err != nil {
		return err
	}

	lister := youtube.NewShortsLister(cfg.YtdlpPath, cfg.YtdlpTimeout, logger)
	runner := pipeline.NewRunner(lister, pipeline.NewProcessor(source, logger), logger)

	report := runner.Run(ctx, pipeline.Request{
		ChannelURL: args[0],
		Language:   cfg.Language,
		MaxShorts:  maxShorts,
	})
	if report.Failed() {
		if errors.Is(report.Failure, youtube.ErrYtdlpNotInstalled) {
			return fmt.Errorf("%w: install it from https://github.com/yt-dlp/yt-dlp", report.Failure)
		}
		return report.Failure
	}
	if report.Warning != "" {
		logger.Warnw(report.Warning, "channel", report.ChannelURL)
	}

	results := maybeTranslate(ctx, cfg, report.Results)

	logger.Infow("Transcripts collected",
		"shorts", len(results),
		"transcripts", countTranscripts(results),
	)

	return writeResults(cmd.OutOrStdout(), results, format, outputPath)
}

package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/shortscribe/internal/pipeline"
	"github.com/mgpai22/shortscribe/internal/youtube"
	"github.com/spf13/cobra"
)

var videosCmd = &cobra.Command{
	Use:   "videos [video_id_or_url...]",
	Short: "Fetch clean transcripts for specific videos",
	Long: `Fetch a clean transcript for each given video, in argument order.

Arguments may be 11-character video IDs or any youtube.com / youtu.be URL,
including /shorts/ links. No channel lookup is done.

Examples:
  shortscribe videos dQw4w9WgXcQ
  shortscribe videos https://www.youtube.com/shorts/abcdefghijk https://youtu.be/dQw4w9WgXcQ
  shortscribe videos dQw4w9WgXcQ -f json -o out.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVideos,
}

func init() {
	rootCmd.AddCommand(videosCmd)

	videosCmd.Flags().
		StringP("format", "f", "", "Output format (text, json); inferred from -o when empty")
}

func videoRefs(args []string) ([]pipeline.VideoRef, error) {
	videos := make([]pipeline.VideoRef, 0, len(args))
	for _, arg := range args {
		id, err := youtube.ParseVideoID(arg)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", arg, err)
		}
		videos = append(videos, pipeline.VideoRef{
			ID:  id,
			URL: "https://youtu.be/" + id,
		})
	}
	return videos, nil
}

func runVideos(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := resolveFormat(formatStr, outputPath)
	if err != nil {
		return err
	}

	videos, err := videoRefs(args)
	if err != nil {
		return err
	}

	source, err := newSegmentSource(ctx, cfg, logger)
	if err != nil {
		return err
	}

	results, err := pipeline.NewProcessor(source, logger).Process(ctx, videos, cfg.Language)
	if err != nil {
		return err
	}

	results = maybeTranslate(ctx, cfg, results)

	logger.Infow("Transcripts collected",
		"videos", len(results),
		"transcripts", countTranscripts(results),
	)

	return writeResults(cmd.OutOrStdout(), results, format, outputPath)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgpai22/shortscribe/internal/audio"
	"github.com/mgpai22/shortscribe/internal/youtube"
	"github.com/spf13/cobra"
)

var audioCmd = &cobra.Command{
	Use:   "audio [video_id_or_url]",
	Short: "Download a Short's audio as prepared for speech-to-text",
	Long: `Download the audio track of a video with yt-dlp and compress it the way
the speech fallback does (16 kHz mono mp3). Useful to check what a
transcription provider will hear.

Examples:
  shortscribe audio dQw4w9WgXcQ
  shortscribe audio https://www.youtube.com/shorts/abcdefghijk -o clip.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runAudio,
}

func init() {
	rootCmd.AddCommand(audioCmd)
}

func runAudio(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	videoID, err := youtube.ParseVideoID(args[0])
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = videoID + ".mp3"
	}

	logger.Infow("Downloading audio",
		"video", videoID,
		"output", outputPath,
	)

	downloader := audio.NewDownloader(cfg.YtdlpPath, cfg.YtdlpTimeout, logger)
	path, cleanup, err := downloader.Fetch(ctx, videoID)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer cleanup()

	if err := copyFile(path, outputPath); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Audio saved: %s\n", absOutput)

	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	appsegment "audio-segment-downloader/application/segment"
	"audio-segment-downloader/domain/segment"
	"audio-segment-downloader/infrastructure/config"
	"audio-segment-downloader/infrastructure/ffmpeg"
	"audio-segment-downloader/infrastructure/filesystem"
	"audio-segment-downloader/infrastructure/logging"
	"audio-segment-downloader/infrastructure/ytdlp"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     = zerolog.Nop()
	outputPath string
)

var rootCmd = &cobra.Command{
	Use:   "audio-segment-downloader <source_url> <start> <end>",
	Short: "Download the audio of an online video and cut out a time range",
	Long: `audio-segment-downloader fetches the audio track of an online video with yt-dlp
and cuts the requested range out of it with ffmpeg.

Start and end markers are passed to ffmpeg as given (HH:MM:SS, MM:SS or seconds).
Run without arguments to start the web interface.

Example:
  audio-segment-downloader "https://www.youtube.com/watch?v=abc" 00:01:00 00:02:30 -o clip.mp3`,
	Args:              segmentArgs,
	PersistentPreRunE: initConfig,
	RunE:              runRoot,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command and exits with status 1 on any error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", segment.DefaultOutputName, "Output file path")
}

// segmentArgs accepts either no arguments (web mode) or exactly url, start and end
func segmentArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || len(args) == 3 {
		return nil
	}
	return fmt.Errorf("accepts <source_url> <start> <end>, received %d arg(s)", len(args))
}

func initConfig(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	loaded, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	logger = log
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return RunServe(cmd.Context(), cfg, cfg.Server.Addr, logger)
	}

	fetcher, trimmer := newAdapters(cfg)
	return RunSegmentWithDependencies(
		cmd.Context(),
		fetcher,
		trimmer,
		filesystem.NewChecker(),
		cfg.Paths.WorkDirectory,
		fetcher.AudioFormat(),
		args[0],
		args[1],
		args[2],
		outputPath,
		logger,
		os.Stdout,
	)
}

// newAdapters builds the production fetcher and trimmer from configuration
func newAdapters(c *config.Config) (*ytdlp.Fetcher, *ffmpeg.Trimmer) {
	fetcher := ytdlp.NewFetcher(
		ytdlp.WithFormat(c.Fetcher.Format),
		ytdlp.WithAudio(c.Fetcher.AudioFormat, c.Fetcher.AudioQuality),
		ytdlp.WithBinaryPath(c.Fetcher.BinaryPath),
		ytdlp.WithFFmpegLocation(c.FFmpeg.Path),
		ytdlp.WithAutoInstall(c.Fetcher.AutoInstall),
	)
	trimmer := ffmpeg.NewTrimmer(ffmpeg.WithFFmpegPath(c.FFmpeg.Path))
	return fetcher, trimmer
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// RunSegmentWithDependencies runs one fetch-and-trim with injected dependencies (for testing)
func RunSegmentWithDependencies(
	ctx context.Context,
	fetcher segment.Fetcher,
	trimmer segment.Trimmer,
	fileChecker segment.FileChecker,
	workDir string,
	audioFormat string,
	sourceURL string,
	startTime string,
	endTime string,
	output string,
	log zerolog.Logger,
	out OutputWriter,
) error {
	if _, err := segment.NewRequest(sourceURL, startTime, endTime, output); err != nil {
		return err
	}

	// Verify ffmpeg is available if trimmer supports it
	if verifiable, ok := trimmer.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	service := appsegment.NewService(
		fetcher,
		trimmer,
		fileChecker,
		workDir,
		appsegment.WithAudioFormat(audioFormat),
		appsegment.WithLogger(log),
	)

	result, err := service.Produce(ctx, appsegment.Input{
		SourceURL:  sourceURL,
		StartTime:  startTime,
		EndTime:    endTime,
		OutputPath: output,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Audio segment downloaded to %s\n", result.OutputPath)
	return nil
}

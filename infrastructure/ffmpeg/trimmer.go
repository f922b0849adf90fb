package ffmpeg

import (
	"context"
	"fmt"

	"audio-segment-downloader/domain/segment"
)

// Trimmer implements segment.Trimmer using ffmpeg
type Trimmer struct {
	ffmpegPath string
	runner     CommandRunner
}

// TrimmerOption is a functional option for configuring Trimmer
type TrimmerOption func(*Trimmer)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) TrimmerOption {
	return func(t *Trimmer) {
		if path != "" {
			t.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) TrimmerOption {
	return func(t *Trimmer) {
		t.runner = runner
	}
}

// NewTrimmer creates a new FFmpeg-based trimmer
func NewTrimmer(opts ...TrimmerOption) *Trimmer {
	t := &Trimmer{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Args returns the ffmpeg argument list for a trim. Markers are passed through unmodified.
func Args(req segment.TrimRequest, outputPath string) []string {
	return []string{
		"-i", req.InputPath,
		"-ss", req.Start.String(),
		"-to", req.End.String(),
		"-c:a", "copy",
		"-y", // Overwrite output file if it exists
		outputPath,
	}
}

// Trim implements segment.Trimmer
func (t *Trimmer) Trim(ctx context.Context, req segment.TrimRequest, outputPath string) error {
	if err := t.runner.Run(ctx, t.ffmpegPath, Args(req, outputPath)...); err != nil {
		return fmt.Errorf("ffmpeg trim failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (t *Trimmer) VerifyInstalled(ctx context.Context) error {
	_, err := t.runner.Output(ctx, t.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Trimmer implements segment.Trimmer
var _ segment.Trimmer = (*Trimmer)(nil)

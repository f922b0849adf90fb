package ytdlp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"audio-segment-downloader/domain/segment"

	"github.com/lrstanley/go-ytdlp"
)

// Options is the resolved set of yt-dlp settings for one download
type Options struct {
	Format         string
	AudioFormat    string
	AudioQuality   string
	BinaryPath     string
	FFmpegLocation string
	OutputTemplate string
}

// DownloadFunc performs one yt-dlp download. It is swapped out in tests.
type DownloadFunc func(ctx context.Context, opts Options, sourceURL string) error

// InstallFunc makes a yt-dlp executable available
type InstallFunc func(ctx context.Context) error

// Fetcher implements segment.Fetcher using yt-dlp
type Fetcher struct {
	format       string
	audioFormat  string
	audioQuality string
	binaryPath   string
	ffmpegPath   string
	autoInstall  bool

	download DownloadFunc
	install  InstallFunc

	installMu sync.Mutex
	installed bool
}

// FetcherOption is a functional option for configuring Fetcher
type FetcherOption func(*Fetcher)

// WithFormat sets the yt-dlp format selector
func WithFormat(format string) FetcherOption {
	return func(f *Fetcher) {
		if format != "" {
			f.format = format
		}
	}
}

// WithAudio sets the codec and quality yt-dlp transcodes into
func WithAudio(format, quality string) FetcherOption {
	return func(f *Fetcher) {
		if format != "" {
			f.audioFormat = format
		}
		if quality != "" {
			f.audioQuality = quality
		}
	}
}

// WithBinaryPath sets a custom yt-dlp executable path
func WithBinaryPath(path string) FetcherOption {
	return func(f *Fetcher) {
		f.binaryPath = path
	}
}

// WithFFmpegLocation points yt-dlp's audio extraction at a specific ffmpeg.
// A bare command name such as "ffmpeg" is left to yt-dlp's own PATH lookup.
func WithFFmpegLocation(path string) FetcherOption {
	return func(f *Fetcher) {
		if path != "" && filepath.Base(path) != path {
			f.ffmpegPath = path
		}
	}
}

// WithAutoInstall downloads a yt-dlp build before the first fetch
func WithAutoInstall(enabled bool) FetcherOption {
	return func(f *Fetcher) {
		f.autoInstall = enabled
	}
}

// WithDownloadFunc sets a custom download implementation (for testing)
func WithDownloadFunc(fn DownloadFunc) FetcherOption {
	return func(f *Fetcher) {
		f.download = fn
	}
}

// WithInstallFunc sets a custom installer (for testing)
func WithInstallFunc(fn InstallFunc) FetcherOption {
	return func(f *Fetcher) {
		f.install = fn
	}
}

// NewFetcher creates a new yt-dlp based fetcher
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		format:       "bestaudio/best",
		audioFormat:  "mp3",
		audioQuality: "192",
		download:     runYTDLP,
		install:      installYTDLP,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// AudioFormat returns the codec fetched files are transcoded into
func (f *Fetcher) AudioFormat() string {
	return f.audioFormat
}

// Fetch implements segment.Fetcher. Errors from yt-dlp are returned as is.
func (f *Fetcher) Fetch(ctx context.Context, req segment.FetchRequest) error {
	if f.autoInstall {
		if err := f.ensureInstalled(ctx); err != nil {
			return fmt.Errorf("yt-dlp install failed: %w", err)
		}
	}

	return f.download(ctx, f.options(req.DestPath), req.SourceURL)
}

// ensureInstalled runs the installer until it succeeds once. A failed or cancelled
// install is retried by the next fetch.
func (f *Fetcher) ensureInstalled(ctx context.Context) error {
	f.installMu.Lock()
	defer f.installMu.Unlock()

	if f.installed {
		return nil
	}
	if err := f.install(ctx); err != nil {
		return err
	}
	f.installed = true
	return nil
}

func (f *Fetcher) options(destPath string) Options {
	return Options{
		Format:         f.format,
		AudioFormat:    f.audioFormat,
		AudioQuality:   f.audioQuality,
		BinaryPath:     f.binaryPath,
		FFmpegLocation: f.ffmpegPath,
		OutputTemplate: OutputTemplate(destPath),
	}
}

// OutputTemplate turns the wanted destination into a yt-dlp output template.
// yt-dlp picks the extension after audio extraction, so the template ends in %(ext)s.
func OutputTemplate(destPath string) string {
	ext := filepath.Ext(destPath)
	return strings.TrimSuffix(destPath, ext) + ".%(ext)s"
}

// newCommand translates opts into a yt-dlp invocation
func newCommand(opts Options) *ytdlp.Command {
	dl := ytdlp.New().
		Format(opts.Format).
		ExtractAudio().
		AudioFormat(opts.AudioFormat).
		AudioQuality(opts.AudioQuality).
		NoPlaylist().
		ForceOverwrites().
		Output(opts.OutputTemplate)

	if opts.FFmpegLocation != "" {
		dl.FFmpegLocation(opts.FFmpegLocation)
	}
	if opts.BinaryPath != "" {
		dl.SetExecutable(opts.BinaryPath)
	}
	return dl
}

func runYTDLP(ctx context.Context, opts Options, sourceURL string) error {
	_, err := newCommand(opts).Run(ctx, sourceURL)
	return err
}

func installYTDLP(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

// Ensure Fetcher implements segment.Fetcher
var _ segment.Fetcher = (*Fetcher)(nil)

package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"audio-segment-downloader/domain/segment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Input represents the input for one produce operation
type Input struct {
	SourceURL  string
	StartTime  string
	EndTime    string
	OutputPath string // Optional, defaults to segment.DefaultOutputName
	RunID      string // Optional, names the scratch directory and log lines
}

// Result contains the result of a produce operation
type Result struct {
	OutputPath string
	RunID      string
	Elapsed    time.Duration
}

// Service sequences fetch, trim and scratch cleanup
type Service struct {
	fetcher     segment.Fetcher
	trimmer     segment.Trimmer
	fileChecker segment.FileChecker
	workDir     string
	audioFormat string
	log         zerolog.Logger
	newID       func() string
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithAudioFormat sets the extension of the intermediate file the fetcher writes
func WithAudioFormat(format string) ServiceOption {
	return func(s *Service) {
		if format != "" {
			s.audioFormat = format
		}
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// WithIDGenerator sets the run id generator (for testing)
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		s.newID = fn
	}
}

// NewService creates a new Service
func NewService(fetcher segment.Fetcher, trimmer segment.Trimmer, fileChecker segment.FileChecker, workDir string, opts ...ServiceOption) *Service {
	s := &Service{
		fetcher:     fetcher,
		trimmer:     trimmer,
		fileChecker: fileChecker,
		workDir:     workDir,
		audioFormat: "mp3",
		log:         zerolog.Nop(),
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Produce downloads the source's audio into a private scratch directory, cuts the
// requested range into input.OutputPath and removes the scratch directory on every path.
func (s *Service) Produce(ctx context.Context, input Input) (*Result, error) {
	started := time.Now()

	req, err := segment.NewRequest(input.SourceURL, input.StartTime, input.EndTime, input.OutputPath)
	if err != nil {
		return nil, err
	}

	runID := s.runID(input.RunID)
	log := s.log.With().Str("run_id", runID).Logger()

	if err := os.MkdirAll(s.workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	// Mkdir rather than MkdirAll: two runs must never share a scratch directory
	scratch := filepath.Join(s.workDir, runID)
	if err := os.Mkdir(scratch, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warn().Err(err).Str("scratch", scratch).Msg("failed to remove scratch directory")
		}
	}()

	intermediate := filepath.Join(scratch, segment.IntermediateName(s.audioFormat))

	log.Info().Str("source_url", req.SourceURL).Msg("fetching audio")
	if err := s.fetcher.Fetch(ctx, segment.FetchRequest{SourceURL: req.SourceURL, DestPath: intermediate}); err != nil {
		log.Error().Err(err).Msg("fetch failed")
		return nil, segment.NewFetchError(err)
	}

	fetched, ok := s.locateIntermediate(intermediate)
	if !ok {
		return nil, segment.NewFetchError(fmt.Errorf("%w: %s", segment.ErrIntermediateMissing, intermediate))
	}
	intermediate = fetched

	if dir := req.OutputDir(); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	ev := log.Info().
		Str("start", req.Start.String()).
		Str("end", req.End.String()).
		Str("output", req.OutputPath)
	if span, ok := segment.Span(req.Start, req.End); ok {
		ev = ev.Float64("span_seconds", span.Seconds())
	}
	ev.Msg("trimming")

	trimReq := segment.TrimRequest{InputPath: intermediate, Start: req.Start, End: req.End}
	if err := s.trimmer.Trim(ctx, trimReq, req.OutputPath); err != nil {
		trimErr := segment.NewTrimError(err)
		log.Error().Err(err).Int("exit_code", trimErr.ExitCode).Msg("trim failed")
		return nil, trimErr
	}

	elapsed := time.Since(started)
	log.Info().Str("output", req.OutputPath).Dur("elapsed", elapsed).Msg("segment produced")

	return &Result{
		OutputPath: req.OutputPath,
		RunID:      runID,
		Elapsed:    elapsed,
	}, nil
}

// locateIntermediate returns the file the fetcher produced for expected. yt-dlp names
// the file after the container it settled on (vorbis becomes .ogg, aac .m4a, best
// keeps the source's), so any extension after the stem is accepted.
func (s *Service) locateIntermediate(expected string) (string, bool) {
	if s.fileChecker.Exists(expected) {
		return expected, true
	}

	dir := filepath.Dir(expected)
	prefix := strings.TrimSuffix(filepath.Base(expected), filepath.Ext(expected)) + "."
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || partial(name) {
			continue
		}
		if path := filepath.Join(dir, name); s.fileChecker.Exists(path) {
			return path, true
		}
	}
	return "", false
}

// partial reports leftovers of an interrupted yt-dlp download
func partial(name string) bool {
	return strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl")
}

// runID returns id when it is usable as a single path element, otherwise a fresh one
func (s *Service) runID(id string) string {
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id {
		return s.newID()
	}
	return id
}

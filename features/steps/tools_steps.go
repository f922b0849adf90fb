//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"audio-segment-downloader/domain/segment"
	"audio-segment-downloader/infrastructure/ffmpeg"

	"github.com/cucumber/godog"
)

// fakeFetcher stands in for yt-dlp
type fakeFetcher struct {
	failError    error
	writeNothing bool
	calls        []segment.FetchRequest
}

func (f *fakeFetcher) Fetch(ctx context.Context, req segment.FetchRequest) error {
	f.calls = append(f.calls, req)
	if f.failError != nil {
		return f.failError
	}
	if f.writeNothing {
		return nil
	}
	return os.WriteFile(req.DestPath, []byte("full audio"), 0644)
}

// exitError mimics a subprocess that exited with a status
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d: %s", e.code, e.msg) }
func (e *exitError) ExitCode() int { return e.code }

// fakeTrimmer stands in for ffmpeg and records the argument list it would run
type fakeTrimmer struct {
	failError error
	calls     [][]string
}

func (t *fakeTrimmer) Trim(ctx context.Context, req segment.TrimRequest, outputPath string) error {
	t.calls = append(t.calls, ffmpeg.Args(req, outputPath))
	if t.failError != nil {
		return fmt.Errorf("ffmpeg trim failed: %w", t.failError)
	}
	return os.WriteFile(outputPath, []byte("clip"), 0644)
}

type statChecker struct{}

func (statChecker) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// toolContext is the fake yt-dlp and ffmpeg shared by CLI and web scenarios
type toolContext struct {
	fetcher *fakeFetcher
	trimmer *fakeTrimmer
}

// SharedToolContext is reset before each scenario via Before hook
var SharedToolContext *toolContext

func getToolContext() *toolContext {
	return SharedToolContext
}

func InitializeToolScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedToolContext = &toolContext{
			fetcher: &fakeFetcher{},
			trimmer: &fakeTrimmer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedToolContext = nil
		return c, nil
	})

	ctx.Step(`^the source serves audio$`, theSourceServesAudio)
	ctx.Step(`^the source cannot be fetched: "([^"]*)"$`, theSourceCannotBeFetched)
	ctx.Step(`^the source reports success without writing audio$`, theSourceReportsSuccessWithoutWritingAudio)
	ctx.Step(`^ffmpeg fails with exit code (\d+) and message "([^"]*)"$`, ffmpegFailsWithExitCodeAndMessage)
	ctx.Step(`^ffmpeg should have been called with arguments:$`, ffmpegShouldHaveBeenCalledWithArguments)
	ctx.Step(`^ffmpeg should not have been called$`, ffmpegShouldNotHaveBeenCalled)
}

func theSourceServesAudio() error {
	return nil
}

func theSourceCannotBeFetched(msg string) error {
	getToolContext().fetcher.failError = errors.New(msg)
	return nil
}

func theSourceReportsSuccessWithoutWritingAudio() error {
	getToolContext().fetcher.writeNothing = true
	return nil
}

func ffmpegFailsWithExitCodeAndMessage(code, msg string) error {
	n, err := strconv.Atoi(code)
	if err != nil {
		return err
	}
	getToolContext().trimmer.failError = &exitError{code: n, msg: msg}
	return nil
}

// ffmpegShouldHaveBeenCalledWithArguments compares the whole argument list.
// <intermediate> and <output> stand for the scratch file and the requested output.
func ffmpegShouldHaveBeenCalledWithArguments(table *godog.Table) error {
	t := getToolContext()
	if len(t.trimmer.calls) == 0 {
		return fmt.Errorf("ffmpeg was not called")
	}
	if len(t.fetcher.calls) == 0 {
		return fmt.Errorf("yt-dlp was not called")
	}
	got := t.trimmer.calls[0]

	var want []string
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		want = append(want, row.Cells[0].Value)
	}

	if len(got) != len(want) {
		return fmt.Errorf("expected %d arguments, got %d: %v", len(want), len(got), got)
	}
	output := got[len(got)-1]
	for i, w := range want {
		switch w {
		case "<intermediate>":
			w = t.fetcher.calls[0].DestPath
		case "<output>":
			w = output
		}
		if got[i] != w {
			return fmt.Errorf("argument %d: expected %q, got %q (%v)", i, w, got[i], got)
		}
	}
	return nil
}

func ffmpegShouldNotHaveBeenCalled() error {
	if n := len(getToolContext().trimmer.calls); n != 0 {
		return fmt.Errorf("expected no ffmpeg calls, got %d", n)
	}
	return nil
}

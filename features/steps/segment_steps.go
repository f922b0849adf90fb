//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"audio-segment-downloader/cmd"
	"audio-segment-downloader/domain/segment"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
)

// segmentContext holds test state for command line scenarios
type segmentContext struct {
	tempDir    string
	workDir    string
	outputPath string
	output     *bytes.Buffer
	err        error
}

// SharedSegmentContext is reset before each scenario via Before hook
var SharedSegmentContext *segmentContext

func getSegmentContext() *segmentContext {
	return SharedSegmentContext
}

func InitializeSegmentScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "segment-test-*")
		if err != nil {
			return c, err
		}
		SharedSegmentContext = &segmentContext{
			tempDir: tempDir,
			workDir: filepath.Join(tempDir, "temp"),
			output:  &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if s := getSegmentContext(); s != nil {
			os.RemoveAll(s.tempDir)
		}
		SharedSegmentContext = nil
		return c, nil
	})

	ctx.Step(`^I cut "([^"]*)" from "([^"]*)" to "([^"]*)" into "([^"]*)"$`, iCutFromToInto)
	ctx.Step(`^I cut "([^"]*)" from "([^"]*)" to "([^"]*)"$`, iCutFromTo)
	ctx.Step(`^the clip "([^"]*)" should exist$`, theClipShouldExist)
	ctx.Step(`^the command should report the clip "([^"]*)"$`, theCommandShouldReportTheClip)
	ctx.Step(`^the working directory should be empty$`, theWorkingDirectoryShouldBeEmpty)
	ctx.Step(`^I should receive a (validation|fetch|trim) error "([^"]*)"$`, iShouldReceiveAnErrorOfKind)
	ctx.Step(`^the error exit code should be (-?\d+)$`, theErrorExitCodeShouldBe)
}

func runSegment(url, start, end, output string) {
	s := getSegmentContext()
	t := getToolContext()

	s.outputPath = output
	s.err = cmd.RunSegmentWithDependencies(
		context.Background(),
		t.fetcher,
		t.trimmer,
		statChecker{},
		s.workDir,
		"mp3",
		url,
		start,
		end,
		output,
		zerolog.Nop(),
		s.output,
	)
}

func iCutFromToInto(url, start, end, name string) error {
	s := getSegmentContext()
	runSegment(url, start, end, filepath.Join(s.tempDir, name))
	return nil
}

func iCutFromTo(url, start, end string) error {
	s := getSegmentContext()
	runSegment(url, start, end, filepath.Join(s.tempDir, segment.DefaultOutputName))
	return nil
}

func theClipShouldExist(name string) error {
	s := getSegmentContext()
	if s.err != nil {
		return fmt.Errorf("unexpected error: %v", s.err)
	}
	if _, err := os.Stat(filepath.Join(s.tempDir, name)); err != nil {
		return fmt.Errorf("expected clip %s: %v", name, err)
	}
	return nil
}

func theCommandShouldReportTheClip(name string) error {
	s := getSegmentContext()
	want := "Audio segment downloaded to " + filepath.Join(s.tempDir, name) + "\n"
	if s.output.String() != want {
		return fmt.Errorf("expected output %q, got %q", want, s.output.String())
	}
	return nil
}

func theWorkingDirectoryShouldBeEmpty() error {
	s := getSegmentContext()
	entries, err := os.ReadDir(s.workDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) != 0 {
		return fmt.Errorf("expected empty working directory, found %d entries", len(entries))
	}
	return nil
}

func iShouldReceiveAnErrorOfKind(kind, msg string) error {
	s := getSegmentContext()
	if s.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if got := segment.KindOf(s.err).String(); got != kind {
		return fmt.Errorf("expected %s error, got %s: %v", kind, got, s.err)
	}
	if !strings.Contains(s.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, s.err.Error())
	}
	return nil
}

func theErrorExitCodeShouldBe(code string) error {
	s := getSegmentContext()
	want, err := strconv.Atoi(code)
	if err != nil {
		return err
	}
	if got := segment.ExitCodeOf(s.err); got != want {
		return fmt.Errorf("expected exit code %d, got %d", want, got)
	}
	return nil
}

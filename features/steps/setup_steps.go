//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audio-segment-downloader/cmd"
	"audio-segment-downloader/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		SharedSetupContext = &setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedSetupContext.tempDir != "" {
			os.RemoveAll(SharedSetupContext.tempDir)
		}
		SharedSetupContext = &setupContext{}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, aConfigFileShouldExist)
	ctx.Step(`^the config should have (work_directory|output_directory|addr|ffmpeg_path|audio_format|folder_id) "([^"]*)"$`, theConfigShouldHave)
	ctx.Step(`^the setup should fail with "([^"]*)"$`, theSetupShouldFailWith)
	ctx.Step(`^the setup should be cancelled$`, theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, theExistingConfigShouldBeUnchanged)
}

func noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(SharedSetupContext.configPath), 0755)
}

func aConfigFileAlreadyExistsForSetup() error {
	s := SharedSetupContext
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `paths:
  work_directory: "/original/temp"
server:
  addr: "127.0.0.1:5001"
  output_directory: "/original/downloads"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func iRunTheSetupCommandWithInputs(table *godog.Table) error {
	s := SharedSetupContext
	inputs, confirms := parseInputTable(table)
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(inputs, confirms), s.configPath, s.output)
	return nil
}

func iRunTheSetupCommandWithConfirmation(confirmation string) error {
	s := SharedSetupContext
	confirm := strings.ToLower(confirmation) == "y"

	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(nil, []bool{confirm}), s.configPath, s.output)
	if !confirm {
		s.setupCancelled = true
	}
	return nil
}

// parseInputTable splits answers into text inputs and y/n confirmations, keeping order
func parseInputTable(table *godog.Table) ([]string, []bool) {
	var inputs []string
	var confirms []bool

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		value := row.Cells[1].Value
		switch strings.ToLower(value) {
		case "y":
			confirms = append(confirms, true)
		case "n":
			confirms = append(confirms, false)
		default:
			inputs = append(inputs, value)
		}
	}

	return inputs, confirms
}

func aConfigFileShouldExist() error {
	s := SharedSetupContext
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func theConfigShouldHave(key, expected string) error {
	cfg, err := config.Load(SharedSetupContext.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	values := map[string]string{
		"work_directory":   cfg.Paths.WorkDirectory,
		"output_directory": cfg.Server.OutputDirectory,
		"addr":             cfg.Server.Addr,
		"ffmpeg_path":      cfg.FFmpeg.Path,
		"audio_format":     cfg.Fetcher.AudioFormat,
		"folder_id":        cfg.Google.FolderID,
	}
	if got := values[key]; got != expected {
		return fmt.Errorf("expected %s %q, got %q", key, expected, got)
	}
	return nil
}

func theSetupShouldFailWith(msg string) error {
	s := SharedSetupContext
	if s.err == nil {
		return fmt.Errorf("expected setup to fail")
	}
	if !strings.Contains(s.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, s.err.Error())
	}
	return nil
}

func theSetupShouldBeCancelled() error {
	s := SharedSetupContext
	if !s.setupCancelled {
		return fmt.Errorf("setup was not cancelled")
	}
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected cancellation message, got %q", s.output.String())
	}
	return nil
}

func theExistingConfigShouldBeUnchanged() error {
	s := SharedSetupContext
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config was modified")
	}
	return nil
}

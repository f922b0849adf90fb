package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"audio-segment-downloader/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// errPromptCancelled is returned when the user aborts a prompt
var errPromptCancelled = errors.New("prompt cancelled")

// audioFormats lists the formats yt-dlp can extract audio to
var audioFormats = map[string]bool{
	"best": true, "aac": true, "alac": true, "flac": true, "m4a": true,
	"mp3": true, "opus": true, "vorbis": true, "wav": true,
}

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

Covers the working directory, web server settings, ffmpeg and yt-dlp options,
and optional Google Drive upload settings.`,
	Args: cobra.NoArgs,
	// setup must run even when the existing file does not parse
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			cfgFile = config.DefaultPath
		}
		return nil
	},
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(filepath.Base(configPath)+" already exists. Overwrite?", false)
		if err != nil {
			return errPromptCancelled
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to audio-segment-downloader setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptTools(prompter, cfg); err != nil {
		return err
	}
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

// inputOrDefault prompts and falls back to def on an empty answer
func inputOrDefault(prompter Prompter, message, def string) (string, error) {
	v, err := prompter.Input(message, def)
	if err != nil {
		return "", errPromptCancelled
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	var err error

	if cfg.Paths.WorkDirectory, err = inputOrDefault(prompter, "Working directory for downloads in progress?", cfg.Paths.WorkDirectory); err != nil {
		return err
	}
	if cfg.Server.OutputDirectory, err = inputOrDefault(prompter, "Where should the web interface keep finished clips?", cfg.Server.OutputDirectory); err != nil {
		return err
	}
	if cfg.Server.Addr, err = inputOrDefault(prompter, "Web interface listen address?", cfg.Server.Addr); err != nil {
		return err
	}

	keep, err := prompter.Confirm("Keep clips on disk after they are downloaded?", true)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Server.KeepOutputs = &keep

	return nil
}

func promptTools(prompter Prompter, cfg *config.Config) error {
	var err error

	if cfg.FFmpeg.Path, err = inputOrDefault(prompter, "Path to ffmpeg?", cfg.FFmpeg.Path); err != nil {
		return err
	}

	format, err := inputOrDefault(prompter, "Audio format to extract?", cfg.Fetcher.AudioFormat)
	if err != nil {
		return err
	}
	if !audioFormats[format] {
		return fmt.Errorf("unsupported audio format %q", format)
	}
	cfg.Fetcher.AudioFormat = format

	if cfg.Fetcher.AudioQuality, err = inputOrDefault(prompter, "Audio quality (0-10 or bitrate like 192)?", cfg.Fetcher.AudioQuality); err != nil {
		return err
	}

	install, err := prompter.Confirm("Download yt-dlp automatically if it is missing?", false)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Fetcher.AutoInstall = install

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	enable, err := prompter.Confirm("Configure Google Drive uploads?", false)
	if err != nil {
		return errPromptCancelled
	}
	if !enable {
		return nil
	}

	if cfg.Google.CredentialsFile, err = inputOrDefault(prompter, "Path to Google credentials file?", cfg.Google.CredentialsFile); err != nil {
		return err
	}
	if cfg.Google.TokenFile, err = inputOrDefault(prompter, "Where should the OAuth token be cached?", cfg.Google.TokenFile); err != nil {
		return err
	}

	folder, err := prompter.Input("Google Drive folder ID for clips?", "")
	if err != nil {
		return errPromptCancelled
	}
	if folder == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.FolderID = folder

	return nil
}

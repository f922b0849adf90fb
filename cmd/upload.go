package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	appdist "audio-segment-downloader/application/distribution"
	"audio-segment-downloader/domain/distribution"
	"audio-segment-downloader/infrastructure/drive"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a clip to Google Drive with public sharing",
	Long: `Upload a produced clip to the configured Google Drive folder and share it
with "anyone with the link" read access.

A file with the same name already in the folder is replaced. When google.token_file
is set, the OAuth installed-app flow is used and the token is cached there;
otherwise credentials_file is treated as a service account key.

Example:
  audio-segment-downloader upload clip.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	g := cfg.Google

	var (
		client *drive.Client
		err    error
	)
	if g.TokenFile != "" {
		client, err = drive.NewClientWithOAuth(ctx, g.CredentialsFile, g.TokenFile)
	} else {
		client, err = drive.NewClient(ctx, g.CredentialsFile)
	}
	if err != nil {
		return fmt.Errorf("failed to create Google Drive client: %w", err)
	}

	return RunUploadWithDependencies(ctx, client, g.FolderID, args[0], logger, os.Stdout)
}

// RunUploadWithDependencies runs the upload command with injected dependencies (for testing)
func RunUploadWithDependencies(
	ctx context.Context,
	driveClient distribution.DriveClient,
	folderID string,
	clipPath string,
	log zerolog.Logger,
	output OutputWriter,
) error {
	service := appdist.NewUploadService(driveClient, folderID, appdist.WithLogger(log))

	fmt.Fprintf(output, "Uploading %s...\n", filepath.Base(clipPath))
	result, err := service.UploadClip(ctx, clipPath)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Fprintf(output, "Upload complete!\n")
	fmt.Fprintf(output, "  File ID: %s\n", result.FileID)
	fmt.Fprintf(output, "  Size: %.2f MB\n", float64(result.Size)/1024/1024)
	fmt.Fprintf(output, "  Shareable URL: %s\n", result.ShareableURL)
	return nil
}

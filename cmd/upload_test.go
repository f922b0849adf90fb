package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audio-segment-downloader/domain/distribution"

	"github.com/rs/zerolog"
)

type stubDriveClient struct {
	uploaded []distribution.UploadRequest
}

func (s *stubDriveClient) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	return nil, nil
}

func (s *stubDriveClient) GetStorageQuota(ctx context.Context) (*distribution.StorageInfo, error) {
	return &distribution.StorageInfo{}, nil
}

func (s *stubDriveClient) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	s.uploaded = append(s.uploaded, req)
	return &distribution.UploadResult{
		FileID:       "id-1",
		FileName:     req.FileName,
		ShareableURL: distribution.ShareableURL("id-1"),
		Size:         2 * 1024 * 1024,
	}, nil
}

func (s *stubDriveClient) DeletePermanently(ctx context.Context, fileID string) error {
	return nil
}

func TestRunUploadWithDependencies(t *testing.T) {
	clip := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(clip, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
	client := &stubDriveClient{}
	var out bytes.Buffer

	if err := RunUploadWithDependencies(context.Background(), client, "folder-1", clip, zerolog.Nop(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.uploaded) != 1 || client.uploaded[0].FolderID != "folder-1" {
		t.Errorf("uploaded = %+v", client.uploaded)
	}
	for _, want := range []string{"Uploading clip.mp3...", "File ID: id-1", "Size: 2.00 MB", "https://drive.google.com/file/d/id-1/view?usp=sharing"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunUploadWithDependencies_NoFolder(t *testing.T) {
	err := RunUploadWithDependencies(context.Background(), &stubDriveClient{}, "", "clip.mp3", zerolog.Nop(), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "folder id is not configured") {
		t.Errorf("error = %v", err)
	}
}

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
	"audio-segment-downloader/domain/distribution"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
)

// mockDriveClient keeps a folder listing in memory
type mockDriveClient struct {
	files   map[string]distribution.FileInfo
	deleted []string
	shared  []string
	nextID  int
}

func (m *mockDriveClient) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	if f, ok := m.files[name]; ok {
		return &f, nil
	}
	return nil, nil
}

func (m *mockDriveClient) GetStorageQuota(ctx context.Context) (*distribution.StorageInfo, error) {
	return &distribution.StorageInfo{}, nil
}

func (m *mockDriveClient) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	m.nextID++
	id := fmt.Sprintf("file-%d", m.nextID)
	m.files[req.FileName] = distribution.FileInfo{ID: id, Name: req.FileName, MimeType: req.MimeType}
	m.shared = append(m.shared, id)
	return &distribution.UploadResult{
		FileID:       id,
		FileName:     req.FileName,
		ShareableURL: distribution.ShareableURL(id),
	}, nil
}

func (m *mockDriveClient) DeletePermanently(ctx context.Context, fileID string) error {
	m.deleted = append(m.deleted, fileID)
	for name, f := range m.files {
		if f.ID == fileID {
			delete(m.files, name)
		}
	}
	return nil
}

type uploadContext struct {
	tempDir string
	client  *mockDriveClient
	output  *bytes.Buffer
	err     error
}

// SharedUploadContext is reset before each scenario via Before hook
var SharedUploadContext *uploadContext

func InitializeUploadScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "upload-test-*")
		if err != nil {
			return c, err
		}
		SharedUploadContext = &uploadContext{
			tempDir: tempDir,
			client:  &mockDriveClient{files: make(map[string]distribution.FileInfo)},
			output:  &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedUploadContext != nil {
			os.RemoveAll(SharedUploadContext.tempDir)
		}
		SharedUploadContext = nil
		return c, nil
	})

	ctx.Step(`^a local clip "([^"]*)"$`, aLocalClip)
	ctx.Step(`^the Drive folder already contains "([^"]*)" with id "([^"]*)"$`, theDriveFolderAlreadyContains)
	ctx.Step(`^I upload "([^"]*)"$`, iUpload)
	ctx.Step(`^the upload should succeed with a shareable link$`, theUploadShouldSucceedWithAShareableLink)
	ctx.Step(`^the Drive file "([^"]*)" should have been deleted$`, theDriveFileShouldHaveBeenDeleted)
	ctx.Step(`^the upload should fail with "([^"]*)"$`, theUploadShouldFailWith)
}

func aLocalClip(name string) error {
	return os.WriteFile(filepath.Join(SharedUploadContext.tempDir, name), []byte("clip"), 0644)
}

func theDriveFolderAlreadyContains(name, id string) error {
	SharedUploadContext.client.files[name] = distribution.FileInfo{ID: id, Name: name}
	return nil
}

func iUpload(name string) error {
	u := SharedUploadContext
	u.err = cmd.RunUploadWithDependencies(
		context.Background(),
		u.client,
		"folder-1",
		filepath.Join(u.tempDir, name),
		zerolog.Nop(),
		u.output,
	)
	return nil
}

func theUploadShouldSucceedWithAShareableLink() error {
	u := SharedUploadContext
	if u.err != nil {
		return fmt.Errorf("unexpected error: %v", u.err)
	}
	if len(u.client.shared) != 1 {
		return fmt.Errorf("expected one shared file, got %d", len(u.client.shared))
	}
	if !strings.Contains(u.output.String(), "https://drive.google.com/file/d/") {
		return fmt.Errorf("expected shareable URL in output, got %q", u.output.String())
	}
	return nil
}

func theDriveFileShouldHaveBeenDeleted(id string) error {
	for _, d := range SharedUploadContext.client.deleted {
		if d == id {
			return nil
		}
	}
	return fmt.Errorf("expected %s to be deleted, deleted: %v", id, SharedUploadContext.client.deleted)
}

func theUploadShouldFailWith(msg string) error {
	u := SharedUploadContext
	if u.err == nil {
		return fmt.Errorf("expected upload to fail")
	}
	if !strings.Contains(u.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, u.err.Error())
	}
	return nil
}

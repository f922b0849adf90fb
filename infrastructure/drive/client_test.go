package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"audio-segment-downloader/domain/distribution"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
)

// mockDriveService is a mock implementation for testing
type mockDriveService struct {
	files          []*drive.File
	shouldFail     bool
	failError      error
	storageLimit   int64
	storageUsage   int64
	noQuota        bool
	deletedFileIDs []string
	lastQuery      string
	uploaded       []string
	permissions    []*drive.Permission
	permissionErr  error
	webViewLink    string
}

func (m *mockDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error) {
	m.lastQuery = query
	if m.shouldFail {
		return nil, m.failError
	}
	return m.files, nil
}

func (m *mockDriveService) GetAbout(ctx context.Context, fields string) (*drive.About, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	if m.noQuota {
		return &drive.About{}, nil
	}
	return &drive.About{
		StorageQuota: &drive.AboutStorageQuota{
			Limit: m.storageLimit,
			Usage: m.storageUsage,
		},
	}, nil
}

func (m *mockDriveService) DeleteFile(ctx context.Context, fileID string) error {
	if m.shouldFail {
		return m.failError
	}
	m.deletedFileIDs = append(m.deletedFileIDs, fileID)
	return nil
}

func (m *mockDriveService) UploadFile(ctx context.Context, fileName, mimeType, folderID, localPath string) (*drive.File, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	m.uploaded = append(m.uploaded, strings.Join([]string{fileName, mimeType, folderID, localPath}, "|"))
	return &drive.File{
		Id:          "uploaded-file-id",
		Name:        fileName,
		MimeType:    mimeType,
		Size:        1024,
		WebViewLink: m.webViewLink,
	}, nil
}

func (m *mockDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	if m.permissionErr != nil {
		return m.permissionErr
	}
	m.permissions = append(m.permissions, permission)
	return nil
}

func newMockClient(t *testing.T, mock *mockDriveService) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), "", WithDriveService(mock))
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	return client
}

func TestClient_FindFileByName(t *testing.T) {
	created := time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    *mockDriveService
		wantNil bool
		wantID  string
		wantErr bool
		errMsg  string
	}{
		{
			name: "finds existing file",
			mock: &mockDriveService{files: []*drive.File{
				{Id: "file-1", Name: "output.mp3", MimeType: "audio/mpeg", Size: 2048, CreatedTime: created.Format(time.RFC3339)},
			}},
			wantID: "file-1",
		},
		{
			name:    "returns nil when absent",
			mock:    &mockDriveService{},
			wantNil: true,
		},
		{
			name: "handles API error",
			mock: &mockDriveService{
				shouldFail: true,
				failError:  fmt.Errorf("googleapi: Error 403: permission denied"),
			},
			wantErr: true,
			errMsg:  "failed to search for output.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t, tt.mock)

			got, err := client.FindFileByName(context.Background(), "folder-1", "output.mp3")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want to contain %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("expected nil, got %+v", got)
				}
				return
			}
			if got.ID != tt.wantID || !got.CreatedTime.Equal(created) {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestClient_FindFileByName_EscapesQuery(t *testing.T) {
	mock := &mockDriveService{}
	client := newMockClient(t, mock)

	_, _ = client.FindFileByName(context.Background(), "folder-1", `it's.mp3`)

	want := `name = 'it\'s.mp3' and 'folder-1' in parents and trashed = false`
	if mock.lastQuery != want {
		t.Errorf("query = %q, want %q", mock.lastQuery, want)
	}
}

func TestClient_GetStorageQuota(t *testing.T) {
	tests := []struct {
		name          string
		mock          *mockDriveService
		wantTotal     int64
		wantAvailable int64
		wantUnlimited bool
	}{
		{
			name:          "limited account",
			mock:          &mockDriveService{storageLimit: 1000, storageUsage: 400},
			wantTotal:     1000,
			wantAvailable: 600,
		},
		{
			name:          "unlimited account",
			mock:          &mockDriveService{storageUsage: 400},
			wantUnlimited: true,
		},
		{
			name:          "quota missing from response",
			mock:          &mockDriveService{noQuota: true},
			wantUnlimited: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t, tt.mock)

			info, err := client.GetStorageQuota(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.Unlimited() != tt.wantUnlimited {
				t.Errorf("Unlimited() = %v, want %v", info.Unlimited(), tt.wantUnlimited)
			}
			if !tt.wantUnlimited && (info.TotalBytes != tt.wantTotal || info.AvailableBytes != tt.wantAvailable) {
				t.Errorf("info = %+v", info)
			}
		})
	}
}

func TestClient_GetStorageQuota_Error(t *testing.T) {
	client := newMockClient(t, &mockDriveService{shouldFail: true, failError: fmt.Errorf("quota error")})

	if _, err := client.GetStorageQuota(context.Background()); err == nil || !strings.Contains(err.Error(), "failed to get storage quota") {
		t.Errorf("error = %v", err)
	}
}

func TestClient_UploadAndShare(t *testing.T) {
	mock := &mockDriveService{}
	client := newMockClient(t, mock)

	result, err := client.UploadAndShare(context.Background(), distribution.UploadRequest{
		LocalPath: "/tmp/output.mp3",
		FileName:  "output.mp3",
		FolderID:  "folder-1",
		MimeType:  distribution.MimeTypeMP3,
	})
	if err != nil {
		t.Fatalf("UploadAndShare() unexpected error: %v", err)
	}

	if want := "output.mp3|audio/mpeg|folder-1|/tmp/output.mp3"; len(mock.uploaded) != 1 || mock.uploaded[0] != want {
		t.Errorf("uploaded = %v, want [%s]", mock.uploaded, want)
	}
	if len(mock.permissions) != 1 || mock.permissions[0].Type != "anyone" || mock.permissions[0].Role != "reader" {
		t.Errorf("permissions = %+v", mock.permissions)
	}
	if result.ShareableURL != distribution.ShareableURL("uploaded-file-id") {
		t.Errorf("ShareableURL = %q", result.ShareableURL)
	}
	if result.Size != 1024 || result.FileID != "uploaded-file-id" {
		t.Errorf("result = %+v", result)
	}
}

func TestClient_UploadAndShare_PrefersWebViewLink(t *testing.T) {
	link := "https://drive.google.com/file/d/uploaded-file-id/view"
	client := newMockClient(t, &mockDriveService{webViewLink: link})

	result, err := client.UploadAndShare(context.Background(), distribution.UploadRequest{FileName: "a.mp3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ShareableURL != link {
		t.Errorf("ShareableURL = %q, want %q", result.ShareableURL, link)
	}
}

func TestClient_UploadAndShare_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mock   *mockDriveService
		errMsg string
	}{
		{"upload fails", &mockDriveService{shouldFail: true, failError: fmt.Errorf("500")}, "failed to upload file"},
		{"share fails", &mockDriveService{permissionErr: fmt.Errorf("403")}, "failed to share file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t, tt.mock)

			_, err := client.UploadAndShare(context.Background(), distribution.UploadRequest{FileName: "a.mp3"})
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want to contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestClient_DeletePermanently(t *testing.T) {
	mock := &mockDriveService{}
	client := newMockClient(t, mock)

	if err := client.DeletePermanently(context.Background(), "file-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.deletedFileIDs) != 1 || mock.deletedFileIDs[0] != "file-9" {
		t.Errorf("deleted = %v", mock.deletedFileIDs)
	}

	failing := newMockClient(t, &mockDriveService{shouldFail: true, failError: fmt.Errorf("404")})
	if err := failing.DeletePermanently(context.Background(), "file-9"); err == nil || !strings.Contains(err.Error(), "failed to delete file file-9") {
		t.Errorf("error = %v", err)
	}
}

func TestNewClientWithOAuth_UsesInjectedService(t *testing.T) {
	mock := &mockDriveService{}
	client, err := NewClientWithOAuth(context.Background(), "missing.json", "missing-token.json", WithDriveService(mock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.driveService != mock {
		t.Error("expected injected drive service")
	}
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "unable to read credentials file") {
		t.Errorf("error = %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}

	if err := saveToken(path, token); err != nil {
		t.Fatalf("saveToken() unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token permissions = %o, want 600", perm)
	}

	loaded, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken() unexpected error: %v", err)
	}
	if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadToken_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadToken(path); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestEscapeQuery(t *testing.T) {
	if got := escapeQuery(`a\b'c`); got != `a\\b\'c` {
		t.Errorf("escapeQuery() = %q", got)
	}
}

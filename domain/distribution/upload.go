package distribution

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UploadRequest contains the parameters needed to upload a file to Google Drive
type UploadRequest struct {
	LocalPath string // Full path to the local file
	FileName  string // Target filename in Google Drive
	FolderID  string // Target folder ID in Google Drive
	MimeType  string // MIME type of the file
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	FileID       string // Google Drive file ID
	FileName     string // Name of the uploaded file
	ShareableURL string // URL for sharing the file
	Size         int64  // Size of the uploaded file in bytes
}

// MIME types for the audio formats the fetcher can produce
const (
	MimeTypeMP3    = "audio/mpeg"
	MimeTypeM4A    = "audio/mp4"
	MimeTypeOpus   = "audio/ogg"
	MimeTypeWAV    = "audio/wav"
	MimeTypeFLAC   = "audio/flac"
	MimeTypeBinary = "application/octet-stream"
)

var mimeTypes = map[string]string{
	".mp3":  MimeTypeMP3,
	".m4a":  MimeTypeM4A,
	".aac":  MimeTypeM4A,
	".opus": MimeTypeOpus,
	".ogg":  MimeTypeOpus,
	".wav":  MimeTypeWAV,
	".flac": MimeTypeFLAC,
}

// MimeTypeFor returns the MIME type for a clip based on its extension
func MimeTypeFor(path string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return MimeTypeBinary
}

// ShareableURL returns the view link for a Drive file id
func ShareableURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view?usp=sharing", fileID)
}

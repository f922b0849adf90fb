package segment

import "context"

// FetchRequest describes what the fetcher should retrieve and where it should write it
type FetchRequest struct {
	SourceURL string
	// DestPath is the exact path the transcoded audio must end up at
	DestPath string
}

// Fetcher retrieves a remote asset's audio track into a local file.
// This is a port that can be implemented by different infrastructure adapters
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) error
}

// TrimRequest describes a stream-copy extraction of one time range
type TrimRequest struct {
	InputPath string
	Start     Marker
	End       Marker
}

// Trimmer extracts a time range from a local media file into outputPath
type Trimmer interface {
	Trim(ctx context.Context, req TrimRequest, outputPath string) error
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	Exists(path string) bool
}
